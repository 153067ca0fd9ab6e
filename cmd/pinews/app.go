package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iabetor/pinews/internal/config"
	"github.com/iabetor/pinews/internal/database"
	"github.com/iabetor/pinews/internal/logger"
	"github.com/iabetor/pinews/internal/news"
	"github.com/iabetor/pinews/internal/rss"
	"github.com/iabetor/pinews/internal/sources"
	"github.com/iabetor/pinews/internal/ui"
)

// app 持有一次命令执行所需的全部依赖。
type app struct {
	db      *database.DB
	store   *sources.Store
	fetcher *rss.Fetcher
	out     io.Writer
	errOut  io.Writer
}

func newApp(cfg *config.Config, out, errOut io.Writer) (*app, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	fetcher := rss.NewFetcher(rss.NewFailureRegistry(),
		rss.WithTimeout(cfg.Fetch.Timeout()),
		rss.WithUserAgent(cfg.Fetch.UserAgent),
		rss.WithFilter(rss.NewPopularityFilter(cfg.Popularity)),
	)
	if cfg.Popularity.Enabled {
		logger.Infof("[pinews] 热门过滤已启用: %v", cfg.Popularity.Domains)
	}

	return &app{
		db:      db,
		store:   sources.NewStore(db),
		fetcher: fetcher,
		out:     out,
		errOut:  errOut,
	}, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

// run 执行子命令并返回退出码。
func (a *app) run(ctx context.Context, cmd string, args []string) int {
	switch cmd {
	case "fetch":
		return a.cmdFetch(ctx, args)
	case "status":
		return a.cmdStatus(ctx, args)
	case "sources":
		return a.cmdSources(ctx, args)
	case "add":
		return a.cmdAdd(ctx, args)
	case "update":
		return a.cmdUpdate(ctx, args)
	case "remove":
		return a.cmdRemove(ctx, args)
	case "check":
		return a.cmdCheck(ctx, args)
	}
	a.fail("未知命令: %s", cmd)
	return 2
}

func (a *app) fail(format string, args ...interface{}) {
	fmt.Fprintln(a.errOut, ui.ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

// categoriesArg 解析可选的分类参数，为空时返回所有分类。
func categoriesArg(args []string) ([]string, error) {
	if len(args) == 0 {
		return sources.Categories(), nil
	}
	if !sources.IsCategory(args[0]) {
		return nil, fmt.Errorf("未知分类 %q，可选: %v", args[0], sources.Categories())
	}
	return args[:1], nil
}

func (a *app) cmdFetch(ctx context.Context, args []string) int {
	cats, err := categoriesArg(args)
	if err != nil {
		a.fail("%v", err)
		return 2
	}

	failed := 0
	for _, cat := range cats {
		desk := news.NewDesk(cat, a.store, a.fetcher)
		fmt.Fprintln(a.out, ui.HeaderStyle.Render("== "+cat+" =="))
		if err := desk.Refresh(ctx); err != nil {
			failed++
			if errors.Is(err, rss.ErrNoArticles) {
				a.fail("%s", desk.ErrorMessage())
			} else {
				a.fail("%v", err)
			}
			continue
		}
		if err := ui.RenderArticles(a.out, desk.Articles()); err != nil {
			a.fail("%v", err)
			return 1
		}
	}
	if failed == len(cats) {
		return 1
	}
	return 0
}

func (a *app) cmdStatus(ctx context.Context, args []string) int {
	cats, err := categoriesArg(args)
	if err != nil {
		a.fail("%v", err)
		return 2
	}
	for _, cat := range cats {
		desk := news.NewDesk(cat, a.store, a.fetcher)
		if err := desk.Refresh(ctx); err != nil && !errors.Is(err, rss.ErrNoArticles) {
			a.fail("%v", err)
			return 1
		}
	}
	if err := ui.RenderStatus(a.out, a.fetcher.Failures().Snapshot()); err != nil {
		a.fail("%v", err)
		return 1
	}
	return 0
}

func (a *app) cmdSources(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("sources", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	withStatus := fs.Bool("status", false, "先抓取一次并标记失败的订阅源")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		a.fail("用法: pinews sources [-status] <分类>")
		return 2
	}
	cats, err := categoriesArg(fs.Args())
	if err != nil {
		a.fail("%v", err)
		return 2
	}

	desk := news.NewDesk(cats[0], a.store, a.fetcher)
	if *withStatus {
		if err := desk.Refresh(ctx); err != nil && !errors.Is(err, rss.ErrNoArticles) {
			a.fail("%v", err)
			return 1
		}
	}
	statuses, err := desk.SourceStatus(ctx)
	if err != nil {
		a.fail("%v", err)
		return 1
	}
	if err := ui.RenderSources(a.out, cats[0], statuses); err != nil {
		a.fail("%v", err)
		return 1
	}
	return 0
}

func (a *app) cmdAdd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	check := fs.Bool("check", false, "保存前校验订阅源地址")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 3 {
		a.fail("用法: pinews add [-check] <分类> <名称> <地址>")
		return 2
	}
	category, name, url := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	if *check {
		title, err := a.fetcher.Validate(ctx, url)
		if err != nil {
			a.fail("%v", err)
			return 1
		}
		fmt.Fprintf(a.out, "校验通过: %s\n", title)
	}

	src, err := a.store.Add(ctx, category, name, url)
	if err != nil {
		a.fail("添加失败: %v", err)
		return 1
	}
	fmt.Fprintf(a.out, "已添加 %s (%s)\n", src.Name, src.ID)
	return 0
}

func (a *app) cmdUpdate(ctx context.Context, args []string) int {
	if len(args) != 3 {
		a.fail("用法: pinews update <ID> <名称> <地址>")
		return 2
	}
	src, err := a.store.Update(ctx, args[0], args[1], args[2])
	if err != nil {
		a.fail("修改失败: %v", err)
		return 1
	}
	fmt.Fprintf(a.out, "已修改 %s -> %s\n", src.Name, src.URL)
	return 0
}

func (a *app) cmdRemove(ctx context.Context, args []string) int {
	if len(args) != 1 {
		a.fail("用法: pinews remove <ID>")
		return 2
	}
	if err := a.store.Remove(ctx, args[0]); err != nil {
		a.fail("删除失败: %v", err)
		return 1
	}
	fmt.Fprintf(a.out, "订阅源 %s 已删除。\n", args[0])
	return 0
}

func (a *app) cmdCheck(ctx context.Context, args []string) int {
	if len(args) != 1 {
		a.fail("用法: pinews check <地址>")
		return 2
	}
	title, err := a.fetcher.Validate(ctx, args[0])
	if err != nil {
		a.fail("%v", err)
		return 1
	}
	fmt.Fprintf(a.out, "有效的订阅源: %s\n", title)
	return 0
}
