package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iabetor/pinews/internal/config"
	"github.com/iabetor/pinews/internal/news"
	"github.com/iabetor/pinews/internal/rss"
	"github.com/iabetor/pinews/internal/sources"
	"github.com/iabetor/pinews/internal/ui"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Blog</title>
<item><title>Hello from the test feed</title><link>https://example.com/1</link><pubDate>%s</pubDate></item>
</channel></rss>`

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "pinews.db")
	cfg.Fetch.TimeoutSeconds = 5

	var out, errOut bytes.Buffer
	a, err := newApp(cfg, &out, &errOut)
	if err != nil {
		t.Fatalf("newApp 失败: %v", err)
	}
	t.Cleanup(a.Close)
	return a, &out, &errOut
}

// emptyCategory 删除默认订阅源，避免测试访问外网。
func emptyCategory(t *testing.T, a *app, category string) {
	t.Helper()
	ctx := context.Background()
	list, err := a.store.List(ctx, category)
	if err != nil {
		t.Fatal(err)
	}
	for _, src := range list {
		if err := a.store.Remove(ctx, src.ID); err != nil {
			t.Fatal(err)
		}
	}
}

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, testFeed, time.Now().Add(-time.Hour).Format(time.RFC1123Z))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunFetch(t *testing.T) {
	a, out, errOut := newTestApp(t)
	srv := feedServer(t)
	emptyCategory(t, a, sources.CategoryTech)

	if code := a.run(context.Background(), "add", []string{sources.CategoryTech, "Local", srv.URL}); code != 0 {
		t.Fatalf("add 退出码 %d: %s", code, errOut.String())
	}
	out.Reset()

	if code := a.run(context.Background(), "fetch", []string{sources.CategoryTech}); code != 0 {
		t.Fatalf("fetch 退出码 %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "Hello from the test feed") || !strings.Contains(out.String(), "Local") {
		t.Errorf("输出缺少文章:\n%s", out.String())
	}
}

func TestRunFetchEmptyCategory(t *testing.T) {
	a, _, errOut := newTestApp(t)
	emptyCategory(t, a, sources.CategoryFinance)

	if code := a.run(context.Background(), "fetch", []string{sources.CategoryFinance}); code != 1 {
		t.Fatalf("全部失败时退出码应为 1, got %d", code)
	}
	if !strings.Contains(errOut.String(), news.LoadFailedMessage) {
		t.Errorf("应输出通用错误信息: %s", errOut.String())
	}
}

func TestRunStatus(t *testing.T) {
	a, out, errOut := newTestApp(t)
	srv := feedServer(t)
	emptyCategory(t, a, sources.CategoryWorld)

	ctx := context.Background()
	if _, err := a.store.Add(ctx, sources.CategoryWorld, "Good", srv.URL); err != nil {
		t.Fatal(err)
	}
	if _, err := a.store.Add(ctx, sources.CategoryWorld, "Second", srv.URL+"/second"); err != nil {
		t.Fatal(err)
	}
	if code := a.run(ctx, "status", []string{sources.CategoryWorld}); code != 0 {
		t.Fatalf("status 退出码 %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), ui.AllLoadedMessage) {
		t.Errorf("所有源都成功时应显示成功信息:\n%s", out.String())
	}

	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	if _, err := a.store.Add(ctx, sources.CategoryWorld, "Dead", dead.URL); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if code := a.run(ctx, "status", []string{sources.CategoryWorld}); code != 0 {
		t.Fatalf("status 退出码 %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "Dead") || !strings.Contains(out.String(), rss.MsgTransportFailure) {
		t.Errorf("应列出失败的源:\n%s", out.String())
	}
}

func TestRunSourceLifecycle(t *testing.T) {
	a, out, errOut := newTestApp(t)
	ctx := context.Background()
	emptyCategory(t, a, sources.CategorySports)

	if code := a.run(ctx, "add", []string{sources.CategorySports, "Feed", "ftp://nope"}); code != 1 {
		t.Errorf("无效地址应失败, got %d", code)
	}
	if code := a.run(ctx, "add", []string{sources.CategorySports, "Feed", "https://feed.example/rss"}); code != 0 {
		t.Fatalf("add 失败: %s", errOut.String())
	}

	list, err := a.store.List(ctx, sources.CategorySports)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %v %v", list, err)
	}
	id := list[0].ID

	if code := a.run(ctx, "update", []string{id, "Renamed", "https://feed.example/atom"}); code != 0 {
		t.Fatalf("update 失败: %s", errOut.String())
	}
	out.Reset()
	if code := a.run(ctx, "sources", []string{sources.CategorySports}); code != 0 {
		t.Fatalf("sources 失败: %s", errOut.String())
	}
	if !strings.Contains(out.String(), "Renamed") || !strings.Contains(out.String(), "https://feed.example/atom") {
		t.Errorf("sources 输出不对:\n%s", out.String())
	}

	if code := a.run(ctx, "remove", []string{id}); code != 0 {
		t.Fatalf("remove 失败: %s", errOut.String())
	}
	if code := a.run(ctx, "remove", []string{id}); code != 1 {
		t.Errorf("重复删除应失败, got %d", code)
	}
}

func TestRunCheck(t *testing.T) {
	a, out, _ := newTestApp(t)
	srv := feedServer(t)

	if code := a.run(context.Background(), "check", []string{srv.URL}); code != 0 {
		t.Fatalf("check 退出码 %d", code)
	}
	if !strings.Contains(out.String(), "Test Blog") {
		t.Errorf("应输出 Feed 标题: %s", out.String())
	}

	emptyCategory(t, a, sources.CategoryTech)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not a feed")
	}))
	defer bad.Close()
	if code := a.run(context.Background(), "add", []string{"-check", sources.CategoryTech, "Bad", bad.URL}); code != 1 {
		t.Errorf("校验失败时不应保存, got %d", code)
	}
	list, _ := a.store.List(context.Background(), sources.CategoryTech)
	if len(list) != 0 {
		t.Errorf("校验失败的源不应被保存: %+v", list)
	}
}

func TestRunUsageErrors(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	tests := []struct {
		cmd  string
		args []string
	}{
		{"bogus", nil},
		{"fetch", []string{"gossip"}},
		{"sources", nil},
		{"add", []string{"tech", "only-name"}},
		{"update", []string{"id"}},
		{"remove", nil},
		{"check", nil},
	}
	for _, tc := range tests {
		if code := a.run(ctx, tc.cmd, tc.args); code != 2 {
			t.Errorf("%s %v: 退出码 %d, want 2", tc.cmd, tc.args, code)
		}
	}
}
