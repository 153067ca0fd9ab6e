package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iabetor/pinews/internal/config"
	"github.com/iabetor/pinews/internal/logger"
	"github.com/iabetor/pinews/internal/sources"
)

const defaultConfigPath = "configs/pinews.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "配置文件路径")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(cfg, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	// os.Exit 不执行 defer，显式收尾
	code := a.run(context.Background(), args[0], args[1:])
	a.Close()
	logger.Sync()
	os.Exit(code)
}

// loadConfig 读取配置。使用默认路径且文件不存在时退回默认配置。
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, err
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "PiNews 订阅源阅读工具")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "用法: pinews [-config <path>] <command> [args]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "命令:")
	fmt.Fprintln(os.Stderr, "  fetch [分类]                     抓取并显示文章（默认所有分类）")
	fmt.Fprintln(os.Stderr, "  status [分类]                    抓取后显示失败的订阅源")
	fmt.Fprintln(os.Stderr, "  sources [-status] <分类>         列出分类下的订阅源")
	fmt.Fprintln(os.Stderr, "  add [-check] <分类> <名称> <地址>  添加订阅源")
	fmt.Fprintln(os.Stderr, "  update <ID> <名称> <地址>          修改订阅源")
	fmt.Fprintln(os.Stderr, "  remove <ID>                      删除订阅源")
	fmt.Fprintln(os.Stderr, "  check <地址>                     校验订阅源地址")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "分类: %v\n", sources.Categories())
}
