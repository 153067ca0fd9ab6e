package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是 PiNews 的顶层配置结构。
type Config struct {
	Log        LogConfig        `yaml:"log"`
	DataDir    string           `yaml:"data_dir"`
	Database   DatabaseConfig   `yaml:"database"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Popularity PopularityConfig `yaml:"popularity"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// DatabaseConfig 订阅源数据库配置。
type DatabaseConfig struct {
	// Path 为空时使用 <data_dir>/pinews.db。
	Path string `yaml:"path"`
}

// FetchConfig 抓取配置。
type FetchConfig struct {
	// TimeoutSeconds 是传输层的单次请求超时，抓取本身不做重试。
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

// Timeout 返回请求超时时长。
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// PopularityConfig 社区源热门过滤配置。
type PopularityConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Keywords []string `yaml:"keywords"`
	Domains  []string `yaml:"domains"`
}

// DefaultPopularKeywords 是热门帖子标题关键词的默认列表。
var DefaultPopularKeywords = []string{"[Top]", "Megathread", "Daily", "Weekly", "Official", "Discussion", "News"}

// DefaultRestrictedDomains 是需要热门过滤的社区站点。
var DefaultRestrictedDomains = []string{"reddit.com"}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	expanded := os.Expand(string(data), os.Getenv)

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// Default 返回不读文件时使用的默认配置。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	if cfg.DataDir == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.DataDir = filepath.Join(home, ".pinews")
		} else {
			cfg.DataDir = "./.pinews-data"
		}
	}

	cfg.Database.Path = expandHome(cfg.Database.Path)
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.DataDir, "pinews.db")
	}
	cfg.Log.File = expandHome(cfg.Log.File)

	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = 60
	}
	if strings.TrimSpace(cfg.Fetch.UserAgent) == "" {
		cfg.Fetch.UserAgent = "PiNews/1.0 Feed Reader"
	}

	if len(cfg.Popularity.Keywords) == 0 {
		cfg.Popularity.Keywords = append([]string(nil), DefaultPopularKeywords...)
	}
	if len(cfg.Popularity.Domains) == 0 {
		cfg.Popularity.Domains = append([]string(nil), DefaultRestrictedDomains...)
	}
}

// expandHome 展开 "~/" 前缀，Go 不会自动处理。
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return path
	}
	return filepath.Join(home, path[2:])
}
