// Package news 按分类组织订阅源抓取，保存最近一次的文章列表。
package news

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iabetor/pinews/internal/logger"
	"github.com/iabetor/pinews/internal/rss"
	"github.com/iabetor/pinews/internal/sources"
)

// LoadFailedMessage 所有订阅源都没有文章时展示给用户的信息。
const LoadFailedMessage = "Failed to load articles. Please try again later."

// SourceLister 提供分类下的订阅源。
type SourceLister interface {
	List(ctx context.Context, category string) ([]sources.Source, error)
}

// BatchFetcher 并发抓取订阅源。
type BatchFetcher interface {
	FetchAll(ctx context.Context, targets []rss.Target) (rss.Batch, error)
	Failures() *rss.FailureRegistry
}

// SourceStatus 是订阅源及其最近一次的失败原因，Failure 为空表示正常。
type SourceStatus struct {
	Source  sources.Source
	Failure string
}

// Desk 管理一个分类的文章列表。
type Desk struct {
	category string
	sources  SourceLister
	fetcher  BatchFetcher

	mu       sync.RWMutex
	articles []rss.Article
	errMsg   string
}

// NewDesk 创建分类的新闻台。
func NewDesk(category string, lister SourceLister, fetcher BatchFetcher) *Desk {
	return &Desk{
		category: category,
		sources:  lister,
		fetcher:  fetcher,
	}
}

// Category 返回分类名。
func (d *Desk) Category() string {
	return d.category
}

// Refresh 重新抓取分类下所有订阅源，整体替换文章列表。
// 所有源都没有文章时设置 ErrorMessage 并返回 rss.ErrNoArticles。
func (d *Desk) Refresh(ctx context.Context) error {
	list, err := d.sources.List(ctx, d.category)
	if err != nil {
		return fmt.Errorf("读取 %s 订阅源失败: %w", d.category, err)
	}

	targets := make([]rss.Target, 0, len(list))
	for _, src := range list {
		targets = append(targets, src.Target())
	}

	batch, err := d.fetcher.FetchAll(ctx, targets)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.articles = batch.Articles
	if err != nil {
		if errors.Is(err, rss.ErrNoArticles) {
			d.errMsg = LoadFailedMessage
		}
		logger.Warnf("[news] %s 刷新失败: %v", d.category, err)
		return err
	}
	d.errMsg = ""
	logger.Infof("[news] %s 刷新完成: %d 篇文章", d.category, len(batch.Articles))
	return nil
}

// Articles 返回最近一次刷新的文章，按发布时间倒序。
func (d *Desk) Articles() []rss.Article {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]rss.Article, len(d.articles))
	copy(out, d.articles)
	return out
}

// ErrorMessage 返回面向用户的错误信息，最近一次刷新成功时为空。
func (d *Desk) ErrorMessage() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.errMsg
}

// Failures 返回失败记录表的快照。记录表在所有分类间共享。
func (d *Desk) Failures() map[string]string {
	return d.fetcher.Failures().Snapshot()
}

// SourceStatus 返回分类下每个订阅源的状态，用于编辑订阅源时展示。
func (d *Desk) SourceStatus(ctx context.Context) ([]SourceStatus, error) {
	list, err := d.sources.List(ctx, d.category)
	if err != nil {
		return nil, fmt.Errorf("读取 %s 订阅源失败: %w", d.category, err)
	}
	failures := d.fetcher.Failures()
	out := make([]SourceStatus, 0, len(list))
	for _, src := range list {
		reason, _ := failures.Get(src.Name)
		out = append(out, SourceStatus{Source: src, Failure: reason})
	}
	return out, nil
}
