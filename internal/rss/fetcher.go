package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/iabetor/pinews/internal/logger"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFetchTimeout = 60 * time.Second
	defaultUserAgent    = "PiNews/1.0 Feed Reader"
)

// ErrNoArticles 所有订阅源都没有产出文章。
var ErrNoArticles = errors.New("no articles from any source")

// Target 是一次抓取的订阅源：地址和展示名。
type Target struct {
	URL  string
	Name string
}

// Batch 是一次 FetchAll 的结果。
type Batch struct {
	// Articles 按发布时间倒序。
	Articles []Article
	// Failures 是抓取结束后失败记录表的快照。
	Failures map[string]string
}

// Option 配置 Fetcher。
type Option func(*Fetcher)

// WithTimeout 设置单次请求超时。
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithHTTPClient 替换 HTTP 客户端。
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent 设置请求的 User-Agent。
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua = strings.TrimSpace(ua); ua != "" {
			f.userAgent = ua
		}
	}
}

// WithFilter 设置热门过滤器。
func WithFilter(filter PopularityFilter) Option {
	return func(f *Fetcher) {
		f.filter = filter
	}
}

// WithRejectHook 设置被丢弃条目的回调，参数为源名和原因。
// 回调可能从多个 goroutine 同时调用。
func WithRejectHook(hook func(source string, err error)) Option {
	return func(f *Fetcher) {
		f.onReject = hook
	}
}

// Fetcher 并发抓取多个订阅源并合并结果。
type Fetcher struct {
	client    *http.Client
	userAgent string
	failures  *FailureRegistry
	filter    PopularityFilter
	onReject  func(source string, err error)
	parser    *gofeed.Parser
}

// NewFetcher 创建抓取器。failures 为 nil 时新建一个记录表。
func NewFetcher(failures *FailureRegistry, opts ...Option) *Fetcher {
	if failures == nil {
		failures = NewFailureRegistry()
	}
	f := &Fetcher{
		client:    &http.Client{Timeout: defaultFetchTimeout},
		userAgent: defaultUserAgent,
		failures:  failures,
		parser:    gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Failures 返回抓取器使用的失败记录表。
func (f *Fetcher) Failures() *FailureRegistry {
	return f.failures
}

// FetchAll 并发抓取所有订阅源，每个源一个 goroutine，全部结束后合并排序。
// 单个源失败只记录到失败表，不影响其他源。所有源都没有文章时返回 ErrNoArticles。
func (f *Fetcher) FetchAll(ctx context.Context, targets []Target) (Batch, error) {
	targets = ValidTargets(targets)

	results := make([][]Article, len(targets))
	var g errgroup.Group
	for i, t := range targets {
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, t)
			return nil
		})
	}
	// 单源错误不会返回给 errgroup，Wait 只是汇合点
	_ = g.Wait()

	var merged []Article
	for _, r := range results {
		merged = append(merged, r...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Published.After(merged[j].Published)
	})

	batch := Batch{Articles: merged, Failures: f.failures.Snapshot()}
	logger.Infof("[rss] 抓取完成: %d 个源, %d 篇文章, %d 个失败", len(targets), len(merged), len(batch.Failures))
	if len(merged) == 0 {
		return batch, ErrNoArticles
	}
	return batch, nil
}

// fetchOne 抓取并解析单个源，结果写入失败表。
func (f *Fetcher) fetchOne(ctx context.Context, t Target) []Article {
	body, err := f.open(ctx, t.URL)
	if err != nil {
		logger.Warnf("[rss] 抓取 %s 失败: %v", t.Name, err)
		f.failures.Record(t.Name, MsgTransportFailure)
		return nil
	}
	defer body.Close()

	var articles []Article
	p := NewItemParser(func(item RawItem) {
		a, err := Build(item, t.Name)
		if err != nil {
			logger.Debugf("[rss] %s 丢弃条目: %v", t.Name, err)
			if f.onReject != nil {
				f.onReject(t.Name, err)
			}
			return
		}
		articles = append(articles, a)
	})
	if err := p.Parse(body); err != nil {
		logger.Warnf("[rss] 解析 %s 中断（保留 %d 篇）: %v", t.Name, len(articles), err)
	}

	if len(articles) == 0 {
		logger.Infof("[rss] %s 没有有效文章", t.Name)
		f.failures.Record(t.Name, MsgEmptyResult)
		return nil
	}
	f.failures.Clear(t.Name)

	// 失败表按过滤前的结果记录，被过滤为空的源不算失败
	return f.filter.Apply(t.URL, articles)
}

// open 发起 GET 请求，状态码 >= 400 视为失败。
func (f *Fetcher) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// ValidTargets 丢弃地址不是绝对 URL 或名称为空的源。
func ValidTargets(targets []Target) []Target {
	valid := make([]Target, 0, len(targets))
	for _, t := range targets {
		if strings.TrimSpace(t.Name) == "" {
			logger.Debugf("[rss] 跳过无名称的源: %s", t.URL)
			continue
		}
		u, err := url.Parse(strings.TrimSpace(t.URL))
		if err != nil || !u.IsAbs() || u.Host == "" {
			logger.Debugf("[rss] 跳过无效地址 %s: %q", t.Name, t.URL)
			continue
		}
		valid = append(valid, Target{URL: u.String(), Name: t.Name})
	}
	return valid
}
