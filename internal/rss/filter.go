package rss

import (
	"net/url"
	"strings"

	"github.com/iabetor/pinews/internal/config"
)

// PopularityFilter 对社区类站点（默认 reddit.com）只保留标题含关键词的条目。
type PopularityFilter struct {
	Enabled  bool
	Keywords []string
	Domains  []string
}

// NewPopularityFilter 从配置创建过滤器。
func NewPopularityFilter(cfg config.PopularityConfig) PopularityFilter {
	return PopularityFilter{
		Enabled:  cfg.Enabled,
		Keywords: append([]string(nil), cfg.Keywords...),
		Domains:  append([]string(nil), cfg.Domains...),
	}
}

// Restricts 判断 endpoint 是否需要过滤。
func (f PopularityFilter) Restricts(endpoint string) bool {
	if !f.Enabled {
		return false
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range f.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" && strings.Contains(host, d) {
			return true
		}
	}
	return false
}

// Keep 判断标题是否包含任一关键词（不区分大小写）。
func (f PopularityFilter) Keep(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range f.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Apply 对 endpoint 的文章做过滤，不受限的源原样返回。
func (f PopularityFilter) Apply(endpoint string, articles []Article) []Article {
	if !f.Restricts(endpoint) {
		return articles
	}
	kept := make([]Article, 0, len(articles))
	for _, a := range articles {
		if f.Keep(a.Title) {
			kept = append(kept, a)
		}
	}
	return kept
}
