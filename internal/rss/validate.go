package rss

import (
	"context"
	"fmt"
)

// Validate 抓取 url 并用完整的 gofeed 解析器校验，返回 Feed 标题。
// 用于保存新订阅源之前的检查。
func (f *Fetcher) Validate(ctx context.Context, url string) (string, error) {
	body, err := f.open(ctx, url)
	if err != nil {
		return "", fmt.Errorf("无法访问该 RSS 地址: %w", err)
	}
	defer body.Close()

	feed, err := f.parser.Parse(body)
	if err != nil {
		return "", fmt.Errorf("无法解析该 RSS 地址: %w", err)
	}
	title := feed.Title
	if title == "" {
		title = url
	}
	return title, nil
}
