// Package rss 实现 RSS 2.0 / Atom 订阅源的抓取、解析和合并。
package rss

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidLink 条目缺少可解析的绝对链接。
	ErrInvalidLink = errors.New("missing or invalid link")
	// ErrInvalidDate 条目缺少可识别的发布时间。
	ErrInvalidDate = errors.New("missing or invalid date")
)

// Article 是归一化后的文章，构造后不再修改。
type Article struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
	Source    string    `json:"source"`
}

// RawItem 是解析器在一个 item/entry 内累积的原始字段。
type RawItem struct {
	ID    uuid.UUID
	Title string
	Link  string
	// Href 来自 Atom 的 <link href="...">，优先于 Link。
	Href string
	Date string
}

// Build 校验原始条目并构造 Article。先校验链接，再校验时间。
func Build(item RawItem, source string) (Article, error) {
	link, err := resolveLink(item)
	if err != nil {
		return Article{}, err
	}

	published, ok := ParseDate(item.Date)
	if !ok {
		return Article{}, fmt.Errorf("%w: %q", ErrInvalidDate, strings.TrimSpace(item.Date))
	}

	id := item.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return Article{
		ID:        id,
		Title:     strings.TrimSpace(item.Title),
		Link:      link,
		Published: published,
		Source:    source,
	}, nil
}

func resolveLink(item RawItem) (string, error) {
	link := strings.TrimSpace(item.Href)
	if link == "" {
		link = strings.TrimSpace(item.Link)
	}
	if link == "" {
		return "", ErrInvalidLink
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q 不是绝对地址", ErrInvalidLink, link)
	}
	return link, nil
}
