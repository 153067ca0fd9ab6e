package rss

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBuildRSSItem(t *testing.T) {
	id := uuid.New()
	item := RawItem{
		ID:    id,
		Title: "  Hello World \n",
		Link:  "\n https://example.com/post/1 ",
		Date:  " Thu, 19 Feb 2026 08:00:00 +0800 ",
	}
	a, err := Build(item, "Example")
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	if a.ID != id {
		t.Errorf("ID 应沿用条目 ID")
	}
	if a.Title != "Hello World" {
		t.Errorf("标题应去除空白: %q", a.Title)
	}
	if a.Link != "https://example.com/post/1" {
		t.Errorf("链接不匹配: %q", a.Link)
	}
	if !a.Published.Equal(time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("时间不匹配: %v", a.Published)
	}
	if a.Source != "Example" {
		t.Errorf("来源不匹配: %q", a.Source)
	}
}

func TestBuildPrefersHref(t *testing.T) {
	a, err := Build(RawItem{
		Link: "https://example.com/text",
		Href: "https://example.com/attr",
		Date: "2026-02-19T09:00:00Z",
	}, "Atom")
	if err != nil {
		t.Fatalf("Build 失败: %v", err)
	}
	if a.Link != "https://example.com/attr" {
		t.Errorf("href 应优先: %q", a.Link)
	}
	if a.ID == uuid.Nil {
		t.Error("缺少 ID 时应生成新 ID")
	}
}

func TestBuildEmptyTitleAllowed(t *testing.T) {
	a, err := Build(RawItem{Link: "https://example.com/x", Date: "2026-02-19T09:00:00Z"}, "S")
	if err != nil {
		t.Fatalf("空标题不应被拒绝: %v", err)
	}
	if a.Title != "" {
		t.Errorf("标题应为空: %q", a.Title)
	}
}

func TestBuildRejects(t *testing.T) {
	validDate := "2026-02-19T09:00:00Z"
	tests := []struct {
		name string
		item RawItem
		want error
	}{
		{"no link", RawItem{Date: validDate}, ErrInvalidLink},
		{"blank link", RawItem{Link: "   ", Date: validDate}, ErrInvalidLink},
		{"relative link", RawItem{Link: "/post/1", Date: validDate}, ErrInvalidLink},
		{"bad link", RawItem{Link: "http://[::1", Date: validDate}, ErrInvalidLink},
		{"no host", RawItem{Href: "mailto:someone", Date: validDate}, ErrInvalidLink},
		{"no date", RawItem{Link: "https://example.com/1"}, ErrInvalidDate},
		{"bad date", RawItem{Link: "https://example.com/1", Date: "last tuesday"}, ErrInvalidDate},
		// 链接先于时间校验
		{"both invalid", RawItem{Date: "nope"}, ErrInvalidLink},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.item, "S")
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}
