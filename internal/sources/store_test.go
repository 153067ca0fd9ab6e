package sources

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iabetor/pinews/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "pinews.db"))
	if err != nil {
		t.Fatalf("打开数据库失败: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return NewStore(db)
}

func TestListSeedsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, cat := range Categories() {
		list, err := s.List(ctx, cat)
		if err != nil {
			t.Fatalf("List(%s) 失败: %v", cat, err)
		}
		if len(list) != len(defaults[cat]) {
			t.Fatalf("%s: 期望 %d 个默认源, got %d", cat, len(defaults[cat]), len(list))
		}
		for i, src := range list {
			if src.Name != defaults[cat][i].Name || src.URL != defaults[cat][i].URL {
				t.Errorf("%s[%d]: got %s %s", cat, i, src.Name, src.URL)
			}
			if src.Category != cat || src.ID == "" {
				t.Errorf("%s[%d]: 字段不完整 %+v", cat, i, src)
			}
		}
	}

	// 再次读取不会重复写入
	list, err := s.List(ctx, CategoryTech)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != len(defaults[CategoryTech]) {
		t.Fatalf("默认源被重复写入: %d", len(list))
	}
}

func TestEmptiedCategoryStaysEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	list, err := s.List(ctx, CategoryFinance)
	if err != nil {
		t.Fatal(err)
	}
	for _, src := range list {
		if err := s.Remove(ctx, src.ID); err != nil {
			t.Fatalf("Remove 失败: %v", err)
		}
	}

	list, err = s.List(ctx, CategoryFinance)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("清空后的分类不应重新写入默认源: %d", len(list))
	}
}

func TestAddAppendsAfterDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src, err := s.Add(ctx, CategorySports, "  My Feed ", " https://example.com/feed.xml ")
	if err != nil {
		t.Fatalf("Add 失败: %v", err)
	}
	if src.Name != "My Feed" || src.URL != "https://example.com/feed.xml" {
		t.Errorf("应去除空白: %+v", src)
	}

	list, err := s.List(ctx, CategorySports)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != len(defaults[CategorySports])+1 {
		t.Fatalf("数量不对: %d", len(list))
	}
	if last := list[len(list)-1]; last.ID != src.ID {
		t.Errorf("新源应排在最后: %+v", last)
	}
}

func TestAddValidates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		url  string
	}{
		{"", "https://example.com/feed"},
		{"Feed", ""},
		{"Feed", "ftp://example.com/feed"},
		{"Feed", "example.com/feed"},
		{"Feed", "https://"},
	}
	for _, tc := range tests {
		if _, err := s.Add(ctx, CategoryTech, tc.name, tc.url); !errors.Is(err, ErrInvalidSource) {
			t.Errorf("Add(%q, %q): got %v, want ErrInvalidSource", tc.name, tc.url, err)
		}
	}

	if _, err := s.Add(ctx, "gossip", "Feed", "https://example.com/feed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("未知分类: got %v", err)
	}
}

func TestUpdateAndRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src, err := s.Add(ctx, CategoryWorld, "Old", "https://old.example/feed")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.Update(ctx, src.ID, "New", "http://new.example/rss")
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if updated.Name != "New" || updated.URL != "http://new.example/rss" || updated.Position != src.Position {
		t.Errorf("更新结果不对: %+v", updated)
	}

	if _, err := s.Update(ctx, src.ID, "", "http://new.example/rss"); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("空名称应被拒绝: %v", err)
	}
	if _, err := s.Update(ctx, "missing", "X", "https://x.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("不存在的 ID: %v", err)
	}

	if err := s.Remove(ctx, src.ID); err != nil {
		t.Fatalf("Remove 失败: %v", err)
	}
	if err := s.Remove(ctx, src.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("重复删除: %v", err)
	}
	if _, err := s.Get(ctx, src.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("删除后 Get: %v", err)
	}
}

func TestSourceTarget(t *testing.T) {
	src := Source{Name: "BBC", URL: "https://feeds.bbci.co.uk/news/rss.xml"}
	tgt := src.Target()
	if tgt.Name != src.Name || tgt.URL != src.URL {
		t.Errorf("Target 不匹配: %+v", tgt)
	}
}

func TestCategories(t *testing.T) {
	cats := Categories()
	if len(cats) != 4 || cats[0] != CategoryWorld {
		t.Fatalf("分类不对: %v", cats)
	}
	cats[0] = "mutated"
	if Categories()[0] != CategoryWorld {
		t.Fatal("Categories 应返回副本")
	}
	if !IsCategory(CategoryTech) || IsCategory("gossip") {
		t.Error("IsCategory 不对")
	}
}
