// Package sources 保存用户按分类配置的订阅源列表。
package sources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/iabetor/pinews/internal/database"
	"github.com/iabetor/pinews/internal/logger"
	"github.com/iabetor/pinews/internal/rss"
)

var (
	// ErrInvalidSource 名称为空或地址不是 http/https 绝对地址。
	ErrInvalidSource = errors.New("invalid source")
	// ErrNotFound 订阅源或分类不存在。
	ErrNotFound = errors.New("source not found")
)

const (
	sourcesTable    = "feed_sources"
	categoriesTable = "feed_categories"
)

var sourceColumns = []string{"id", "category", "name", "url", "position", "created_at"}

// Source 是一个订阅源。
type Source struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Target 转换为抓取目标。
func (s Source) Target() rss.Target {
	return rss.Target{URL: s.URL, Name: s.Name}
}

// Store 订阅源存储（SQLite）。
type Store struct {
	db *database.DB
}

// NewStore 创建订阅源存储。db 需已完成迁移。
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// List 返回分类下的订阅源，按添加顺序排列。
// 分类第一次被读取时写入默认订阅源。
func (s *Store) List(ctx context.Context, category string) ([]Source, error) {
	if err := s.ensureSeeded(ctx, category); err != nil {
		return nil, err
	}

	query, args, err := sq.Select(sourceColumns...).
		From(sourcesTable).
		Where(sq.Eq{"category": category}).
		OrderBy("position", "created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询订阅源失败: %w", err)
	}
	defer rows.Close()

	var list []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, src)
	}
	return list, rows.Err()
}

// Get 根据 ID 获取订阅源。
func (s *Store) Get(ctx context.Context, id string) (Source, error) {
	query, args, err := sq.Select(sourceColumns...).
		From(sourcesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return Source{}, err
	}

	src, err := scanSource(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return src, err
}

// Add 在分类末尾添加订阅源。
func (s *Store) Add(ctx context.Context, category, name, rawURL string) (Source, error) {
	name, rawURL, err := validate(name, rawURL)
	if err != nil {
		return Source{}, err
	}
	// 先写入默认源，否则之后读取时会把默认源追加在用户添加的源后面
	if err := s.ensureSeeded(ctx, category); err != nil {
		return Source{}, err
	}

	posQuery, posArgs, err := sq.Select("COALESCE(MAX(position), -1) + 1").
		From(sourcesTable).
		Where(sq.Eq{"category": category}).
		ToSql()
	if err != nil {
		return Source{}, err
	}
	var position int
	if err := s.db.QueryRowContext(ctx, posQuery, posArgs...).Scan(&position); err != nil {
		return Source{}, fmt.Errorf("查询订阅源位置失败: %w", err)
	}

	src := Source{
		ID:        uuid.NewString(),
		Category:  category,
		Name:      name,
		URL:       rawURL,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}
	if err := insertSource(ctx, s.db, src); err != nil {
		return Source{}, err
	}
	logger.Infof("[sources] 已添加订阅源: %s (%s)", src.Name, category)
	return src, nil
}

// Update 修改订阅源的名称和地址。
func (s *Store) Update(ctx context.Context, id, name, rawURL string) (Source, error) {
	name, rawURL, err := validate(name, rawURL)
	if err != nil {
		return Source{}, err
	}

	query, args, err := sq.Update(sourcesTable).
		Set("name", name).
		Set("url", rawURL).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return Source{}, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Source{}, fmt.Errorf("更新订阅源失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Source{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Get(ctx, id)
}

// Remove 删除订阅源。
func (s *Store) Remove(ctx context.Context, id string) error {
	query, args, err := sq.Delete(sourcesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("删除订阅源失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	logger.Infof("[sources] 已删除订阅源: %s", id)
	return nil
}

// ensureSeeded 分类首次使用时写入默认订阅源，之后不再写入。
func (s *Store) ensureSeeded(ctx context.Context, category string) error {
	seeds, ok := defaults[category]
	if !ok {
		return fmt.Errorf("%w: 未知分类 %q", ErrNotFound, category)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Select("COUNT(*)").
		From(categoriesTable).
		Where(sq.Eq{"name": category}).
		ToSql()
	if err != nil {
		return err
	}
	var n int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return fmt.Errorf("查询分类失败: %w", err)
	}
	if n > 0 {
		return nil
	}

	query, args, err = sq.Insert(categoriesTable).
		Columns("name", "seeded_at").
		Values(category, time.Now().UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("写入分类失败: %w", err)
	}

	now := time.Now().UTC()
	for i, d := range seeds {
		src := Source{
			ID:        uuid.NewString(),
			Category:  category,
			Name:      d.Name,
			URL:       d.URL,
			Position:  i,
			CreatedAt: now,
		}
		if err := insertSource(ctx, tx, src); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	logger.Infof("[sources] 已写入 %s 分类的默认订阅源 (%d 个)", category, len(seeds))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertSource(ctx context.Context, db execer, src Source) error {
	query, args, err := sq.Insert(sourcesTable).
		Columns(sourceColumns...).
		Values(src.ID, src.Category, src.Name, src.URL, src.Position, src.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("写入订阅源失败: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row scanner) (Source, error) {
	var src Source
	var createdAt sql.NullTime
	if err := row.Scan(&src.ID, &src.Category, &src.Name, &src.URL, &src.Position, &createdAt); err != nil {
		return Source{}, err
	}
	if createdAt.Valid {
		src.CreatedAt = createdAt.Time
	}
	return src, nil
}

// validate 检查名称和地址，返回去除空白后的值。
func validate(name, rawURL string) (string, string, error) {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	if name == "" {
		return "", "", fmt.Errorf("%w: 名称不能为空", ErrInvalidSource)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q 不是 http/https 地址", ErrInvalidSource, rawURL)
	}
	return name, rawURL, nil
}
