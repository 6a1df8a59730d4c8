package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/slug"
	"gorm.io/gorm"
)

// ContentStore 提供某一类内容的增删改查与公开查询。
type ContentStore[T db.Entity] struct {
	db       *gorm.DB
	category db.Category
}

// NewContentStore 构造 ContentStore
func NewContentStore[T db.Entity](gdb *gorm.DB) *ContentStore[T] {
	return &ContentStore[T]{db: gdb, category: db.CategoryOf[T]()}
}

// Category reports the category served by the store.
func (s *ContentStore[T]) Category() db.Category {
	return s.category
}

// ContentService groups the three content stores.
type ContentService struct {
	Projects *ContentStore[db.Project]
	Blog     *ContentStore[db.BlogPost]
	Services *ContentStore[db.Service]
}

// NewContentService 构造 ContentService
func NewContentService(gdb *gorm.DB) *ContentService {
	return &ContentService{
		Projects: NewContentStore[db.Project](gdb),
		Blog:     NewContentStore[db.BlogPost](gdb),
		Services: NewContentStore[db.Service](gdb),
	}
}

// Create 新建内容。slug 只在此时由标题（或显式给出的 slug）生成，此后不再变化。
func (s *ContentStore[T]) Create(ctx context.Context, item *T) error {
	meta := db.Meta(item)
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Title == "" {
		return fmt.Errorf("%w: title is required", ErrContentInvalidInput)
	}
	normalizeContent(item)

	base := slug.Make(meta.Slug)
	if base == "" {
		base = slug.Make(meta.Title)
	}
	if base == "" {
		base = s.category.SlugFallback()
	}

	var err error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		meta.Slug, err = slug.Unique(base, s.slugTaken(ctx))
		if err != nil {
			return fmt.Errorf("generate %s slug: %w", s.category, err)
		}
		err = s.db.WithContext(ctx).Create(item).Error
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", s.category, err)
	}
	return nil
}

// Update 保存编辑后的字段，slug 与发布时间保持不变。
func (s *ContentStore[T]) Update(ctx context.Context, id uint, changes *T) (*T, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := db.Meta(changes)
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrContentInvalidInput)
	}

	current := db.Meta(existing)
	meta.Slug = current.Slug
	meta.PublishedAt = current.PublishedAt
	*db.ModelOf(changes) = *db.ModelOf(existing)
	normalizeContent(changes)

	if err := s.db.WithContext(ctx).Save(changes).Error; err != nil {
		return nil, fmt.Errorf("update %s: %w", s.category, err)
	}
	return changes, nil
}

// Delete 删除内容并解除其在所有资料内容池中的关联。
func (s *ContentStore[T]) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(new(T), id)
		if result.Error != nil {
			return fmt.Errorf("delete %s: %w", s.category, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrContentNotFound
		}
		if err := tx.Where("category = ? AND content_id = ?", s.category, id).
			Delete(&db.PoolEntry{}).Error; err != nil {
			return fmt.Errorf("unlink %s from pools: %w", s.category, err)
		}
		return nil
	})
}

// Get 根据主键获取内容（不论是否发布）
func (s *ContentStore[T]) Get(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	if err := s.db.WithContext(ctx).First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("get %s: %w", s.category, err)
	}
	return item, nil
}

// List returns every row, newest first, for the admin.
func (s *ContentStore[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.category, err)
	}
	return items, nil
}

// GetPublishedBySlug 在该类别的 slug 命名空间内查找已发布内容。
func (s *ContentStore[T]) GetPublishedBySlug(ctx context.Context, value string) (*T, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrContentNotFound
	}
	item := new(T)
	err := s.db.WithContext(ctx).
		Where("slug = ? AND is_published = ?", value, true).
		First(item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("get %s by slug: %w", s.category, err)
	}
	return item, nil
}

// ListPublished 返回全部已发布内容，按发布时间倒序；limit <= 0 表示不限。
func (s *ContentStore[T]) ListPublished(ctx context.Context, limit int) ([]T, error) {
	query := s.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("published_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var items []T
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list published %s: %w", s.category, err)
	}
	return items, nil
}

// Pool 按加入顺序返回资料内容池中已发布的条目。
func (s *ContentStore[T]) Pool(ctx context.Context, profileID uint, kind db.PoolKind, limit int) ([]T, error) {
	table := s.category.Table()
	query := s.db.WithContext(ctx).
		Model(new(T)).
		Select(table+".*").
		Joins("JOIN pool_entries ON pool_entries.content_id = "+table+".id").
		Where("pool_entries.profile_id = ? AND pool_entries.category = ? AND pool_entries.kind = ?", profileID, s.category, kind).
		Where(table+".is_published = ?", true).
		Order("pool_entries.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var items []T
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load %s %s pool: %w", s.category, kind, err)
	}
	return items, nil
}

// slugTaken 包含软删除的行，避免恢复时冲突。
func (s *ContentStore[T]) slugTaken(ctx context.Context) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		var count int64
		err := s.db.WithContext(ctx).Unscoped().Model(new(T)).
			Where("slug = ?", candidate).
			Count(&count).Error
		return count > 0, err
	}
}

func normalizeContent[T db.Entity](item *T) {
	meta := db.Meta(item)
	meta.ApplyAuthorDefaults()
	meta.Slug = strings.TrimSpace(meta.Slug)
	meta.Summary = strings.TrimSpace(meta.Summary)
	meta.MainImage = strings.TrimSpace(meta.MainImage)

	switch v := any(item).(type) {
	case *db.BlogPost:
		if v.ReadTime <= 0 {
			v.ReadTime = db.DefaultReadTime
		}
		v.Tags = strings.Join(v.TagList(), ", ")
	case *db.Project:
		v.RepositoryURL = strings.TrimSpace(v.RepositoryURL)
		v.DemoURL = strings.TrimSpace(v.DemoURL)
	case *db.Service:
		v.Duration = strings.TrimSpace(v.Duration)
		v.SchedulingURL = strings.TrimSpace(v.SchedulingURL)
	}
}
