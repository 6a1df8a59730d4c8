package service

import (
	"context"

	"github.com/vitrine/internal/db"
)

// Mode 表示内容选择的使用场景。
type Mode int

const (
	// ModeHome 用于首页区块，条数受限。
	ModeHome Mode = iota
	// ModeList 用于分页列表页，先全部选出再分页。
	ModeList
)

// HomeLimit is the number of items shown per category on a home page.
const HomeLimit = 3

// Select 按 featured → published → 全局已发布 的顺序为资料挑选内容。
// 前两步按内容池加入顺序返回，最后一步按发布时间倒序。limit <= 0 时
// 首页模式使用 HomeLimit，列表模式不限条数。
func (s *ContentStore[T]) Select(ctx context.Context, profile *db.SiteProfile, mode Mode, limit int) ([]T, error) {
	if limit <= 0 && mode == ModeHome {
		limit = HomeLimit
	}

	if profile != nil && profile.ID != 0 {
		for _, kind := range []db.PoolKind{db.PoolKindFeatured, db.PoolKindPublished} {
			items, err := s.Pool(ctx, profile.ID, kind, limit)
			if err != nil {
				return nil, err
			}
			if len(items) > 0 {
				return items, nil
			}
		}
	}

	return s.ListPublished(ctx, limit)
}
