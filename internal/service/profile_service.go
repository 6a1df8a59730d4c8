package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/slug"
	"gorm.io/gorm"
)

// ProfileService 负责资料的保存、删除、内容池维护与 URL 解析。
type ProfileService struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{db: gdb, logger: logger}
}

// PoolSize 描述某个内容池的条目数。
type PoolSize struct {
	Category db.Category
	Kind     db.PoolKind
	Count    int64
}

// List 返回全部资料，按主键升序
func (s *ProfileService) List(ctx context.Context) ([]db.SiteProfile, error) {
	var profiles []db.SiteProfile
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Get 根据主键获取资料
func (s *ProfileService) Get(ctx context.Context, id uint) (*db.SiteProfile, error) {
	var profile db.SiteProfile
	if err := s.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// GetBySlug 查找任意状态的资料
func (s *ProfileService) GetBySlug(ctx context.Context, value string) (*db.SiteProfile, error) {
	var profile db.SiteProfile
	if err := s.db.WithContext(ctx).Where("slug = ?", strings.TrimSpace(value)).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile by slug: %w", err)
	}
	return &profile, nil
}

// Create 新建资料
func (s *ProfileService) Create(ctx context.Context, profile *db.SiteProfile) error {
	profile.ID = 0
	return s.Save(ctx, profile)
}

// Update 以 changes 覆盖资料的可编辑字段。changes.MailCredential 为空时保留原凭据。
func (s *ProfileService) Update(ctx context.Context, id uint, changes db.SiteProfile) (*db.SiteProfile, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes.Model = existing.Model
	if strings.TrimSpace(changes.MailCredential) == "" {
		changes.MailCredential = existing.MailCredential
	}
	if err := s.Save(ctx, &changes); err != nil {
		return nil, err
	}
	return &changes, nil
}

// Save 在同一事务内重新生成 slug（排除自身），
// 若资料被设为默认则先取消其他资料的默认标记，再写入当前资料。
func (s *ProfileService) Save(ctx context.Context, profile *db.SiteProfile) error {
	if err := normalizeProfile(profile); err != nil {
		return err
	}
	base := ProfileSlugBase(profile)

	var err error
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			value, err := slug.Unique(base, func(candidate string) (bool, error) {
				var count int64
				err := tx.Unscoped().Model(&db.SiteProfile{}).
					Where("slug = ? AND id <> ?", candidate, profile.ID).
					Count(&count).Error
				return count > 0, err
			})
			if err != nil {
				return fmt.Errorf("generate profile slug: %w", err)
			}
			profile.Slug = value

			if profile.IsDefault {
				if err := tx.Model(&db.SiteProfile{}).
					Where("is_default = ? AND id <> ?", true, profile.ID).
					Update("is_default", false).Error; err != nil {
					return fmt.Errorf("clear default profile: %w", err)
				}
			}
			return tx.Save(profile).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Delete 删除资料及其独占的区块、条目、教育与工作经历，并清空内容池关联。
// 内容本身不受影响。
func (s *ProfileService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile db.SiteProfile
		if err := tx.First(&profile, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("find profile: %w", err)
		}

		sectionIDs := tx.Unscoped().Model(&db.Section{}).Select("id").Where("profile_id = ?", id)
		steps := []struct {
			name  string
			query *gorm.DB
			model any
		}{
			{"section items", tx.Unscoped().Where("section_id IN (?)", sectionIDs), &db.SectionItem{}},
			{"sections", tx.Unscoped().Where("profile_id = ?", id), &db.Section{}},
			{"educations", tx.Unscoped().Where("profile_id = ?", id), &db.Education{}},
			{"experiences", tx.Unscoped().Where("profile_id = ?", id), &db.Experience{}},
			{"pool entries", tx.Where("profile_id = ?", id), &db.PoolEntry{}},
		}
		for _, step := range steps {
			if err := step.query.Delete(step.model).Error; err != nil {
				return fmt.Errorf("delete profile %s: %w", step.name, err)
			}
		}

		if err := tx.Unscoped().Delete(&profile).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nil
	})
}

// SetPool 用 contentIDs 的顺序替换资料的某个内容池，重复的 ID 只保留第一次出现。
func (s *ProfileService) SetPool(ctx context.Context, profileID uint, category db.Category, kind db.PoolKind, contentIDs []uint) error {
	if category.Table() == "" {
		return ErrInvalidCategory
	}
	if _, ok := db.ParsePoolKind(string(kind)); !ok {
		return fmt.Errorf("%w: unknown pool kind %q", ErrProfileInvalidInput, kind)
	}

	ids := make([]uint, 0, len(contentIDs))
	seen := make(map[uint]struct{}, len(contentIDs))
	for _, id := range contentIDs {
		if _, dup := seen[id]; dup || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profileCount int64
		if err := tx.Model(&db.SiteProfile{}).Where("id = ?", profileID).Count(&profileCount).Error; err != nil {
			return fmt.Errorf("find profile: %w", err)
		}
		if profileCount == 0 {
			return ErrProfileNotFound
		}

		if len(ids) > 0 {
			var found int64
			if err := tx.Table(category.Table()).
				Where("id IN ? AND deleted_at IS NULL", ids).
				Count(&found).Error; err != nil {
				return fmt.Errorf("check pool content: %w", err)
			}
			if found != int64(len(ids)) {
				return ErrContentNotFound
			}
		}

		if err := tx.Where("profile_id = ? AND category = ? AND kind = ?", profileID, category, kind).
			Delete(&db.PoolEntry{}).Error; err != nil {
			return fmt.Errorf("clear pool: %w", err)
		}
		for _, id := range ids {
			entry := db.PoolEntry{ProfileID: profileID, Category: category, Kind: kind, ContentID: id}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("add pool entry: %w", err)
			}
		}
		return nil
	})
}

// PoolIDs 返回内容池中的内容 ID，按加入顺序
func (s *ProfileService) PoolIDs(ctx context.Context, profileID uint, category db.Category, kind db.PoolKind) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&db.PoolEntry{}).
		Where("profile_id = ? AND category = ? AND kind = ?", profileID, category, kind).
		Order("id ASC").
		Pluck("content_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load pool ids: %w", err)
	}
	return ids, nil
}

// PoolSizes 统计资料每个内容池的条目数，顺序固定为类别 × (published, featured)。
func (s *ProfileService) PoolSizes(ctx context.Context, profileID uint) ([]PoolSize, error) {
	type row struct {
		Category db.Category
		Kind     db.PoolKind
		Count    int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&db.PoolEntry{}).
		Select("category, kind, COUNT(*) AS count").
		Where("profile_id = ?", profileID).
		Group("category, kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count pool entries: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[string(r.Category)+"/"+string(r.Kind)] = r.Count
	}

	sizes := make([]PoolSize, 0, len(db.ContentCategories)*2)
	for _, category := range db.ContentCategories {
		for _, kind := range []db.PoolKind{db.PoolKindPublished, db.PoolKindFeatured} {
			sizes = append(sizes, PoolSize{
				Category: category,
				Kind:     kind,
				Count:    counts[string(category)+"/"+string(kind)],
			})
		}
	}
	return sizes, nil
}

func normalizeProfile(profile *db.SiteProfile) error {
	profile.FirstName = strings.TrimSpace(profile.FirstName)
	profile.LastName = strings.TrimSpace(profile.LastName)
	profile.Profession = strings.TrimSpace(profile.Profession)
	profile.Email = strings.TrimSpace(profile.Email)

	switch profile.NavbarAvatarShape {
	case "":
		profile.NavbarAvatarShape = db.AvatarCircle
	case db.AvatarCircle, db.AvatarSquare, db.AvatarNone:
	default:
		return fmt.Errorf("%w: navbar avatar shape %q", ErrProfileInvalidInput, profile.NavbarAvatarShape)
	}

	switch profile.BioPosition {
	case "":
		profile.BioPosition = "right"
	case "left", "right":
	default:
		return fmt.Errorf("%w: bio position %q", ErrProfileInvalidInput, profile.BioPosition)
	}

	if profile.Email != "" && !strings.Contains(profile.Email, "@") {
		return fmt.Errorf("%w: email %q", ErrProfileInvalidInput, profile.Email)
	}
	return nil
}
