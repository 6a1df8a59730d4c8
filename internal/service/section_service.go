package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitrine/internal/db"
	"gorm.io/gorm"
)

// SectionService 维护资料页上的动态区块、教育与工作经历。
type SectionService struct {
	db *gorm.DB
}

// NewSectionService 构造 SectionService
func NewSectionService(gdb *gorm.DB) *SectionService {
	return &SectionService{db: gdb}
}

// SectionInput 描述新建区块时可设置的字段
// IsActive 为 nil 时默认展示
type SectionInput struct {
	Type     db.SectionType
	Title    string
	IsActive *bool
	Order    int
}

// SectionItemInput 描述区块条目字段
type SectionItemInput struct {
	IconURL  string
	Title    string
	Subtitle string
	Date     string
	URL      string
	Details  string
	Order    int
}

// ListSections 返回资料的区块及其条目，按顺序值升序
func (s *SectionService) ListSections(ctx context.Context, profileID uint, activeOnly bool) ([]db.Section, error) {
	query := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("display_order ASC, id ASC")
		})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var sections []db.Section
	if err := query.Order("display_order ASC, id ASC").Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// CreateSection 为资料新建区块
func (s *SectionService) CreateSection(ctx context.Context, profileID uint, input SectionInput) (*db.Section, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || !input.Type.Valid() {
		return nil, ErrSectionInvalidInput
	}
	if err := s.ensureProfile(ctx, profileID); err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	section := db.Section{
		ProfileID: profileID,
		Type:      input.Type,
		Title:     title,
		IsActive:  active,
		Order:     input.Order,
	}
	if err := s.db.WithContext(ctx).Create(&section).Error; err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	return &section, nil
}

// DeleteSection 删除区块及其全部条目
func (s *SectionService) DeleteSection(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("section_id = ?", id).Delete(&db.SectionItem{}).Error; err != nil {
			return fmt.Errorf("delete section items: %w", err)
		}
		result := tx.Unscoped().Delete(&db.Section{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete section: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrSectionNotFound
		}
		return nil
	})
}

// AddItem 向区块追加条目
func (s *SectionService) AddItem(ctx context.Context, sectionID uint, input SectionItemInput) (*db.SectionItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrSectionInvalidInput
	}

	var section db.Section
	if err := s.db.WithContext(ctx).First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("find section: %w", err)
	}

	item := db.SectionItem{
		SectionID: section.ID,
		IconURL:   strings.TrimSpace(input.IconURL),
		Title:     title,
		Subtitle:  strings.TrimSpace(input.Subtitle),
		Date:      strings.TrimSpace(input.Date),
		URL:       strings.TrimSpace(input.URL),
		Details:   input.Details,
		Order:     input.Order,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create section item: %w", err)
	}
	return &item, nil
}

// ListEducations 返回资料的教育经历
func (s *SectionService) ListEducations(ctx context.Context, profileID uint) ([]db.Education, error) {
	var items []db.Education
	if err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).
		Order("display_order ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list educations: %w", err)
	}
	return items, nil
}

// ListExperiences 返回资料的工作经历
func (s *SectionService) ListExperiences(ctx context.Context, profileID uint) ([]db.Experience, error) {
	var items []db.Experience
	if err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).
		Order("display_order ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	return items, nil
}

// AddEducation 为资料新增教育经历
func (s *SectionService) AddEducation(ctx context.Context, profileID uint, item db.Education) (*db.Education, error) {
	if strings.TrimSpace(item.Title) == "" {
		return nil, ErrSectionInvalidInput
	}
	if err := s.ensureProfile(ctx, profileID); err != nil {
		return nil, err
	}
	item.ID = 0
	item.ProfileID = profileID
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create education: %w", err)
	}
	return &item, nil
}

// AddExperience 为资料新增工作经历
func (s *SectionService) AddExperience(ctx context.Context, profileID uint, item db.Experience) (*db.Experience, error) {
	if strings.TrimSpace(item.Title) == "" {
		return nil, ErrSectionInvalidInput
	}
	if err := s.ensureProfile(ctx, profileID); err != nil {
		return nil, err
	}
	item.ID = 0
	item.ProfileID = profileID
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create experience: %w", err)
	}
	return &item, nil
}

func (s *SectionService) ensureProfile(ctx context.Context, profileID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.SiteProfile{}).Where("id = ?", profileID).Count(&count).Error; err != nil {
		return fmt.Errorf("find profile: %w", err)
	}
	if count == 0 {
		return ErrProfileNotFound
	}
	return nil
}
