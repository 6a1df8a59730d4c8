package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Category 标识三类可发布内容，每类拥有独立的表与 slug 命名空间。
type Category string

const (
	CategoryProjects Category = "projects"
	CategoryBlog     Category = "blog"
	CategoryServices Category = "services"
	// CategoryContact 只用于导航与文案配置，没有对应的内容表。
	CategoryContact Category = "contact"
)

// ContentCategories lists the categories backed by a content table.
var ContentCategories = []Category{CategoryProjects, CategoryBlog, CategoryServices}

// ParseCategory maps a raw value (including the French URL segments) to a content category.
func ParseCategory(raw string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "projects", "project", "projets", "projet":
		return CategoryProjects, true
	case "blog", "blogue", "articles", "article":
		return CategoryBlog, true
	case "services", "service":
		return CategoryServices, true
	}
	return "", false
}

// Table returns the table holding the category's rows.
func (c Category) Table() string {
	switch c {
	case CategoryProjects:
		return "projects"
	case CategoryBlog:
		return "blog_posts"
	case CategoryServices:
		return "services"
	}
	return ""
}

// PathSegment is the public URL segment used for the category.
func (c Category) PathSegment() string {
	switch c {
	case CategoryProjects:
		return "projets"
	case CategoryBlog:
		return "blog"
	case CategoryServices:
		return "services"
	case CategoryContact:
		return "contact"
	}
	return ""
}

// SlugFallback 在标题无法生成 slug 时使用的单数名词。
func (c Category) SlugFallback() string {
	switch c {
	case CategoryProjects:
		return "projet"
	case CategoryBlog:
		return "article"
	case CategoryServices:
		return "service"
	}
	return "contenu"
}

const (
	DefaultAuthorName       = "Youssoupha Marega"
	DefaultAuthorEmail      = "contact@youssouphamarega.com"
	DefaultAuthorProfession = "Data Scientist"
	DefaultReadTime         = 5
)

// Publishable holds the columns shared by every content type.
// PublishedAt is write-once: updates never touch the column.
type Publishable struct {
	Title            string `gorm:"size:200;not null"`
	Slug             string `gorm:"size:200;uniqueIndex;not null"`
	Summary          string `gorm:"type:text"`
	Body             string `gorm:"type:text"`
	MainImage        string `gorm:"size:500"`
	IsPublished      bool   `gorm:"index"`
	Featured         bool
	AuthorName       string    `gorm:"size:100"`
	AuthorEmail      string    `gorm:"size:254"`
	AuthorProfession string    `gorm:"size:100"`
	PublishedAt      time.Time `gorm:"<-:create;index"`
}

// ApplyAuthorDefaults fills blank author metadata.
func (p *Publishable) ApplyAuthorDefaults() {
	if strings.TrimSpace(p.AuthorName) == "" {
		p.AuthorName = DefaultAuthorName
	}
	if strings.TrimSpace(p.AuthorEmail) == "" {
		p.AuthorEmail = DefaultAuthorEmail
	}
	if strings.TrimSpace(p.AuthorProfession) == "" {
		p.AuthorProfession = DefaultAuthorProfession
	}
}

func stampPublishedAt(p *Publishable) {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
}

// Project 定义作品集项目
type Project struct {
	gorm.Model
	Publishable
	RepositoryURL string `gorm:"size:500"`
	DemoURL       string `gorm:"size:500"`
}

// BeforeCreate sets the publication timestamp once.
func (p *Project) BeforeCreate(*gorm.DB) error {
	stampPublishedAt(&p.Publishable)
	return nil
}

// BlogPost 定义博客文章
type BlogPost struct {
	gorm.Model
	Publishable
	Tags     string `gorm:"size:200"`
	ReadTime int
}

// BeforeCreate sets the publication timestamp once.
func (p *BlogPost) BeforeCreate(*gorm.DB) error {
	stampPublishedAt(&p.Publishable)
	return nil
}

// TagList splits the comma separated tags.
func (p BlogPost) TagList() []string {
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// Service 定义对外提供的服务
type Service struct {
	gorm.Model
	Publishable
	Price         *float64
	Duration      string `gorm:"size:100"`
	SchedulingURL string `gorm:"size:500"`
}

// BeforeCreate sets the publication timestamp once.
func (s *Service) BeforeCreate(*gorm.DB) error {
	stampPublishedAt(&s.Publishable)
	return nil
}

// Entity 约束三类内容类型，供泛型查询使用。
type Entity interface {
	Project | BlogPost | Service
}

// CategoryOf reports the category of a content type.
func CategoryOf[T Entity]() Category {
	var zero T
	switch any(zero).(type) {
	case Project:
		return CategoryProjects
	case BlogPost:
		return CategoryBlog
	default:
		return CategoryServices
	}
}

// Meta returns the shared columns of a content row.
func Meta[T Entity](item *T) *Publishable {
	switch v := any(item).(type) {
	case *Project:
		return &v.Publishable
	case *BlogPost:
		return &v.Publishable
	case *Service:
		return &v.Publishable
	}
	return nil
}

// ModelOf returns the gorm.Model of a content row.
func ModelOf[T Entity](item *T) *gorm.Model {
	switch v := any(item).(type) {
	case *Project:
		return &v.Model
	case *BlogPost:
		return &v.Model
	case *Service:
		return &v.Model
	}
	return nil
}
