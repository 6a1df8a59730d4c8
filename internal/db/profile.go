package db

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm"
)

// Navbar avatar shapes.
const (
	AvatarCircle = "circle"
	AvatarSquare = "square"
	AvatarNone   = "none"
)

// CategoryCopy 保存某一类别在导航、首页与列表页上的文案。
type CategoryCopy struct {
	NavbarLabel      string `gorm:"size:100"`
	HomeTitle        string `gorm:"size:200"`
	HomeIntro        string `gorm:"type:text"`
	PageTitle        string `gorm:"size:200"`
	PageIntro        string `gorm:"type:text"`
	HeroImage        string `gorm:"size:500"`
	ViewAllText      string `gorm:"size:100"`
	DetailButtonText string `gorm:"size:100"`
	BackButtonText   string `gorm:"size:100"`
	DisplayOrder     int
}

// SiteProfile 描述一个可公开展示的个人站点：身份、品牌、文案与联系设置。
// Slug 在每次保存时由姓名与职业重新生成。
type SiteProfile struct {
	gorm.Model
	Slug        string `gorm:"size:255;uniqueIndex;not null"`
	IsDefault   bool   `gorm:"index"`
	IsPublished bool   `gorm:"index"`

	FirstName          string `gorm:"size:150"`
	LastName           string `gorm:"size:150"`
	Profession         string `gorm:"size:255"`
	Location           string `gorm:"size:255"`
	CurrentEmployer    string `gorm:"size:255"`
	CurrentEmployerURL string `gorm:"size:500"`
	LinkedInURL        string `gorm:"size:500"`
	GitHubURL          string `gorm:"size:500"`
	Email              string `gorm:"size:254"`
	PhotoURL           string `gorm:"size:500"`
	Bio                string `gorm:"type:text"`
	BioTitle           string `gorm:"size:200"`
	BioPosition        string `gorm:"size:10"`
	BioShowTitle       bool

	SiteTitle         string `gorm:"size:200"`
	FaviconURL        string `gorm:"size:500"`
	NavbarAvatarURL   string `gorm:"size:500"`
	NavbarAvatarShape string `gorm:"size:10"`

	Projects CategoryCopy `gorm:"embedded;embeddedPrefix:projects_"`
	Blog     CategoryCopy `gorm:"embedded;embeddedPrefix:blog_"`
	Services CategoryCopy `gorm:"embedded;embeddedPrefix:services_"`
	Contact  CategoryCopy `gorm:"embedded;embeddedPrefix:contact_"`

	// MailCredential 是该资料邮箱的 SMTP 密码或应用令牌，不对外输出。
	MailCredential          string `gorm:"size:255" json:"-"`
	EnableConfirmationEmail bool
}

// TableName 返回自定义表名
func (SiteProfile) TableName() string {
	return "site_profiles"
}

// FullName joins the first and last names.
func (p SiteProfile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Initials 返回姓名首字母，缺省时为 "U"。
func (p SiteProfile) Initials() string {
	var b strings.Builder
	for _, part := range []string{p.FirstName, p.LastName} {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
	}
	if b.Len() == 0 {
		return "U"
	}
	return b.String()
}

// defaultCopy 是资料未填写文案时的展示值。
var defaultCopy = map[Category]CategoryCopy{
	CategoryProjects: {
		NavbarLabel:      "Projets",
		HomeTitle:        "Projets mis en avant",
		PageTitle:        "Mes Projets",
		ViewAllText:      "Voir tous les projets",
		DetailButtonText: "Voir le projet",
		BackButtonText:   "Retour aux projets",
		DisplayOrder:     2,
	},
	CategoryBlog: {
		NavbarLabel:      "Blogue",
		HomeTitle:        "Articles de blog mis en avant",
		PageTitle:        "Articles de blog",
		ViewAllText:      "Voir tous les articles",
		DetailButtonText: "Lire l'article",
		BackButtonText:   "Retour aux articles",
		DisplayOrder:     3,
	},
	CategoryServices: {
		NavbarLabel:      "Services",
		HomeTitle:        "Services",
		PageTitle:        "Services offerts",
		ViewAllText:      "Voir tous les services",
		DetailButtonText: "En savoir plus",
		BackButtonText:   "Retour aux services",
		DisplayOrder:     1,
	},
	CategoryContact: {
		NavbarLabel:      "Contact",
		HomeTitle:        "Contact",
		PageTitle:        "Contactez-moi",
		DetailButtonText: "Envoyer",
		DisplayOrder:     4,
	},
}

// DefaultCopy returns the built-in copy of a category.
func DefaultCopy(c Category) CategoryCopy {
	return defaultCopy[c]
}

// NewSiteProfile 返回带有默认文案与展示顺序的资料。
func NewSiteProfile() SiteProfile {
	return SiteProfile{
		BioPosition:       "right",
		BioShowTitle:      true,
		NavbarAvatarShape: AvatarCircle,
		Projects:          DefaultCopy(CategoryProjects),
		Blog:              DefaultCopy(CategoryBlog),
		Services:          DefaultCopy(CategoryServices),
		Contact:           DefaultCopy(CategoryContact),
	}
}

// CopyFor returns the category copy with blank fields replaced by the built-in defaults.
// A nil profile yields the defaults.
func (p *SiteProfile) CopyFor(c Category) CategoryCopy {
	fallback := DefaultCopy(c)
	if p == nil {
		return fallback
	}

	var stored CategoryCopy
	switch c {
	case CategoryProjects:
		stored = p.Projects
	case CategoryBlog:
		stored = p.Blog
	case CategoryServices:
		stored = p.Services
	case CategoryContact:
		stored = p.Contact
	default:
		return fallback
	}

	merged := stored
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&merged.NavbarLabel, fallback.NavbarLabel)
	fill(&merged.HomeTitle, fallback.HomeTitle)
	fill(&merged.PageTitle, fallback.PageTitle)
	fill(&merged.ViewAllText, fallback.ViewAllText)
	fill(&merged.DetailButtonText, fallback.DetailButtonText)
	fill(&merged.BackButtonText, fallback.BackButtonText)
	return merged
}
