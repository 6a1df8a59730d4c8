package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/mailer"
	"github.com/vitrine/internal/service"
	"github.com/vitrine/internal/storage"
	"github.com/vitrine/internal/view"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	profiles *service.ProfileService
	content  *service.ContentService
	sections *service.SectionService
	pages    *service.PageService
	contact  *service.ContactService
	store    storage.Store
	logger   *slog.Logger
}

// Options 汇总构造 API 所需的外部依赖
type Options struct {
	DB        *gorm.DB
	Transport mailer.Transport
	Store     storage.Store
	Logger    *slog.Logger
	// Contact 是联系表单的站点级邮件设置
	Contact service.ContactSettings
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	content := service.NewContentService(opts.DB)
	sections := service.NewSectionService(opts.DB)

	return &API{
		db:       opts.DB,
		profiles: service.NewProfileService(opts.DB, logger),
		content:  content,
		sections: sections,
		pages:    service.NewPageService(content, sections),
		contact:  service.NewContactService(opts.Transport, opts.Contact, logger),
		store:    opts.Store,
		logger:   logger,
	}
}

// TemplateFuncs 返回页面模板使用的函数
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"richText": view.MustRichText,
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
	}
}

// siteView 汇总布局模板需要的站点品牌信息。profile 为 nil 时使用通用占位。
func siteView(profile *db.SiteProfile) gin.H {
	site := gin.H{
		"title":       "Portfolio",
		"name":        "Portfolio",
		"initials":    "U",
		"favicon":     "",
		"avatar":      "",
		"avatarShape": db.AvatarCircle,
		"homeURL":     "/",
		"social":      []view.SocialLink(nil),
	}
	if profile == nil {
		return site
	}

	name := profile.FullName()
	if name != "" {
		site["name"] = name
	}
	title := strings.TrimSpace(profile.SiteTitle)
	if title == "" {
		title = site["name"].(string)
	}
	site["title"] = title
	site["initials"] = profile.Initials()
	site["favicon"] = profile.FaviconURL
	site["avatar"] = profile.NavbarAvatarURL
	if profile.NavbarAvatarShape != "" {
		site["avatarShape"] = profile.NavbarAvatarShape
	}
	site["homeURL"] = service.ProfilePath(profile)
	site["social"] = view.SocialLinks(profile)
	return site
}

func (a *API) renderHTML(c *gin.Context, status int, name string, profile *db.SiteProfile, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = siteView(profile)
	}
	if _, exists := payload["navigation"]; !exists {
		payload["navigation"] = service.Navigation(profile)
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}

	c.HTML(status, name, payload)
}

// Health 返回存活状态；数据库不可达时返回 503。
func (a *API) Health(c *gin.Context) {
	status := gin.H{"status": "ok", "database": "ok"}
	if a.db == nil {
		status["database"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		status["status"] = "degraded"
		status["database"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}
