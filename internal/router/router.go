package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/handler"
	"github.com/vitrine/internal/metrics"
	"github.com/vitrine/internal/middleware"
	"github.com/vitrine/web"
)

const sessionName = "vitrine_session"

// Options 汇总路由需要的依赖与配置
type Options struct {
	API           *handler.API
	Logger        *slog.Logger
	SessionSecret string
	// MediaDir 非空时以 MediaURLPath 提供本地上传文件
	MediaDir     string
	MediaURLPath string
	SecureCookie bool
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) (*gin.Engine, error) {
	if opts.API == nil {
		return nil, errors.New("router: api is required")
	}
	if opts.SessionSecret == "" {
		return nil, errors.New("router: session secret is required")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.CorrelationID(), middleware.SlogLogger(opts.Logger), metrics.GinMiddleware())

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 加载嵌入的模板
	templates, err := web.Templates(handler.TemplateFuncs())
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(templates)

	r.StaticFS("/static", http.FS(web.Static()))
	if opts.MediaDir != "" {
		mediaPath := opts.MediaURLPath
		if mediaPath == "" {
			mediaPath = "/media"
		}
		r.Static(mediaPath, opts.MediaDir)
	}

	api := opts.API
	r.GET("/healthz", api.Health)
	r.GET("/metrics", metrics.Handler())

	registerPublicRoutes(r, api)
	registerAdminRoutes(r, api)

	r.NoRoute(api.NotFound)
	return r, nil
}

func registerPublicRoutes(r *gin.Engine, api *handler.API) {
	r.GET("/", api.ShowHome)
	r.GET("/contact/", api.ShowContact)
	r.POST("/contact/", api.SubmitContact)
	r.GET("/blogue/", api.RedirectLegacyBlog)
	r.GET("/blogue/:slug/", api.RedirectLegacyBlog)

	profile := r.Group("/profil/:selector")
	profile.GET("/", api.ShowProfileHome)
	profile.GET("/contact/", api.ShowProfileContact)

	for _, category := range db.ContentCategories {
		segment := "/" + category.PathSegment()
		r.GET(segment+"/", api.ShowList(category))
		r.GET(segment+"/:slug/", api.ShowDetail(category))
		profile.GET(segment+"/", api.ShowProfileList(category))
		profile.GET(segment+"/:slug/", api.ShowProfileDetail(category))
	}
}

func registerAdminRoutes(r *gin.Engine, api *handler.API) {
	admin := r.Group("/admin")
	admin.GET("/login", api.ShowLoginPage)
	admin.POST("/login", api.Login)
	admin.GET("/logout", api.Logout)

	// 需要认证的后台路由
	auth := admin.Group("")
	auth.Use(handler.AuthRequired())
	auth.GET("/dashboard", api.ShowDashboard)

	v := auth.Group("/api")
	v.GET("/profiles", api.ListProfiles)
	v.POST("/profiles", api.CreateProfile)
	v.GET("/profiles/:id", api.GetProfile)
	v.PUT("/profiles/:id", api.UpdateProfile)
	v.DELETE("/profiles/:id", api.DeleteProfile)
	v.PUT("/profiles/:id/pools/:category/:kind", api.UpdateProfilePool)
	v.GET("/profiles/:id/sections", api.ListProfileSections)
	v.POST("/profiles/:id/sections", api.CreateSection)
	v.POST("/profiles/:id/educations", api.AddEducation)
	v.POST("/profiles/:id/experiences", api.AddExperience)
	v.DELETE("/sections/:id", api.DeleteSection)
	v.POST("/sections/:id/items", api.AddSectionItem)

	v.GET("/content/:category", api.ListContent)
	v.POST("/content/:category", api.CreateContent)
	v.GET("/fields/:category", api.ContentFields)
	v.GET("/content/:category/:id", api.GetContent)
	v.PUT("/content/:category/:id", api.UpdateContent)
	v.DELETE("/content/:category/:id", api.DeleteContent)

	v.POST("/uploads", api.UploadImage)
	v.DELETE("/uploads/*name", api.DeleteUpload)
}
