package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/service"
)

const loginErrorMessage = "用户名或密码错误"

type dashboardProfile struct {
	Name        string
	Slug        string
	IsDefault   bool
	IsPublished bool
	URL         string
}

type dashboardCount struct {
	Label string
	Count int
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_login.html", gin.H{
		"title": "Administration",
	})
}

// Login 校验账号密码并写入会话
func (a *API) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	var user db.User
	if err := a.db.WithContext(c.Request.Context()).Where("username = ?", username).First(&user).Error; err != nil || !user.CheckPassword(password) {
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"title": "Administration",
			"error": loginErrorMessage,
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "admin_login.html", gin.H{
			"title": "Administration",
			"error": "会话保存失败",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板：资料列表与各类内容数量
func (a *API) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	session := sessions.Default(c)

	profiles, err := a.profiles.List(ctx)
	if err != nil {
		c.Error(err)
	}
	rows := make([]dashboardProfile, 0, len(profiles))
	for i := range profiles {
		profile := &profiles[i]
		rows = append(rows, dashboardProfile{
			Name:        profile.FullName(),
			Slug:        profile.Slug,
			IsDefault:   profile.IsDefault,
			IsPublished: profile.IsPublished,
			URL:         service.ProfilePath(profile),
		})
	}

	counts := make([]dashboardCount, 0, len(db.ContentCategories))
	for _, category := range db.ContentCategories {
		var total int64
		if err := a.db.WithContext(ctx).Table(category.Table()).Where("deleted_at IS NULL").Count(&total).Error; err != nil {
			c.Error(err)
		}
		counts = append(counts, dashboardCount{Label: db.DefaultCopy(category).NavbarLabel, Count: int(total)})
	}

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"title":    "Tableau de bord",
		"username": session.Get("username"),
		"profiles": rows,
		"counts":   counts,
	})
}

// AuthRequired 是一个简单的认证中间件；API 请求返回 401，页面请求跳转登录。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				respondError(c, http.StatusUnauthorized, "未登录")
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
