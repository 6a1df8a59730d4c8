package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/middleware"
	"github.com/vitrine/internal/service"
)

// ShowHome 渲染默认资料的首页
func (a *API) ShowHome(c *gin.Context) {
	a.renderHome(c, a.profiles.DefaultProfile(c.Request.Context()))
}

// ShowProfileHome 渲染 /profil/:selector/ 对应资料的首页
func (a *API) ShowProfileHome(c *gin.Context) {
	profile, ok := a.scopedProfile(c)
	if !ok {
		return
	}
	a.renderHome(c, profile)
}

// ShowList 返回根路径下的类别列表处理器：只使用全局已发布内容，文案取默认资料。
func (a *API) ShowList(category db.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		a.renderList(c, a.profiles.DefaultProfile(c.Request.Context()), false, category)
	}
}

// ShowProfileList 返回资料作用域下的类别列表处理器
func (a *API) ShowProfileList(category db.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := a.scopedProfile(c)
		if !ok {
			return
		}
		a.renderList(c, profile, true, category)
	}
}

// ShowDetail 返回根路径下的内容详情处理器
func (a *API) ShowDetail(category db.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		a.renderDetail(c, a.profiles.DefaultProfile(c.Request.Context()), false, category)
	}
}

// ShowProfileDetail 返回资料作用域下的内容详情处理器
func (a *API) ShowProfileDetail(category db.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := a.scopedProfile(c)
		if !ok {
			return
		}
		a.renderDetail(c, profile, true, category)
	}
}

// RedirectLegacyBlog 将旧的 /blogue/ 路径永久重定向到 /blog/
func (a *API) RedirectLegacyBlog(c *gin.Context) {
	target := service.CategoryPath(nil, db.CategoryBlog)
	if slugValue := c.Param("slug"); slugValue != "" {
		target = service.DetailPath(nil, db.CategoryBlog, slugValue)
	}
	c.Redirect(http.StatusMovedPermanently, target)
}

// NotFound 渲染 404 页面，供 NoRoute 使用
func (a *API) NotFound(c *gin.Context) {
	a.renderNotFound(c, a.profiles.DefaultProfile(c.Request.Context()))
}

// scopedProfile 解析路径中的资料选择器；未找到时直接写出 404。
// 存储故障时返回 nil 资料，页面按全局内容渲染。
func (a *API) scopedProfile(c *gin.Context) (*db.SiteProfile, bool) {
	profile, err := a.profiles.ResolveSelector(c.Request.Context(), c.Param("selector"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			a.renderNotFound(c, a.profiles.DefaultProfile(c.Request.Context()))
			return nil, false
		}
		a.renderServerError(c, err)
		return nil, false
	}
	return profile, true
}

func (a *API) renderHome(c *gin.Context, profile *db.SiteProfile) {
	page, err := a.pages.Assemble(c.Request.Context(), profile)
	if err != nil {
		a.renderServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "home.html", profile, gin.H{
		"page":       page,
		"navigation": page.Navigation,
	})
}

func (a *API) renderList(c *gin.Context, profile *db.SiteProfile, scoped bool, category db.Category) {
	pageNumber := parsePositiveInt(c.DefaultQuery("page", "1"), 1)
	list, err := a.pages.AssembleList(c.Request.Context(), profile, scoped, category, pageNumber)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			a.renderNotFound(c, profile)
			return
		}
		a.renderServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "content_list.html", profile, gin.H{
		"title":      list.Copy.PageTitle,
		"page":       list,
		"navigation": list.Navigation,
	})
}

func (a *API) renderDetail(c *gin.Context, profile *db.SiteProfile, scoped bool, category db.Category) {
	detail, err := a.pages.AssembleDetail(c.Request.Context(), profile, scoped, category, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) || errors.Is(err, service.ErrInvalidCategory) {
			a.renderNotFound(c, profile)
			return
		}
		a.renderServerError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "content_detail.html", profile, gin.H{
		"title":      detail.Content.Title,
		"page":       detail,
		"navigation": detail.Navigation,
	})
}

func (a *API) renderNotFound(c *gin.Context, profile *db.SiteProfile) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", profile, gin.H{
		"title": "Page introuvable",
	})
}

func (a *API) renderServerError(c *gin.Context, err error) {
	c.Error(err)
	middleware.LoggerFromContext(c).Error("render page failed", "error", err)
	a.renderHTML(c, http.StatusInternalServerError, "not_found.html", nil, gin.H{
		"title":   "Erreur",
		"message": "Une erreur est survenue. Veuillez réessayer plus tard.",
	})
}
