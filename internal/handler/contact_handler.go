package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/middleware"
	"github.com/vitrine/internal/service"
)

const (
	flashSuccessKey = "contact_success"
	flashErrorKey   = "contact_error"
)

// ShowContact 渲染默认资料的联系页
func (a *API) ShowContact(c *gin.Context) {
	a.renderContact(c, a.profiles.DefaultProfile(c.Request.Context()))
}

// ShowProfileContact 渲染资料作用域下的联系页
func (a *API) ShowProfileContact(c *gin.Context) {
	profile, ok := a.scopedProfile(c)
	if !ok {
		return
	}
	a.renderContact(c, profile)
}

// SubmitContact 处理联系表单，结果通过会话闪存在重定向后的页面展示。
func (a *API) SubmitContact(c *gin.Context) {
	ctx := c.Request.Context()
	profile := a.contactProfile(c, c.PostForm("profile"))

	form := service.ContactForm{
		Name:       c.PostForm("name"),
		Email:      c.PostForm("email"),
		Company:    c.PostForm("company"),
		Profession: c.PostForm("profession"),
		Subject:    c.PostForm("subject"),
		Message:    c.PostForm("message"),
	}

	session := sessions.Default(c)
	result, err := a.contact.Notify(ctx, profile, form)
	switch {
	case err == nil:
		message := "Merci, votre message a été envoyé."
		if result.ConfirmationSent {
			message += " Un courriel de confirmation vous a été adressé."
		}
		session.AddFlash(message, flashSuccessKey)
	case errors.Is(err, service.ErrConfigurationIncomplete):
		session.AddFlash("Le message n'a pas pu être envoyé : adresse destinataire non configurée.", flashErrorKey)
	case errors.Is(err, service.ErrContactInvalid):
		session.AddFlash("Veuillez indiquer une adresse courriel valide et un message.", flashErrorKey)
	default:
		middleware.LoggerFromContext(c).Error("contact delivery failed", "error", err)
		session.AddFlash("Une erreur s'est produite lors de l'envoi du message. Veuillez réessayer plus tard.", flashErrorKey)
	}
	if err := session.Save(); err != nil {
		c.Error(err)
	}

	fallback := service.CategoryPath(profile, db.CategoryContact)
	c.Redirect(http.StatusSeeOther, safeRedirectPath(c.PostForm("next"), fallback))
}

// contactProfile 按表单中的资料 slug 查找已发布资料，缺省或无效时回退到默认资料。
func (a *API) contactProfile(c *gin.Context, slugValue string) *db.SiteProfile {
	ctx := c.Request.Context()
	if strings.TrimSpace(slugValue) != "" {
		profile, err := a.profiles.GetBySlug(ctx, slugValue)
		if err == nil && profile.IsPublished {
			return profile
		}
		if err != nil && !errors.Is(err, service.ErrProfileNotFound) {
			middleware.LoggerFromContext(c).Warn("load contact profile failed", "slug", slugValue, "error", err)
		}
	}
	return a.profiles.DefaultProfile(ctx)
}

func (a *API) renderContact(c *gin.Context, profile *db.SiteProfile) {
	session := sessions.Default(c)
	successes := session.Flashes(flashSuccessKey)
	failures := session.Flashes(flashErrorKey)
	if len(successes) > 0 || len(failures) > 0 {
		if err := session.Save(); err != nil {
			c.Error(err)
		}
	}

	profileSlug := ""
	if profile != nil {
		profileSlug = profile.Slug
	}
	contactCopy := profile.CopyFor(db.CategoryContact)

	a.renderHTML(c, http.StatusOK, "contact.html", profile, gin.H{
		"title":        contactCopy.PageTitle,
		"copy":         contactCopy,
		"profileSlug":  profileSlug,
		"next":         c.Request.URL.Path,
		"flashSuccess": firstFlash(successes),
		"flashError":   firstFlash(failures),
	})
}

func firstFlash(values []interface{}) string {
	for _, value := range values {
		if text, ok := value.(string); ok && text != "" {
			return text
		}
	}
	return ""
}
