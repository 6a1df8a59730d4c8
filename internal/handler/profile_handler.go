package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/service"
)

type copyPayload struct {
	NavbarLabel      string `json:"navbarLabel"`
	HomeTitle        string `json:"homeTitle"`
	HomeIntro        string `json:"homeIntro"`
	PageTitle        string `json:"pageTitle"`
	PageIntro        string `json:"pageIntro"`
	HeroImage        string `json:"heroImage"`
	ViewAllText      string `json:"viewAllText"`
	DetailButtonText string `json:"detailButtonText"`
	BackButtonText   string `json:"backButtonText"`
	DisplayOrder     int    `json:"displayOrder"`
}

// profileRequest 是创建/更新资料的请求体。
// MailCredential 为 nil 或空串时保留已有凭据；copy 块缺省时使用默认文案。
type profileRequest struct {
	IsDefault          bool   `json:"isDefault"`
	IsPublished        bool   `json:"isPublished"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Profession         string `json:"profession"`
	Location           string `json:"location"`
	CurrentEmployer    string `json:"currentEmployer"`
	CurrentEmployerURL string `json:"currentEmployerUrl"`
	LinkedInURL        string `json:"linkedinUrl"`
	GitHubURL          string `json:"githubUrl"`
	Email              string `json:"email"`
	PhotoURL           string `json:"photoUrl"`
	Bio                string `json:"bio"`
	BioTitle           string `json:"bioTitle"`
	BioPosition        string `json:"bioPosition"`
	BioShowTitle       bool   `json:"bioShowTitle"`
	SiteTitle          string `json:"siteTitle"`
	FaviconURL         string `json:"faviconUrl"`
	NavbarAvatarURL    string `json:"navbarAvatarUrl"`
	NavbarAvatarShape  string `json:"navbarAvatarShape"`

	Projects *copyPayload `json:"projects"`
	Blog     *copyPayload `json:"blog"`
	Services *copyPayload `json:"services"`
	Contact  *copyPayload `json:"contact"`

	MailCredential          *string `json:"mailCredential"`
	EnableConfirmationEmail bool    `json:"enableConfirmationEmail"`
}

type poolRequest struct {
	IDs []uint `json:"ids"`
}

func (r profileRequest) toModel() db.SiteProfile {
	profile := db.NewSiteProfile()
	profile.IsDefault = r.IsDefault
	profile.IsPublished = r.IsPublished
	profile.FirstName = r.FirstName
	profile.LastName = r.LastName
	profile.Profession = r.Profession
	profile.Location = r.Location
	profile.CurrentEmployer = r.CurrentEmployer
	profile.CurrentEmployerURL = r.CurrentEmployerURL
	profile.LinkedInURL = r.LinkedInURL
	profile.GitHubURL = r.GitHubURL
	profile.Email = r.Email
	profile.PhotoURL = r.PhotoURL
	profile.Bio = r.Bio
	profile.BioTitle = r.BioTitle
	profile.BioPosition = r.BioPosition
	profile.BioShowTitle = r.BioShowTitle
	profile.SiteTitle = r.SiteTitle
	profile.FaviconURL = r.FaviconURL
	profile.NavbarAvatarURL = r.NavbarAvatarURL
	profile.NavbarAvatarShape = r.NavbarAvatarShape
	profile.EnableConfirmationEmail = r.EnableConfirmationEmail
	if r.MailCredential != nil {
		profile.MailCredential = *r.MailCredential
	}

	for target, source := range map[*db.CategoryCopy]*copyPayload{
		&profile.Projects: r.Projects,
		&profile.Blog:     r.Blog,
		&profile.Services: r.Services,
		&profile.Contact:  r.Contact,
	} {
		if source != nil {
			*target = db.CategoryCopy(*source)
		}
	}
	return profile
}

func profilePayload(profile *db.SiteProfile) gin.H {
	return gin.H{
		"id":                      profile.ID,
		"slug":                    profile.Slug,
		"url":                     service.ProfilePath(profile),
		"isDefault":               profile.IsDefault,
		"isPublished":             profile.IsPublished,
		"firstName":               profile.FirstName,
		"lastName":                profile.LastName,
		"fullName":                profile.FullName(),
		"profession":              profile.Profession,
		"location":                profile.Location,
		"currentEmployer":         profile.CurrentEmployer,
		"currentEmployerUrl":      profile.CurrentEmployerURL,
		"linkedinUrl":             profile.LinkedInURL,
		"githubUrl":               profile.GitHubURL,
		"email":                   profile.Email,
		"photoUrl":                profile.PhotoURL,
		"bio":                     profile.Bio,
		"bioTitle":                profile.BioTitle,
		"bioPosition":             profile.BioPosition,
		"bioShowTitle":            profile.BioShowTitle,
		"siteTitle":               profile.SiteTitle,
		"faviconUrl":              profile.FaviconURL,
		"navbarAvatarUrl":         profile.NavbarAvatarURL,
		"navbarAvatarShape":       profile.NavbarAvatarShape,
		"projects":                copyPayload(profile.Projects),
		"blog":                    copyPayload(profile.Blog),
		"services":                copyPayload(profile.Services),
		"contact":                 copyPayload(profile.Contact),
		"hasMailCredential":       profile.MailCredential != "",
		"enableConfirmationEmail": profile.EnableConfirmationEmail,
		"updatedAt":               profile.UpdatedAt,
	}
}

// ListProfiles 返回全部资料
func (a *API) ListProfiles(c *gin.Context) {
	profiles, err := a.profiles.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取资料失败")
		return
	}

	items := make([]gin.H, 0, len(profiles))
	for i := range profiles {
		items = append(items, profilePayload(&profiles[i]))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": items})
}

// GetProfile 返回单个资料及其内容池
func (a *API) GetProfile(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资料ID")
		return
	}

	ctx := c.Request.Context()
	profile, err := a.profiles.Get(ctx, id)
	if err != nil {
		handleProfileError(c, err)
		return
	}

	pools := gin.H{}
	for _, category := range db.ContentCategories {
		entry := gin.H{}
		for _, kind := range []db.PoolKind{db.PoolKindPublished, db.PoolKindFeatured} {
			ids, err := a.profiles.PoolIDs(ctx, id, category, kind)
			if err != nil {
				handleProfileError(c, err)
				return
			}
			entry[string(kind)] = ids
		}
		pools[string(category)] = entry
	}

	c.JSON(http.StatusOK, gin.H{"profile": profilePayload(profile), "pools": pools})
}

// CreateProfile 创建资料
func (a *API) CreateProfile(c *gin.Context) {
	var payload profileRequest
	if !bindJSON(c, &payload, "请填写完整的资料信息") {
		return
	}

	profile := payload.toModel()
	if err := a.profiles.Create(c.Request.Context(), &profile); err != nil {
		handleProfileError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "资料已创建", "profile": profilePayload(&profile)})
}

// UpdateProfile 更新资料
func (a *API) UpdateProfile(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资料ID")
		return
	}

	var payload profileRequest
	if !bindJSON(c, &payload, "请填写完整的资料信息") {
		return
	}

	profile, err := a.profiles.Update(c.Request.Context(), id, payload.toModel())
	if err != nil {
		handleProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "资料已更新", "profile": profilePayload(profile)})
}

// DeleteProfile 删除资料及其独占数据
func (a *API) DeleteProfile(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资料ID")
		return
	}

	if err := a.profiles.Delete(c.Request.Context(), id); err != nil {
		handleProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "资料已删除"})
}

// UpdateProfilePool 按请求中的 ID 顺序替换资料的某个内容池
func (a *API) UpdateProfilePool(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资料ID")
		return
	}
	category, ok := db.ParseCategory(c.Param("category"))
	if !ok {
		respondError(c, http.StatusBadRequest, "未知的内容类别")
		return
	}
	kind, ok := db.ParsePoolKind(c.Param("kind"))
	if !ok {
		respondError(c, http.StatusBadRequest, "未知的内容池类型")
		return
	}

	var payload poolRequest
	if !bindJSON(c, &payload, "请提供内容ID列表") {
		return
	}

	ctx := c.Request.Context()
	if err := a.profiles.SetPool(ctx, id, category, kind, payload.IDs); err != nil {
		handleProfileError(c, err)
		return
	}
	ids, err := a.profiles.PoolIDs(ctx, id, category, kind)
	if err != nil {
		handleProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "内容池已更新", "ids": ids})
}

func handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		respondError(c, http.StatusNotFound, "资料不存在")
	case errors.Is(err, service.ErrContentNotFound):
		respondError(c, http.StatusBadRequest, "内容池包含不存在的内容")
	case errors.Is(err, service.ErrInvalidCategory):
		respondError(c, http.StatusBadRequest, "未知的内容类别")
	case errors.Is(err, service.ErrProfileInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "资料操作失败")
	}
}
