package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/service"
)

type sectionRequest struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	IsActive *bool  `json:"isActive"`
	Order    int    `json:"order"`
}

type sectionItemRequest struct {
	IconURL  string `json:"iconUrl"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
	URL      string `json:"url"`
	Details  string `json:"details"`
	Order    int    `json:"order"`
}

// timelineRequest 用于教育与工作经历，Organization 对应学校或公司。
type timelineRequest struct {
	Title           string `json:"title"`
	Date            string `json:"date"`
	Organization    string `json:"organization"`
	OrganizationURL string `json:"organizationUrl"`
	IconURL         string `json:"iconUrl"`
	Details         string `json:"details"`
	Order           int    `json:"order"`
}

func sectionItemPayload(item db.SectionItem) gin.H {
	return gin.H{
		"id":       item.ID,
		"iconUrl":  item.IconURL,
		"title":    item.Title,
		"subtitle": item.Subtitle,
		"date":     item.Date,
		"url":      item.URL,
		"details":  item.Details,
		"order":    item.Order,
	}
}

func sectionPayload(section db.Section) gin.H {
	items := make([]gin.H, 0, len(section.Items))
	for _, item := range section.Items {
		items = append(items, sectionItemPayload(item))
	}
	return gin.H{
		"id":       section.ID,
		"type":     section.Type,
		"title":    section.Title,
		"isActive": section.IsActive,
		"order":    section.Order,
		"items":    items,
	}
}

// ListProfileSections 返回资料的区块、教育与工作经历
func (a *API) ListProfileSections(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资料ID")
		return
	}

	ctx := c.Request.Context()
	sections, err := a.sections.ListSections(ctx, id, false)
	if err != nil {
		handleSectionError(c, err)
		return
	}
	educations, err := a.sections.ListEducations(ctx, id)
	if err != nil {
		handleSectionError(c, err)
		return
	}
	experiences, err := a.sections.ListExperiences(ctx, id)
	if err != nil {
		handleSectionError(c, err)
		return
	}

	sectionItems := make([]gin.H, 0, len(sections))
	for _, section := range sections {
		sectionItems = append(sectionItems, sectionPayload(section))
	}
	educationItems := make([]gin.H, 0, len(educations))
	for _, item := range educations {
		educationItems = append(educationItems, gin.H{
			"id": item.ID, "title": item.Title, "date": item.Date,
			"organization": item.Institution, "organizationUrl": item.InstitutionURL,
			"iconUrl": item.IconURL, "details": item.Details, "order": item.Order,
		})
	}
	experienceItems := make([]gin.H, 0, len(experiences))
	for _, item := range experiences {
		experienceItems = append(experienceItems, gin.H{
			"id": item.ID, "title": item.Title, "date": item.Date,
			"organization": item.Company, "organizationUrl": item.CompanyURL,
			"iconUrl": item.IconURL, "details": item.Details, "order": item.Order,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sections":    sectionItems,
		"educations":  educationItems,
		"experiences": experienceItems,
	})
}

// CreateSection 为资料新建区块
func (a *API) CreateSection(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资料ID")
		return
	}

	var payload sectionRequest
	if !bindJSON(c, &payload, "请填写完整的区块信息") {
		return
	}

	section, err := a.sections.CreateSection(c.Request.Context(), id, service.SectionInput{
		Type:     db.SectionType(payload.Type),
		Title:    payload.Title,
		IsActive: payload.IsActive,
		Order:    payload.Order,
	})
	if err != nil {
		handleSectionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "区块已创建", "section": sectionPayload(*section)})
}

// DeleteSection 删除区块及其条目
func (a *API) DeleteSection(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的区块ID")
		return
	}

	if err := a.sections.DeleteSection(c.Request.Context(), id); err != nil {
		handleSectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "区块已删除"})
}

// AddSectionItem 向区块追加条目
func (a *API) AddSectionItem(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的区块ID")
		return
	}

	var payload sectionItemRequest
	if !bindJSON(c, &payload, "请填写完整的条目信息") {
		return
	}

	item, err := a.sections.AddItem(c.Request.Context(), id, service.SectionItemInput(payload))
	if err != nil {
		handleSectionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "条目已添加", "item": sectionItemPayload(*item)})
}

// AddEducation 为资料新增教育经历
func (a *API) AddEducation(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资料ID")
		return
	}

	var payload timelineRequest
	if !bindJSON(c, &payload, "请填写完整的教育经历") {
		return
	}

	item, err := a.sections.AddEducation(c.Request.Context(), id, db.Education{
		Title:          payload.Title,
		Date:           payload.Date,
		Institution:    payload.Organization,
		InstitutionURL: payload.OrganizationURL,
		IconURL:        payload.IconURL,
		Details:        payload.Details,
		Order:          payload.Order,
	})
	if err != nil {
		handleSectionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "教育经历已添加", "id": item.ID})
}

// AddExperience 为资料新增工作经历
func (a *API) AddExperience(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的资料ID")
		return
	}

	var payload timelineRequest
	if !bindJSON(c, &payload, "请填写完整的工作经历") {
		return
	}

	item, err := a.sections.AddExperience(c.Request.Context(), id, db.Experience{
		Title:      payload.Title,
		Date:       payload.Date,
		Company:    payload.Organization,
		CompanyURL: payload.OrganizationURL,
		IconURL:    payload.IconURL,
		Details:    payload.Details,
		Order:      payload.Order,
	})
	if err != nil {
		handleSectionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "工作经历已添加", "id": item.ID})
}

func handleSectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		respondError(c, http.StatusNotFound, "资料不存在")
	case errors.Is(err, service.ErrSectionNotFound):
		respondError(c, http.StatusNotFound, "区块不存在")
	case errors.Is(err, service.ErrSectionInvalidInput):
		respondError(c, http.StatusBadRequest, "区块信息不完整或类型无效")
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "区块操作失败")
	}
}
