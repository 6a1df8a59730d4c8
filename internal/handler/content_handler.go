package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/service"
)

// contentRequest 是三类内容共用的请求体，不属于目标类别的字段被忽略。
type contentRequest struct {
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	Summary          string `json:"summary"`
	Body             string `json:"body"`
	MainImage        string `json:"mainImage"`
	IsPublished      bool   `json:"isPublished"`
	Featured         bool   `json:"featured"`
	AuthorName       string `json:"authorName"`
	AuthorEmail      string `json:"authorEmail"`
	AuthorProfession string `json:"authorProfession"`

	RepositoryURL string `json:"repositoryUrl"`
	DemoURL       string `json:"demoUrl"`

	Tags     string `json:"tags"`
	ReadTime int    `json:"readTime"`

	Price         *float64 `json:"price"`
	Duration      string   `json:"duration"`
	SchedulingURL string   `json:"schedulingUrl"`
}

func (r contentRequest) publishable() db.Publishable {
	return db.Publishable{
		Title:            r.Title,
		Slug:             r.Slug,
		Summary:          r.Summary,
		Body:             r.Body,
		MainImage:        r.MainImage,
		IsPublished:      r.IsPublished,
		Featured:         r.Featured,
		AuthorName:       r.AuthorName,
		AuthorEmail:      r.AuthorEmail,
		AuthorProfession: r.AuthorProfession,
	}
}

// contentEndpoint 屏蔽具体内容类型，使处理器按类别分发。
type contentEndpoint interface {
	list(ctx context.Context) ([]gin.H, error)
	get(ctx context.Context, id uint) (gin.H, error)
	create(ctx context.Context, req contentRequest) (gin.H, error)
	update(ctx context.Context, id uint, req contentRequest) (gin.H, error)
	remove(ctx context.Context, id uint) error
}

type storeEndpoint[T db.Entity] struct {
	store *service.ContentStore[T]
	build func(contentRequest) *T
}

func (e storeEndpoint[T]) list(ctx context.Context) ([]gin.H, error) {
	items, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	payload := make([]gin.H, 0, len(items))
	for i := range items {
		payload = append(payload, contentPayload(&items[i]))
	}
	return payload, nil
}

func (e storeEndpoint[T]) get(ctx context.Context, id uint) (gin.H, error) {
	item, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return contentPayload(item), nil
}

func (e storeEndpoint[T]) create(ctx context.Context, req contentRequest) (gin.H, error) {
	item := e.build(req)
	if err := e.store.Create(ctx, item); err != nil {
		return nil, err
	}
	return contentPayload(item), nil
}

func (e storeEndpoint[T]) update(ctx context.Context, id uint, req contentRequest) (gin.H, error) {
	item, err := e.store.Update(ctx, id, e.build(req))
	if err != nil {
		return nil, err
	}
	return contentPayload(item), nil
}

func (e storeEndpoint[T]) remove(ctx context.Context, id uint) error {
	return e.store.Delete(ctx, id)
}

func (a *API) contentEndpoint(category db.Category) (contentEndpoint, bool) {
	switch category {
	case db.CategoryProjects:
		return storeEndpoint[db.Project]{store: a.content.Projects, build: func(r contentRequest) *db.Project {
			return &db.Project{Publishable: r.publishable(), RepositoryURL: r.RepositoryURL, DemoURL: r.DemoURL}
		}}, true
	case db.CategoryBlog:
		return storeEndpoint[db.BlogPost]{store: a.content.Blog, build: func(r contentRequest) *db.BlogPost {
			return &db.BlogPost{Publishable: r.publishable(), Tags: r.Tags, ReadTime: r.ReadTime}
		}}, true
	case db.CategoryServices:
		return storeEndpoint[db.Service]{store: a.content.Services, build: func(r contentRequest) *db.Service {
			return &db.Service{Publishable: r.publishable(), Price: r.Price, Duration: r.Duration, SchedulingURL: r.SchedulingURL}
		}}, true
	}
	return nil, false
}

func contentPayload[T db.Entity](item *T) gin.H {
	meta := db.Meta(item)
	model := db.ModelOf(item)
	category := db.CategoryOf[T]()

	payload := gin.H{
		"id":               model.ID,
		"category":         category,
		"title":            meta.Title,
		"slug":             meta.Slug,
		"url":              service.DetailPath(nil, category, meta.Slug),
		"summary":          meta.Summary,
		"body":             meta.Body,
		"mainImage":        meta.MainImage,
		"isPublished":      meta.IsPublished,
		"featured":         meta.Featured,
		"authorName":       meta.AuthorName,
		"authorEmail":      meta.AuthorEmail,
		"authorProfession": meta.AuthorProfession,
		"publishedAt":      meta.PublishedAt,
		"updatedAt":        model.UpdatedAt,
	}
	switch v := any(item).(type) {
	case *db.Project:
		payload["repositoryUrl"] = v.RepositoryURL
		payload["demoUrl"] = v.DemoURL
	case *db.BlogPost:
		payload["tags"] = v.TagList()
		payload["readTime"] = v.ReadTime
	case *db.Service:
		payload["price"] = v.Price
		payload["duration"] = v.Duration
		payload["schedulingUrl"] = v.SchedulingURL
	}
	return payload
}

// resolveContentEndpoint 解析路径中的类别，失败时写出 400。
func (a *API) resolveContentEndpoint(c *gin.Context) (contentEndpoint, bool) {
	category, ok := db.ParseCategory(c.Param("category"))
	if !ok {
		respondError(c, http.StatusBadRequest, "未知的内容类别")
		return nil, false
	}
	endpoint, ok := a.contentEndpoint(category)
	if !ok {
		respondError(c, http.StatusBadRequest, "未知的内容类别")
		return nil, false
	}
	return endpoint, true
}

// ListContent 返回某类别的全部内容（含未发布）
func (a *API) ListContent(c *gin.Context) {
	endpoint, ok := a.resolveContentEndpoint(c)
	if !ok {
		return
	}

	items, err := endpoint.list(c.Request.Context())
	if err != nil {
		handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetContent 返回单条内容
func (a *API) GetContent(c *gin.Context) {
	endpoint, ok := a.resolveContentEndpoint(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的内容ID")
		return
	}

	item, err := endpoint.get(c.Request.Context(), id)
	if err != nil {
		handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// CreateContent 创建内容，slug 在此时确定
func (a *API) CreateContent(c *gin.Context) {
	endpoint, ok := a.resolveContentEndpoint(c)
	if !ok {
		return
	}

	var payload contentRequest
	if !bindJSON(c, &payload, "请填写完整的内容信息") {
		return
	}

	item, err := endpoint.create(c.Request.Context(), payload)
	if err != nil {
		handleContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "内容已创建", "item": item})
}

// UpdateContent 更新内容，slug 与发布时间保持不变
func (a *API) UpdateContent(c *gin.Context) {
	endpoint, ok := a.resolveContentEndpoint(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的内容ID")
		return
	}

	var payload contentRequest
	if !bindJSON(c, &payload, "请填写完整的内容信息") {
		return
	}

	item, err := endpoint.update(c.Request.Context(), id, payload)
	if err != nil {
		handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "内容已更新", "item": item})
}

// DeleteContent 删除内容
func (a *API) DeleteContent(c *gin.Context) {
	endpoint, ok := a.resolveContentEndpoint(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的内容ID")
		return
	}

	if err := endpoint.remove(c.Request.Context(), id); err != nil {
		handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "内容已删除"})
}

// ContentFields 返回后台编辑器的字段分组
func (a *API) ContentFields(c *gin.Context) {
	category, ok := db.ParseCategory(c.Param("category"))
	if !ok {
		respondError(c, http.StatusBadRequest, "未知的内容类别")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "groups": service.ContentFieldGroups(category)})
}

func handleContentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		respondError(c, http.StatusNotFound, "内容不存在")
	case errors.Is(err, service.ErrContentInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "内容操作失败")
	}
}
