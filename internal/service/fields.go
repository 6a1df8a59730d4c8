package service

import "github.com/vitrine/internal/db"

// FieldGroup 描述后台编辑器中的一组字段
type FieldGroup struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Fields    []string `json:"fields"`
	Collapsed bool     `json:"collapsed"`
}

// ContentFieldGroups 返回某类内容在后台编辑器中的字段分组，顺序固定：
// 常规、图片、类别专属、发布、作者。未知类别返回 nil。
func ContentFieldGroups(category db.Category) []FieldGroup {
	var specific FieldGroup
	switch category {
	case db.CategoryProjects:
		specific = FieldGroup{Name: "links", Label: "Liens du projet", Fields: []string{"repositoryUrl", "demoUrl"}}
	case db.CategoryBlog:
		specific = FieldGroup{Name: "metadata", Label: "Métadonnées de l'article", Fields: []string{"tags", "readTime"}}
	case db.CategoryServices:
		specific = FieldGroup{Name: "offer", Label: "Offre", Fields: []string{"price", "duration", "schedulingUrl"}}
	default:
		return nil
	}

	return []FieldGroup{
		{Name: "general", Label: "Informations générales", Fields: []string{"title", "slug", "summary", "body"}},
		{Name: "image", Label: "Image", Fields: []string{"mainImage"}},
		specific,
		{Name: "publication", Label: "Publication", Fields: []string{"isPublished", "featured"}},
		{Name: "author", Label: "Auteur", Fields: []string{"authorName", "authorEmail", "authorProfession"}, Collapsed: true},
	}
}
