package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/vitrine/internal/db"
)

// ListPageSize is the fixed page size of category list pages.
const ListPageSize = 9

var plainText = bluemonday.StrictPolicy()

// NavItem 是导航栏中的一项
type NavItem struct {
	Name  string
	Label string
	URL   string
}

// Card 是内容在首页与列表页上的统一展示形态。
type Card struct {
	ID          uint
	Category    db.Category
	Title       string
	Slug        string
	Summary     string
	Image       string
	URL         string
	Meta        string
	PublishedAt time.Time
}

// HomeSection 描述首页上的一个类别区块
type HomeSection struct {
	Category db.Category
	Copy     db.CategoryCopy
	ListURL  string
	Cards    []Card
}

// HomePage 汇总首页渲染所需的数据
type HomePage struct {
	Profile      *db.SiteProfile
	Projects     []db.Project
	Articles     []db.BlogPost
	Services     []db.Service
	Sections     []db.Section
	Educations   []db.Education
	Experiences  []db.Experience
	Navigation   []NavItem
	HomeSections []HomeSection
}

// ListPage 汇总分页列表页数据
type ListPage struct {
	Profile    *db.SiteProfile
	Category   db.Category
	Copy       db.CategoryCopy
	Navigation []NavItem
	Cards      []Card
	Page       int
	TotalPages int
	Total      int
}

// HasPrev reports whether a previous page exists.
func (p ListPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p ListPage) HasNext() bool { return p.Page < p.TotalPages }

// PageLabel 返回分页说明文本
func (p ListPage) PageLabel() string {
	return fmt.Sprintf("Page %d sur %d", p.Page, p.TotalPages)
}

// DetailPage 汇总详情页数据
type DetailPage struct {
	Profile    *db.SiteProfile
	Category   db.Category
	Copy       db.CategoryCopy
	Navigation []NavItem
	Card       Card
	Content    *db.Publishable
	Project    *db.Project
	Article    *db.BlogPost
	Service    *db.Service
	BackURL    string
}

// PageService 将资料与选中的内容组装成页面数据。
type PageService struct {
	content  *ContentService
	sections *SectionService
}

// NewPageService returns a new PageService instance.
func NewPageService(content *ContentService, sections *SectionService) *PageService {
	return &PageService{content: content, sections: sections}
}

// Assemble 组装资料首页：每类最多 HomeLimit 条，以及资料自身的区块与经历。
// profile 为 nil 时只使用全局已发布内容。
func (s *PageService) Assemble(ctx context.Context, profile *db.SiteProfile) (*HomePage, error) {
	page := &HomePage{Profile: profile, Navigation: Navigation(profile)}

	var err error
	if page.Projects, err = s.content.Projects.Select(ctx, profile, ModeHome, HomeLimit); err != nil {
		return nil, err
	}
	if page.Articles, err = s.content.Blog.Select(ctx, profile, ModeHome, HomeLimit); err != nil {
		return nil, err
	}
	if page.Services, err = s.content.Services.Select(ctx, profile, ModeHome, HomeLimit); err != nil {
		return nil, err
	}

	if profile != nil {
		if page.Sections, err = s.sections.ListSections(ctx, profile.ID, true); err != nil {
			return nil, err
		}
		if page.Educations, err = s.sections.ListEducations(ctx, profile.ID); err != nil {
			return nil, err
		}
		if page.Experiences, err = s.sections.ListExperiences(ctx, profile.ID); err != nil {
			return nil, err
		}
	}

	cards := map[db.Category][]Card{
		db.CategoryProjects: cardsOf(profile, page.Projects),
		db.CategoryBlog:     cardsOf(profile, page.Articles),
		db.CategoryServices: cardsOf(profile, page.Services),
	}
	for _, category := range orderedCategories(profile, db.ContentCategories) {
		page.HomeSections = append(page.HomeSections, HomeSection{
			Category: category,
			Copy:     profile.CopyFor(category),
			ListURL:  CategoryPath(profile, category),
			Cards:    cards[category],
		})
	}
	return page, nil
}

// AssembleList 组装分页列表页。scoped 为 false 时忽略资料内容池，只用全局已发布内容，
// 资料仍用于文案与导航。
func (s *PageService) AssembleList(ctx context.Context, profile *db.SiteProfile, scoped bool, category db.Category, page int) (*ListPage, error) {
	selectFor := profile
	if !scoped {
		selectFor = nil
	}

	var cards []Card
	switch category {
	case db.CategoryProjects:
		items, err := s.content.Projects.Select(ctx, selectFor, ModeList, 0)
		if err != nil {
			return nil, err
		}
		cards = cardsOf(linkProfile(profile, scoped), items)
	case db.CategoryBlog:
		items, err := s.content.Blog.Select(ctx, selectFor, ModeList, 0)
		if err != nil {
			return nil, err
		}
		cards = cardsOf(linkProfile(profile, scoped), items)
	case db.CategoryServices:
		items, err := s.content.Services.Select(ctx, selectFor, ModeList, 0)
		if err != nil {
			return nil, err
		}
		cards = cardsOf(linkProfile(profile, scoped), items)
	default:
		return nil, ErrInvalidCategory
	}

	list := &ListPage{
		Profile:    profile,
		Category:   category,
		Copy:       profile.CopyFor(category),
		Navigation: Navigation(linkProfile(profile, scoped)),
		Total:      len(cards),
	}
	list.Cards, list.Page, list.TotalPages = paginate(cards, page, ListPageSize)
	return list, nil
}

// AssembleDetail 组装内容详情页，内容必须已发布。
func (s *PageService) AssembleDetail(ctx context.Context, profile *db.SiteProfile, scoped bool, category db.Category, value string) (*DetailPage, error) {
	links := linkProfile(profile, scoped)
	detail := &DetailPage{
		Profile:    profile,
		Category:   category,
		Copy:       profile.CopyFor(category),
		Navigation: Navigation(links),
		BackURL:    CategoryPath(links, category),
	}

	switch category {
	case db.CategoryProjects:
		item, err := s.content.Projects.GetPublishedBySlug(ctx, value)
		if err != nil {
			return nil, err
		}
		detail.Project, detail.Content, detail.Card = item, &item.Publishable, cardOf(links, item)
	case db.CategoryBlog:
		item, err := s.content.Blog.GetPublishedBySlug(ctx, value)
		if err != nil {
			return nil, err
		}
		detail.Article, detail.Content, detail.Card = item, &item.Publishable, cardOf(links, item)
	case db.CategoryServices:
		item, err := s.content.Services.GetPublishedBySlug(ctx, value)
		if err != nil {
			return nil, err
		}
		detail.Service, detail.Content, detail.Card = item, &item.Publishable, cardOf(links, item)
	default:
		return nil, ErrInvalidCategory
	}
	return detail, nil
}

// Navigation 生成导航：首项为“Accueil”，其后按资料的 DisplayOrder 稳定排序。
// 默认资料或无资料时链接位于根路径，其余资料使用资料作用域路径。
func Navigation(profile *db.SiteProfile) []NavItem {
	categories := []db.Category{db.CategoryServices, db.CategoryProjects, db.CategoryBlog, db.CategoryContact}
	items := []NavItem{{Name: "home", Label: "Accueil", URL: ProfilePath(profile)}}
	for _, category := range orderedCategories(profile, categories) {
		items = append(items, NavItem{
			Name:  string(category),
			Label: profile.CopyFor(category).NavbarLabel,
			URL:   CategoryPath(profile, category),
		})
	}
	return items
}

func orderedCategories(profile *db.SiteProfile, categories []db.Category) []db.Category {
	ordered := append([]db.Category(nil), categories...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return profile.CopyFor(ordered[i]).DisplayOrder < profile.CopyFor(ordered[j]).DisplayOrder
	})
	return ordered
}

// linkProfile 返回生成链接时使用的资料；全局列表页的链接总在根路径下。
func linkProfile(profile *db.SiteProfile, scoped bool) *db.SiteProfile {
	if scoped {
		return profile
	}
	return nil
}

func paginate[E any](items []E, page, size int) ([]E, int, int) {
	totalPages := (len(items) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], page, totalPages
}

func cardsOf[T db.Entity](profile *db.SiteProfile, items []T) []Card {
	cards := make([]Card, 0, len(items))
	for i := range items {
		cards = append(cards, cardOf(profile, &items[i]))
	}
	return cards
}

func cardOf[T db.Entity](profile *db.SiteProfile, item *T) Card {
	meta := db.Meta(item)
	category := db.CategoryOf[T]()
	summary := meta.Summary
	if strings.TrimSpace(summary) == "" {
		summary = summarizeContent(meta.Body)
	}

	card := Card{
		ID:          db.ModelOf(item).ID,
		Category:    category,
		Title:       meta.Title,
		Slug:        meta.Slug,
		Summary:     summary,
		Image:       meta.MainImage,
		URL:         DetailPath(profile, category, meta.Slug),
		PublishedAt: meta.PublishedAt,
	}
	switch v := any(item).(type) {
	case *db.BlogPost:
		card.Meta = strings.Join(v.TagList(), " · ")
	case *db.Service:
		if v.Price != nil {
			card.Meta = strconv.FormatFloat(*v.Price, 'f', 2, 64) + " $"
		}
		if v.Duration != "" {
			card.Meta = strings.TrimSpace(card.Meta + " " + v.Duration)
		}
	}
	return card
}

// summarizeContent 去掉 HTML 与 Markdown 标记后截取前若干字符作为摘要
func summarizeContent(body string) string {
	plain := html.UnescapeString(plainText.Sanitize(body))
	replacer := strings.NewReplacer(
		"#", " ",
		"*", " ",
		"`", " ",
		"_", " ",
		">", " ",
		"[", " ",
		"]", " ",
	)
	plain = replacer.Replace(plain)
	plain = strings.Join(strings.Fields(plain), " ")
	if plain == "" {
		return ""
	}

	const limit = 160
	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}
	runes := []rune(plain)
	return string(runes[:limit]) + "…"
}
