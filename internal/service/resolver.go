package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/slug"
	"gorm.io/gorm"
)

// Resolve 将 URL 中的姓名与职业令牌解析为已发布资料。
// 两个令牌都存在时按 "name-profession" 精确匹配 slug，找不到返回 ErrProfileNotFound；
// 否则依次回退到默认资料、主键最小的已发布资料，都没有时返回 nil。
// 存储错误只记录日志并按“无资料”处理。
func (s *ProfileService) Resolve(ctx context.Context, nameToken, professionToken string) (*db.SiteProfile, error) {
	nameToken = strings.TrimSpace(nameToken)
	professionToken = strings.TrimSpace(professionToken)

	if nameToken != "" && professionToken != "" {
		profile, err := s.firstPublished(ctx, "slug = ?", nameToken+"-"+professionToken)
		if err != nil {
			s.logger.WarnContext(ctx, "resolve profile by slug failed", slog.String("slug", nameToken+"-"+professionToken), slog.Any("error", err))
			return nil, nil
		}
		if profile == nil {
			return nil, ErrProfileNotFound
		}
		return profile, nil
	}

	return s.DefaultProfile(ctx), nil
}

// DefaultProfile returns the published default profile, then the first published
// profile, or nil.
func (s *ProfileService) DefaultProfile(ctx context.Context) *db.SiteProfile {
	profile, err := s.firstPublished(ctx, "is_default = ?", true)
	if err != nil {
		s.logger.WarnContext(ctx, "load default profile failed", slog.Any("error", err))
		return nil
	}
	if profile != nil {
		return profile
	}

	profile, err = s.firstPublished(ctx, "")
	if err != nil {
		s.logger.WarnContext(ctx, "load first published profile failed", slog.Any("error", err))
		return nil
	}
	return profile
}

// ResolveSelector 解析 "nom=...&profession=..." 形式的路径段。
func (s *ProfileService) ResolveSelector(ctx context.Context, selector string) (*db.SiteProfile, error) {
	nameToken, professionToken := ParseSelector(selector)
	if nameToken == "" || professionToken == "" {
		return nil, ErrProfileNotFound
	}
	return s.Resolve(ctx, nameToken, professionToken)
}

func (s *ProfileService) firstPublished(ctx context.Context, query string, args ...any) (*db.SiteProfile, error) {
	tx := s.db.WithContext(ctx).Where("is_published = ?", true)
	if query != "" {
		tx = tx.Where(query, args...)
	}

	var profile db.SiteProfile
	err := tx.Order("id ASC").First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// ParseSelector 从路径段中取出 nom 与 profession 两个令牌。
func ParseSelector(selector string) (nameToken, professionToken string) {
	values, err := url.ParseQuery(strings.Trim(selector, "/"))
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(values.Get("nom")), strings.TrimSpace(values.Get("profession"))
}

// ProfileTokens 返回资料链接中的姓名与职业令牌。
// slug 带有冲突后缀（base-N）时，后缀附加在职业令牌上，使链接精确指向该资料。
func ProfileTokens(profile *db.SiteProfile) (nameToken, professionToken string) {
	nameToken, professionToken = baseTokens(profile)
	if suffix, ok := slugSuffix(profile.Slug, nameToken+"-"+professionToken); ok {
		professionToken += "-" + suffix
	}
	return nameToken, professionToken
}

// ProfileSlugBase is the slug a profile gets before collision suffixes.
func ProfileSlugBase(profile *db.SiteProfile) string {
	nameToken, professionToken := baseTokens(profile)
	return nameToken + "-" + professionToken
}

func baseTokens(profile *db.SiteProfile) (nameToken, professionToken string) {
	first := strings.TrimSpace(profile.FirstName)
	if first == "" {
		first = "prenom"
	}
	last := strings.TrimSpace(profile.LastName)
	if last == "" {
		last = "nom"
	}
	nameToken = slug.Make(first + "-" + last)
	if nameToken == "" {
		nameToken = "prenom-nom"
	}

	professionToken = slug.Make(profile.Profession)
	if professionToken == "" {
		professionToken = "profil"
	}
	return nameToken, professionToken
}

// slugSuffix 返回 value 相对 base 的数字后缀，例如 base-2 返回 "2"。
func slugSuffix(value, base string) (string, bool) {
	suffix, found := strings.CutPrefix(value, base+"-")
	if !found || suffix == "" {
		return "", false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return suffix, true
}

// ProfileBasePath 返回资料作用域的路径前缀；默认资料或 nil 返回空串。
func ProfileBasePath(profile *db.SiteProfile) string {
	if profile == nil || profile.IsDefault {
		return ""
	}
	nameToken, professionToken := ProfileTokens(profile)
	return "/profil/nom=" + nameToken + "&profession=" + professionToken
}

// ProfilePath 返回资料首页链接
func ProfilePath(profile *db.SiteProfile) string {
	return ProfileBasePath(profile) + "/"
}

// CategoryPath 返回类别列表页链接
func CategoryPath(profile *db.SiteProfile, category db.Category) string {
	return ProfileBasePath(profile) + "/" + category.PathSegment() + "/"
}

// DetailPath 返回内容详情页链接
func DetailPath(profile *db.SiteProfile, category db.Category, value string) string {
	return CategoryPath(profile, category) + value + "/"
}
