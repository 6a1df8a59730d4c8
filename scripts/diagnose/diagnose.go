package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/service"
)

// diagnose 打印每个资料的状态、文案与内容池大小，并检查生成的链接能否解析回该资料。
// 返回发现问题的数量。
func diagnose(ctx context.Context, out io.Writer, profiles *service.ProfileService) (int, error) {
	items, err := profiles.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "没有任何资料")
		return 1, nil
	}

	problems := 0
	defaults := 0
	for i := range items {
		profile := &items[i]
		if profile.IsDefault {
			defaults++
		}

		fmt.Fprintf(out, "== %s (#%d)\n", profile.FullName(), profile.ID)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "slug\t%s\n", profile.Slug)
		fmt.Fprintf(tw, "default\t%t\n", profile.IsDefault)
		fmt.Fprintf(tw, "published\t%t\n", profile.IsPublished)
		fmt.Fprintf(tw, "link\t%s\n", service.ProfilePath(profile))
		for _, category := range []db.Category{db.CategoryServices, db.CategoryProjects, db.CategoryBlog, db.CategoryContact} {
			catCopy := profile.CopyFor(category)
			fmt.Fprintf(tw, "%s\tnav=%q page=%q order=%d\n", category, catCopy.NavbarLabel, catCopy.PageTitle, catCopy.DisplayOrder)
		}

		sizes, err := profiles.PoolSizes(ctx, profile.ID)
		if err != nil {
			return problems, err
		}
		for _, size := range sizes {
			fmt.Fprintf(tw, "pool %s/%s\t%d\n", size.Category, size.Kind, size.Count)
		}
		tw.Flush()

		if !profile.IsPublished {
			continue
		}
		nameToken, professionToken := service.ProfileTokens(profile)
		resolved, err := profiles.Resolve(ctx, nameToken, professionToken)
		switch {
		case err != nil:
			problems++
			fmt.Fprintf(out, "!! 链接无法解析: %v\n", err)
		case resolved == nil || resolved.ID != profile.ID:
			problems++
			fmt.Fprintf(out, "!! 链接解析到了其他资料\n")
		default:
			fmt.Fprintln(out, "ok 链接可解析")
		}
	}

	if defaults != 1 {
		problems++
		fmt.Fprintf(out, "!! 默认资料数量为 %d\n", defaults)
	}
	return problems, nil
}
