package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/service"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// seedOptions 控制生成的数据量
type seedOptions struct {
	Profiles int
	Items    int
	Seed     int64
}

type seedSummary struct {
	Profiles int
	Projects int
	Posts    int
	Services int
}

var titleCase = cases.Title(language.French)

var professions = []string{"Data Scientist", "Data Analyst", "Développeur Web", "Designer UX", "Consultant BI"}

func seed(ctx context.Context, gdb *gorm.DB, opts seedOptions) (seedSummary, error) {
	var summary seedSummary
	if opts.Profiles < 1 {
		opts.Profiles = 1
	}
	if opts.Items < 1 {
		opts.Items = 1
	}

	faker := gofakeit.New(opts.Seed)
	profiles := service.NewProfileService(gdb, nil)
	content := service.NewContentService(gdb)
	sections := service.NewSectionService(gdb)

	projectIDs := make([]uint, 0, opts.Items)
	postIDs := make([]uint, 0, opts.Items)
	serviceIDs := make([]uint, 0, opts.Items)

	for i := 0; i < opts.Items; i++ {
		published := i%4 != 3

		project := db.Project{
			Publishable:   fakePublishable(faker, titleCase.String(faker.HackerPhrase()), published),
			RepositoryURL: "https://github.com/" + strings.ToLower(faker.Username()) + "/" + strings.ToLower(faker.Word()),
			DemoURL:       faker.URL(),
		}
		if err := content.Projects.Create(ctx, &project); err != nil {
			return summary, err
		}
		projectIDs = append(projectIDs, project.ID)
		summary.Projects++

		post := db.BlogPost{
			Publishable: fakePublishable(faker, faker.Sentence(6), published),
			Tags:        strings.Join([]string{faker.BuzzWord(), faker.BuzzWord()}, ", "),
			ReadTime:    faker.Number(3, 15),
		}
		if err := content.Blog.Create(ctx, &post); err != nil {
			return summary, err
		}
		postIDs = append(postIDs, post.ID)
		summary.Posts++

		price := faker.Price(80, 1500)
		offer := db.Service{
			Publishable:   fakePublishable(faker, "Accompagnement "+faker.BuzzWord(), published),
			Price:         &price,
			Duration:      fmt.Sprintf("%d heures", faker.Number(1, 20)),
			SchedulingURL: faker.URL(),
		}
		if err := content.Services.Create(ctx, &offer); err != nil {
			return summary, err
		}
		serviceIDs = append(serviceIDs, offer.ID)
		summary.Services++
	}

	for i := 0; i < opts.Profiles; i++ {
		profile := db.NewSiteProfile()
		profile.FirstName = faker.FirstName()
		profile.LastName = faker.LastName()
		profile.Profession = professions[i%len(professions)]
		profile.Location = faker.City() + ", Canada"
		profile.CurrentEmployer = faker.Company()
		profile.CurrentEmployerURL = faker.URL()
		profile.Email = faker.Email()
		profile.LinkedInURL = "https://linkedin.com/in/" + strings.ToLower(faker.Username())
		profile.GitHubURL = "https://github.com/" + strings.ToLower(faker.Username())
		profile.Bio = "<p>" + faker.Paragraph(1, 3, 12, " ") + "</p>"
		profile.BioTitle = "À propos"
		profile.BioShowTitle = true
		profile.IsPublished = true
		profile.IsDefault = i == 0
		if err := profiles.Create(ctx, &profile); err != nil {
			return summary, err
		}
		summary.Profiles++

		// 默认资料使用全局回退，其余资料各自挑选一部分内容
		if i > 0 {
			pools := []struct {
				category db.Category
				ids      []uint
			}{
				{db.CategoryProjects, projectIDs},
				{db.CategoryBlog, postIDs},
				{db.CategoryServices, serviceIDs},
			}
			for _, pool := range pools {
				picked := pickIDs(faker, pool.ids, len(pool.ids)/2+1)
				if err := profiles.SetPool(ctx, profile.ID, pool.category, db.PoolKindPublished, picked); err != nil {
					return summary, err
				}
				if err := profiles.SetPool(ctx, profile.ID, pool.category, db.PoolKindFeatured, picked[:1]); err != nil {
					return summary, err
				}
			}
		}

		if err := seedSections(ctx, faker, sections, profile.ID); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func fakePublishable(faker *gofakeit.Faker, title string, published bool) db.Publishable {
	return db.Publishable{
		Title:       title,
		Summary:     faker.Sentence(18),
		Body:        "## " + faker.Sentence(4) + "\n\n" + faker.Paragraph(3, 4, 14, "\n\n"),
		MainImage:   faker.ImageURL(1200, 675),
		IsPublished: published,
		Featured:    faker.Bool(),
	}
}

func pickIDs(faker *gofakeit.Faker, ids []uint, n int) []uint {
	shuffled := append([]uint(nil), ids...)
	faker.ShuffleAnySlice(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func seedSections(ctx context.Context, faker *gofakeit.Faker, sections *service.SectionService, profileID uint) error {
	skills, err := sections.CreateSection(ctx, profileID, service.SectionInput{
		Type:  db.SectionCompetences,
		Title: "Compétences techniques",
		Order: 1,
	})
	if err != nil {
		return err
	}
	levels := []string{"Expert", "Avancé", "Intermédiaire"}
	for order, name := range []string{"Python", "SQL", "Go", "Power BI"} {
		if _, err := sections.AddItem(ctx, skills.ID, service.SectionItemInput{
			Title:    name,
			Subtitle: levels[order%len(levels)],
			Order:    order + 1,
		}); err != nil {
			return err
		}
	}

	if _, err := sections.AddEducation(ctx, profileID, db.Education{
		Title:       "Maîtrise en " + faker.BuzzWord(),
		Institution: "Université de " + faker.City(),
		Date:        fmt.Sprintf("%d - %d", 2016+faker.Number(0, 3), 2020+faker.Number(0, 3)),
		Order:       1,
	}); err != nil {
		return err
	}

	if _, err := sections.AddExperience(ctx, profileID, db.Experience{
		Title:      faker.JobTitle(),
		Company:    faker.Company(),
		CompanyURL: faker.URL(),
		Date:       fmt.Sprintf("%d - présent", 2020+faker.Number(0, 4)),
		Details:    faker.Paragraph(1, 2, 12, " "),
		Order:      1,
	}); err != nil {
		return err
	}
	return nil
}
