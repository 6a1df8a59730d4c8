package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitrine/internal/db"
)

func TestContentCreateAssignsSuffixedSlugsInCreationOrder(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := NewContentStore[db.Project](gdb)

	want := []string{"tableau-de-bord", "tableau-de-bord-1", "tableau-de-bord-2", "tableau-de-bord-3"}
	for i, expected := range want {
		item := mustCreateProject(t, store, "Tableau de bord", true, time.Time{})
		if item.Slug != expected {
			t.Fatalf("item %d: expected slug %s, got %s", i, expected, item.Slug)
		}
	}
}

func TestContentSlugNamespacesArePerCategory(t *testing.T) {
	gdb := setupServiceTestDB(t)
	content := NewContentService(gdb)

	project := mustCreateProject(t, content.Projects, "Analyse", true, time.Time{})
	post := mustCreatePost(t, content.Blog, "Analyse", true, time.Time{})
	if project.Slug != "analyse" || post.Slug != "analyse" {
		t.Fatalf("expected both categories to use the bare slug, got %s and %s", project.Slug, post.Slug)
	}
}

func TestContentCreateFallsBackToCategoryNoun(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := NewContentStore[db.Service](gdb)

	item := db.Service{Publishable: db.Publishable{Title: "???"}}
	if err := store.Create(context.Background(), &item); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if item.Slug != "service" {
		t.Fatalf("expected fallback slug service, got %s", item.Slug)
	}
}

func TestContentCreateRejectsBlankTitle(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := NewContentStore[db.Project](gdb)

	err := store.Create(context.Background(), &db.Project{Publishable: db.Publishable{Title: "   "}})
	if !errors.Is(err, ErrContentInvalidInput) {
		t.Fatalf("expected ErrContentInvalidInput, got %v", err)
	}
}

func TestContentCreateAppliesDefaults(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := NewContentStore[db.BlogPost](gdb)

	post := db.BlogPost{Publishable: db.Publishable{Title: "Notes"}, Tags: " go , ,sql "}
	if err := store.Create(context.Background(), &post); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if post.AuthorName != db.DefaultAuthorName || post.AuthorEmail != db.DefaultAuthorEmail || post.AuthorProfession != db.DefaultAuthorProfession {
		t.Fatalf("expected default author metadata, got %+v", post.Publishable)
	}
	if post.ReadTime != db.DefaultReadTime {
		t.Fatalf("expected default read time, got %d", post.ReadTime)
	}
	if post.Tags != "go, sql" {
		t.Fatalf("expected normalised tags, got %q", post.Tags)
	}
	if post.PublishedAt.IsZero() {
		t.Fatalf("expected publication timestamp to be set")
	}
}

func TestContentUpdateKeepsSlugAndPublishedAt(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := NewContentStore[db.Project](gdb)
	ctx := context.Background()

	published := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	created := mustCreateProject(t, store, "Premier titre", true, published)

	changes := db.Project{Publishable: db.Publishable{
		Title:       "Nouveau titre",
		Slug:        "ignored",
		IsPublished: true,
		PublishedAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}, DemoURL: " https://demo.example.com "}
	updated, err := store.Update(ctx, created.ID, &changes)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Slug != "premier-titre" {
		t.Fatalf("expected slug to stay premier-titre, got %s", updated.Slug)
	}

	reloaded, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Title != "Nouveau titre" || reloaded.DemoURL != "https://demo.example.com" {
		t.Fatalf("expected edited fields to persist, got %+v", reloaded)
	}
	if !reloaded.PublishedAt.Equal(published) {
		t.Fatalf("expected published_at %v to be unchanged, got %v", published, reloaded.PublishedAt)
	}
}

func TestContentUpdateMissing(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := NewContentStore[db.Project](gdb)

	_, err := store.Update(context.Background(), 42, &db.Project{Publishable: db.Publishable{Title: "x"}})
	if !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestGetPublishedBySlugHidesDrafts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	store := NewContentStore[db.BlogPost](gdb)
	ctx := context.Background()

	draft := mustCreatePost(t, store, "Brouillon", false, time.Time{})
	if _, err := store.GetPublishedBySlug(ctx, draft.Slug); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected draft lookup to fail with ErrContentNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, draft.ID); err != nil {
		t.Fatalf("expected draft row to exist: %v", err)
	}

	live := mustCreatePost(t, store, "En ligne", true, time.Time{})
	found, err := store.GetPublishedBySlug(ctx, "en-ligne")
	if err != nil || found.ID != live.ID {
		t.Fatalf("expected published post, got %+v (%v)", found, err)
	}
}

func TestContentDeleteUnlinksPoolsAndReservesSlug(t *testing.T) {
	gdb := setupServiceTestDB(t)
	profiles := NewProfileService(gdb, discardLogger())
	store := NewContentStore[db.Project](gdb)
	ctx := context.Background()

	profile := mustCreateProfile(t, profiles, db.SiteProfile{FirstName: "Awa", LastName: "Diop", IsPublished: true})
	item := mustCreateProject(t, store, "Pipeline", true, time.Time{})
	if err := profiles.SetPool(ctx, profile.ID, db.CategoryProjects, db.PoolKindFeatured, []uint{item.ID}); err != nil {
		t.Fatalf("set pool failed: %v", err)
	}

	if err := store.Delete(ctx, item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	ids, err := profiles.PoolIDs(ctx, profile.ID, db.CategoryProjects, db.PoolKindFeatured)
	if err != nil {
		t.Fatalf("pool ids failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected pool to be emptied, got %v", ids)
	}

	again := mustCreateProject(t, store, "Pipeline", true, time.Time{})
	if again.Slug != "pipeline-1" {
		t.Fatalf("expected soft-deleted slug to stay reserved, got %s", again.Slug)
	}

	if err := store.Delete(ctx, item.ID); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected second delete to report ErrContentNotFound, got %v", err)
	}
}
