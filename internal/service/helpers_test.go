package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vitrine/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return gdb
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustCreateProfile(t *testing.T, svc *ProfileService, profile db.SiteProfile) *db.SiteProfile {
	t.Helper()
	if err := svc.Create(context.Background(), &profile); err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return &profile
}

func mustCreateProject(t *testing.T, store *ContentStore[db.Project], title string, published bool, at time.Time) *db.Project {
	t.Helper()
	item := db.Project{Publishable: db.Publishable{Title: title, IsPublished: published, PublishedAt: at}}
	if err := store.Create(context.Background(), &item); err != nil {
		t.Fatalf("create project %q failed: %v", title, err)
	}
	return &item
}

func mustCreatePost(t *testing.T, store *ContentStore[db.BlogPost], title string, published bool, at time.Time) *db.BlogPost {
	t.Helper()
	item := db.BlogPost{Publishable: db.Publishable{Title: title, IsPublished: published, PublishedAt: at}}
	if err := store.Create(context.Background(), &item); err != nil {
		t.Fatalf("create post %q failed: %v", title, err)
	}
	return &item
}

func projectIDs(items []db.Project) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func postIDs(items []db.BlogPost) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
