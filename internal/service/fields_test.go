package service

import (
	"testing"

	"github.com/vitrine/internal/db"
)

func TestContentFieldGroups(t *testing.T) {
	specific := map[db.Category]string{
		db.CategoryProjects: "links",
		db.CategoryBlog:     "metadata",
		db.CategoryServices: "offer",
	}
	for category, name := range specific {
		groups := ContentFieldGroups(category)
		if len(groups) != 5 {
			t.Fatalf("%s: expected 5 groups, got %d", category, len(groups))
		}
		order := []string{"general", "image", name, "publication", "author"}
		for i, want := range order {
			if groups[i].Name != want {
				t.Fatalf("%s: group %d expected %s, got %s", category, i, want, groups[i].Name)
			}
		}
	}

	if ContentFieldGroups(db.CategoryContact) != nil {
		t.Fatalf("expected no field groups for contact")
	}
}
