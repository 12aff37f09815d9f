package content_test

import (
	"slices"
	"testing"

	"github.com/goliatone/go-codex/internal/content"
)

func TestParseType(t *testing.T) {
	verse, ok := content.ParseType(" Verse ")
	if !ok {
		t.Fatalf("expected verse to be registered")
	}
	if verse.CategoryColumn != "verse_type" || verse.Layout != content.OptionalCategory {
		t.Fatalf("unexpected verse type %+v", verse)
	}

	essays, ok := content.ParseType("essays")
	if !ok || essays.CategoryColumn != "category_slug" || essays.Layout != content.Categorized {
		t.Fatalf("unexpected essays type %+v", essays)
	}

	if _, ok := content.ParseType("podcasts"); ok {
		t.Fatalf("expected unknown type")
	}
}

func TestTypeNamesSorted(t *testing.T) {
	names := content.TypeNames()
	if !slices.IsSorted(names) {
		t.Fatalf("expected sorted names, got %v", names)
	}
	if !slices.Contains(names, "til") || !slices.Contains(names, "diary") {
		t.Fatalf("missing registered types in %v", names)
	}
}
