package migrations_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/internal/migrations"
	"github.com/goliatone/go-codex/pkg/interfaces"
	"github.com/goliatone/go-codex/pkg/testsupport"
)

func TestApplyCreatesDocumentsTable(t *testing.T) {
	ctx := context.Background()
	db, _ := testsupport.OpenSQLite(t)

	applied, err := migrations.Apply(ctx, db)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(applied) != 1 || applied[0] != "20240101000000" {
		t.Fatalf("expected the documents migration, got %v", applied)
	}

	again, err := migrations.Apply(ctx, db)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected nothing pending, got %v", again)
	}

	src := content.NewBunSource(db)
	key := interfaces.DocumentKey{Type: "essays", Category: "craft", Slug: "on-lists"}
	if _, err := src.Save(ctx, &interfaces.Document{Key: key, Body: []byte("# On lists\n")}); err != nil {
		t.Fatalf("save into migrated table: %v", err)
	}
	doc, err := src.Fetch(ctx, key)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(doc.Body) != "# On lists\n" {
		t.Fatalf("unexpected body %q", doc.Body)
	}
}
