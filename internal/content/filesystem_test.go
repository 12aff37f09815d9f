package content_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"essays/content/on-writing/clarity.mdx":                   {Data: []byte("# Clarity\n")},
		"essays/content/on-writing/clarity.md":                    {Data: []byte("# Old clarity\n")},
		"essays/content/on-writing/clarity.margin-notes.json":     {Data: []byte(`[{"id":"n1","title":"T","content":"C","index":0}]`)},
		"essays/content/on-writing/clarity.bibliography.json":     {Data: []byte(`[]`)},
		"essays/content/on-writing/legacy.md":                     {Data: []byte("# Legacy\n")},
		"essays/content/stray.mdx":                                {Data: []byte("# Stray\n")},
		"blog/content/hello.mdx":                                  {Data: []byte("# Hello\n")},
		"blog/content/travel/lisbon.mdx":                          {Data: []byte("# Lisbon\n")},
		"til/content/bash-traps.md":                               {Data: []byte("# Bash traps\n")},
		"til/content/nested/ignored.md":                           {Data: []byte("# Ignored\n")},
		"verse/content/sonnet/winter.mdx":                         {Data: []byte("# Winter\n")},
		"essays/content/on-writing/clarity.unrelated-sidecar.txt": {Data: []byte("x")},
	}
}

func TestFileSourcePrefersMDX(t *testing.T) {
	src := content.NewFileSourceFS(sampleFS())

	doc, err := src.Fetch(context.Background(), interfaces.DocumentKey{Type: "essays", Category: "on-writing", Slug: "clarity"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(doc.Body) != "# Clarity\n" {
		t.Fatalf("expected mdx body, got %q", doc.Body)
	}
	if doc.Origin != "essays/content/on-writing/clarity.mdx" {
		t.Fatalf("unexpected origin %q", doc.Origin)
	}
	if len(doc.MarginNotes) == 0 {
		t.Fatalf("expected margin notes sidecar to be loaded")
	}
	if string(doc.Bibliography) != "[]" {
		t.Fatalf("unexpected bibliography %q", doc.Bibliography)
	}
}

func TestFileSourceFallsBackToMD(t *testing.T) {
	src := content.NewFileSourceFS(sampleFS())

	doc, err := src.Fetch(context.Background(), interfaces.DocumentKey{Type: "essays", Category: "on-writing", Slug: "legacy"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(doc.Body) != "# Legacy\n" {
		t.Fatalf("unexpected body %q", doc.Body)
	}
	if doc.MarginNotes != nil || doc.Bibliography != nil {
		t.Fatalf("expected no sidecars")
	}
}

func TestFileSourceLayouts(t *testing.T) {
	src := content.NewFileSourceFS(sampleFS())
	ctx := context.Background()

	cases := []struct {
		name string
		key  interfaces.DocumentKey
		body string
	}{
		{"optional without category", interfaces.DocumentKey{Type: "blog", Slug: "hello"}, "# Hello\n"},
		{"optional with category", interfaces.DocumentKey{Type: "blog", Category: "travel", Slug: "lisbon"}, "# Lisbon\n"},
		{"optional category falls back to flat", interfaces.DocumentKey{Type: "blog", Category: "misc", Slug: "hello"}, "# Hello\n"},
		{"flat ignores category", interfaces.DocumentKey{Type: "til", Category: "anything", Slug: "bash-traps"}, "# Bash traps\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := src.Fetch(ctx, tc.key)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if string(doc.Body) != tc.body {
				t.Fatalf("expected %q, got %q", tc.body, doc.Body)
			}
		})
	}
}

func TestFileSourceNotFound(t *testing.T) {
	src := content.NewFileSourceFS(sampleFS())
	ctx := context.Background()

	keys := []interfaces.DocumentKey{
		{Type: "essays", Category: "on-writing", Slug: "missing"},
		{Type: "essays", Slug: "stray"},
		{Type: "unknown", Category: "x", Slug: "y"},
		{Type: "essays", Category: "..", Slug: "clarity"},
		{Type: "essays", Category: "on-writing", Slug: "../on-writing/clarity"},
	}
	for _, key := range keys {
		_, err := src.Fetch(ctx, key)
		if !errors.Is(err, interfaces.ErrDocumentNotFound) {
			t.Fatalf("%s: expected not found, got %v", key, err)
		}
		var nf *content.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("%s: expected NotFoundError, got %T", key, err)
		}
	}
}

func TestFileSourceList(t *testing.T) {
	src := content.NewFileSourceFS(sampleFS())
	ctx := context.Background()

	essays, err := src.List(ctx, "essays")
	if err != nil {
		t.Fatalf("list essays: %v", err)
	}
	want := []string{"essays/on-writing/clarity", "essays/on-writing/legacy"}
	if len(essays) != len(want) {
		t.Fatalf("expected %v, got %v", want, essays)
	}
	for i, key := range essays {
		if key.String() != want[i] {
			t.Fatalf("key %d: expected %s, got %s", i, want[i], key)
		}
	}

	til, err := src.List(ctx, "til")
	if err != nil {
		t.Fatalf("list til: %v", err)
	}
	if len(til) != 1 || til[0].Slug != "bash-traps" || til[0].Category != "" {
		t.Fatalf("unexpected til keys %v", til)
	}

	blog, err := src.List(ctx, "blog")
	if err != nil {
		t.Fatalf("list blog: %v", err)
	}
	if len(blog) != 2 {
		t.Fatalf("expected two blog keys, got %v", blog)
	}

	if _, err := src.List(ctx, "nope"); !errors.Is(err, content.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestFileSourceCustomDocumentDir(t *testing.T) {
	fsys := fstest.MapFS{
		"papers/proofs/induction.md": {Data: []byte("# Induction\n")},
	}
	src := content.NewFileSourceFS(fsys, content.WithDocumentDir(""))

	doc, err := src.Fetch(context.Background(), interfaces.DocumentKey{Type: "papers", Category: "proofs", Slug: "induction"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.Origin != "papers/proofs/induction.md" {
		t.Fatalf("unexpected origin %q", doc.Origin)
	}
}

func TestNewFileSourceRejectsMissingRoot(t *testing.T) {
	if _, err := content.NewFileSource(t.TempDir() + "/missing"); err == nil {
		t.Fatalf("expected error for missing root")
	}
}
