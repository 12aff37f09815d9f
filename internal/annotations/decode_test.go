package annotations

import (
	"errors"
	"testing"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

func TestDecodeMarginNotes(t *testing.T) {
	notes, err := DecodeMarginNotes([]byte(`[
		{"id": "n1", "title": "Aside", "content": "text", "index": 3, "priority": 2},
		{"id": "n2", "title": "Other", "content": "more", "index": 1}
	]`))
	if err != nil {
		t.Fatalf("DecodeMarginNotes: %v", err)
	}
	if len(notes) != 2 || notes[0].Priority == nil || *notes[0].Priority != 2 || notes[1].Priority != nil {
		t.Fatalf("unexpected notes %+v", notes)
	}
}

func TestDecodeMarginNotesRejectsSchemaViolation(t *testing.T) {
	_, err := DecodeMarginNotes([]byte(`[{"id": "n1", "index": "three"}]`))
	if !errors.Is(err, ErrInvalidSidecar) {
		t.Fatalf("expected ErrInvalidSidecar, got %v", err)
	}
}

func TestDecoderToleratesBrokenSidecars(t *testing.T) {
	d := NewDecoder(nil)
	p := d.Decode([]byte(`{not json`), []byte(`[{"id": "b1", "title": "Book", "year": 1999, "type": "book"}]`))
	if len(p.MarginNotes) != 0 {
		t.Fatalf("expected broken notes to be dropped, got %v", p.MarginNotes)
	}
	if len(p.Bibliography) != 1 || p.Bibliography[0].Year != 1999 {
		t.Fatalf("expected bibliography to survive, got %v", p.Bibliography)
	}
}

func TestSanitizeDropsInvalidEntries(t *testing.T) {
	d := NewDecoder(nil)
	got := d.Sanitize(Payload{
		MarginNotes: []interfaces.MarginNote{
			{ID: " ", Title: "blank id"},
			{ID: "ok", Title: "kept"},
			{ID: "neg", Title: "x", Index: -1},
		},
		Bibliography: []interfaces.BibliographyEntry{
			{ID: "b1", Title: "Kept", Type: "Journal"},
			{ID: "b2"},
			{ID: "b3", Title: "Bad url", URL: "not a url"},
		},
	})

	if len(got.MarginNotes) != 1 || got.MarginNotes[0].ID != "ok" {
		t.Fatalf("unexpected notes %+v", got.MarginNotes)
	}
	if len(got.Bibliography) != 1 || got.Bibliography[0].Type != "other" {
		t.Fatalf("unexpected bibliography %+v", got.Bibliography)
	}
}
