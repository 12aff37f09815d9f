// Package annotations orders the margin notes and bibliography attached to a
// document. It never scans prose; input comes from the metadata block or
// sidecar JSON supplied by the content source.
package annotations

import (
	"cmp"
	"slices"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

// Payload is the structured annotation input for one document.
type Payload struct {
	MarginNotes  []interfaces.MarginNote
	Bibliography []interfaces.BibliographyEntry
}

// Locate returns a copy of p with margin notes ordered by Index ascending,
// ties broken by Priority descending (nil counts as 0), remaining ties in
// source order. Bibliography order is kept. Nil collections become empty.
func Locate(p Payload) Payload {
	notes := slices.Clone(p.MarginNotes)
	if notes == nil {
		notes = []interfaces.MarginNote{}
	}
	slices.SortStableFunc(notes, func(a, b interfaces.MarginNote) int {
		if c := cmp.Compare(a.Index, b.Index); c != 0 {
			return c
		}
		return cmp.Compare(priority(b), priority(a))
	})

	bib := slices.Clone(p.Bibliography)
	if bib == nil {
		bib = []interfaces.BibliographyEntry{}
	}
	return Payload{MarginNotes: notes, Bibliography: bib}
}

// Merge prefers sidecar collections and falls back to the metadata block,
// per collection.
func Merge(meta interfaces.Metadata, sidecar Payload) Payload {
	out := Payload{MarginNotes: sidecar.MarginNotes, Bibliography: sidecar.Bibliography}
	if len(out.MarginNotes) == 0 {
		out.MarginNotes = meta.MarginNotes
	}
	if len(out.Bibliography) == 0 {
		out.Bibliography = meta.Bibliography
	}
	return out
}

func priority(n interfaces.MarginNote) int {
	if n.Priority == nil {
		return 0
	}
	return *n.Priority
}
