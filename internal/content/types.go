// Package content knows the content collections and serves raw document text
// from the filesystem, the relational store or memory.
package content

import (
	"slices"
	"strings"
)

// Layout describes how a content type arranges documents on disk.
type Layout int

const (
	// Categorized types always live under a category directory.
	Categorized Layout = iota
	// Flat types have no category.
	Flat
	// OptionalCategory types may or may not use a category directory.
	OptionalCategory
)

func (l Layout) String() string {
	switch l {
	case Flat:
		return "flat"
	case OptionalCategory:
		return "optional"
	default:
		return "categorized"
	}
}

// Type is one content collection.
type Type struct {
	Name   string
	Layout Layout
	// CategoryColumn is the discriminant column in the type's table.
	CategoryColumn string
}

// UncategorizedSlug stands in for a missing category.
const UncategorizedSlug = "uncategorized"

var registry = []Type{
	{Name: "blog", Layout: OptionalCategory},
	{Name: "cases", Layout: Categorized},
	{Name: "conspiracies", Layout: Categorized},
	{Name: "diary", Layout: Categorized},
	{Name: "dossiers", Layout: Categorized},
	{Name: "essays", Layout: Categorized},
	{Name: "fiction", Layout: Categorized},
	{Name: "lab", Layout: Categorized},
	{Name: "lectures", Layout: Categorized},
	{Name: "libers", Layout: Categorized},
	{Name: "links", Layout: Categorized},
	{Name: "news", Layout: Categorized},
	{Name: "notes", Layout: OptionalCategory},
	{Name: "now", Layout: Flat},
	{Name: "ocs", Layout: Categorized},
	{Name: "papers", Layout: Categorized},
	{Name: "problems", Layout: Categorized},
	{Name: "progymnasmata", Layout: Categorized},
	{Name: "proofs", Layout: Categorized},
	{Name: "reviews", Layout: Categorized},
	{Name: "shortform", Layout: Flat},
	{Name: "til", Layout: Flat},
	{Name: "verse", Layout: OptionalCategory, CategoryColumn: "verse_type"},
}

// Types returns every registered content type sorted by name.
func Types() []Type {
	out := slices.Clone(registry)
	for i := range out {
		if out[i].CategoryColumn == "" {
			out[i].CategoryColumn = "category_slug"
		}
	}
	return out
}

// TypeNames returns the registered type names sorted.
func TypeNames() []string {
	names := make([]string, len(registry))
	for i, t := range registry {
		names[i] = t.Name
	}
	return names
}

// ParseType looks up a type by name, case-insensitively.
func ParseType(name string) (Type, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range Types() {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}
