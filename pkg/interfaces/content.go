package interfaces

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrDocumentNotFound is returned by content sources when no document matches
// the requested key.
var ErrDocumentNotFound = errors.New("codex: document not found")

// DocumentKey addresses one document. (Type, Slug) is unique; a slug alone is
// not. Category is empty for flat content types.
type DocumentKey struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Slug     string `json:"slug"`
}

// String renders the key as type/category/slug, skipping an empty category.
func (k DocumentKey) String() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{k.Type, k.Category, k.Slug} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "/")
}

// Document is raw markup plus optional sidecar annotation payloads.
type Document struct {
	Key       DocumentKey
	Origin    string
	Body      []byte
	UpdatedAt time.Time
	// MarginNotes and Bibliography hold raw JSON sidecar payloads when the
	// source has them. Either may be nil.
	MarginNotes  []byte
	Bibliography []byte
}

// ContentSource fetches raw document text. The filesystem and relational
// stores are interchangeable behind it.
type ContentSource interface {
	Fetch(ctx context.Context, key DocumentKey) (*Document, error)
}

// ContentLister is an optional ContentSource extension that enumerates the
// documents stored for one content type.
type ContentLister interface {
	List(ctx context.Context, contentType string) ([]DocumentKey, error)
}
