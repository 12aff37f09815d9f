package content

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

// MemorySource is an in-memory content source for scaffolding and tests.
type MemorySource struct {
	mu   sync.RWMutex
	docs map[interfaces.DocumentKey]*interfaces.Document
}

var (
	_ interfaces.ContentSource = (*MemorySource)(nil)
	_ interfaces.ContentLister = (*MemorySource)(nil)
)

// NewMemorySource creates a source seeded with docs.
func NewMemorySource(docs ...*interfaces.Document) *MemorySource {
	m := &MemorySource{docs: make(map[interfaces.DocumentKey]*interfaces.Document)}
	for _, doc := range docs {
		m.Put(doc)
	}
	return m
}

// Put stores a copy of doc under its key.
func (m *MemorySource) Put(doc *interfaces.Document) {
	if doc == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.Key] = cloneDocument(doc)
}

// Delete removes the document stored under key.
func (m *MemorySource) Delete(key interfaces.DocumentKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
}

// Fetch returns a copy of the stored document. An optional-category key
// falls back to the uncategorized entry.
func (m *MemorySource) Fetch(ctx context.Context, key interfaces.DocumentKey) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if doc, ok := m.docs[key]; ok {
		return cloneDocument(doc), nil
	}
	if t, ok := ParseType(key.Type); ok && t.Layout == OptionalCategory && key.Category != "" {
		bare := interfaces.DocumentKey{Type: key.Type, Slug: key.Slug}
		if doc, ok := m.docs[bare]; ok {
			out := cloneDocument(doc)
			out.Key = key
			return out, nil
		}
	}
	return nil, &NotFoundError{Resource: "document", Key: key.String()}
}

// List returns the keys stored for contentType, sorted.
func (m *MemorySource) List(ctx context.Context, contentType string) ([]interfaces.DocumentKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := ParseType(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, contentType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []interfaces.DocumentKey
	for key := range m.docs {
		if key.Type == t.Name {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, func(a, b interfaces.DocumentKey) int {
		return cmp.Or(strings.Compare(a.Category, b.Category), strings.Compare(a.Slug, b.Slug))
	})
	return keys, nil
}

func cloneDocument(doc *interfaces.Document) *interfaces.Document {
	out := *doc
	out.Body = slices.Clone(doc.Body)
	out.MarginNotes = slices.Clone(doc.MarginNotes)
	out.Bibliography = slices.Clone(doc.Bibliography)
	return &out
}
