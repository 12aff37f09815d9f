package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

// DocumentRecord is the relational form of a document and its sidecars.
type DocumentRecord struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID           uuid.UUID `bun:",pk,type:uuid"                json:"id"`
	ContentType  string    `bun:"content_type,notnull"         json:"content_type"`
	CategorySlug string    `bun:"category_slug,notnull"        json:"category_slug"`
	Slug         string    `bun:"slug,notnull"                 json:"slug"`
	Body         string    `bun:"body,notnull"                 json:"body"`
	MarginNotes  string    `bun:"margin_notes"                 json:"margin_notes,omitempty"`
	Bibliography string    `bun:"bibliography"                 json:"bibliography,omitempty"`
	Origin       string    `bun:"origin"                       json:"origin,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Key returns the document key for the record. Stored rows without a
// category map back to an empty category.
func (r *DocumentRecord) Key() interfaces.DocumentKey {
	key := interfaces.DocumentKey{Type: r.ContentType, Category: r.CategorySlug, Slug: r.Slug}
	if key.Category == UncategorizedSlug {
		if t, ok := ParseType(r.ContentType); ok && t.Layout != Categorized {
			key.Category = ""
		}
	}
	return key
}

// Document converts the record into a source document.
func (r *DocumentRecord) Document() *interfaces.Document {
	doc := &interfaces.Document{
		Key:       r.Key(),
		Origin:    r.Origin,
		Body:      []byte(r.Body),
		UpdatedAt: r.UpdatedAt,
	}
	if r.MarginNotes != "" {
		doc.MarginNotes = []byte(r.MarginNotes)
	}
	if r.Bibliography != "" {
		doc.Bibliography = []byte(r.Bibliography)
	}
	return doc
}

// RecordFromDocument builds a record for persistence.
func RecordFromDocument(doc *interfaces.Document) *DocumentRecord {
	category := doc.Key.Category
	if category == "" {
		category = UncategorizedSlug
	}
	return &DocumentRecord{
		ContentType:  doc.Key.Type,
		CategorySlug: category,
		Slug:         doc.Key.Slug,
		Body:         string(doc.Body),
		MarginNotes:  string(doc.MarginNotes),
		Bibliography: string(doc.Bibliography),
		Origin:       doc.Origin,
		UpdatedAt:    doc.UpdatedAt,
	}
}
