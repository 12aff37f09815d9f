package content

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

// BunSource serves documents stored in the documents table.
type BunSource struct {
	repo  repository.Repository[*DocumentRecord]
	clock func() time.Time
}

var (
	_ interfaces.ContentSource = (*BunSource)(nil)
	_ interfaces.ContentLister = (*BunSource)(nil)
)

func NewBunSource(db *bun.DB) *BunSource {
	return NewBunSourceWithCache(db, nil, nil)
}

// NewBunSourceWithCache constructs a BunSource whose reads go through the
// repository cache when both cache arguments are set.
func NewBunSourceWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunSource {
	base := NewDocumentRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunSource{repo: wrapped, clock: time.Now}
}

// Fetch implements interfaces.ContentSource.
func (s *BunSource) Fetch(ctx context.Context, key interfaces.DocumentKey) (*interfaces.Document, error) {
	t, ok := ParseType(key.Type)
	if !ok || key.Slug == "" {
		return nil, &NotFoundError{Resource: "document", Key: key.String()}
	}
	for _, category := range storedCategories(t, key.Category) {
		record, err := s.find(ctx, t.Name, category, key.Slug)
		if err != nil {
			return nil, mapRepositoryError(err, "document", key.String())
		}
		if record != nil {
			doc := record.Document()
			doc.Key = key
			return doc, nil
		}
	}
	return nil, &NotFoundError{Resource: "document", Key: key.String()}
}

func (s *BunSource) find(ctx context.Context, contentType, category, slug string) (*DocumentRecord, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_type = ?", contentType).
				Where("?TableAlias.category_slug = ?", category).
				Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// List implements interfaces.ContentLister.
func (s *BunSource) List(ctx context.Context, contentType string) ([]interfaces.DocumentKey, error) {
	t, ok := ParseType(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, contentType)
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_type = ?", t.Name).
				OrderExpr("?TableAlias.category_slug ASC").
				OrderExpr("?TableAlias.slug ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "document", t.Name)
	}
	keys := make([]interfaces.DocumentKey, 0, len(records))
	for _, record := range records {
		keys = append(keys, record.Key())
	}
	return keys, nil
}

// Save inserts or updates the document identified by doc.Key.
func (s *BunSource) Save(ctx context.Context, doc *interfaces.Document) (*DocumentRecord, error) {
	if doc == nil {
		return nil, fmt.Errorf("document repository error: nil document")
	}
	if _, ok := ParseType(doc.Key.Type); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, doc.Key.Type)
	}
	record := RecordFromDocument(doc)
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = s.clock()
	}

	existing, err := s.find(ctx, record.ContentType, record.CategorySlug, record.Slug)
	if err != nil {
		return nil, mapRepositoryError(err, "document", doc.Key.String())
	}
	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		updated, err := s.repo.Update(ctx, record)
		if err != nil {
			return nil, mapRepositoryError(err, "document", doc.Key.String())
		}
		return updated, nil
	}

	record.ID = uuid.New()
	record.CreatedAt = record.UpdatedAt
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "document", doc.Key.String())
	}
	return created, nil
}

// storedCategories lists the category_slug values to probe for a key, in
// the same order the filesystem source probes directories.
func storedCategories(t Type, category string) []string {
	switch t.Layout {
	case Flat:
		return []string{UncategorizedSlug}
	case OptionalCategory:
		if category == "" || category == UncategorizedSlug {
			return []string{UncategorizedSlug}
		}
		return []string{category, UncategorizedSlug}
	default:
		if category == "" {
			return nil
		}
		return []string{category}
	}
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
