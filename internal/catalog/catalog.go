// Package catalog builds the per-type lookup tables the slug resolver reads.
// It walks a content source, reads each document's metadata block and writes
// one row per document into the table named after its content type.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/internal/frontmatter"
	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

var ErrSourceRequired = errors.New("catalog: content source is required")

// Source is a content source that can enumerate its documents.
type Source interface {
	interfaces.ContentSource
	interfaces.ContentLister
}

// DocumentStore receives full documents when the relational source is in
// use. content.BunSource satisfies it.
type DocumentStore interface {
	Save(ctx context.Context, doc *interfaces.Document) (*content.DocumentRecord, error)
}

// Entry is one catalog row.
type Entry struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Slug     string `json:"slug"`
	Title    string `json:"title,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Path is the canonical URL path for the entry.
func (e Entry) Path() string {
	category := e.Category
	if category == "" {
		category = content.UncategorizedSlug
	}
	return "/" + e.Type + "/" + category + "/" + e.Slug
}

// Report summarises a sync run.
type Report struct {
	Entries []Entry `json:"entries"`
	// Written counts rows stored per content type. Empty on dry runs.
	Written map[string]int `json:"written,omitempty"`
	// Duplicates maps a slug to every type that registers it.
	Duplicates map[string][]string `json:"duplicates,omitempty"`
	Skipped    []string            `json:"skipped,omitempty"`
	DryRun     bool                `json:"dry_run"`
}

// Syncer scans a source and rewrites the catalog tables.
type Syncer struct {
	source    Source
	db        bun.IDB
	documents DocumentStore
	types     []content.Type
	logger    interfaces.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithDB sets the database holding the catalog tables. Without one, Sync
// behaves like a dry run.
func WithDB(db bun.IDB) Option {
	return func(s *Syncer) {
		s.db = db
	}
}

// WithDocumentStore mirrors every scanned document into store.
func WithDocumentStore(store DocumentStore) Option {
	return func(s *Syncer) {
		s.documents = store
	}
}

// WithTypes limits the scan to the named content types.
func WithTypes(types ...content.Type) Option {
	return func(s *Syncer) {
		if len(types) > 0 {
			s.types = types
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSyncer(source Source, opts ...Option) (*Syncer, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	s := &Syncer{
		source: source,
		types:  content.Types(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scan reads every document of the configured types and returns their
// entries sorted by type, category and slug.
func (s *Syncer) Scan(ctx context.Context) ([]Entry, []string, error) {
	var (
		entries []Entry
		skipped []string
	)
	for _, t := range s.types {
		keys, err := s.source.List(ctx, t.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog scan %s: %w", t.Name, err)
		}
		for _, key := range keys {
			entry, err := s.entry(ctx, key)
			if err != nil {
				s.logger.Warn("catalog.scan.skipped", "document", key.String(), "error", err)
				skipped = append(skipped, key.String())
				continue
			}
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Slug < b.Slug
	})
	return entries, skipped, nil
}

func (s *Syncer) entry(ctx context.Context, key interfaces.DocumentKey) (Entry, error) {
	doc, err := s.source.Fetch(ctx, key)
	if err != nil {
		return Entry{}, err
	}
	parsed, err := frontmatter.Parse(string(doc.Body))
	if err != nil {
		s.logger.Debug("catalog.scan.metadata_invalid", "document", key.String(), "error", err)
	}
	category, err := normalizeCategory(key.Category)
	if err != nil {
		return Entry{}, err
	}
	if s.documents != nil {
		if _, err := s.documents.Save(ctx, doc); err != nil {
			return Entry{}, err
		}
	}
	return Entry{
		Type:     key.Type,
		Category: category,
		Slug:     key.Slug,
		Title:    parsed.Metadata.Title,
		Date:     parsed.Metadata.Date,
	}, nil
}

// Sync scans the source and, unless dryRun is set, replaces the contents of
// every scanned type's table inside one transaction.
func (s *Syncer) Sync(ctx context.Context, dryRun bool) (*Report, error) {
	entries, skipped, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	report := &Report{
		Entries:    entries,
		Duplicates: Duplicates(entries),
		Skipped:    skipped,
		DryRun:     dryRun || s.db == nil,
	}
	for slugValue, types := range report.Duplicates {
		s.logger.Warn("catalog.sync.duplicate_slug", "slug", slugValue, "types", strings.Join(types, ","))
	}
	if report.DryRun {
		return report, nil
	}

	written, err := s.write(ctx, entries)
	if err != nil {
		return nil, err
	}
	report.Written = written
	s.logger.Info("catalog.sync.completed", "entries", len(entries), "types", len(written))
	return report, nil
}

func (s *Syncer) write(ctx context.Context, entries []Entry) (map[string]int, error) {
	byType := map[string][]Entry{}
	for _, e := range entries {
		byType[e.Type] = append(byType[e.Type], e)
	}
	written := map[string]int{}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, t := range s.types {
			if err := ensureTable(ctx, tx, t); err != nil {
				return err
			}
			if _, err := tx.NewDelete().TableExpr("?", bun.Ident(t.Name)).Where("1 = 1").Exec(ctx); err != nil {
				return fmt.Errorf("catalog clear %s: %w", t.Name, err)
			}
			for _, e := range byType[t.Name] {
				row := map[string]any{
					"slug":           e.Slug,
					t.CategoryColumn: e.Category,
					"title":          e.Title,
					"date":           e.Date,
				}
				if _, err := tx.NewInsert().Model(&row).TableExpr("?", bun.Ident(t.Name)).Exec(ctx); err != nil {
					return fmt.Errorf("catalog insert %s/%s: %w", t.Name, e.Slug, err)
				}
			}
			written[t.Name] = len(byType[t.Name])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

func ensureTable(ctx context.Context, db bun.IDB, t content.Type) error {
	_, err := db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS ? (slug TEXT NOT NULL, ? TEXT, title TEXT, date TEXT)",
		bun.Ident(t.Name), bun.Ident(t.CategoryColumn))
	if err != nil {
		return fmt.Errorf("catalog create %s: %w", t.Name, err)
	}
	return nil
}

// Duplicates maps every slug registered by more than one content type to
// the sorted list of those types.
func Duplicates(entries []Entry) map[string][]string {
	owners := map[string]map[string]bool{}
	for _, e := range entries {
		if owners[e.Slug] == nil {
			owners[e.Slug] = map[string]bool{}
		}
		owners[e.Slug][e.Type] = true
	}
	out := map[string][]string{}
	for slugValue, types := range owners {
		if len(types) < 2 {
			continue
		}
		list := make([]string, 0, len(types))
		for t := range types {
			list = append(list, t)
		}
		sort.Strings(list)
		out[slugValue] = list
	}
	return out
}

func normalizeCategory(category string) (string, error) {
	if strings.TrimSpace(category) == "" {
		return content.UncategorizedSlug, nil
	}
	normalized, err := slug.Normalize(category)
	if err != nil {
		return "", fmt.Errorf("catalog category %q: %w", category, err)
	}
	if normalized == "" {
		return content.UncategorizedSlug, nil
	}
	return normalized, nil
}
