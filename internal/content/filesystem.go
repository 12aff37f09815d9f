package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

const (
	defaultDocumentDir = "content"
	marginNotesSuffix  = ".margin-notes.json"
	bibliographySuffix = ".bibliography.json"
)

// DefaultExtensions is the lookup order for document files.
var DefaultExtensions = []string{".mdx", ".md"}

// FileSource reads documents laid out as
// {type}/{documentDir}/{category}/{slug}{ext}, or without the category
// directory for flat types.
type FileSource struct {
	fsys        fs.FS
	documentDir string
	extensions  []string
	logger      interfaces.Logger
}

var (
	_ interfaces.ContentSource = (*FileSource)(nil)
	_ interfaces.ContentLister = (*FileSource)(nil)
)

// FileOption configures a FileSource.
type FileOption func(*FileSource)

// WithDocumentDir overrides the per-type document directory ("content").
// An empty value places documents directly under the type directory.
func WithDocumentDir(dir string) FileOption {
	return func(s *FileSource) {
		s.documentDir = strings.Trim(path.Clean("/"+dir), "/")
	}
}

// WithExtensions overrides the extension lookup order.
func WithExtensions(exts ...string) FileOption {
	return func(s *FileSource) {
		if len(exts) > 0 {
			s.extensions = append([]string(nil), exts...)
		}
	}
}

// WithFileLogger sets the logger.
func WithFileLogger(logger interfaces.Logger) FileOption {
	return func(s *FileSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFileSource serves documents from the root directory on disk.
func NewFileSource(root string, opts ...FileOption) (*FileSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("content root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s: not a directory", root)
	}
	return NewFileSourceFS(os.DirFS(root), opts...), nil
}

// NewFileSourceFS serves documents from fsys.
func NewFileSourceFS(fsys fs.FS, opts ...FileOption) *FileSource {
	s := &FileSource{
		fsys:        fsys,
		documentDir: defaultDocumentDir,
		extensions:  DefaultExtensions,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch implements interfaces.ContentSource.
func (s *FileSource) Fetch(ctx context.Context, key interfaces.DocumentKey) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	notFound := &NotFoundError{Resource: "document", Key: key.String()}

	t, ok := ParseType(key.Type)
	if !ok || !validSegment(key.Slug) || (key.Category != "" && !validSegment(key.Category)) {
		return nil, notFound
	}

	for _, dir := range s.candidateDirs(t, key.Category) {
		for _, ext := range s.extensions {
			name := path.Join(dir, key.Slug+ext)
			body, err := fs.ReadFile(s.fsys, name)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("content read %s: %w", name, err)
			}
			return s.document(key, dir, name, body), nil
		}
	}

	logging.WithDocument(s.logger, key).Debug("content.fetch.miss")
	return nil, notFound
}

func (s *FileSource) document(key interfaces.DocumentKey, dir, name string, body []byte) *interfaces.Document {
	doc := &interfaces.Document{
		Key:    interfaces.DocumentKey{Type: key.Type, Category: key.Category, Slug: key.Slug},
		Origin: name,
		Body:   body,
	}
	if info, err := fs.Stat(s.fsys, name); err == nil {
		doc.UpdatedAt = info.ModTime()
	}
	doc.MarginNotes = s.readSidecar(dir, key.Slug, marginNotesSuffix)
	doc.Bibliography = s.readSidecar(dir, key.Slug, bibliographySuffix)
	return doc
}

func (s *FileSource) readSidecar(dir, slug, suffix string) []byte {
	name := path.Join(dir, slug+suffix)
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("content.sidecar.read_failed", "path", name, "error", err)
		}
		return nil
	}
	return data
}

func (s *FileSource) candidateDirs(t Type, category string) []string {
	base := path.Join(t.Name, s.documentDir)
	switch t.Layout {
	case Flat:
		return []string{base}
	case OptionalCategory:
		if category == "" {
			return []string{base}
		}
		return []string{path.Join(base, category), base}
	default:
		if category == "" {
			return nil
		}
		return []string{path.Join(base, category)}
	}
}

// List implements interfaces.ContentLister. Keys come back sorted by path.
func (s *FileSource) List(ctx context.Context, contentType string) ([]interfaces.DocumentKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := ParseType(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, contentType)
	}

	base := path.Join(t.Name, s.documentDir)
	pattern := base + "/**/*{" + strings.Join(s.extensions, ",") + "}"
	matches, err := doublestar.Glob(s.fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("content list %s: %w", t.Name, err)
	}
	sort.Strings(matches)

	seen := map[string]bool{}
	var keys []interfaces.DocumentKey
	for _, match := range matches {
		rel := strings.TrimPrefix(match, base+"/")
		ext := path.Ext(rel)
		parts := strings.Split(strings.TrimSuffix(rel, ext), "/")

		key := interfaces.DocumentKey{Type: t.Name}
		switch {
		case len(parts) == 1 && t.Layout != Categorized:
			key.Slug = parts[0]
		case len(parts) == 2 && t.Layout != Flat:
			key.Category, key.Slug = parts[0], parts[1]
		default:
			s.logger.Debug("content.list.skipped", "path", match)
			continue
		}
		// one key per document whatever its extension
		if seen[key.String()] {
			continue
		}
		seen[key.String()] = true
		keys = append(keys, key)
	}
	return keys, nil
}

func validSegment(segment string) bool {
	if segment == "" || segment == "." || segment == ".." {
		return false
	}
	return !strings.ContainsAny(segment, `/\`) && fs.ValidPath(segment)
}
