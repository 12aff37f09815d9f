package interfaces

import "context"

// MarkdownParser converts markdown bytes into HTML.
type MarkdownParser interface {
	// Parse converts markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises markdown rendering. Field names stay readable for
// configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
	// Math toggles the $..$ / $$..$$ inline and block math syntax.
	Math bool
}

// MathRenderer turns a single TeX expression into display markup. Display
// selects block rendering; inline otherwise.
type MathRenderer interface {
	RenderMath(expr string, display bool) (string, error)
}

// Heading is one extracted document heading.
//
// Text keeps math in its source form ($expr$ for inline, $$expr$$ for block)
// while HTML carries the rendered copy used for display. Number has exactly
// Level dot-separated segments.
type Heading struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	HTML   string `json:"html,omitempty"`
	Level  int    `json:"level"`
	Number string `json:"number"`
}

// OutlineNode nests headings into a tree for table-of-contents rendering.
type OutlineNode struct {
	Heading  Heading        `json:"heading"`
	Children []*OutlineNode `json:"children,omitempty"`
}

// MarginNote is a side annotation attached to a document. Index orders notes;
// Priority breaks ties (higher first).
type MarginNote struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Index    int    `json:"index" yaml:"index"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	Priority *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// BibliographyEntry is a citation attached to a document.
type BibliographyEntry struct {
	ID        string `json:"id" yaml:"id"`
	Author    string `json:"author" yaml:"author"`
	Title     string `json:"title" yaml:"title"`
	Year      int    `json:"year" yaml:"year"`
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	Type      string `json:"type" yaml:"type"`
}

// Snapshot is the immutable per-request result of processing one document.
type Snapshot struct {
	Key          DocumentKey         `json:"key"`
	Metadata     Metadata            `json:"metadata"`
	Body         string              `json:"-"`
	HTML         string              `json:"html"`
	Headings     []Heading           `json:"headings"`
	MarginNotes  []MarginNote        `json:"margin_notes"`
	Bibliography []BibliographyEntry `json:"bibliography"`
}

// Metadata is the YAML block that sits between the third and fourth
// frontmatter delimiters.
type Metadata struct {
	Title        string              `yaml:"title" json:"title"`
	Slug         string              `yaml:"slug" json:"slug"`
	Date         string              `yaml:"date" json:"date,omitempty"`
	Updated      string              `yaml:"updated" json:"updated,omitempty"`
	Status       string              `yaml:"status" json:"status,omitempty"`
	Certainty    string              `yaml:"certainty" json:"certainty,omitempty"`
	Importance   int                 `yaml:"importance" json:"importance,omitempty"`
	Author       string              `yaml:"author" json:"author,omitempty"`
	Description  string              `yaml:"description" json:"description,omitempty"`
	Tags         []string            `yaml:"tags" json:"tags,omitempty"`
	Category     string              `yaml:"category" json:"category,omitempty"`
	Sequences    []string            `yaml:"sequences" json:"sequences,omitempty"`
	Cover        string              `yaml:"cover" json:"cover,omitempty"`
	MarginNotes  []MarginNote        `yaml:"margin_notes,omitempty" json:"-"`
	Bibliography []BibliographyEntry `yaml:"bibliography,omitempty" json:"-"`
}

// DocumentProcessor produces snapshots for documents addressed by key.
type DocumentProcessor interface {
	Process(ctx context.Context, key DocumentKey) (*Snapshot, error)
}
