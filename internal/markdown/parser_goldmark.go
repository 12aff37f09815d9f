package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-codex/internal/mathtex"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// GoldmarkParser implements interfaces.MarkdownParser. It holds no per-call
// state and is safe to share.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions
	math     interfaces.MathRenderer
}

var _ interfaces.MarkdownParser = (*GoldmarkParser)(nil)

// NewGoldmarkParser builds a parser. A nil math renderer means the default
// mathtex markup renderer; it is only used when ParseOptions.Math is set.
func NewGoldmarkParser(defaults interfaces.ParseOptions, math interfaces.MathRenderer) *GoldmarkParser {
	if math == nil {
		math = mathtex.NewMarkupRenderer(nil)
	}
	return &GoldmarkParser{defaults: defaults, math: math}
}

// Parse renders markdown with the parser defaults.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaults)
}

// ParseWithOptions renders markdown with opts.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := newGoldmarkEngine(opts, p.math).Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseWithHeadingIDs renders markdown with opts and sets ids[i] as the id
// attribute of the i-th heading in the rendered tree. When the tree holds a
// different number of headings than ids, no id is set and ok is false.
func (p *GoldmarkParser) ParseWithHeadingIDs(markdown []byte, opts interfaces.ParseOptions, ids []string) (out []byte, ok bool, err error) {
	engine := newGoldmarkEngine(opts, p.math)
	doc := engine.Parser().Parse(text.NewReader(markdown))

	var headings []*ast.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if heading, isHeading := n.(*ast.Heading); isHeading && entering {
			headings = append(headings, heading)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	ok = len(headings) == len(ids)
	if ok {
		for i, heading := range headings {
			if ids[i] != "" {
				heading.SetAttribute([]byte(attrID), []byte(ids[i]))
			}
		}
	}

	var buf bytes.Buffer
	if err = engine.Renderer().Render(&buf, markdown, doc); err != nil {
		return nil, false, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), ok, nil
}

// ParseTree returns the AST for source with math syntax enabled, which is
// what heading extraction walks.
func (p *GoldmarkParser) ParseTree(source []byte) ast.Node {
	opts := p.defaults
	opts.Math = true
	return newGoldmarkEngine(opts, p.math).Parser().Parse(text.NewReader(source))
}

// newGoldmarkEngine maps ParseOptions onto goldmark options. Heading ids are
// not generated by goldmark; ParseWithHeadingIDs and the heading decorator
// assign them.
func newGoldmarkEngine(opts interfaces.ParseOptions, math interfaces.MathRenderer) goldmark.Markdown {
	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		// preprocessed math arrives as raw HTML
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	exts := collectExtensions(opts.Extensions)
	if opts.Math {
		exts = append(exts, MathExtension(math))
	}

	engineOptions := []goldmark.Option{goldmark.WithExtensions(exts...)}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// KnownExtension reports whether name is a registered extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Footnote}
	}
	var out []goldmark.Extender
	seen := map[string]bool{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensionRegistry[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ext)
	}
	return out
}
