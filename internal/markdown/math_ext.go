package markdown

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-codex/internal/mathtex"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

var (
	// KindInlineMath is the node kind for $..$ and same-line $$..$$ spans.
	KindInlineMath = ast.NewNodeKind("InlineMath")
	// KindMathBlock is the node kind for $$ fenced blocks.
	KindMathBlock = ast.NewNodeKind("MathBlock")
)

var mathFence = []byte("$$")

// InlineMath holds a math span found inside a paragraph or heading. Display is
// true for the $$..$$ form.
type InlineMath struct {
	ast.BaseInline
	Literal []byte
	Display bool
}

func (n *InlineMath) Kind() ast.NodeKind { return KindInlineMath }

func (n *InlineMath) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Literal": string(n.Literal)}, nil)
}

// MathBlock is a $$ fenced block on its own lines.
type MathBlock struct {
	ast.BaseBlock
	Literal []byte
	closed  bool
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) IsRaw() bool { return true }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Literal": string(n.Literal)}, nil)
}

type inlineMathParser struct{}

func (inlineMathParser) Trigger() []byte { return []byte{'$'} }

func (inlineMathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	open := 0
	for open < len(line) && line[open] == '$' {
		open++
	}
	if open == 0 || open > 2 {
		return nil
	}

	rest := line[open:]
	closeAt := -1
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			i++
		case '$':
			run := 1
			for i+run < len(rest) && rest[i+run] == '$' {
				run++
			}
			if run == open {
				closeAt = i
			}
			i += run - 1
		}
		if closeAt >= 0 {
			break
		}
	}
	if closeAt <= 0 {
		return nil
	}

	value := rest[:closeAt]
	if len(bytes.TrimSpace(value)) == 0 {
		return nil
	}
	block.Advance(open + closeAt + open)
	return &InlineMath{Literal: append([]byte(nil), value...), Display: open == 2}
}

type mathBlockParser struct{}

func (mathBlockParser) Trigger() []byte { return []byte{'$'} }

func (mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	trimmed := bytes.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || !bytes.HasPrefix(trimmed, mathFence) {
		return nil, parser.NoChildren
	}

	rest := bytes.TrimSpace(trimmed[len(mathFence):])
	node := &MathBlock{}
	switch {
	case len(rest) == 0:
	case bytes.HasSuffix(rest, mathFence) && bytes.Count(rest, mathFence) == 1:
		node.Literal = append(node.Literal, bytes.TrimSpace(rest[:len(rest)-len(mathFence)])...)
		node.closed = true
	default:
		// $$a$$ followed by more text is inline math inside a paragraph
		return nil, parser.NoChildren
	}
	reader.Advance(len(line))
	return node, parser.NoChildren
}

func (mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	block := node.(*MathBlock)
	if block.closed {
		return parser.Close
	}
	line, _ := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	trimmed := bytes.TrimSpace(line)
	if bytes.HasSuffix(trimmed, mathFence) {
		block.Literal = append(block.Literal, trimmed[:len(trimmed)-len(mathFence)]...)
		block.closed = true
		reader.Advance(len(line))
		return parser.Close
	}
	block.Literal = append(block.Literal, line...)
	reader.Advance(len(line))
	return parser.Continue | parser.NoChildren
}

func (mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	block := node.(*MathBlock)
	block.Literal = bytes.TrimSpace(block.Literal)
}

func (mathBlockParser) CanInterruptParagraph() bool { return true }

func (mathBlockParser) CanAcceptIndentedLine() bool { return false }

type mathNodeRenderer struct {
	math interfaces.MathRenderer
}

func (r *mathNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindInlineMath, r.renderInline)
	reg.Register(KindMathBlock, r.renderBlock)
}

func (r *mathNodeRenderer) renderInline(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*InlineMath)
	_, _ = w.WriteString(renderMathOrSource(r.math, node.Literal, node.Display))
	return ast.WalkSkipChildren, nil
}

func (r *mathNodeRenderer) renderBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*MathBlock)
	_, _ = w.WriteString(renderMathOrSource(r.math, node.Literal, true))
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

// renderMathOrSource falls back to the escaped delimited source inside a
// math-error span when the expression does not render.
func renderMathOrSource(math interfaces.MathRenderer, literal []byte, display bool) string {
	out, err := math.RenderMath(string(literal), display)
	if err == nil {
		return out
	}
	delim := "$"
	if display {
		delim = "$$"
	}
	return `<span class="` + mathtex.ErrorClass + `">` + html.EscapeString(delim+string(literal)+delim) + `</span>`
}

// mathExtension registers the math parsers and, when a renderer is set, the
// HTML node renderers.
type mathExtension struct {
	math interfaces.MathRenderer
}

// MathExtension returns a goldmark extender for $ and $$ math.
func MathExtension(math interfaces.MathRenderer) goldmark.Extender {
	if math == nil {
		math = mathtex.NewMarkupRenderer(nil)
	}
	return &mathExtension{math: math}
}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(mathBlockParser{}, 701)),
		parser.WithInlineParsers(util.Prioritized(inlineMathParser{}, 501)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&mathNodeRenderer{math: e.math}, 500)),
	)
}
