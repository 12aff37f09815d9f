package markdown

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-codex/internal/mathtex"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

const maxHeadingLevel = 6

var (
	displayMathSpan = regexp.MustCompile(`(?s)\$\$.*?\$\$`)
	inlineMathSpan  = regexp.MustCompile(`(?s)\$.*?\$`)
	nonSlugRun      = regexp.MustCompile(`[^a-z0-9]+`)
)

// HeadingExtractor walks the markdown tree of a stripped document and returns
// its headings in document order with ids and hierarchical numbers.
type HeadingExtractor struct {
	parser *GoldmarkParser
	math   interfaces.MathRenderer
}

// NewHeadingExtractor builds an extractor. math renders the HTML display copy
// of each heading; nil means the default mathtex renderer.
func NewHeadingExtractor(parser *GoldmarkParser, math interfaces.MathRenderer) *HeadingExtractor {
	if math == nil {
		math = mathtex.NewMarkupRenderer(nil)
	}
	if parser == nil {
		parser = NewGoldmarkParser(interfaces.ParseOptions{}, math)
	}
	return &HeadingExtractor{parser: parser, math: math}
}

// ExtractHeadings runs a default extractor over source.
func ExtractHeadings(source []byte) []interfaces.Heading {
	return NewHeadingExtractor(nil, nil).Extract(source)
}

// Extract returns the headings of source.
func (e *HeadingExtractor) Extract(source []byte) []interfaces.Heading {
	root := e.parser.ParseTree(source)

	var headings []interfaces.Heading
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var raw, display strings.Builder
		e.collect(heading, source, &raw, &display)
		headings = append(headings, interfaces.Heading{
			Text:  strings.TrimSpace(raw.String()),
			HTML:  strings.TrimSpace(display.String()),
			Level: heading.Level,
		})
		return ast.WalkSkipChildren, nil
	})

	AssignIDs(headings)
	Number(headings)
	return headings
}

// collect appends the raw text of n's descendants to raw, with math in its
// delimited form, and the HTML display copy to display.
func (e *HeadingExtractor) collect(n ast.Node, source []byte, raw, display *strings.Builder) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			value := string(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				value += " "
			}
			raw.WriteString(value)
			display.WriteString(html.EscapeString(value))
		case *ast.String:
			raw.Write(node.Value)
			display.WriteString(html.EscapeString(string(node.Value)))
		case *InlineMath:
			delim := "$"
			if node.Display {
				delim = "$$"
			}
			raw.WriteString(delim + string(node.Literal) + delim)
			display.WriteString(renderMathOrSource(e.math, node.Literal, node.Display))
		case *MathBlock:
			raw.WriteString("$$" + string(node.Literal) + "$$")
			display.WriteString(renderMathOrSource(e.math, node.Literal, true))
		default:
			e.collect(child, source, raw, display)
		}
	}
}

// HeadingID derives an identifier from heading text: math spans removed,
// lower-cased, non-alphanumeric runs collapsed to '-', outer '-' trimmed.
// The result may be empty.
func HeadingID(text string) string {
	clean := displayMathSpan.ReplaceAllString(text, "")
	clean = inlineMathSpan.ReplaceAllString(clean, "")
	clean = strings.ToLower(strings.TrimSpace(clean))
	clean = nonSlugRun.ReplaceAllString(clean, "-")
	return strings.Trim(clean, "-")
}

// AssignIDs sets the ID of every heading. Empty ids fall back to
// heading-{index}; repeats get -1, -2, ... in document order.
func AssignIDs(headings []interfaces.Heading) {
	used := make(map[string]bool, len(headings))
	for i := range headings {
		base := HeadingID(headings[i].Text)
		if base == "" {
			base = "heading-" + strconv.Itoa(i)
		}
		headings[i].ID = uniqueID(base, used)
	}
}

func uniqueID(base string, used map[string]bool) string {
	id := base
	for n := 1; used[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	used[id] = true
	return id
}

// Number assigns dotted hierarchical numbers. Visiting a heading at level L
// increments counter L and zeroes every deeper counter.
func Number(headings []interfaces.Heading) {
	var counters [maxHeadingLevel + 1]int
	for i := range headings {
		level := min(max(headings[i].Level, 1), maxHeadingLevel)
		counters[level]++
		for deeper := level + 1; deeper <= maxHeadingLevel; deeper++ {
			counters[deeper] = 0
		}
		parts := make([]string, level)
		for l := 1; l <= level; l++ {
			parts[l-1] = strconv.Itoa(counters[l])
		}
		headings[i].Number = strings.Join(parts, ".")
	}
}

// Outline nests headings under the nearest preceding shallower heading.
func Outline(headings []interfaces.Heading) []*interfaces.OutlineNode {
	var roots []*interfaces.OutlineNode
	var stack []*interfaces.OutlineNode
	for _, h := range headings {
		node := &interfaces.OutlineNode{Heading: h}
		for len(stack) > 0 && stack[len(stack)-1].Heading.Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}
