package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

const (
	attrID           = "id"
	attrOriginalText = "data-original-text"
	attrUnderline    = "data-underline"
	attrStyle        = "style"
	underlineProp    = "--underline-width"
)

var underlineDirective = regexp.MustCompile(`^\s*\((\d+)%\)\s*(.*)`)

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

// UnderlineDirective parses a leading "(NN%)" annotation. It returns the
// percentage digits, the remaining text and whether the directive was present.
func UnderlineDirective(text string) (percent, rest string, ok bool) {
	m := underlineDirective.FindStringSubmatch(text)
	if m == nil {
		return "", text, false
	}
	return m[1], m[2], true
}

// DecorateHeadings post-processes rendered HTML headings.
//
// Every h1-h6 keeps its text in data-original-text. A heading whose id names
// one of headings takes its source text from that heading; any other heading
// falls back to the stored text while the visible text still matches it (or
// its directive-free remainder), and to the visible text otherwise. A leading
// "(NN%)" in the source text is removed from the visible text and recorded as
// --underline-width in style plus data-underline. When the source text no
// longer carries the directive the style property and data-underline are
// removed. Existing ids are kept; headings without one get an id derived from
// their text, or heading-{n} for the n-th heading when the text yields none.
func DecorateHeadings(fragment string, headings []interfaces.Heading) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return fragment, fmt.Errorf("decorate headings: %w", err)
	}

	used := map[string]bool{}
	for _, n := range nodes {
		collectIDs(n, used)
	}

	sources := make(map[string]string, len(headings))
	for _, h := range headings {
		if h.ID != "" {
			sources[h.ID] = h.Text
		}
	}

	d := &decorator{sources: sources, used: used}
	for _, n := range nodes {
		d.walk(n)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return fragment, fmt.Errorf("decorate headings: %w", err)
		}
	}
	return buf.String(), nil
}

type decorator struct {
	sources map[string]string
	index   int
	used    map[string]bool
}

func (d *decorator) walk(n *html.Node) {
	if n.Type == html.ElementNode && headingAtoms[n.DataAtom] {
		d.decorate(n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c)
	}
}

func (d *decorator) decorate(n *html.Node) {
	index := d.index
	d.index++

	visible := textContent(n)
	id, _ := getAttr(n, attrID)
	id = strings.TrimSpace(id)

	source, known := d.sources[id]
	if id == "" || !known {
		source = storedSource(n, visible)
	}

	percent, rest, ok := UnderlineDirective(source)
	if ok {
		shown := strings.TrimLeft(visible, " \t\r\n")
		if _, _, onScreen := UnderlineDirective(shown); onScreen {
			setAttr(n, attrOriginalText, visible)
			trimLeadingText(n, len(visible)-len(shown)+prefixLength(shown))
		} else {
			setAttr(n, attrOriginalText, "("+percent+"%) "+strings.TrimSpace(visible))
		}
		setStyleProperty(n, underlineProp, percent+"%")
		setAttr(n, attrUnderline, percent)
	} else {
		setAttr(n, attrOriginalText, visible)
		removeStyleProperty(n, underlineProp)
		removeAttr(n, attrUnderline)
	}

	if id != "" {
		return
	}
	id = HeadingID(rest)
	if id == "" {
		id = fmt.Sprintf("heading-%d", index)
	}
	setAttr(n, attrID, uniqueID(id, d.used))
}

// storedSource returns the text kept in data-original-text when the visible
// text still matches it or its directive-free remainder, and visible otherwise.
func storedSource(n *html.Node, visible string) string {
	stored, ok := getAttr(n, attrOriginalText)
	if !ok {
		return visible
	}
	_, rest, _ := UnderlineDirective(stored)
	current := strings.TrimSpace(visible)
	if current == strings.TrimSpace(stored) || current == strings.TrimSpace(rest) {
		return stored
	}
	return visible
}

// prefixLength is the byte length of the "(NN%) " prefix at the start of s.
func prefixLength(s string) int {
	m := underlineDirective.FindStringSubmatchIndex(s)
	if m == nil {
		return 0
	}
	return m[4]
}

// trimLeadingText removes count bytes of text from the start of n, walking
// text nodes in order so inline markup after the prefix survives.
func trimLeadingText(n *html.Node, count int) {
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil && count > 0; c = c.NextSibling {
			if c.Type == html.TextNode {
				cut := min(count, len(c.Data))
				c.Data = c.Data[cut:]
				count -= cut
				continue
			}
			walk(c)
		}
	}
	walk(n)
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collectIDs(n *html.Node, used map[string]bool) {
	if n.Type == html.ElementNode {
		if id, ok := getAttr(n, attrID); ok && id != "" {
			used[id] = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectIDs(c, used)
	}
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// styleDeclarations splits an inline style into ordered name/value pairs.
func styleDeclarations(style string) [][2]string {
	var out [][2]string
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(name), strings.TrimSpace(value)})
	}
	return out
}

func writeStyle(n *html.Node, decls [][2]string) {
	if len(decls) == 0 {
		removeAttr(n, attrStyle)
		return
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ": " + d[1]
	}
	setAttr(n, attrStyle, strings.Join(parts, "; "))
}

func setStyleProperty(n *html.Node, name, value string) {
	style, _ := getAttr(n, attrStyle)
	decls := styleDeclarations(style)
	for i := range decls {
		if decls[i][0] == name {
			decls[i][1] = value
			writeStyle(n, decls)
			return
		}
	}
	writeStyle(n, append(decls, [2]string{name, value}))
}

func removeStyleProperty(n *html.Node, name string) {
	style, ok := getAttr(n, attrStyle)
	if !ok {
		return
	}
	decls := styleDeclarations(style)
	kept := decls[:0]
	for _, d := range decls {
		if d[0] != name {
			kept = append(kept, d)
		}
	}
	writeStyle(n, kept)
}
