package mathtex

import (
	"time"

	"github.com/dlclark/regexp2"
)

// Mode distinguishes block math from inline math.
type Mode string

const (
	ModeDisplay Mode = "display"
	ModeInline  Mode = "inline"
)

const (
	DisplayClass = "math-display"
	InlineClass  = "math-inline"
	ErrorClass   = "math-error"
)

const matchTimeout = 250 * time.Millisecond

// delimiter is one recognised math syntax. The capture group holds the TeX.
type delimiter struct {
	name    string
	mode    Mode
	open    string
	close   string
	pattern *regexp2.Regexp
}

func compile(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.None)
	re.MatchTimeout = matchTimeout
	return re
}

// delimiters is applied in order. Display forms run first so the inline $
// pattern never sees half of a $$ pair; its lookarounds reject a lone $ that
// touches another $.
var delimiters = []delimiter{
	{name: "dollar_display", mode: ModeDisplay, open: "$$", close: "$$", pattern: compile(`\$\$([\s\S]*?)\$\$`)},
	{name: "bracket_display", mode: ModeDisplay, open: `\[`, close: `\]`, pattern: compile(`\\\[([\s\S]*?)\\\]`)},
	{name: "paren_inline", mode: ModeInline, open: `\(`, close: `\)`, pattern: compile(`\\\(([\s\S]*?)\\\)`)},
	{name: "dollar_inline", mode: ModeInline, open: "$", close: "$", pattern: compile(`(?<!\$)\$(?!\$)((?:[^$\\]|\\.)+?)\$(?!\$)`)},
}
