package mathtex

import (
	"sort"
	"strings"
)

// Expression is one math span found in text. Start and End are rune offsets
// of the full delimited span.
type Expression struct {
	Source string `json:"source"`
	TeX    string `json:"tex"`
	Mode   Mode   `json:"mode"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// ExtractExpressions lists math spans without rendering them. Spans claimed
// by an earlier delimiter are masked before later patterns run, so the
// result never contains overlapping expressions.
func ExtractExpressions(text string) []Expression {
	runes := []rune(text)
	var found []Expression

	for _, d := range delimiters {
		masked := string(runes)
		m, err := d.pattern.FindStringMatch(masked)
		for err == nil && m != nil {
			if strings.ContainsRune(m.String(), maskRune) {
				m, err = d.pattern.FindNextMatch(m)
				continue
			}
			start, length := m.Index, m.Length
			found = append(found, Expression{
				Source: m.String(),
				TeX:    m.GroupByNumber(1).String(),
				Mode:   d.mode,
				Start:  start,
				End:    start + length,
			})
			m, err = d.pattern.FindNextMatch(m)
		}
		for _, expr := range found {
			for i := expr.Start; i < expr.End; i++ {
				runes[i] = maskRune
			}
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Start < found[j].Start })
	return found
}

// maskRune is not part of any delimiter pattern.
const maskRune = '\u0000'
