package mathtex

import (
	"errors"
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

var (
	// ErrEmptyExpression is returned for blank TeX.
	ErrEmptyExpression = errors.New("mathtex: empty expression")
	// ErrUnbalanced is returned when braces, \left/\right or environments
	// do not pair up.
	ErrUnbalanced = errors.New("mathtex: unbalanced expression")
)

// DefaultMacros expands the shorthand used across codex documents.
func DefaultMacros() map[string]string {
	return map[string]string{
		`\R`:   `\mathbb{R}`,
		`\N`:   `\mathbb{N}`,
		`\Z`:   `\mathbb{Z}`,
		`\Q`:   `\mathbb{Q}`,
		`\C`:   `\mathbb{C}`,
		`\eps`: `\varepsilon`,
		`\phi`: `\varphi`,
	}
}

// MarkupRenderer validates TeX, expands macros and wraps the escaped source
// in an element the client-side typesetter picks up by class. Output never
// contains '$' or a backslash, so a second preprocessing pass leaves it alone.
type MarkupRenderer struct {
	macros []macro
}

type macro struct {
	pattern     *regexp2.Regexp
	replacement string
}

var _ interfaces.MathRenderer = (*MarkupRenderer)(nil)

// NewMarkupRenderer builds a renderer for the given macro table. A nil table
// means DefaultMacros.
func NewMarkupRenderer(macros map[string]string) *MarkupRenderer {
	if macros == nil {
		macros = DefaultMacros()
	}
	r := &MarkupRenderer{}
	// longest first so \eps is not shadowed by a shorter name
	names := slices.SortedFunc(maps.Keys(macros), func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	for _, name := range names {
		if !strings.HasPrefix(name, `\`) || len(name) < 2 {
			continue
		}
		r.macros = append(r.macros, macro{
			pattern:     compile(regexp2.Escape(name) + `(?![A-Za-z])`),
			replacement: macros[name],
		})
	}
	return r
}

// RenderMath implements interfaces.MathRenderer.
func (r *MarkupRenderer) RenderMath(expr string, display bool) (string, error) {
	tex := strings.TrimSpace(expr)
	if tex == "" {
		return "", ErrEmptyExpression
	}
	if err := Validate(tex); err != nil {
		return "", err
	}

	expanded, err := r.expand(tex)
	if err != nil {
		return "", err
	}

	if display {
		if !strings.HasPrefix(expanded, `\displaystyle`) {
			expanded = `\displaystyle ` + expanded
		}
		return fmt.Sprintf(`<div class="%s">%s</div>`, DisplayClass, encode(expanded)), nil
	}
	return fmt.Sprintf(`<span class="%s">%s</span>`, InlineClass, encode(expanded)), nil
}

func (r *MarkupRenderer) expand(tex string) (string, error) {
	for _, m := range r.macros {
		out, err := m.pattern.Replace(tex, escapeReplacement(m.replacement), -1, -1)
		if err != nil {
			return "", fmt.Errorf("mathtex: expand macro: %w", err)
		}
		tex = out
	}
	return tex, nil
}

// escapeReplacement guards '$' which regexp2 treats as a substitution.
func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

var entityEncoder = strings.NewReplacer(`\`, "&#92;", "$", "&#36;")

func encode(tex string) string {
	return entityEncoder.Replace(html.EscapeString(tex))
}

// Validate checks the structural balance of a TeX expression: braces
// (ignoring \{ and \}), \left/\right pairs and \begin{env}/\end{env} nesting.
func Validate(tex string) error {
	depth := 0
	lefts := 0
	var envs []string

	for i := 0; i < len(tex); i++ {
		switch tex[i] {
		case '\\':
			name := commandName(tex[i+1:])
			if name == "" {
				// escaped single character such as \{ or \\
				i++
				continue
			}
			switch name {
			case "left":
				lefts++
			case "right":
				lefts--
				if lefts < 0 {
					return fmt.Errorf(`%w: \right without \left`, ErrUnbalanced)
				}
			case "begin", "end":
				env, ok := braceArgument(tex[i+1+len(name):])
				if !ok {
					return fmt.Errorf(`%w: \%s without environment name`, ErrUnbalanced, name)
				}
				if name == "begin" {
					envs = append(envs, env)
				} else {
					if len(envs) == 0 || envs[len(envs)-1] != env {
						return fmt.Errorf(`%w: \end{%s} does not close an open environment`, ErrUnbalanced, env)
					}
					envs = envs[:len(envs)-1]
				}
			}
			i += len(name)
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unexpected '}'", ErrUnbalanced)
			}
		}
	}

	switch {
	case depth != 0:
		return fmt.Errorf("%w: %d unclosed '{'", ErrUnbalanced, depth)
	case lefts != 0:
		return fmt.Errorf(`%w: \left without \right`, ErrUnbalanced)
	case len(envs) != 0:
		return fmt.Errorf(`%w: \begin{%s} never closed`, ErrUnbalanced, envs[len(envs)-1])
	}
	return nil
}

func commandName(s string) string {
	end := 0
	for end < len(s) && isLetter(s[end]) {
		end++
	}
	return s[:end]
}

func braceArgument(s string) (string, bool) {
	s = strings.TrimLeft(s, " ")
	if !strings.HasPrefix(s, "{") {
		return "", false
	}
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return "", false
	}
	return s[1:end], true
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
