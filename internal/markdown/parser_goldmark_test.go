package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

func TestGoldmarkParserDefaults(t *testing.T) {
	p := NewGoldmarkParser(interfaces.ParseOptions{}, nil)

	out, err := p.Parse([]byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1>Title</h1>") {
		t.Fatalf("expected heading without generated id, got %s", html)
	}
	if !strings.Contains(html, "<table>") {
		t.Fatalf("expected GFM table, got %s", html)
	}
}

func TestGoldmarkParserMathExtension(t *testing.T) {
	p := NewGoldmarkParser(interfaces.ParseOptions{Math: true}, nil)

	out, err := p.Parse([]byte("Inline $a^2$ here.\n\n$$\n\\R^n\n$$\n\nBroken $\\left( x$ math.\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `<span class="math-inline">a^2</span>`) {
		t.Fatalf("expected inline math, got %s", html)
	}
	if !strings.Contains(html, `<div class="math-display">&#92;displaystyle &#92;mathbb{R}^n</div>`) {
		t.Fatalf("expected display math block, got %s", html)
	}
	if !strings.Contains(html, `<span class="math-error">`) {
		t.Fatalf("expected error span for broken math, got %s", html)
	}
}

func TestGoldmarkParserSafeModeDropsRawHTML(t *testing.T) {
	p := NewGoldmarkParser(interfaces.ParseOptions{}, nil)

	out, err := p.ParseWithOptions([]byte("<script>alert(1)</script>\n\ntext\n"), interfaces.ParseOptions{SafeMode: true})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Fatalf("expected raw html omitted, got %s", out)
	}
}

func TestKnownExtension(t *testing.T) {
	if !KnownExtension(" GFM ") || KnownExtension("mermaid") {
		t.Fatalf("unexpected extension registry lookups")
	}
}
