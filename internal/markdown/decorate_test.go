package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

func TestUnderlineDirective(t *testing.T) {
	percent, rest, ok := UnderlineDirective("  (75%)  Closing thoughts")
	if !ok || percent != "75" || rest != "Closing thoughts" {
		t.Fatalf("unexpected directive parse: %q %q %v", percent, rest, ok)
	}
	if _, rest, ok := UnderlineDirective("Plain title"); ok || rest != "Plain title" {
		t.Fatalf("expected no directive, got rest %q ok %v", rest, ok)
	}
}

func TestDecorateHeadingsUnderlineRoundTrip(t *testing.T) {
	first, err := DecorateHeadings(`<h2>(50%) Title</h2>`, nil)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	want := `<h2 data-original-text="(50%) Title" style="--underline-width: 50%" data-underline="50" id="title">Title</h2>`
	if first != want {
		t.Fatalf("unexpected first pass\nwant %s\ngot  %s", want, first)
	}

	second, err := DecorateHeadings(first, nil)
	if err != nil {
		t.Fatalf("second decorate: %v", err)
	}
	if second != first {
		t.Fatalf("expected second pass to be stable\nfirst  %s\nsecond %s", first, second)
	}

	edited := strings.Replace(first, ">Title<", ">Renamed<", 1)
	third, err := DecorateHeadings(edited, nil)
	if err != nil {
		t.Fatalf("third decorate: %v", err)
	}
	want = `<h2 data-original-text="Renamed" id="title">Renamed</h2>`
	if third != want {
		t.Fatalf("expected decoration removed\nwant %s\ngot  %s", want, third)
	}
}

func TestDecorateHeadingsKeepsOtherStyles(t *testing.T) {
	in := `<h3 style="color: red; --underline-width: 20%" data-underline="20" data-original-text="(20%) Old">Fresh</h3>`
	out, err := DecorateHeadings(in, nil)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if !strings.Contains(out, `style="color: red"`) {
		t.Fatalf("expected unrelated style kept, got %s", out)
	}
	if strings.Contains(out, "data-underline") || strings.Contains(out, "--underline-width") {
		t.Fatalf("expected underline removed, got %s", out)
	}
}

func TestDecorateHeadingsIDs(t *testing.T) {
	in := `<h1 id="keep">Keep</h1><p>text</p><h2>Second</h2><h2>Second</h2><h3>?!</h3><h4>Extra</h4>`
	out, err := DecorateHeadings(in, []interfaces.Heading{{ID: "keep", Text: "Keep"}})
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	for _, want := range []string{
		`id="keep"`,
		`id="second"`,
		`id="second-1"`,
		`id="heading-3"`,
		`id="extra"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}

func TestDecorateHeadingsDerivedIDsAvoidExisting(t *testing.T) {
	in := `<h2>Alpha</h2><h2 id="alpha">Alpha</h2>`
	out, err := DecorateHeadings(in, []interfaces.Heading{{ID: "alpha", Text: "Alpha"}})
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	want := `<h2 data-original-text="Alpha" id="alpha-1">Alpha</h2><h2 id="alpha" data-original-text="Alpha">Alpha</h2>`
	if out != want {
		t.Fatalf("unexpected ids\nwant %s\ngot  %s", want, out)
	}
}

func TestDecorateHeadingsRemovesUnderlineWhenSourceDropsDirective(t *testing.T) {
	first, err := DecorateHeadings(`<h2 id="title">(50%) Title</h2>`, []interfaces.Heading{{ID: "title", Text: "(50%) Title"}})
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if !strings.Contains(first, `data-underline="50"`) || !strings.Contains(first, `>Title</h2>`) {
		t.Fatalf("expected underline applied, got %s", first)
	}

	// same element, source heading now reads "Title"
	second, err := DecorateHeadings(first, []interfaces.Heading{{ID: "title", Text: "Title"}})
	if err != nil {
		t.Fatalf("second decorate: %v", err)
	}
	want := `<h2 id="title" data-original-text="Title">Title</h2>`
	if second != want {
		t.Fatalf("expected underline removed\nwant %s\ngot  %s", want, second)
	}

	kept, err := DecorateHeadings(first, []interfaces.Heading{{ID: "title", Text: "(50%) Title"}})
	if err != nil {
		t.Fatalf("third decorate: %v", err)
	}
	if kept != first {
		t.Fatalf("expected unchanged source to be stable\nfirst %s\nkept  %s", first, kept)
	}
}

func TestDecorateHeadingsTrimsPrefixBeforeMarkup(t *testing.T) {
	out, err := DecorateHeadings(`<h2>(30%) Big <em>idea</em></h2>`, nil)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if !strings.Contains(out, `>Big <em>idea</em></h2>`) {
		t.Fatalf("expected prefix trimmed and markup kept, got %s", out)
	}
	if !strings.Contains(out, `data-underline="30"`) || !strings.Contains(out, `id="big-idea"`) {
		t.Fatalf("expected underline and derived id, got %s", out)
	}
}
