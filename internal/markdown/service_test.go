package markdown_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/internal/frontmatter"
	"github.com/goliatone/go-codex/internal/markdown"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

type recordingMetrics struct {
	mu           sync.Mutex
	renders      map[string]int
	mathFailures map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{renders: map[string]int{}, mathFailures: map[string]int{}}
}

func (m *recordingMetrics) ObserveRenderDuration(contentType string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders[contentType]++
}

func (m *recordingMetrics) IncrementMathFailure(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mathFailures[mode]++
}

func (m *recordingMetrics) IncrementResolve(string)             {}
func (m *recordingMetrics) IncrementCacheResult(string, string) {}

func composeDocument(t *testing.T, meta interfaces.Metadata, body string) []byte {
	t.Helper()
	text, err := frontmatter.Compose(frontmatter.Header{Document: meta.Slug + ".mdx", TypeName: "Essay", Type: "essays"}, meta, body)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	return []byte(text)
}

func TestServiceProcess(t *testing.T) {
	key := interfaces.DocumentKey{Type: "essays", Category: "craft", Slug: "on-lists"}
	body := strings.Join([]string{
		"# (60%) On lists",
		"Lists have $n$ items and $$\\sum_i x_i$$ totals.",
		"## Why",
		"### Order $k$",
		"## How",
	}, "\n\n")
	source := content.NewMemorySource(&interfaces.Document{
		Key:          key,
		Body:         composeDocument(t, interfaces.Metadata{Title: "On Lists", Slug: "on-lists", Importance: 7}, body),
		MarginNotes:  []byte(`[{"id":"b","title":"B","content":"second","index":1},{"id":"a","title":"A","content":"first","index":1,"priority":2},{"id":"z","title":"Z","content":"zero","index":0}]`),
		Bibliography: []byte(`[{"id":"k","author":"Knuth","title":"TAOCP","year":1968,"type":"book"}]`),
	})

	metrics := newRecordingMetrics()
	svc := markdown.NewService(source, markdown.WithMetrics(metrics))

	snap, err := svc.Process(context.Background(), key)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if snap.Metadata.Title != "On Lists" || snap.Metadata.Importance != 7 {
		t.Fatalf("unexpected metadata %+v", snap.Metadata)
	}
	if strings.Contains(snap.Body, frontmatter.Delimiter) {
		t.Fatalf("body still carries frontmatter")
	}

	wantNumbers := []string{"1", "1.1", "1.1.1", "1.2"}
	wantIDs := []string{"60-on-lists", "why", "order", "how"}
	if len(snap.Headings) != len(wantNumbers) {
		t.Fatalf("expected %d headings, got %+v", len(wantNumbers), snap.Headings)
	}
	for i, h := range snap.Headings {
		if h.Number != wantNumbers[i] || h.ID != wantIDs[i] {
			t.Fatalf("heading %d: got %s/%s", i, h.Number, h.ID)
		}
	}
	if snap.Headings[2].Text != "Order $k$" {
		t.Fatalf("expected math source in heading text, got %q", snap.Headings[2].Text)
	}

	for _, want := range []string{
		`id="60-on-lists"`,
		`data-underline="60"`,
		`--underline-width: 60%`,
		`<span class="math-inline">n</span>`,
		`<div class="math-display">`,
		`id="order"`,
	} {
		if !strings.Contains(snap.HTML, want) {
			t.Fatalf("expected %s in html:\n%s", want, snap.HTML)
		}
	}
	if strings.Contains(snap.HTML, "$") {
		t.Fatalf("expected no math delimiters left in html:\n%s", snap.HTML)
	}

	gotNotes := make([]string, len(snap.MarginNotes))
	for i, n := range snap.MarginNotes {
		gotNotes[i] = n.ID
	}
	if strings.Join(gotNotes, ",") != "z,a,b" {
		t.Fatalf("unexpected margin note order %v", gotNotes)
	}
	if len(snap.Bibliography) != 1 || snap.Bibliography[0].Author != "Knuth" {
		t.Fatalf("unexpected bibliography %+v", snap.Bibliography)
	}
	if metrics.renders["essays"] != 1 {
		t.Fatalf("expected one render observation, got %v", metrics.renders)
	}
}

func TestServiceProcessWithoutFrontmatterOrSidecars(t *testing.T) {
	key := interfaces.DocumentKey{Type: "til", Slug: "bash-traps"}
	source := content.NewMemorySource(&interfaces.Document{Key: key, Body: []byte("# Bash traps\n\nUse `set -e` carefully.\n")})

	snap, err := markdown.NewService(source).Process(context.Background(), key)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if snap.Metadata.Slug != "bash-traps" {
		t.Fatalf("expected slug defaulted from key, got %q", snap.Metadata.Slug)
	}
	if snap.MarginNotes == nil || snap.Bibliography == nil {
		t.Fatalf("expected empty, non-nil annotation slices")
	}
	if len(snap.Headings) != 1 || snap.Headings[0].ID != "bash-traps" {
		t.Fatalf("unexpected headings %+v", snap.Headings)
	}
}

func TestServiceProcessMathFailureKeepsSource(t *testing.T) {
	key := interfaces.DocumentKey{Type: "notes", Slug: "broken"}
	source := content.NewMemorySource(&interfaces.Document{Key: key, Body: []byte("Value $\\frac{1}{2$ here and $x$ there.\n")})
	metrics := newRecordingMetrics()

	snap, err := markdown.NewService(source, markdown.WithMetrics(metrics)).Process(context.Background(), key)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(snap.HTML, `$\frac{1}{2$`) {
		t.Fatalf("expected failed expression left as written, got %s", snap.HTML)
	}
	if !strings.Contains(snap.HTML, `<span class="math-inline">x</span>`) {
		t.Fatalf("expected later expression rendered, got %s", snap.HTML)
	}
	if metrics.mathFailures["inline"] != 1 {
		t.Fatalf("expected one inline failure, got %v", metrics.mathFailures)
	}
}

type failingSource struct{}

func (failingSource) Fetch(context.Context, interfaces.DocumentKey) (*interfaces.Document, error) {
	return nil, errors.New("disk on fire")
}

func TestServiceProcessErrorsAreNotFound(t *testing.T) {
	key := interfaces.DocumentKey{Type: "essays", Category: "craft", Slug: "missing"}

	_, err := markdown.NewService(content.NewMemorySource()).Process(context.Background(), key)
	if !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = markdown.NewService(failingSource{}).Process(context.Background(), key)
	if !errors.Is(err, interfaces.ErrDocumentNotFound) {
		t.Fatalf("expected source failure mapped to not found, got %v", err)
	}
}

func TestServiceSafeModeUsesMathExtension(t *testing.T) {
	svc := markdown.NewService(nil, markdown.WithParseOptions(interfaces.ParseOptions{SafeMode: true}))

	snap, err := svc.Render(context.Background(), &interfaces.Document{
		Key:  interfaces.DocumentKey{Type: "notes", Slug: "safe"},
		Body: []byte("Area $\\pi r^2$.\n\n<script>x</script>\n"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(snap.HTML, `<span class="math-inline">&#92;pi r^2</span>`) {
		t.Fatalf("expected math rendered by the extension, got %s", snap.HTML)
	}
	if strings.Contains(snap.HTML, "<script>") {
		t.Fatalf("expected raw html dropped, got %s", snap.HTML)
	}
}

func TestServiceWithMathDisabledLeavesTeX(t *testing.T) {
	svc := markdown.NewService(nil, markdown.WithMath(false))

	snap, err := svc.Render(context.Background(), &interfaces.Document{
		Key:  interfaces.DocumentKey{Type: "notes", Slug: "plain"},
		Body: []byte("Cost is $x$ today.\n"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(snap.HTML, "$x$") || strings.Contains(snap.HTML, "math-inline") {
		t.Fatalf("expected TeX left untouched, got %s", snap.HTML)
	}
}

func TestServiceRawHTMLHeadingKeepsMarkdownIDs(t *testing.T) {
	svc := markdown.NewService(nil)

	snap, err := svc.Render(context.Background(), &interfaces.Document{
		Key:  interfaces.DocumentKey{Type: "notes", Slug: "aside"},
		Body: []byte("<h2>Aside</h2>\n\n## Alpha\n\n## Beta\n"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(snap.Headings) != 2 || snap.Headings[0].ID != "alpha" || snap.Headings[1].ID != "beta" {
		t.Fatalf("unexpected headings %+v", snap.Headings)
	}
	for _, want := range []string{
		`<h2 data-original-text="Aside" id="aside">Aside</h2>`,
		`<h2 id="alpha" data-original-text="Alpha">Alpha</h2>`,
		`<h2 id="beta" data-original-text="Beta">Beta</h2>`,
	} {
		if !strings.Contains(snap.HTML, want) {
			t.Fatalf("expected %s in html:\n%s", want, snap.HTML)
		}
	}
	if strings.Contains(snap.HTML, "beta-1") {
		t.Fatalf("unexpected collision suffix in html:\n%s", snap.HTML)
	}
}

func TestServiceUnderlineFollowsSource(t *testing.T) {
	svc := markdown.NewService(nil)
	key := interfaces.DocumentKey{Type: "notes", Slug: "title"}

	marked, err := svc.Render(context.Background(), &interfaces.Document{Key: key, Body: []byte("## (50%) Title\n")})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(marked.HTML, `data-underline="50"`) || !strings.Contains(marked.HTML, `>Title</h2>`) {
		t.Fatalf("expected underline applied, got %s", marked.HTML)
	}

	plain, err := svc.Render(context.Background(), &interfaces.Document{Key: key, Body: []byte("## Title\n")})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := `<h2 id="title" data-original-text="Title">Title</h2>`; !strings.Contains(plain.HTML, want) {
		t.Fatalf("expected %s without underline, got %s", want, plain.HTML)
	}
}

func TestServiceRenderNilContext(t *testing.T) {
	svc := markdown.NewService(nil)

	var ctx context.Context
	snap, err := svc.Render(ctx, &interfaces.Document{
		Key:  interfaces.DocumentKey{Type: "til", Slug: "nil-ctx"},
		Body: []byte("# Hello\n"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(snap.HTML, `id="hello"`) {
		t.Fatalf("unexpected html %s", snap.HTML)
	}
}
