package mathtex

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestProcessDisplayAndInlineDoNotOverlap(t *testing.T) {
	p := NewPreprocessor()
	out := p.Process(context.Background(), "$$x+y$$ and $z$")

	if got := strings.Count(out, `class="math-display"`); got != 1 {
		t.Fatalf("expected one display fragment, got %d in %q", got, out)
	}
	if got := strings.Count(out, `class="math-inline"`); got != 1 {
		t.Fatalf("expected one inline fragment, got %d in %q", got, out)
	}
	if strings.Contains(out, "$") {
		t.Fatalf("no dollar delimiters should survive: %q", out)
	}
	if !strings.Contains(out, "</div> and <span") {
		t.Fatalf("expected fragments in source order, got %q", out)
	}
}

func TestProcessAllDelimiterStyles(t *testing.T) {
	p := NewPreprocessor()
	out := p.Process(context.Background(), `A \(a^2\) then \[b^2\] then $c$ and $$d$$.`)

	if got := strings.Count(out, `class="math-inline"`); got != 2 {
		t.Fatalf("expected two inline fragments, got %d in %q", got, out)
	}
	if got := strings.Count(out, `class="math-display"`); got != 2 {
		t.Fatalf("expected two display fragments, got %d in %q", got, out)
	}
}

func TestProcessIsIdempotentOnOwnOutput(t *testing.T) {
	p := NewPreprocessor()
	once := p.Process(context.Background(), `Let $x \in \R$ and $$\sum_{i=1}^n i$$`)
	twice := p.Process(context.Background(), once)
	if once != twice {
		t.Fatalf("second pass changed output\nonce:  %q\ntwice: %q", once, twice)
	}
}

type failingRenderer struct{ calls int }

func (f *failingRenderer) RenderMath(expr string, display bool) (string, error) {
	f.calls++
	if expr == "bad" {
		return "", errors.New("boom")
	}
	return "<m>" + expr + "</m>", nil
}

type countingMetrics struct{ failures map[string]int }

func (c *countingMetrics) ObserveRenderDuration(string, time.Duration) {}
func (c *countingMetrics) IncrementResolve(string)                     {}
func (c *countingMetrics) IncrementCacheResult(string, string)         {}
func (c *countingMetrics) IncrementMathFailure(mode string) {
	if c.failures == nil {
		c.failures = map[string]int{}
	}
	c.failures[mode]++
}

func TestProcessKeepsFailedSpanAndContinues(t *testing.T) {
	renderer := &failingRenderer{}
	metrics := &countingMetrics{}
	p := NewPreprocessor(WithRenderer(renderer), WithMetrics(metrics))

	out := p.Process(context.Background(), "before $bad$ middle $ok$ after")
	want := "before $bad$ middle <m>ok</m> after"
	if out != want {
		t.Fatalf("unexpected output\nwant: %q\ngot:  %q", want, out)
	}
	if metrics.failures["inline"] != 1 {
		t.Fatalf("expected one inline failure, got %v", metrics.failures)
	}
}

func TestProcessMalformedTeXFallsBack(t *testing.T) {
	p := NewPreprocessor()
	in := `broken $\frac{a}{b$ fine $a$`
	out := p.Process(context.Background(), in)
	if !strings.HasPrefix(out, `broken $\frac{a}{b$ fine `) {
		t.Fatalf("malformed span should be left as written, got %q", out)
	}
	if !strings.Contains(out, `<span class="math-inline">a</span>`) {
		t.Fatalf("valid span should still render, got %q", out)
	}
}

func TestProcessLonelyDollarUntouched(t *testing.T) {
	p := NewPreprocessor()
	in := "price is $5"
	if out := p.Process(context.Background(), in); out != in {
		t.Fatalf("expected passthrough, got %q", out)
	}
}

func TestProcessHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := "$a$"
	if out := NewPreprocessor().Process(ctx, in); out != in {
		t.Fatalf("expected untouched text on cancelled context, got %q", out)
	}
}
