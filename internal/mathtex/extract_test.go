package mathtex

import "testing"

func TestExtractExpressionsOrderAndModes(t *testing.T) {
	got := ExtractExpressions(`$$x+y$$ and $z$ plus \(w\)`)
	if len(got) != 3 {
		t.Fatalf("expected 3 expressions, got %d: %+v", len(got), got)
	}
	want := []struct {
		tex  string
		mode Mode
	}{
		{"x+y", ModeDisplay},
		{"z", ModeInline},
		{"w", ModeInline},
	}
	for i, w := range want {
		if got[i].TeX != w.tex || got[i].Mode != w.mode {
			t.Fatalf("expression %d = %+v, want %+v", i, got[i], w)
		}
	}
	if got[0].Start != 0 || got[0].End != 7 {
		t.Fatalf("unexpected offsets for display span: %+v", got[0])
	}
}

func TestExtractExpressionsSkipsSpansAcrossClaimedRanges(t *testing.T) {
	got := ExtractExpressions(`$a $$b$$ c$`)
	if len(got) != 1 || got[0].TeX != "b" {
		t.Fatalf("expected only the display span, got %+v", got)
	}
}
