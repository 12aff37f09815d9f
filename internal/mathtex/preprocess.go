// Package mathtex finds TeX math in document text and replaces each
// expression with rendered markup before the markdown parser runs.
package mathtex

import (
	"context"

	"github.com/dlclark/regexp2"

	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// Preprocessor rewrites $$..$$, \[..\], \(..\) and $..$ spans, in that order.
// Each match renders on its own; a failed match is left as written.
type Preprocessor struct {
	renderer interfaces.MathRenderer
	logger   interfaces.Logger
	metrics  interfaces.PipelineMetrics
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithRenderer swaps the expression renderer.
func WithRenderer(renderer interfaces.MathRenderer) Option {
	return func(p *Preprocessor) {
		if renderer != nil {
			p.renderer = renderer
		}
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Preprocessor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the failure counter sink.
func WithMetrics(metrics interfaces.PipelineMetrics) Option {
	return func(p *Preprocessor) {
		if metrics != nil {
			p.metrics = metrics
		}
	}
}

// NewPreprocessor returns a preprocessor using MarkupRenderer with the
// default macros unless overridden.
func NewPreprocessor(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		renderer: NewMarkupRenderer(nil),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process returns text with every recognised math span rendered. It never
// fails: render errors keep the original span and are logged as warnings.
func (p *Preprocessor) Process(ctx context.Context, text string) string {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := p.logger.WithContext(ctx)

	for _, d := range delimiters {
		if err := ctx.Err(); err != nil {
			logger.Warn("math.preprocess.cancelled", "error", err)
			return text
		}
		out, err := d.pattern.ReplaceFunc(text, func(m regexp2.Match) string {
			return p.renderMatch(logger, d, m)
		}, -1, -1)
		if err != nil {
			// match timeout; keep what the earlier passes produced
			logging.WithFields(logger, map[string]any{"delimiter": d.name}).
				Warn("math.preprocess.pattern_failed", "error", err)
			continue
		}
		text = out
	}
	return text
}

func (p *Preprocessor) renderMatch(logger interfaces.Logger, d delimiter, m regexp2.Match) string {
	source := m.String()
	tex := m.GroupByNumber(1).String()

	rendered, err := p.renderer.RenderMath(tex, d.mode == ModeDisplay)
	if err != nil {
		logging.WithFields(logger, map[string]any{
			"delimiter": d.name,
			"tex":       tex,
		}).Warn("math.render.failed", "error", err)
		if p.metrics != nil {
			p.metrics.IncrementMathFailure(string(d.mode))
		}
		return source
	}
	return rendered
}
