package markdown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-codex/internal/annotations"
	"github.com/goliatone/go-codex/internal/frontmatter"
	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/internal/mathtex"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// Service builds snapshots from a content source. Every call recomputes the
// snapshot; nothing is shared between requests.
type Service struct {
	source       interfaces.ContentSource
	parser       *GoldmarkParser
	extractor    *HeadingExtractor
	preprocessor *mathtex.Preprocessor
	decoder      *annotations.Decoder
	options      interfaces.ParseOptions
	logger       interfaces.Logger
	metrics      interfaces.PipelineMetrics
	math         interfaces.MathRenderer
	mathEnabled  bool
	clock        func() time.Time
}

var _ interfaces.DocumentProcessor = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithParseOptions sets the goldmark options used for the HTML render.
func WithParseOptions(opts interfaces.ParseOptions) ServiceOption {
	return func(s *Service) {
		s.options = opts
	}
}

// WithMathRenderer swaps the TeX renderer used by every stage.
func WithMathRenderer(math interfaces.MathRenderer) ServiceOption {
	return func(s *Service) {
		if math != nil {
			s.math = math
		}
	}
}

// WithMath toggles TeX rendering. When disabled, $..$ spans reach the HTML
// as written.
func WithMath(enabled bool) ServiceOption {
	return func(s *Service) {
		s.mathEnabled = enabled
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics interfaces.PipelineMetrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithClock overrides the time source used for render timings.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService wires the pipeline over source. source may be nil when only
// Render is used.
func NewService(source interfaces.ContentSource, opts ...ServiceOption) *Service {
	s := &Service{
		source:      source,
		logger:      logging.NoOp(),
		math:        mathtex.NewMarkupRenderer(nil),
		mathEnabled: true,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = NewGoldmarkParser(s.options, s.math)
	s.extractor = NewHeadingExtractor(s.parser, s.math)
	prepOpts := []mathtex.Option{mathtex.WithRenderer(s.math), mathtex.WithLogger(s.logger)}
	if s.metrics != nil {
		prepOpts = append(prepOpts, mathtex.WithMetrics(s.metrics))
	}
	s.preprocessor = mathtex.NewPreprocessor(prepOpts...)
	s.decoder = annotations.NewDecoder(s.logger)
	return s
}

// Process fetches the document addressed by key and renders it. Every
// source failure surfaces as an error matching interfaces.ErrDocumentNotFound.
func (s *Service) Process(ctx context.Context, key interfaces.DocumentKey) (*interfaces.Snapshot, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no content source", interfaces.ErrDocumentNotFound)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithDocument(s.logger.WithContext(ctx), key)

	doc, err := s.source.Fetch(ctx, key)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			logger.Debug("markdown.process.not_found")
			return nil, err
		}
		logger.Warn("markdown.process.source_failed", "error", err)
		return nil, fmt.Errorf("%w: %s: %v", interfaces.ErrDocumentNotFound, key, err)
	}
	if doc.Key == (interfaces.DocumentKey{}) {
		doc.Key = key
	}
	return s.Render(ctx, doc)
}

// Render turns one raw document into a snapshot.
//
// Headings are read from the stripped source so that their text keeps math
// in $..$ form. The HTML is produced from the math-preprocessed source with
// those heading ids set on the rendered tree, then decorated. With SafeMode set, raw HTML is
// dropped by the renderer, so math goes through the goldmark extension
// instead of the preprocessor.
func (s *Service) Render(ctx context.Context, doc *interfaces.Document) (*interfaces.Snapshot, error) {
	if doc == nil {
		return nil, fmt.Errorf("markdown render: nil document")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := s.clock()
	logger := logging.WithDocument(s.logger.WithContext(ctx), doc.Key)

	parsed, err := frontmatter.Parse(string(doc.Body))
	if err != nil {
		logger.Warn("markdown.metadata.invalid", "error", err)
	}
	meta := parsed.Metadata
	if meta.Slug == "" {
		meta.Slug = doc.Key.Slug
	}

	headings := s.extractor.Extract([]byte(parsed.Body))
	if headings == nil {
		headings = []interfaces.Heading{}
	}

	opts := s.options
	source := parsed.Body
	switch {
	case !s.mathEnabled:
		opts.Math = false
	case opts.SafeMode:
		opts.Math = true
	case !opts.Math:
		source = s.preprocessor.Process(ctx, source)
	}

	ids := make([]string, len(headings))
	for i, h := range headings {
		ids[i] = h.ID
	}
	rendered, matched, err := s.parser.ParseWithHeadingIDs([]byte(source), opts, ids)
	if err != nil {
		logger.Error("markdown.render.failed", "error", err)
		return nil, err
	}
	if !matched {
		logger.Warn("markdown.headings.mismatch", "headings", len(headings))
	}

	html, err := DecorateHeadings(string(rendered), headings)
	if err != nil {
		logger.Warn("markdown.decorate.failed", "error", err)
		html = string(rendered)
	}

	sidecars := s.decoder.Decode(doc.MarginNotes, doc.Bibliography)
	payload := annotations.Locate(s.decoder.Sanitize(annotations.Merge(meta, sidecars)))

	elapsed := s.clock().Sub(started)
	if s.metrics != nil {
		s.metrics.ObserveRenderDuration(doc.Key.Type, elapsed)
	}
	logger.Debug("markdown.render.done", "headings", len(headings), "duration", elapsed)

	meta.MarginNotes = nil
	meta.Bibliography = nil
	return &interfaces.Snapshot{
		Key:          doc.Key,
		Metadata:     meta,
		Body:         parsed.Body,
		HTML:         html,
		Headings:     headings,
		MarginNotes:  payload.MarginNotes,
		Bibliography: payload.Bibliography,
	}, nil
}
