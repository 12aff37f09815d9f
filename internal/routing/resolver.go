package routing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

const defaultTimeout = 5 * time.Second

// Resolve outcomes reported to metrics.
const (
	OutcomeHit         = "hit"
	OutcomeMiss        = "miss"
	OutcomeUnavailable = "unavailable"
)

// Resolver finds the collection that owns a bare slug.
type Resolver struct {
	open    Opener
	probes  []Probe
	timeout time.Duration
	logger  interfaces.Logger
	metrics interfaces.PipelineMetrics
}

var _ interfaces.SlugResolver = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithProbes overrides the probe order.
func WithProbes(probes []Probe) Option {
	return func(r *Resolver) {
		if len(probes) > 0 {
			r.probes = append([]Probe(nil), probes...)
		}
	}
}

// WithTimeout bounds a whole Resolve call, connection included.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(metrics interfaces.PipelineMetrics) Option {
	return func(r *Resolver) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// NewResolver validates the probe order and returns a resolver over open.
func NewResolver(open Opener, opts ...Option) (*Resolver, error) {
	if open == nil {
		return nil, fmt.Errorf("routing: opener is required")
	}
	r := &Resolver{
		open:    open,
		probes:  DefaultProbes(),
		timeout: defaultTimeout,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := ValidateProbes(r.probes); err != nil {
		return nil, err
	}
	return r, nil
}

// Probes returns a copy of the configured order.
func (r *Resolver) Probes() []Probe {
	return append([]Probe(nil), r.probes...)
}

// Resolve implements interfaces.SlugResolver. The first probe that holds
// slug wins. A miss, an unreachable store and a cancelled context all
// report false.
func (r *Resolver) Resolve(ctx context.Context, slug string) (interfaces.ResolvedRoute, bool) {
	slug = strings.TrimSpace(slug)
	logger := logging.WithFields(r.logger.WithContext(ctx), map[string]any{"slug": slug})
	if slug == "" {
		return interfaces.ResolvedRoute{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	db, err := r.open(ctx)
	if err != nil {
		logger.Warn("routing.store.unavailable", "error", err)
		r.count(OutcomeUnavailable)
		return interfaces.ResolvedRoute{}, false
	}
	defer closeQuietly(db, logger)

	for _, probe := range r.probes {
		if ctx.Err() != nil {
			logger.Warn("routing.resolve.aborted", "error", ctx.Err())
			r.count(OutcomeUnavailable)
			return interfaces.ResolvedRoute{}, false
		}
		route, ok := r.lookup(ctx, db, probe, slug, logger)
		if ok {
			logger.Debug("routing.resolve.hit", "content_type", route.Type, "path", route.Path)
			r.count(OutcomeHit)
			return route, true
		}
	}

	logger.Debug("routing.resolve.miss")
	r.count(OutcomeMiss)
	return interfaces.ResolvedRoute{}, false
}

// ResolveAll returns every probe hit for slug in probe order. Unlike Resolve
// it reports store failures, which makes it suitable for audits.
func (r *Resolver) ResolveAll(ctx context.Context, slug string) ([]interfaces.ResolvedRoute, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	db, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	logger := logging.WithFields(r.logger.WithContext(ctx), map[string]any{"slug": slug})
	defer closeQuietly(db, logger)

	var routes []interfaces.ResolvedRoute
	for _, probe := range r.probes {
		if err := ctx.Err(); err != nil {
			return routes, err
		}
		if route, ok := r.lookup(ctx, db, probe, slug, logger); ok {
			routes = append(routes, route)
		}
	}
	return routes, nil
}

type catalogRow struct {
	Slug     string         `bun:"slug"`
	Category sql.NullString `bun:"category"`
}

// lookup runs one probe. Query failures, such as a missing table, count as
// a miss for that probe only.
func (r *Resolver) lookup(ctx context.Context, db *bun.DB, probe Probe, slug string, logger interfaces.Logger) (interfaces.ResolvedRoute, bool) {
	var row catalogRow
	err := db.NewSelect().
		Table(probe.Table).
		Column("slug").
		ColumnExpr("? AS category", bun.Ident(probe.CategoryColumn)).
		Where("slug = ?", slug).
		Limit(1).
		Scan(ctx, &row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Debug("routing.probe.failed", "content_type", probe.Type, "error", err)
		}
		return interfaces.ResolvedRoute{}, false
	}
	return NewRoute(probe.Type, row.Category.String, row.Slug), true
}

func (r *Resolver) count(outcome string) {
	if r.metrics != nil {
		r.metrics.IncrementResolve(outcome)
	}
}

func closeQuietly(db *bun.DB, logger interfaces.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn("routing.store.close_failed", "error", err)
	}
}

// NewRoute builds a route with its canonical path. An empty category is
// replaced by the uncategorized placeholder.
func NewRoute(contentType, category, slug string) interfaces.ResolvedRoute {
	category = strings.TrimSpace(category)
	if category == "" {
		category = content.UncategorizedSlug
	}
	return interfaces.ResolvedRoute{
		Type:     contentType,
		Category: category,
		Slug:     slug,
		Path:     CanonicalPath(contentType, category, slug),
	}
}

// CanonicalPath renders /{type}/{category}/{slug}.
func CanonicalPath(contentType, category, slug string) string {
	if strings.TrimSpace(category) == "" {
		category = content.UncategorizedSlug
	}
	return "/" + contentType + "/" + category + "/" + slug
}
