package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/internal/routing"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// FileFetcher downloads a remote file by URL.
type FileFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// API registers the public document endpoints.
type API struct {
	basePath       string
	source         interfaces.ContentSource
	processor      interfaces.DocumentProcessor
	resolver       interfaces.SlugResolver
	vanity         *routing.Vanity
	fetcher        FileFetcher
	metricsPath    string
	metricsHandler http.Handler
	logger         interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath: "/api",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the JSON API prefix (defaults to "/api").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithContentSource wires the source used for raw markup.
func WithContentSource(source interfaces.ContentSource) Option {
	return func(api *API) {
		api.source = source
	}
}

// WithProcessor wires the pipeline that renders snapshots.
func WithProcessor(processor interfaces.DocumentProcessor) Option {
	return func(api *API) {
		api.processor = processor
	}
}

// WithResolver wires bare-slug resolution.
func WithResolver(resolver interfaces.SlugResolver) Option {
	return func(api *API) {
		api.resolver = resolver
	}
}

// WithVanity wires the vanity slug table.
func WithVanity(vanity *routing.Vanity) Option {
	return func(api *API) {
		api.vanity = vanity
	}
}

// WithFileFetcher enables the GitHub file proxy.
func WithFileFetcher(fetcher FileFetcher) Option {
	return func(api *API) {
		api.fetcher = fetcher
	}
}

// WithMetricsHandler mounts handler at path.
func WithMetricsHandler(path string, handler http.Handler) Option {
	return func(api *API) {
		api.metricsPath = strings.TrimSpace(path)
		api.metricsHandler = handler
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}

	base := joinPath(api.basePath, "")

	mux.HandleFunc("GET /raw/{type}/{category}/{slug}", api.handleRaw)
	mux.HandleFunc("GET /raw/{type}/{slug}", api.handleRaw)
	mux.HandleFunc("GET "+joinPath(base, "documents")+"/{type}/{category}/{slug}", api.handleDocument)
	mux.HandleFunc("GET "+joinPath(base, "documents")+"/{type}/{slug}", api.handleDocument)
	mux.HandleFunc("GET "+joinPath(base, "resolve")+"/{slug}", api.handleResolve)
	mux.HandleFunc("GET "+joinPath(base, "github-file"), api.handleGitHubFile)
	if api.metricsHandler != nil && api.metricsPath != "" {
		mux.Handle("GET "+joinPath(api.metricsPath, ""), api.metricsHandler)
	}
	mux.HandleFunc("GET /{path...}", api.handleCatchAll)

	return nil
}

// Handler returns a fresh mux with every endpoint registered.
func (api *API) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

// documentKey builds a key from URL segments. The canonical "uncategorized"
// segment means no category for types that allow one to be missing.
func documentKey(contentType, category, slug string) (interfaces.DocumentKey, error) {
	t, ok := content.ParseType(contentType)
	if !ok {
		return interfaces.DocumentKey{}, fmt.Errorf("%w: %s", content.ErrUnknownType, contentType)
	}
	if category == content.UncategorizedSlug && t.Layout != content.Categorized {
		category = ""
	}
	return interfaces.DocumentKey{Type: t.Name, Category: category, Slug: slug}, nil
}
