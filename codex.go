package codex

import (
	"context"

	"github.com/goliatone/go-codex/internal/di"
	codexhttp "github.com/goliatone/go-codex/internal/http"
	"github.com/goliatone/go-codex/internal/markdown"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// DocumentKey exports the document address.
type DocumentKey = interfaces.DocumentKey

// Snapshot exports the rendered document.
type Snapshot = interfaces.Snapshot

// ResolvedRoute exports the slug resolution result.
type ResolvedRoute = interfaces.ResolvedRoute

// ContentSource exports the raw document source contract.
type ContentSource = interfaces.ContentSource

// Module represents the top level codex runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Markdown returns the document pipeline.
func (m *Module) Markdown() *markdown.Service {
	return m.container.MarkdownService()
}

// Process renders the document addressed by key.
func (m *Module) Process(ctx context.Context, key DocumentKey) (*Snapshot, error) {
	return m.container.MarkdownService().Process(ctx, key)
}

// Resolve maps a bare slug onto its canonical route.
func (m *Module) Resolve(ctx context.Context, slug string) (ResolvedRoute, bool) {
	return m.container.Resolver().Resolve(ctx, slug)
}

// API returns the HTTP endpoints.
func (m *Module) API() *codexhttp.API {
	return m.container.API()
}

// Close releases databases opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
