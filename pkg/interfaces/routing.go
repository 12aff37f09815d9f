package interfaces

import "context"

// ResolvedRoute is the outcome of a successful slug lookup. It is computed per
// request and never persisted.
type ResolvedRoute struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Slug     string `json:"slug"`
	Path     string `json:"path"`
}

// SlugResolver maps a bare slug onto exactly one content collection. The bool
// result is false when nothing matched or the store could not be reached.
type SlugResolver interface {
	Resolve(ctx context.Context, slug string) (ResolvedRoute, bool)
}
