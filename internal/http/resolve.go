package http

import (
	"net/http"
	"path"
	"strings"
)

func (api *API) handleResolve(w http.ResponseWriter, r *http.Request) {
	if api.resolver == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	slug := strings.TrimSpace(r.PathValue("slug"))
	route, ok := api.resolver.Resolve(r.Context(), slug)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "no content matches " + slug})
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// handleCatchAll serves /{slug} and the .md/.mdx raw forms of document
// paths.
func (api *API) handleCatchAll(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(r.PathValue("path"), "/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	if ext := path.Ext(rest); ext == ".md" || ext == ".mdx" {
		api.serveRawPath(w, r, strings.TrimSuffix(rest, ext))
		return
	}

	if strings.Contains(rest, "/") {
		http.NotFound(w, r)
		return
	}
	api.serveSlug(w, r, rest)
}

func (api *API) serveRawPath(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		if target, ok := api.vanity.Lookup(parts[0]); ok {
			api.serveRaw(w, r, target.Type, target.Category, target.Slug)
			return
		}
	case 2:
		api.serveRaw(w, r, parts[0], "", parts[1])
		return
	case 3:
		api.serveRaw(w, r, parts[0], parts[1], parts[2])
		return
	}
	http.NotFound(w, r)
}

// serveSlug renders vanity slugs in place and redirects any other slug to
// the route it resolves to.
func (api *API) serveSlug(w http.ResponseWriter, r *http.Request, slug string) {
	logger := api.logger.WithContext(r.Context())

	if target, ok := api.vanity.Lookup(slug); ok {
		logger.Debug("http.slug.vanity", "slug", slug, "document", target.Key().String())
		api.serveDocumentPage(w, r, target.Key())
		return
	}
	if api.resolver == nil {
		http.NotFound(w, r)
		return
	}

	route, ok := api.resolver.Resolve(r.Context(), slug)
	if !ok {
		logger.Debug("http.slug.not_found", "slug", slug)
		http.NotFound(w, r)
		return
	}
	logger.Debug("http.slug.redirect", "slug", slug, "path", route.Path)
	http.Redirect(w, r, route.Path, http.StatusTemporaryRedirect)
}
