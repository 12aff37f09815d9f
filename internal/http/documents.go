package http

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/internal/routing"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

const markdownContentType = "text/markdown; charset=utf-8"

func (api *API) handleRaw(w http.ResponseWriter, r *http.Request) {
	api.serveRaw(w, r, r.PathValue("type"), r.PathValue("category"), r.PathValue("slug"))
}

// serveRaw answers with the document source, or a plain-text explanation
// when the type or document is unknown.
func (api *API) serveRaw(w http.ResponseWriter, r *http.Request, contentType, category, slug string) {
	if api.source == nil {
		writeText(w, http.StatusServiceUnavailable, "text/plain; charset=utf-8", "content source unavailable")
		return
	}
	key, err := documentKey(contentType, category, slug)
	if err != nil {
		writeText(w, http.StatusNotFound, "text/plain; charset=utf-8", unknownTypeMessage(err))
		return
	}

	doc, err := api.source.Fetch(r.Context(), key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrDocumentNotFound) {
			logging.WithDocument(api.logger.WithContext(r.Context()), key).Warn("http.raw.fetch_failed", "error", err)
		}
		writeText(w, http.StatusNotFound, "text/plain; charset=utf-8", "Content not found: "+key.String())
		return
	}
	writeText(w, http.StatusOK, markdownContentType, string(doc.Body))
}

func (api *API) handleDocument(w http.ResponseWriter, r *http.Request) {
	if api.processor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	key, err := documentKey(r.PathValue("type"), r.PathValue("category"), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	snapshot, err := api.processor.Process(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// serveDocumentPage renders a snapshot as a bare HTML page.
func (api *API) serveDocumentPage(w http.ResponseWriter, r *http.Request, key interfaces.DocumentKey) {
	if api.processor == nil {
		http.NotFound(w, r)
		return
	}
	snapshot, err := api.processor.Process(r.Context(), key)
	if err != nil {
		status, _ := mapError(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	title := snapshot.Metadata.Title
	if title == "" {
		title = key.Slug
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(title))
	fmt.Fprintf(&b, "<link rel=\"alternate\" type=\"text/markdown\" href=\"%s.md\">", html.EscapeString(routing.CanonicalPath(key.Type, key.Category, key.Slug)))
	b.WriteString("</head><body><article>\n")
	b.WriteString(snapshot.HTML)
	b.WriteString("\n</article></body></html>\n")
	writeText(w, http.StatusOK, "text/html; charset=utf-8", b.String())
}
