package http

import (
	"net/http"
	"strings"
)

func (api *API) handleGitHubFile(w http.ResponseWriter, r *http.Request) {
	if api.fetcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable", Message: "remote files are disabled"})
		return
	}
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "url is required"})
		return
	}

	body, err := api.fetcher.Fetch(r.Context(), rawURL)
	if err != nil {
		api.logger.WithContext(r.Context()).Warn("http.github_file.failed", "url", rawURL, "error", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeText(w, http.StatusOK, "text/plain; charset=utf-8", body)
}
