// Package http exposes documents, slug resolution and the GitHub file proxy
// over net/http.
//
// Routes:
//   - /raw/{type}/{category}/{slug} and /raw/{type}/{slug}: source markup
//   - /api/documents/{type}/{category}/{slug}: rendered snapshot as JSON
//   - /api/resolve/{slug}: the route a bare slug resolves to
//   - /api/github-file?url=: raw file from the allowed GitHub owner
//   - /{slug}: vanity document, or a redirect to the resolved route
//   - /{type}/{category}/{slug}.md and /{vanity}.md: source markup
//
// Host applications can register handlers on their own mux as needed.
package http
