// Package markdown turns stripped document text into the immutable snapshot
// served to renderers: HTML, numbered headings and ordered annotations.
package markdown
