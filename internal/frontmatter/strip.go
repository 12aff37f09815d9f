// Package frontmatter handles the four-delimiter header convention used by
// codex documents:
//
//	# ==========...   (1) comment header start
//	# DOCUMENT: ...
//	# @type essays
//	# ==========...   (2) comment header end
//	# ==========...   (3) metadata start
//	title: ...
//	# ==========...   (4) metadata end
//	body
//
// Strip is a plain line scan and never parses YAML. Parse additionally
// decodes both blocks.
package frontmatter

import (
	"strings"
)

// Delimiter is the canonical marker line written by codex tooling. Readers
// accept any line that IsDelimiter reports true for.
const Delimiter = "# =============================================================================="

const (
	markerPrefix = "# "
	markerRun    = "=========="
	markerCount  = 4
)

// IsDelimiter reports whether line, once trimmed, starts with "# " and
// contains a run of at least ten '=' characters.
func IsDelimiter(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, markerPrefix) && strings.Contains(line, markerRun)
}

// Strip removes the frontmatter. When the fourth delimiter is found the text
// after it is returned trimmed; otherwise text is returned unchanged.
func Strip(text string) string {
	lines := strings.Split(text, "\n")
	markers := delimiterLines(lines, markerCount)
	if len(markers) < markerCount {
		return text
	}
	return strings.TrimSpace(strings.Join(lines[markers[markerCount-1]+1:], "\n"))
}

// HasFrontmatter reports whether text carries all four delimiters.
func HasFrontmatter(text string) bool {
	return len(delimiterLines(strings.Split(text, "\n"), markerCount)) == markerCount
}

// delimiterLines returns the indexes of up to limit delimiter lines.
func delimiterLines(lines []string, limit int) []int {
	found := make([]int, 0, limit)
	for i, line := range lines {
		if !IsDelimiter(line) {
			continue
		}
		found = append(found, i)
		if len(found) == limit {
			break
		}
	}
	return found
}
