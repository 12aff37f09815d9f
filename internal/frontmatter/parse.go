package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

// ErrMetadata wraps YAML decoding failures in the metadata block.
var ErrMetadata = errors.New("frontmatter: invalid metadata block")

// Header is the comment block between the first two delimiters.
type Header struct {
	Document string
	TypeName string
	Type     string
	Author   string
	Path     string
}

// Document is a fully decoded source file.
type Document struct {
	Found    bool
	Header   Header
	Metadata interfaces.Metadata
	Body     string
}

var metadataFormat = frontmatter.NewFormat(Delimiter, Delimiter, yaml.Unmarshal)

// Parse decodes both header blocks and returns the stripped body. Text
// without a complete frontmatter yields Found=false and the text as Body.
// A malformed metadata block still produces Header and Body alongside an
// error wrapping ErrMetadata.
func Parse(text string) (Document, error) {
	lines := strings.Split(text, "\n")
	markers := delimiterLines(lines, markerCount)
	if len(markers) < markerCount {
		return Document{Body: text}, nil
	}

	doc := Document{
		Found:  true,
		Header: parseHeader(lines[markers[0]+1 : markers[1]]),
		Body:   Strip(text),
	}

	block := lines[markers[2]+1 : markers[3]]
	if len(strings.TrimSpace(strings.Join(block, ""))) == 0 {
		return doc, nil
	}

	// the reader only sees the canonical delimiter so marker lines with a
	// different '=' run length still decode
	var src strings.Builder
	src.WriteString(Delimiter + "\n")
	src.WriteString(strings.Join(block, "\n"))
	src.WriteString("\n" + Delimiter + "\n")

	var meta interfaces.Metadata
	if _, err := frontmatter.Parse(strings.NewReader(src.String()), &meta, metadataFormat); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	doc.Metadata = meta
	return doc, nil
}

func parseHeader(lines []string) Header {
	var h Header
	for _, raw := range lines {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
		switch {
		case strings.HasPrefix(line, "@"):
			key, value, _ := strings.Cut(line[1:], " ")
			value = strings.TrimSpace(value)
			switch strings.ToLower(key) {
			case "type":
				h.Type = value
			case "author":
				h.Author = value
			case "path":
				h.Path = value
			}
		case strings.Contains(line, ":"):
			key, value, _ := strings.Cut(line, ":")
			value = strings.TrimSpace(value)
			switch strings.TrimSpace(key) {
			case "DOCUMENT":
				h.Document = value
			case "TYPE":
				h.TypeName = value
			}
		}
	}
	return h
}

// Compose renders a document with a canonical frontmatter. It is the inverse
// of Parse for the fields codex writes.
func Compose(header Header, meta interfaces.Metadata, body string) (string, error) {
	encoded, err := yaml.Marshal(composeView(meta))
	if err != nil {
		return "", fmt.Errorf("frontmatter: encode metadata: %w", err)
	}

	var b strings.Builder
	b.WriteString(Delimiter + "\n")
	if header.Document != "" {
		b.WriteString("# DOCUMENT: " + header.Document + "\n")
	}
	if header.TypeName != "" {
		b.WriteString("# TYPE:     " + header.TypeName + "\n")
	}
	b.WriteString("#\n")
	if header.Author != "" {
		b.WriteString("# @author " + header.Author + "\n")
	}
	if header.Type != "" {
		b.WriteString("# @type " + header.Type + "\n")
	}
	if header.Path != "" {
		b.WriteString("# @path " + header.Path + "\n")
	}
	b.WriteString(Delimiter + "\n")
	b.WriteString(Delimiter + "\n")
	b.Write(encoded)
	b.WriteString(Delimiter + "\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String(), nil
}

// composeView drops the annotation lists; those live in sidecar files.
func composeView(meta interfaces.Metadata) interfaces.Metadata {
	meta.MarginNotes = nil
	meta.Bibliography = nil
	return meta
}
