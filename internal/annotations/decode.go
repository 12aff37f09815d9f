package annotations

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// ErrInvalidSidecar is returned when sidecar JSON fails schema validation.
var ErrInvalidSidecar = errors.New("annotations: invalid sidecar payload")

//go:embed schemas/*.json
var schemaFiles embed.FS

const (
	marginNotesSchema  = "schemas/margin-notes.json"
	bibliographySchema = "schemas/bibliography.json"
)

var compiledSchemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	out := map[string]*jsonschema.Schema{}
	for _, name := range []string{marginNotesSchema, bibliographySchema} {
		raw, err := schemaFiles.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
			return nil, err
		}
	}
	for _, name := range []string{marginNotesSchema, bibliographySchema} {
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, err
		}
		out[name] = schema
	}
	return out, nil
})

// Decoder turns sidecar JSON into a Payload. Invalid input never fails the
// caller: the affected collection is dropped and a warning logged.
type Decoder struct {
	logger interfaces.Logger
}

// NewDecoder returns a decoder that logs through logger (nil means no-op).
func NewDecoder(logger interfaces.Logger) *Decoder {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Decoder{logger: logger}
}

// Decode reads both sidecars. Either may be nil.
func (d *Decoder) Decode(marginNotes, bibliography []byte) Payload {
	var p Payload
	if len(bytes.TrimSpace(marginNotes)) > 0 {
		notes, err := DecodeMarginNotes(marginNotes)
		if err != nil {
			d.logger.Warn("annotations.margin_notes.invalid", "error", err)
		}
		p.MarginNotes = notes
	}
	if len(bytes.TrimSpace(bibliography)) > 0 {
		entries, err := DecodeBibliography(bibliography)
		if err != nil {
			d.logger.Warn("annotations.bibliography.invalid", "error", err)
		}
		p.Bibliography = entries
	}
	return p
}

// Sanitize drops entries that fail validation, logging each one.
func (d *Decoder) Sanitize(p Payload) Payload {
	out := Payload{}
	for _, note := range p.MarginNotes {
		if err := ValidateMarginNote(note); err != nil {
			d.logger.Warn("annotations.margin_note.skipped", "id", note.ID, "error", err)
			continue
		}
		out.MarginNotes = append(out.MarginNotes, note)
	}
	for _, entry := range p.Bibliography {
		entry.Type = normaliseType(entry.Type)
		if err := ValidateBibliographyEntry(entry); err != nil {
			d.logger.Warn("annotations.bibliography_entry.skipped", "id", entry.ID, "error", err)
			continue
		}
		out.Bibliography = append(out.Bibliography, entry)
	}
	return out
}

// DecodeMarginNotes validates data against the margin note schema and
// decodes it. A schema failure returns nil notes and ErrInvalidSidecar.
func DecodeMarginNotes(data []byte) ([]interfaces.MarginNote, error) {
	if err := validateAgainst(marginNotesSchema, data); err != nil {
		return nil, err
	}
	var notes []interfaces.MarginNote
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSidecar, err)
	}
	return notes, nil
}

// DecodeBibliography validates data against the bibliography schema and
// decodes it.
func DecodeBibliography(data []byte) ([]interfaces.BibliographyEntry, error) {
	if err := validateAgainst(bibliographySchema, data); err != nil {
		return nil, err
	}
	var entries []interfaces.BibliographyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSidecar, err)
	}
	return entries, nil
}

func validateAgainst(name string, data []byte) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return fmt.Errorf("annotations: compile schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSidecar, err)
	}
	if err := schemas[name].Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSidecar, err)
	}
	return nil
}

func normaliseType(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, known := range EntryTypes {
		if value == known {
			return value
		}
	}
	return "other"
}
