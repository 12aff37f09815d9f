package annotations

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

// EntryTypes lists the accepted bibliography entry types.
var EntryTypes = []any{"book", "article", "video", "paper", "other"}

// ValidateMarginNote checks a single note.
func ValidateMarginNote(note interfaces.MarginNote) error {
	return validation.ValidateStruct(&note,
		validation.Field(&note.ID, validation.Required, validation.By(notBlank("codex.annotations.note.id_blank"))),
		validation.Field(&note.Index, validation.Min(0)),
		validation.Field(&note.Content, validation.Required.When(strings.TrimSpace(note.Title) == "").
			Error("either title or content is required")),
	)
}

// ValidateBibliographyEntry checks a single entry. An empty Type is accepted
// and normalised to "other" by the decoder.
func ValidateBibliographyEntry(entry interfaces.BibliographyEntry) error {
	return validation.ValidateStruct(&entry,
		validation.Field(&entry.ID, validation.Required, validation.By(notBlank("codex.annotations.bibliography.id_blank"))),
		validation.Field(&entry.Title, validation.Required),
		validation.Field(&entry.Year, validation.Min(0), validation.Max(9999)),
		validation.Field(&entry.URL, is.URL),
		validation.Field(&entry.Type, validation.In(EntryTypes...)),
	)
}

func notBlank(code string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError(code, "must not be blank")
		}
		return nil
	}
}
