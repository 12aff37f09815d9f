package routing

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-codex/internal/content"
)

var (
	ErrNoProbes      = errors.New("routing: probe order is empty")
	ErrDuplicateType = errors.New("routing: content type listed twice in probe order")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultProbeOrder is the lookup order used when none is configured.
var DefaultProbeOrder = []string{
	"blog",
	"essays",
	"fiction",
	"news",
	"notes",
	"ocs",
	"papers",
	"progymnasmata",
	"reviews",
	"verse",
}

// Probe is one lookup: the table holding a content type and the column that
// carries its category.
type Probe struct {
	Type           string `json:"type" yaml:"type"`
	Table          string `json:"table" yaml:"table"`
	CategoryColumn string `json:"category_column" yaml:"category_column"`
}

// Validate checks that the probe names a registered type and safe
// identifiers.
func (p Probe) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required, validation.By(registeredType)),
		validation.Field(&p.Table, validation.Required, validation.Match(identifierPattern)),
		validation.Field(&p.CategoryColumn, validation.Required, validation.Match(identifierPattern)),
	)
}

func registeredType(value any) error {
	name, _ := value.(string)
	if _, ok := content.ParseType(name); !ok {
		return validation.NewError("codex.routing.unknown_type", "is not a registered content type")
	}
	return nil
}

// ProbesFor builds probes for the named types in order. Each type is read
// from the table of the same name using the type's category column.
func ProbesFor(names []string) ([]Probe, error) {
	if len(names) == 0 {
		return nil, ErrNoProbes
	}
	probes := make([]Probe, 0, len(names))
	for _, name := range names {
		t, ok := content.ParseType(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", content.ErrUnknownType, name)
		}
		probes = append(probes, Probe{Type: t.Name, Table: t.Name, CategoryColumn: t.CategoryColumn})
	}
	if err := ValidateProbes(probes); err != nil {
		return nil, err
	}
	return probes, nil
}

// DefaultProbes returns the probes for DefaultProbeOrder.
func DefaultProbes() []Probe {
	probes, err := ProbesFor(DefaultProbeOrder)
	if err != nil {
		panic(err)
	}
	return probes
}

// ValidateProbes checks every probe and rejects repeated types.
func ValidateProbes(probes []Probe) error {
	if len(probes) == 0 {
		return ErrNoProbes
	}
	seen := make(map[string]bool, len(probes))
	for i, p := range probes {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("routing: probe %d (%s): %w", i, p.Type, err)
		}
		if seen[p.Type] {
			return fmt.Errorf("%w: %s", ErrDuplicateType, p.Type)
		}
		seen[p.Type] = true
	}
	return nil
}
