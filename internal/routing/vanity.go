package routing

import (
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// VanityTarget names the document a vanity slug serves.
type VanityTarget struct {
	Type     string `json:"type" yaml:"type" mapstructure:"type"`
	Category string `json:"category" yaml:"category" mapstructure:"category"`
	Slug     string `json:"slug" yaml:"slug" mapstructure:"slug"`
}

// Key returns the document key of the target.
func (t VanityTarget) Key() interfaces.DocumentKey {
	return interfaces.DocumentKey{Type: t.Type, Category: t.Category, Slug: t.Slug}
}

// DefaultVanityURLs are the short paths served in place of a note.
func DefaultVanityURLs() map[string]VanityTarget {
	note := func(category, slug string) VanityTarget {
		return VanityTarget{Type: "notes", Category: category, Slug: slug}
	}
	return map[string]VanityTarget{
		"me":     note("on-myself", "about-kris"),
		"logo":   note("on-myself", "about-my-logo"),
		"about":  note("website", "about-this-website"),
		"design": note("website", "design-of-this-website"),
		"donate": note("website", "donate"),
		"faq":    note("website", "faq"),
	}
}

// Vanity is an immutable slug to document table consulted before the
// resolver.
type Vanity struct {
	targets map[string]VanityTarget
}

// NewVanity copies targets, lower-casing slugs. Every target must name a
// registered type and a slug.
func NewVanity(targets map[string]VanityTarget) (*Vanity, error) {
	out := make(map[string]VanityTarget, len(targets))
	for slug, target := range targets {
		key := strings.ToLower(strings.TrimSpace(slug))
		if key == "" {
			return nil, fmt.Errorf("routing: vanity slug is empty")
		}
		if _, ok := content.ParseType(target.Type); !ok {
			return nil, fmt.Errorf("routing: vanity %q: %w: %s", key, content.ErrUnknownType, target.Type)
		}
		if strings.TrimSpace(target.Slug) == "" {
			return nil, fmt.Errorf("routing: vanity %q: target slug is empty", key)
		}
		out[key] = target
	}
	return &Vanity{targets: out}, nil
}

// Lookup returns the target for slug.
func (v *Vanity) Lookup(slug string) (VanityTarget, bool) {
	if v == nil {
		return VanityTarget{}, false
	}
	target, ok := v.targets[strings.ToLower(strings.TrimSpace(slug))]
	return target, ok
}

// Targets returns a copy of the table.
func (v *Vanity) Targets() map[string]VanityTarget {
	if v == nil {
		return nil
	}
	return maps.Clone(v.targets)
}
