package routing_test

import (
	"testing"

	"github.com/goliatone/go-codex/internal/routing"
)

func TestDefaultVanity(t *testing.T) {
	vanity, err := routing.NewVanity(routing.DefaultVanityURLs())
	if err != nil {
		t.Fatalf("new vanity: %v", err)
	}
	target, ok := vanity.Lookup(" ME ")
	if !ok {
		t.Fatalf("expected me to be registered")
	}
	if got := target.Key().String(); got != "notes/on-myself/about-kris" {
		t.Fatalf("unexpected target %s", got)
	}
	if _, ok := vanity.Lookup("resume"); ok {
		t.Fatalf("expected unknown vanity slug to miss")
	}
	if len(vanity.Targets()) != 6 {
		t.Fatalf("expected six defaults, got %d", len(vanity.Targets()))
	}
}

func TestNewVanityRejectsBadTargets(t *testing.T) {
	if _, err := routing.NewVanity(map[string]routing.VanityTarget{"x": {Type: "podcasts", Slug: "y"}}); err == nil {
		t.Fatalf("expected unknown type to be rejected")
	}
	if _, err := routing.NewVanity(map[string]routing.VanityTarget{"x": {Type: "notes"}}); err == nil {
		t.Fatalf("expected empty slug to be rejected")
	}
	var nilVanity *routing.Vanity
	if _, ok := nilVanity.Lookup("me"); ok {
		t.Fatalf("nil vanity should never match")
	}
}

func TestCanonicalPath(t *testing.T) {
	if got := routing.CanonicalPath("til", "", "bash"); got != "/til/uncategorized/bash" {
		t.Fatalf("unexpected path %s", got)
	}
	route := routing.NewRoute("essays", " craft ", "on-lists")
	if route.Category != "craft" || route.Path != "/essays/craft/on-lists" {
		t.Fatalf("unexpected route %+v", route)
	}
}
