package codex_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-codex"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := codex.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidationSentinelsAreExported(t *testing.T) {
	cfg := codex.DefaultConfig()
	cfg.Logging.Provider = ""

	if err := cfg.Validate(); !errors.Is(err, codex.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := codex.DefaultConfig()
	cfg.Content.Root = ""

	if _, err := codex.New(cfg); !errors.Is(err, codex.ErrContentRootRequired) {
		t.Fatalf("expected ErrContentRootRequired, got %v", err)
	}
}
