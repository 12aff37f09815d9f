package commands

import (
	"strings"

	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

// Logger returns the logger for one command family, e.g. "catalog" yields
// module codex.commands.catalog.
func Logger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		return logging.CommandsLogger(provider)
	}
	return logging.WithFields(
		logging.ModuleLogger(provider, "codex.commands."+family),
		map[string]any{"command_family": family},
	)
}
