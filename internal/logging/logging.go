package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

const (
	rootModule     = "codex"
	markdownModule = "codex.markdown"
	mathModule     = "codex.math"
	contentModule  = "codex.content"
	routingModule  = "codex.routing"
	remoteModule   = "codex.remote"
	httpModule     = "codex.http"
	commandsModule = "codex.commands"
)

// ModuleLogger returns a logger scoped to module. Without a provider the
// result is a no-op logger. The module name is attached as the "module" field
// so entries can be filtered by namespace.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// MarkdownLogger scopes a logger to the document pipeline.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// MathLogger scopes a logger to the math preprocessor.
func MathLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mathModule)
}

// ContentLogger scopes a logger to content sources.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// RoutingLogger scopes a logger to the slug resolver.
func RoutingLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, routingModule)
}

// RemoteLogger scopes a logger to outbound fetchers.
func RemoteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, remoteModule)
}

// HTTPLogger scopes a logger to the HTTP handlers.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// CommandsLogger scopes a logger to command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithDocument adds the document key fields to logger. Empty parts are
// skipped.
func WithDocument(logger interfaces.Logger, key interfaces.DocumentKey) interfaces.Logger {
	fields := map[string]any{}
	if key.Type != "" {
		fields["content_type"] = key.Type
	}
	if key.Category != "" {
		fields["category"] = key.Category
	}
	if key.Slug != "" {
		fields["slug"] = key.Slug
	}
	return WithFields(logger, fields)
}

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns logger unchanged otherwise. The map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fl, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fl.WithFields(maps.Clone(fields))
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return discard{}
}

type discard struct{}

var (
	_ interfaces.Logger       = discard{}
	_ interfaces.FieldsLogger = discard{}
)

func (discard) Trace(string, ...any) {}
func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any)  {}
func (discard) Warn(string, ...any)  {}
func (discard) Error(string, ...any) {}
func (discard) Fatal(string, ...any) {}

func (d discard) WithFields(map[string]any) interfaces.Logger     { return d }
func (d discard) WithContext(context.Context) interfaces.Logger { return d }
