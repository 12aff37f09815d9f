package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-codex/pkg/interfaces"
)

type capturingLogger struct {
	fields []map[string]any
}

func (c *capturingLogger) Trace(string, ...any) {}
func (c *capturingLogger) Debug(string, ...any) {}
func (c *capturingLogger) Info(string, ...any)  {}
func (c *capturingLogger) Warn(string, ...any)  {}
func (c *capturingLogger) Error(string, ...any) {}
func (c *capturingLogger) Fatal(string, ...any) {}

func (c *capturingLogger) WithFields(fields map[string]any) interfaces.Logger {
	c.fields = append(c.fields, fields)
	return c
}

func (c *capturingLogger) WithContext(context.Context) interfaces.Logger { return c }

type namedProvider struct {
	names  []string
	logger interfaces.Logger
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestModuleLoggerWithoutProviderDiscards(t *testing.T) {
	logger := ModuleLogger(nil, routingModule)
	if _, ok := logger.(discard); !ok {
		t.Fatalf("expected discard logger, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("noop")
}

func TestModuleLoggerTagsModule(t *testing.T) {
	rec := &capturingLogger{}
	provider := &namedProvider{logger: rec}

	RoutingLogger(provider)

	if len(provider.names) != 1 || provider.names[0] != routingModule {
		t.Fatalf("expected %s request, got %v", routingModule, provider.names)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != routingModule {
		t.Fatalf("expected module field %s, got %v", routingModule, rec.fields)
	}
}

func TestModuleLoggerBlankNameUsesRoot(t *testing.T) {
	provider := &namedProvider{logger: &capturingLogger{}}
	ModuleLogger(provider, "  ")
	if provider.names[0] != rootModule {
		t.Fatalf("expected root module, got %v", provider.names)
	}
}

func TestWithDocumentSkipsEmptyParts(t *testing.T) {
	rec := &capturingLogger{}
	WithDocument(rec, interfaces.DocumentKey{Type: "til", Slug: "go-maps"})

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got["content_type"] != "til" || got["slug"] != "go-maps" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got["category"]; ok {
		t.Fatalf("empty category should be skipped: %v", got)
	}
}

func TestWithFieldsCopiesInput(t *testing.T) {
	rec := &capturingLogger{}
	fields := map[string]any{"slug": "a"}
	WithFields(rec, fields)
	fields["slug"] = "b"
	if rec.fields[0]["slug"] != "a" {
		t.Fatalf("expected copied fields, got %v", rec.fields[0])
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r1"})
	ctx = ContextWithFields(ctx, map[string]any{"slug": "essay"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "r1" || fields["slug"] != "essay" {
		t.Fatalf("unexpected merged fields %v", fields)
	}

	fields["slug"] = "mutated"
	if ContextFields(ctx)["slug"] != "essay" {
		t.Fatal("expected ContextFields to return a copy")
	}
}
