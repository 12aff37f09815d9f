package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-codex/pkg/testsupport"
)

const sampleDoc = `# ==============================================================================
# DOCUMENT: on-lists.md
# TYPE:     Essay
# ==============================================================================
# ==============================================================================
title: On Lists
slug: on-lists
# ==============================================================================

# Intro

## Why $x$ matters

# Outro
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	testsupport.WriteTree(t, filepath.Dir(path), map[string]string{filepath.Base(path): data})
}

func TestStripCommandDropsFrontmatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "on-lists.md")
	writeFile(t, path, sampleDoc)

	out, err := runCLI(t, "strip", path)
	if err != nil {
		t.Fatalf("strip: %v", err)
	}
	if strings.Contains(out, "DOCUMENT") || !strings.HasPrefix(out, "# Intro") {
		t.Fatalf("unexpected strip output %q", out)
	}
}

func TestHeadingsCommandPrintsNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "on-lists.md")
	writeFile(t, path, sampleDoc)

	out, err := runCLI(t, "headings", path)
	if err != nil {
		t.Fatalf("headings: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 headings, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "1 Intro") {
		t.Fatalf("unexpected first heading %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  1.1 Why $x$ matters") {
		t.Fatalf("unexpected nested heading %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2 Outro") {
		t.Fatalf("unexpected last heading %q", lines[2])
	}
}

func TestHeadingsCommandMissingFile(t *testing.T) {
	if _, err := runCLI(t, "headings", filepath.Join(t.TempDir(), "absent.md")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := "content:\n  root: " + filepath.Join(dir, "content") + "\n" +
		"storage:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "content.db") + "\n" +
		"metrics:\n  enabled: false\n" +
		"logging:\n  level: error\n"
	path := filepath.Join(dir, "codex.yaml")
	writeFile(t, path, cfg)
	return path
}

func TestRenderCommandWithoutContentTree(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "codex.yaml")
	writeFile(t, configPath, "content:\n  root: "+filepath.Join(dir, "missing")+"\nlogging:\n  level: error\n")
	path := filepath.Join(dir, "on-lists.md")
	writeFile(t, path, sampleDoc)

	out, err := runCLI(t, "render", "--config", configPath, path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `id="intro"`) {
		t.Fatalf("expected heading id in output, got %q", out)
	}
	if strings.Contains(out, "DOCUMENT") {
		t.Fatalf("frontmatter leaked into render %q", out)
	}
}

func TestSyncThenResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "content", "essays", "content", "craft", "on-lists.md"), sampleDoc)
	writeFile(t, filepath.Join(dir, "content", "blog", "content", "hello.md"), "# Hello\n")
	configPath := writeConfig(t, dir)

	if _, err := runCLI(t, "resolve", "--config", configPath, "on-lists"); err == nil {
		t.Fatalf("expected resolve to fail before sync")
	}

	out, err := runCLI(t, "sync", "--config", configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !strings.Contains(out, "synced 2 entries") {
		t.Fatalf("unexpected sync report %q", out)
	}

	out, err = runCLI(t, "resolve", "--config", configPath, "on-lists")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.TrimSpace(out) != "essays\t/essays/craft/on-lists" {
		t.Fatalf("unexpected resolve output %q", out)
	}

	out, err = runCLI(t, "resolve", "--config", configPath, "hello")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.TrimSpace(out) != "blog\t/blog/uncategorized/hello" {
		t.Fatalf("unexpected resolve output %q", out)
	}
}

func TestResolveVanitySlug(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir)
	writeFile(t, filepath.Join(dir, "content", ".keep"), "")

	out, err := runCLI(t, "resolve", "--config", configPath, "faq")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasPrefix(out, "vanity\t/faq\tnotes/website/faq") {
		t.Fatalf("unexpected vanity output %q", out)
	}
}
