package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/internal/di"
	"github.com/goliatone/go-codex/internal/frontmatter"
	"github.com/goliatone/go-codex/internal/markdown"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

func newHeadingsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "headings <file>",
		Short: "Print the numbered headings of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			headings := markdown.ExtractHeadings([]byte(frontmatter.Strip(string(raw))))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), markdown.Outline(headings))
			}
			printHeadings(cmd.OutOrStdout(), headings)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the nested outline as JSON")
	return cmd
}

func newStripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strip <file>",
		Short: "Print a document without its frontmatter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), frontmatter.Strip(string(raw)))
			return nil
		},
	}
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a document to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			doc := &interfaces.Document{
				Key:    interfaces.DocumentKey{Slug: fileSlug(args[0])},
				Origin: args[0],
				Body:   raw,
			}
			// the file is served from memory so no content tree is needed
			container, err := opts.containerFor(cfg, di.WithContentSource(content.NewMemorySource(doc)))
			if err != nil {
				return err
			}
			defer container.Close()

			snapshot, err := container.MarkdownService().Process(cmd.Context(), doc.Key)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snapshot)
			}
			fmt.Fprintln(cmd.OutOrStdout(), snapshot.HTML)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full snapshot as JSON")
	return cmd
}

func printHeadings(w io.Writer, headings []interfaces.Heading) {
	for _, h := range headings {
		indent := strings.Repeat("  ", max(h.Level-1, 0))
		fmt.Fprintf(w, "%s%s %s\t#%s\n", indent, h.Number, h.Text, h.ID)
	}
}

func fileSlug(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
