package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-codex/internal/catalog"
	catalogcmd "github.com/goliatone/go-codex/internal/commands/catalog"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var (
		root   string
		types  []string
		dryRun bool
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the per-type slug catalog from the content tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if root == "" {
				root = cfg.Content.Root
			}
			if !cmd.Flags().Changed("strict") {
				strict = cfg.Routing.StrictUnique
			}

			container, err := opts.containerFor(cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			handler, err := container.SyncCatalogHandler()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return handler.Execute(cmd.Context(), catalogcmd.SyncCatalogCommand{
				Root:         root,
				Types:        types,
				DryRun:       dryRun,
				StrictUnique: strict,
				ResultCallback: func(report *catalog.Report) {
					printReport(out, report)
				},
			})
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "content tree to scan (default content.root)")
	cmd.Flags().StringSliceVar(&types, "types", nil, "limit the run to these content types")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scan and report without writing")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a slug is registered by more than one type")
	return cmd
}

func printReport(w io.Writer, report *catalog.Report) {
	if report == nil {
		return
	}
	mode := "synced"
	if report.DryRun {
		mode = "scanned"
	}
	fmt.Fprintf(w, "%s %d entries\n", mode, len(report.Entries))

	types := make([]string, 0, len(report.Written))
	for name := range report.Written {
		types = append(types, name)
	}
	sort.Strings(types)
	for _, name := range types {
		fmt.Fprintf(w, "  %s: %d\n", name, report.Written[name])
	}

	slugs := make([]string, 0, len(report.Duplicates))
	for slug := range report.Duplicates {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		fmt.Fprintf(w, "duplicate slug %q in %s\n", slug, strings.Join(report.Duplicates[slug], ", "))
	}
	for _, skipped := range report.Skipped {
		fmt.Fprintf(w, "skipped %s\n", skipped)
	}
}
