package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "resolve <slug>",
		Short: "Resolve a bare slug to its canonical path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := opts.container()
			if err != nil {
				return err
			}
			defer container.Close()

			slug := args[0]
			out := cmd.OutOrStdout()
			if target, ok := container.Vanity().Lookup(slug); ok {
				fmt.Fprintf(out, "vanity\t/%s\t%s\n", slug, target.Key())
				return nil
			}

			if all {
				routes, err := container.Resolver().ResolveAll(cmd.Context(), slug)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(routes)
			}

			route, ok := container.Resolver().Resolve(cmd.Context(), slug)
			if !ok {
				return fmt.Errorf("no content found for slug %q", slug)
			}
			fmt.Fprintf(out, "%s\t%s\n", route.Type, route.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every matching type as JSON")
	return cmd
}
