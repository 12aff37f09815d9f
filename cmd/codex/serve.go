package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	codexhttp "github.com/goliatone/go-codex/internal/http"
	"github.com/goliatone/go-codex/internal/logging"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Address = addr
			}
			container, err := opts.containerFor(cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler, err := container.API().Handler()
			if err != nil {
				return err
			}
			srv := codexhttp.NewServer(codexhttp.ServerConfig{
				Address:      cfg.HTTP.Address,
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}, handler)
			return codexhttp.Serve(ctx, srv, cfg.HTTP.ShutdownTimeout, logging.HTTPLogger(container.LoggerProvider()))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.address)")
	return cmd
}
