package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-codex/internal/di"
	"github.com/goliatone/go-codex/internal/runtimeconfig"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "codex",
		Short:         "Serve and inspect a markdown content tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./codex.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(
		newServeCmd(opts),
		newResolveCmd(opts),
		newHeadingsCmd(),
		newStripCmd(),
		newRenderCmd(opts),
		newSyncCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (runtimeconfig.Config, error) {
	cfg, err := runtimeconfig.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if level := strings.TrimSpace(o.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func (o *rootOptions) container() (*di.Container, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return o.containerFor(cfg)
}

func (o *rootOptions) containerFor(cfg runtimeconfig.Config, extra ...di.Option) (*di.Container, error) {
	return di.NewContainer(cfg, extra...)
}
