package catalogcmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-codex/internal/catalog"
	"github.com/goliatone/go-codex/internal/commands"
	"github.com/goliatone/go-codex/internal/content"
	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const syncOperation = "catalog.sync"

// ErrDuplicateSlugs is returned by strict runs that find a slug in more
// than one content type.
var ErrDuplicateSlugs = errors.New("catalog command: slug registered by more than one type")

var _ command.Commander[SyncCatalogCommand] = (*SyncCatalogHandler)(nil)

// SourceFactory opens the content source for a root directory.
type SourceFactory func(root string) (catalog.Source, error)

// FileSources builds filesystem sources with the given options.
func FileSources(opts ...content.FileOption) SourceFactory {
	return func(root string) (catalog.Source, error) {
		return content.NewFileSource(root, opts...)
	}
}

// SyncCatalogHandler runs catalog syncs through the shared command handler.
type SyncCatalogHandler struct {
	inner *commands.Handler[SyncCatalogCommand]
}

// NewSyncCatalogHandler binds the handler to a source factory and the
// syncer options (database, document store) used for every run.
func NewSyncCatalogHandler(sources SourceFactory, logger interfaces.Logger, syncOpts []catalog.Option, opts ...commands.HandlerOption[SyncCatalogCommand]) *SyncCatalogHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}
	if sources == nil {
		sources = FileSources()
	}

	exec := func(ctx context.Context, msg SyncCatalogCommand) error {
		source, err := sources(strings.TrimSpace(msg.Root))
		if err != nil {
			return err
		}

		runOpts := append([]catalog.Option{catalog.WithLogger(baseLogger)}, syncOpts...)
		if len(msg.Types) > 0 {
			types := make([]content.Type, 0, len(msg.Types))
			for _, name := range msg.Types {
				t, _ := content.ParseType(name)
				types = append(types, t)
			}
			runOpts = append(runOpts, catalog.WithTypes(types...))
		}

		syncer, err := catalog.NewSyncer(source, runOpts...)
		if err != nil {
			return err
		}

		// strict runs check before writing so a bad tree never reaches the tables
		if msg.StrictUnique && !msg.DryRun {
			preview, err := syncer.Sync(ctx, true)
			if err != nil {
				return err
			}
			if err := duplicateError(preview.Duplicates); err != nil {
				invokeCallback(msg.ResultCallback, preview)
				return err
			}
		}

		report, err := syncer.Sync(ctx, msg.DryRun)
		if err != nil {
			return err
		}
		invokeCallback(msg.ResultCallback, report)

		logging.WithFields(baseLogger, map[string]any{
			"entry_count":     len(report.Entries),
			"duplicate_count": len(report.Duplicates),
			"skipped_count":   len(report.Skipped),
			"dry_run":         report.DryRun,
		}).Info("catalog.command.sync.completed")

		if msg.StrictUnique {
			return duplicateError(report.Duplicates)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncCatalogCommand]{
		commands.WithLogger[SyncCatalogCommand](baseLogger),
		commands.WithOperation[SyncCatalogCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncCatalogCommand) map[string]any {
			fields := map[string]any{
				"root": msg.Root,
			}
			if len(msg.Types) > 0 {
				fields["types"] = strings.Join(msg.Types, ",")
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.StrictUnique {
				fields["strict_unique"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncCatalogHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncCatalogCommand].
func (h *SyncCatalogHandler) Execute(ctx context.Context, msg SyncCatalogCommand) error {
	return h.inner.Execute(ctx, msg)
}

func duplicateError(duplicates map[string][]string) error {
	if len(duplicates) == 0 {
		return nil
	}
	slugs := make([]string, 0, len(duplicates))
	for slugValue, types := range duplicates {
		slugs = append(slugs, slugValue+" ("+strings.Join(types, ", ")+")")
	}
	sort.Strings(slugs)
	return fmt.Errorf("%w: %s", ErrDuplicateSlugs, strings.Join(slugs, "; "))
}

func invokeCallback(cb ResultCallback, report *catalog.Report) {
	if cb != nil && report != nil {
		cb(report)
	}
}
