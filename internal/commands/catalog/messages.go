package catalogcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-codex/internal/catalog"
	"github.com/goliatone/go-codex/internal/content"
)

const syncCatalogMessageType = "codex.catalog.sync"

// ResultCallback receives the sync report once the run finishes.
type ResultCallback func(*catalog.Report)

// SyncCatalogCommand rebuilds the per-type catalog tables from the content
// tree under Root.
type SyncCatalogCommand struct {
	// Root is the content tree to scan.
	Root string `json:"root"`
	// Types limits the run to the named content types. Empty means all.
	Types []string `json:"types,omitempty"`
	// DryRun scans and reports without touching the database.
	DryRun bool `json:"dry_run,omitempty"`
	// StrictUnique fails the run when a slug is registered by more than one type.
	StrictUnique   bool           `json:"strict_unique,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (SyncCatalogCommand) Type() string { return syncCatalogMessageType }

// Validate ensures the root is present and every type is registered.
func (cmd SyncCatalogCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Root, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("codex.catalog.sync.root_required", "root is required")
			}
			return nil
		})),
		validation.Field(&cmd.Types, validation.Each(validation.By(func(value any) error {
			name, _ := value.(string)
			if _, ok := content.ParseType(name); !ok {
				return validation.NewError("codex.catalog.sync.type_unknown", "is not a registered content type")
			}
			return nil
		}))),
	)
}
