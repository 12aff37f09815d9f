// Package migrations ships the schema of the documents table as SQL files
// runnable by bun/migrate. The per-type catalog tables are not migrated:
// catalog sync recreates them on every run.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed sql/*.sql
var files embed.FS

// FS returns the migration files, named for bun/migrate discovery.
func FS() fs.FS {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Apply runs every pending migration against db and returns the names of
// the migrations it applied.
func Apply(ctx context.Context, db *bun.DB) ([]string, error) {
	set := migrate.NewMigrations()
	if err := set.Discover(FS()); err != nil {
		return nil, fmt.Errorf("migrations: discover: %w", err)
	}
	migrator := migrate.NewMigrator(db, set)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: apply: %w", err)
	}
	if group == nil || group.IsZero() {
		return nil, nil
	}
	applied := make([]string, 0, len(group.Migrations))
	for _, m := range group.Migrations {
		applied = append(applied, m.Name)
	}
	return applied, nil
}
