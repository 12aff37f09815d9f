package codex

import (
	"context"
	"io/fs"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-codex/internal/migrations"
)

// GetMigrationsFS returns the SQL migrations for the documents table, laid
// out for bun/migrate discovery. Hosts running their own migration tool can
// read the files directly.
func GetMigrationsFS() fs.FS {
	return migrations.FS()
}

// Migrate applies pending documents table migrations to db.
func Migrate(ctx context.Context, db *bun.DB) ([]string, error) {
	return migrations.Apply(ctx, db)
}
