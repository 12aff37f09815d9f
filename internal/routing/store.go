package routing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ErrStoreUnavailable is returned by an Opener that cannot reach the store.
var ErrStoreUnavailable = errors.New("routing: store unavailable")

// Opener opens a short-lived connection to the catalog store. The caller
// closes the returned DB.
type Opener func(ctx context.Context) (*bun.DB, error)

// SQLiteOpener opens the sqlite file at path read-only. A missing file is
// reported as ErrStoreUnavailable without creating it.
func SQLiteOpener(path string) Opener {
	return func(ctx context.Context) (*bun.DB, error) {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		sqlDB.SetMaxOpenConns(1)
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return db, nil
	}
}

// PostgresOpener opens a postgres connection through lib/pq. Statements run
// in a read-only session.
func PostgresOpener(dsn string) Opener {
	return func(ctx context.Context) (*bun.DB, error) {
		sqlDB, err := sql.Open("postgres", withReadOnly(dsn))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		sqlDB.SetMaxOpenConns(1)
		db := bun.NewDB(sqlDB, pgdialect.New())
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return db, nil
	}
}

// NewOpener picks an opener for driver ("sqlite", "sqlite3" or "postgres").
func NewOpener(driver, dsn string) (Opener, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return SQLiteOpener(dsn), nil
	case "postgres", "postgresql", "pg":
		return PostgresOpener(dsn), nil
	default:
		return nil, fmt.Errorf("routing: unsupported store driver %q", driver)
	}
}

func withReadOnly(dsn string) string {
	const opt = "-c default_transaction_read_only=on"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		if q.Get("options") == "" {
			q.Set("options", opt)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}
	if strings.Contains(dsn, "options=") {
		return dsn
	}
	return strings.TrimSpace(dsn + " options='" + opt + "'")
}
