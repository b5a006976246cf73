package resultcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in schema_version. Reports are cheap to rebuild, so
// a mismatch asks the user to delete the file instead of migrating it.
const schemaVersion = 1

// ErrSchemaMismatch is returned by Open when the cache was written by a
// different schema version.
var ErrSchemaMismatch = errors.New("cache schema version mismatch")

// initSchema creates the tables in an empty database or checks the version of
// an existing one. Callers hold the file lock.
func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := storedVersion(ctx, tx)
	switch {
	case err != nil:
		return err
	case version == 0:
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case version != schemaVersion:
		return fmt.Errorf("%w: %s has version %d, this build uses %d (delete the file to rebuild it)",
			ErrSchemaMismatch, s.path, version, schemaVersion)
	default:
		return nil
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// storedVersion returns 0 for a database without a schema_version table.
func storedVersion(ctx context.Context, tx *sql.Tx) (int, error) {
	var tables int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&tables); err != nil {
		return 0, fmt.Errorf("check schema_version table: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}
	var version int
	err := tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: schema_version table is empty", ErrSchemaMismatch)
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
