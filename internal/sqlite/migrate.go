package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// schemaVersion is bumped whenever schema.sql changes in a way that needs
// statements beyond the idempotent CREATE ... IF NOT EXISTS in the file.
const schemaVersion = 1

// migrate applies the declarative schema. The schema file only contains
// idempotent statements, so re-applying it on every start is safe; the
// user_version pragma records which revision has been applied for future
// stepwise migrations.
func (db *Database) migrate(ctx context.Context, schema string) error {
	var current int
	if err := db.ReadWrite.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&current); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	start := time.Now()
	if _, err := db.ReadWrite.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if current != schemaVersion {
		// PRAGMA does not support placeholders.
		if _, err := db.ReadWrite.ExecContext(ctx,
			fmt.Sprintf("PRAGMA user_version = %d;", schemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated schema",
			slog.Int("from", current),
			slog.Int("to", schemaVersion),
			slog.Duration("duration", time.Since(start)))
	}

	return nil
}
