package db

import (
	"context"
	"fmt"
)

// migrations are applied in order; the database's user_version records
// how many have run. Append only.
var migrations = []string{
	// 1: drop zero-token rows left by failed ccusage runs
	`DELETE FROM daily_usage WHERE total_tokens = 0 AND total_cost = 0`,
	// 2: speed up trailing-window queries on snapshots that carry a rate
	`CREATE INDEX IF NOT EXISTS idx_usage_snapshots_rate
	 ON usage_snapshots(captured_at) WHERE burn_rate IS NOT NULL`,
}

// SchemaVersion returns the number of applied migrations.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) migrate() error {
	version, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	for i := version; i < len(migrations); i++ {
		if _, err := db.ExecContext(context.Background(), migrations[i]); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters
		if _, err := db.ExecContext(context.Background(), fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}
