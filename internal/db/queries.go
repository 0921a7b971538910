package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/j-veylop/token-monitor-tui/internal/logger"
	"github.com/j-veylop/token-monitor-tui/internal/models"
)

// UpsertDailyUsage inserts or replaces daily usage rows in one transaction.
func (db *DB) UpsertDailyUsage(records []models.DailyUsage) error {
	if len(records) == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_usage (date, total_tokens, total_cost, models, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_tokens = excluded.total_tokens,
			total_cost = excluded.total_cost,
			models = excluded.models,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare daily usage upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(timeLayout)
	for _, r := range records {
		if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
			return fmt.Errorf("invalid daily usage date %q: %w", r.Date, err)
		}
		if _, err := stmt.ExecContext(ctx, r.Date, r.Tokens, r.Cost, strings.Join(r.Models, modelSeparator), now); err != nil {
			return fmt.Errorf("failed to upsert daily usage for %s: %w", r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily usage: %w", err)
	}
	return nil
}

// GetDailyUsage returns daily usage between start and end inclusive,
// ordered by date.
func (db *DB) GetDailyUsage(start, end time.Time) ([]models.DailyUsage, error) {
	query := `
		SELECT date, total_tokens, total_cost, models
		FROM daily_usage
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := db.QueryContext(context.Background(), query,
		start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var records []models.DailyUsage
	for rows.Next() {
		var r models.DailyUsage
		var modelList string
		if err := rows.Scan(&r.Date, &r.Tokens, &r.Cost, &modelList); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		if modelList != "" {
			r.Models = strings.Split(modelList, modelSeparator)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetTrailingDailyUsage returns the recorded days in the window of the
// given length that ends the day before now.
func (db *DB) GetTrailingDailyUsage(now time.Time, days int) ([]models.DailyUsage, error) {
	if days <= 0 {
		return nil, nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return db.GetDailyUsage(today.AddDate(0, 0, -days), today.AddDate(0, 0, -1))
}

// InsertSnapshot records a point-in-time usage reading.
func (db *DB) InsertSnapshot(snapshot *models.Snapshot) error {
	query := `
		INSERT INTO usage_snapshots (
			captured_at, active_session, current_tokens, daily_tokens,
			cost, session_cost, burn_rate, model
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	capturedAt := snapshot.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
		snapshot.CapturedAt = capturedAt
	}

	s := snapshot.Stats
	result, err := db.ExecContext(context.Background(), query,
		capturedAt.UTC().Format(timeLayout),
		s.ActiveSession,
		s.CurrentTokens,
		s.DailyTokens,
		s.Cost,
		s.SessionCost,
		nullFloat(s.BurnRate),
		s.Model,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		snapshot.ID = id
	}

	return nil
}

const snapshotColumns = `id, captured_at, active_session, current_tokens, daily_tokens,
	cost, session_cost, burn_rate, model`

// GetLatestSnapshot returns the most recent snapshot, or nil if none exist.
func (db *DB) GetLatestSnapshot() (*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM usage_snapshots ORDER BY captured_at DESC, id DESC LIMIT 1`

	snap, err := scanSnapshot(db.QueryRowContext(context.Background(), query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snap, nil
}

// GetSnapshotsSince returns snapshots captured at or after since, oldest first.
func (db *DB) GetSnapshotsSince(since time.Time) ([]models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM usage_snapshots
		WHERE captured_at >= ?
		ORDER BY captured_at ASC, id ASC`

	rows, err := db.QueryContext(context.Background(), query, since.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var snaps []models.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}

	return snaps, rows.Err()
}

// PruneSnapshots deletes snapshots captured before cutoff and returns the
// number removed.
func (db *DB) PruneSnapshots(cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(context.Background(),
		"DELETE FROM usage_snapshots WHERE captured_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	var snap models.Snapshot
	var capturedAt string
	var burnRate sql.NullFloat64

	err := row.Scan(
		&snap.ID,
		&capturedAt,
		&snap.Stats.ActiveSession,
		&snap.Stats.CurrentTokens,
		&snap.Stats.DailyTokens,
		&snap.Stats.Cost,
		&snap.Stats.SessionCost,
		&burnRate,
		&snap.Stats.Model,
	)
	if err != nil {
		return nil, err
	}

	snap.CapturedAt, err = time.ParseInLocation(timeLayout, capturedAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid captured_at %q: %w", capturedAt, err)
	}
	if burnRate.Valid {
		snap.Stats.BurnRate = models.Float64Ptr(burnRate.Float64)
	}
	return &snap, nil
}

// nullFloat returns a sql.NullFloat64 from an optional value.
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
