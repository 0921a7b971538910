package db

import (
	"slices"
	"testing"
	"time"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

func TestUpsertDailyUsage(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	records := []models.DailyUsage{
		{Date: "2025-03-12", Tokens: 100, Cost: 1.5, Models: []string{"claude-sonnet-4"}},
		{Date: "2025-03-13", Tokens: 200, Cost: 2.5},
	}
	if err := db.UpsertDailyUsage(records); err != nil {
		t.Fatalf("UpsertDailyUsage() error = %v", err)
	}

	// Same day again replaces the totals.
	update := []models.DailyUsage{{Date: "2025-03-13", Tokens: 250, Cost: 3, Models: []string{"a", "b"}}}
	if err := db.UpsertDailyUsage(update); err != nil {
		t.Fatalf("UpsertDailyUsage() update error = %v", err)
	}

	got, err := db.GetDailyUsage(
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetDailyUsage() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != "2025-03-12" || !slices.Equal(got[0].Models, []string{"claude-sonnet-4"}) {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Tokens != 250 || got[1].Cost != 3 || !slices.Equal(got[1].Models, []string{"a", "b"}) {
		t.Errorf("got[1] = %+v, want updated row", got[1])
	}
}

func TestUpsertDailyUsage_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.UpsertDailyUsage(nil); err != nil {
		t.Errorf("UpsertDailyUsage(nil) error = %v", err)
	}
}

func TestUpsertDailyUsage_InvalidDate(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	records := []models.DailyUsage{
		{Date: "2025-03-12", Tokens: 100},
		{Date: "12/03/2025", Tokens: 100},
	}
	if err := db.UpsertDailyUsage(records); err == nil {
		t.Fatal("UpsertDailyUsage() expected error for malformed date")
	}

	got, err := db.GetDailyUsage(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetDailyUsage() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("rows = %v, want none after rollback", got)
	}
}

func TestGetTrailingDailyUsage(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	var records []models.DailyUsage
	for d := 1; d <= 14; d++ {
		records = append(records, models.DailyUsage{
			Date:   time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC).Format(models.DateLayout),
			Tokens: int64(d * 1000),
		})
	}
	if err := db.UpsertDailyUsage(records); err != nil {
		t.Fatalf("UpsertDailyUsage() error = %v", err)
	}

	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	got, err := db.GetTrailingDailyUsage(now, 7)
	if err != nil {
		t.Fatalf("GetTrailingDailyUsage() error = %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if got[0].Date != "2025-03-07" || got[6].Date != "2025-03-13" {
		t.Errorf("window = %s..%s, want 2025-03-07..2025-03-13", got[0].Date, got[6].Date)
	}

	if got, _ := db.GetTrailingDailyUsage(now, 0); got != nil {
		t.Errorf("GetTrailingDailyUsage(0) = %v, want nil", got)
	}
}

func TestInsertSnapshot(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	snap := &models.Snapshot{
		CapturedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Stats: models.UsageStats{
			ActiveSession: true,
			CurrentTokens: 5000,
			DailyTokens:   12000,
			Cost:          2.25,
			Model:         "claude-opus-4",
			SessionCost:   1.1,
			BurnRate:      models.Float64Ptr(88.5),
		},
	}
	if err := db.InsertSnapshot(snap); err != nil {
		t.Fatalf("InsertSnapshot() error = %v", err)
	}
	if snap.ID == 0 {
		t.Error("InsertSnapshot() should set ID")
	}

	got, err := db.GetLatestSnapshot()
	if err != nil {
		t.Fatalf("GetLatestSnapshot() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetLatestSnapshot() = nil")
	}
	if !got.CapturedAt.Equal(snap.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", got.CapturedAt, snap.CapturedAt)
	}
	if !got.Stats.ActiveSession || got.Stats.DailyTokens != 12000 || got.Stats.Model != "claude-opus-4" {
		t.Errorf("Stats = %+v", got.Stats)
	}
	if got.Stats.BurnRate == nil || *got.Stats.BurnRate != 88.5 {
		t.Errorf("BurnRate = %v, want 88.5", got.Stats.BurnRate)
	}
}

func TestInsertSnapshot_DefaultsAndNullRate(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	snap := &models.Snapshot{Stats: models.UsageStats{Model: "Claude"}}
	if err := db.InsertSnapshot(snap); err != nil {
		t.Fatalf("InsertSnapshot() error = %v", err)
	}
	if snap.CapturedAt.IsZero() {
		t.Error("InsertSnapshot() should default CapturedAt")
	}

	got, err := db.GetLatestSnapshot()
	if err != nil || got == nil {
		t.Fatalf("GetLatestSnapshot() = %v, %v", got, err)
	}
	if got.Stats.BurnRate != nil {
		t.Errorf("BurnRate = %v, want nil", *got.Stats.BurnRate)
	}
}

func TestGetLatestSnapshot_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	got, err := db.GetLatestSnapshot()
	if err != nil {
		t.Fatalf("GetLatestSnapshot() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetLatestSnapshot() = %+v, want nil", got)
	}
}

func TestSnapshotsSinceAndPrune(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	for i := range 5 {
		snap := &models.Snapshot{
			CapturedAt: base.Add(time.Duration(i) * time.Hour),
			Stats:      models.UsageStats{DailyTokens: int64(i * 100)},
		}
		if err := db.InsertSnapshot(snap); err != nil {
			t.Fatalf("InsertSnapshot() error = %v", err)
		}
	}

	got, err := db.GetSnapshotsSince(base.Add(2 * time.Hour))
	if err != nil {
		t.Fatalf("GetSnapshotsSince() error = %v", err)
	}
	if len(got) != 3 || got[0].Stats.DailyTokens != 200 || got[2].Stats.DailyTokens != 400 {
		t.Errorf("GetSnapshotsSince() = %+v, want last three oldest first", got)
	}

	removed, err := db.PruneSnapshots(base.Add(3 * time.Hour))
	if err != nil {
		t.Fatalf("PruneSnapshots() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("PruneSnapshots() removed %d, want 3", removed)
	}

	latest, _ := db.GetLatestSnapshot()
	if latest == nil || latest.Stats.DailyTokens != 400 {
		t.Errorf("latest after prune = %+v", latest)
	}
}
