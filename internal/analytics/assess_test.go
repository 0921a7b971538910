package analytics

import (
	"strings"
	"testing"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

func TestAssess_NoStats(t *testing.T) {
	a := Assess(models.PeriodDay, nil, nil, nil, true)

	if a.Tokens != 0 || a.Percentage != 0 {
		t.Errorf("Tokens = %d, Percentage = %v, want zero", a.Tokens, a.Percentage)
	}
	if a.Level != models.LevelSafe || a.Message != "" || a.Urgent {
		t.Errorf("Assess() = %+v, want safe with no message", a)
	}
	if a.BurnColor != ColorBurnUnknown {
		t.Errorf("BurnColor = %q, want %q", a.BurnColor, ColorBurnUnknown)
	}
	if a.TimeToLimit != "" {
		t.Errorf("TimeToLimit = %q, want empty", a.TimeToLimit)
	}
	if a.Thresholds != models.DefaultThresholds {
		t.Errorf("Thresholds = %+v, want defaults", a.Thresholds)
	}
}

func TestAssess_Day(t *testing.T) {
	stats := &models.UsageStats{
		ActiveSession: true,
		DailyTokens:   900_000,
		Cost:          12.5,
		BurnRate:      models.Float64Ptr(200),
	}

	a := Assess(models.PeriodDay, stats, nil, nil, true)

	if a.Percentage != 90 {
		t.Errorf("Percentage = %v, want 90", a.Percentage)
	}
	if a.Level != models.LevelCritical {
		t.Errorf("Level = %v, want critical", a.Level)
	}
	if a.Color != WarningColor(models.LevelCritical) {
		t.Errorf("Color = %q", a.Color)
	}
	if a.TimeToLimit != "8h" {
		t.Errorf("TimeToLimit = %q, want 8h", a.TimeToLimit)
	}
	if a.Cost != 12.5 {
		t.Errorf("Cost = %v, want 12.5", a.Cost)
	}
	if a.Message == "" || a.Advanced == "" {
		t.Error("critical usage should produce basic and advanced messages")
	}
	if a.Urgent {
		t.Error("Urgent = true, want false at 90%")
	}
	if a.Smart != "" {
		t.Errorf("Smart = %q, want empty without a pattern", a.Smart)
	}
}

func TestAssess_WeekUsesSummary(t *testing.T) {
	stats := &models.UsageStats{DailyTokens: 100}
	summary := &models.UsageSummary{Period: models.PeriodWeek, TotalTokens: 6_930_000, TotalCost: 40}

	a := Assess(models.PeriodWeek, stats, summary, nil, false)

	if a.Tokens != 6_930_000 || a.Cost != 40 {
		t.Errorf("Tokens = %d, Cost = %v, want summary totals", a.Tokens, a.Cost)
	}
	if a.Percentage != 99 {
		t.Errorf("Percentage = %v, want 99", a.Percentage)
	}
	if !a.Urgent {
		t.Error("Urgent = false, want true at 99%")
	}
}

func TestAssess_WithPattern(t *testing.T) {
	stats := &models.UsageStats{DailyTokens: 880_000}
	pattern := AnalyzeUsagePattern([]models.DailyUsage{
		{Date: "2025-03-10", Tokens: 600_000},
		{Date: "2025-03-11", Tokens: 600_000},
	})

	a := Assess(models.PeriodDay, stats, nil, &pattern, true)

	// 600K average lowers every threshold by 10, consistency 1 adds 5 and
	// 1250 tokens/min burn subtracts 5.
	want := models.Thresholds{Warning: 60, Critical: 75, Danger: 85}
	if a.Thresholds != want {
		t.Errorf("Thresholds = %+v, want %+v", a.Thresholds, want)
	}
	if a.SmartLevel != models.LevelDanger {
		t.Errorf("SmartLevel = %v, want danger", a.SmartLevel)
	}
	if a.Level != models.LevelCritical {
		t.Errorf("Level = %v, want critical", a.Level)
	}
	wantMsg := "⚠️ High usage: 88.0% used. Monitor consumption closely." + insightInconsistent
	if a.Smart != wantMsg {
		t.Errorf("Smart = %q, want %q", a.Smart, wantMsg)
	}
	if !strings.HasPrefix(a.Advanced, "⚠️ High usage") {
		t.Errorf("Advanced = %q, want critical tier", a.Advanced)
	}
}
