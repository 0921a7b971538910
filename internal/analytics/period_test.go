package analytics

import (
	"testing"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

func TestPeriodTokensAndCost(t *testing.T) {
	stats := &models.UsageStats{DailyTokens: 120_000, Cost: 1.5}
	summary := &models.UsageSummary{TotalTokens: 900_000, TotalCost: 11.25}

	tests := []struct {
		name       string
		period     models.Period
		stats      *models.UsageStats
		summary    *models.UsageSummary
		wantTokens int64
		wantCost   float64
	}{
		{"NoStats", models.PeriodWeek, nil, summary, 0, 0},
		{"DayIgnoresSummary", models.PeriodDay, stats, summary, 120_000, 1.5},
		{"WeekUsesSummary", models.PeriodWeek, stats, summary, 900_000, 11.25},
		{"MonthUsesSummary", models.PeriodMonth, stats, summary, 900_000, 11.25},
		{"WeekWithoutSummary", models.PeriodWeek, stats, nil, 120_000, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeriodTokens(tt.period, tt.stats, tt.summary); got != tt.wantTokens {
				t.Errorf("PeriodTokens() = %v, want %v", got, tt.wantTokens)
			}
			if got := PeriodCost(tt.period, tt.stats, tt.summary); got != tt.wantCost {
				t.Errorf("PeriodCost() = %v, want %v", got, tt.wantCost)
			}
		})
	}
}

func TestPeriodMetadata(t *testing.T) {
	tests := []struct {
		period    models.Period
		max       int64
		maxLabel  string
		periodLbl string
	}{
		{models.PeriodDay, 1_000_000, "1M", "Today"},
		{models.PeriodWeek, 7_000_000, "7M", "This Week"},
		{models.PeriodMonth, 30_000_000, "30M", "This Month"},
		{models.Period("year"), 1_000_000, "1M", "Today"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			if got := MaxTokens(tt.period); got != tt.max {
				t.Errorf("MaxTokens() = %v, want %v", got, tt.max)
			}
			if got := MaxTokensLabel(tt.period); got != tt.maxLabel {
				t.Errorf("MaxTokensLabel() = %v, want %v", got, tt.maxLabel)
			}
			if got := PeriodLabel(tt.period); got != tt.periodLbl {
				t.Errorf("PeriodLabel() = %v, want %v", got, tt.periodLbl)
			}
		})
	}
}

func TestUsagePercentage(t *testing.T) {
	tests := []struct {
		name    string
		period  models.Period
		stats   *models.UsageStats
		summary *models.UsageSummary
		want    float64
	}{
		{"HalfDay", models.PeriodDay, &models.UsageStats{DailyTokens: 500_000}, nil, 50},
		{"HalfWeek", models.PeriodWeek, &models.UsageStats{}, &models.UsageSummary{TotalTokens: 3_500_000}, 50},
		{"OverCeiling", models.PeriodDay, &models.UsageStats{DailyTokens: 1_500_000}, nil, 150},
		{"NoStats", models.PeriodMonth, nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UsagePercentage(tt.period, tt.stats, tt.summary); got != tt.want {
				t.Errorf("UsagePercentage() = %v, want %v", got, tt.want)
			}
		})
	}
}
