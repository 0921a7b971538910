package analytics

import "github.com/j-veylop/token-monitor-tui/internal/models"

type periodInfo struct {
	maxTokens int64
	maxLabel  string
	label     string
}

var periodTable = map[models.Period]periodInfo{
	models.PeriodDay:   {maxTokens: 1_000_000, maxLabel: "1M", label: "Today"},
	models.PeriodWeek:  {maxTokens: 7_000_000, maxLabel: "7M", label: "This Week"},
	models.PeriodMonth: {maxTokens: 30_000_000, maxLabel: "30M", label: "This Month"},
}

// lookupPeriod falls back to the day entry for unknown periods.
func lookupPeriod(p models.Period) periodInfo {
	if info, ok := periodTable[p]; ok {
		return info
	}
	return periodTable[models.PeriodDay]
}

// PeriodTokens returns the token figure for p. The live snapshot is
// authoritative for the day period; week and month use the summary total
// and fall back to the snapshot's daily figure when no summary exists.
func PeriodTokens(p models.Period, stats *models.UsageStats, summary *models.UsageSummary) int64 {
	if stats == nil {
		return 0
	}
	if p == models.PeriodDay || summary == nil {
		return stats.DailyTokens
	}
	return summary.TotalTokens
}

// PeriodCost mirrors PeriodTokens for cost.
func PeriodCost(p models.Period, stats *models.UsageStats, summary *models.UsageSummary) float64 {
	if stats == nil {
		return 0
	}
	if p == models.PeriodDay || summary == nil {
		return stats.Cost
	}
	return summary.TotalCost
}

// MaxTokens returns the token ceiling for p.
func MaxTokens(p models.Period) int64 {
	return lookupPeriod(p).maxTokens
}

// MaxTokensLabel returns the short ceiling label, e.g. "7M".
func MaxTokensLabel(p models.Period) string {
	return lookupPeriod(p).maxLabel
}

// PeriodLabel returns the display name, e.g. "This Week".
func PeriodLabel(p models.Period) string {
	return lookupPeriod(p).label
}

// UsagePercentage returns period tokens as a percentage of the period
// ceiling. The result is not clamped and exceeds 100 past the ceiling.
func UsagePercentage(p models.Period, stats *models.UsageStats, summary *models.UsageSummary) float64 {
	return float64(PeriodTokens(p, stats, summary)) / float64(MaxTokens(p)) * 100
}
