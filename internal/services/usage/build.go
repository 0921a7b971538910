package usage

import (
	"time"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

// Model names used when ccusage does not report one.
const (
	unknownModel = "Unknown"
	defaultModel = "Claude"
)

// BuildStats derives the live snapshot from ccusage output. The active
// block supplies session figures and the entry dated today supplies the
// daily figures.
func BuildStats(blocks *BlocksResponse, daily *DailyResponse, now time.Time) *models.UsageStats {
	stats := &models.UsageStats{Model: defaultModel}

	var active *Block
	if blocks != nil {
		for i := range blocks.Blocks {
			if blocks.Blocks[i].IsActive {
				active = &blocks.Blocks[i]
				break
			}
		}
	}

	switch {
	case active != nil:
		stats.ActiveSession = true
		stats.CurrentTokens = active.TotalTokens
		stats.SessionCost = active.CostUSD
		if active.BurnRate != nil {
			stats.BurnRate = models.Float64Ptr(active.BurnRate.TokensPerMinuteForIndicator)
		}
		stats.Model = unknownModel
		if len(active.Models) > 0 {
			stats.Model = active.Models[0]
		}
	case blocks != nil && len(blocks.Blocks) > 0 && len(blocks.Blocks[0].Models) > 0:
		stats.Model = blocks.Blocks[0].Models[0]
	}

	if daily != nil {
		today := now.Format(models.DateLayout)
		for _, e := range daily.Daily {
			if e.Date == today {
				stats.DailyTokens = e.TotalTokens
				stats.Cost = e.TotalCost
				break
			}
		}
	}

	return stats
}

// PeriodRange returns the first and last calendar day of p ending at now,
// and the number of days it spans. Week is the last seven days including
// today, month runs from the first of the month, anything else is today.
func PeriodRange(p models.Period, now time.Time) (start, end time.Time, days int) {
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case models.PeriodWeek:
		return end.AddDate(0, 0, -6), end, 7
	case models.PeriodMonth:
		return time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()), end, end.Day()
	default:
		return end, end, 1
	}
}

// Summarize totals the daily entries that fall within p.
func Summarize(daily *DailyResponse, p models.Period, now time.Time) *models.UsageSummary {
	start, end, days := PeriodRange(p, now)
	summary := &models.UsageSummary{
		Period:    p,
		StartDate: start.Format(models.DateLayout),
		EndDate:   end.Format(models.DateLayout),
		Days:      days,
	}

	if daily != nil {
		for _, e := range daily.Daily {
			d, err := time.ParseInLocation(models.DateLayout, e.Date, now.Location())
			if err != nil || d.Before(start) || d.After(end) {
				continue
			}
			summary.TotalTokens += e.TotalTokens
			summary.TotalCost += e.TotalCost
		}
	}

	if days > 0 {
		summary.AvgTokensPerDay = float64(summary.TotalTokens) / float64(days)
		summary.AvgCostPerDay = summary.TotalCost / float64(days)
	}
	return summary
}

// DailyRecords converts ccusage daily entries into history records.
func DailyRecords(daily *DailyResponse) []models.DailyUsage {
	if daily == nil {
		return nil
	}
	records := make([]models.DailyUsage, 0, len(daily.Daily))
	for _, e := range daily.Daily {
		records = append(records, models.DailyUsage{
			Date:   e.Date,
			Tokens: e.TotalTokens,
			Cost:   e.TotalCost,
			Models: e.ModelsUsed,
		})
	}
	return records
}
