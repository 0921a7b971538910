package analytics

import "github.com/j-veylop/token-monitor-tui/internal/models"

// Assessment bundles every derived value the dashboard renders for one
// period.
type Assessment struct {
	Period      models.Period
	Tokens      int64
	Cost        float64
	MaxTokens   int64
	Percentage  float64
	Level       models.WarningLevel
	Color       string
	BurnRate    *float64
	BurnColor   string
	TimeToLimit string // empty when no projection is possible
	Message     string // fixed-threshold message, empty when safe
	Advanced    string // projection-aware message
	Smart       string // pattern-adjusted message, needs a pattern
	Thresholds  models.Thresholds
	SmartLevel  models.WarningLevel
	Urgent      bool
}

// Assess derives the dashboard values for period from the live stats, an
// optional summary and an optional usage pattern.
func Assess(p models.Period, stats *models.UsageStats, summary *models.UsageSummary,
	pattern *models.UsagePattern, adaptive bool,
) Assessment {
	a := Assessment{
		Period:     p,
		Tokens:     PeriodTokens(p, stats, summary),
		Cost:       PeriodCost(p, stats, summary),
		MaxTokens:  MaxTokens(p),
		Percentage: UsagePercentage(p, stats, summary),
		Thresholds: models.DefaultThresholds,
	}
	if stats != nil {
		a.BurnRate = stats.BurnRate
	}

	a.Level = WarningLevelFor(a.Percentage)
	a.SmartLevel = a.Level
	a.Color = WarningColor(a.Level)
	a.BurnColor = BurnRateColor(a.BurnRate)
	a.TimeToLimit, _ = TimeToLimit(float64(a.Tokens), float64(a.MaxTokens), a.BurnRate)
	a.Message, _ = WarningMessage(a.Level, a.Percentage)
	a.Advanced, _ = AdvancedWarningMessage(a.Percentage, a.TimeToLimit, a.BurnRate)
	a.Urgent = ShouldShowUrgentWarning(a.Percentage, a.TimeToLimit)

	if pattern != nil {
		a.Thresholds = AdaptiveThresholds(*pattern, p)
		a.SmartLevel = AdaptiveWarningLevel(a.Percentage, a.Thresholds)
		a.Smart, _ = SmartWarningMessage(a.Percentage, *pattern, a.TimeToLimit, adaptive)
	}

	return a
}
