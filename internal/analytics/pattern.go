package analytics

import (
	"math"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

const (
	// activeMinutesPerDay assumes eight hours of active use per day.
	activeMinutesPerDay = 8 * 60

	heavyDailyUsage    = 500_000
	moderateDailyUsage = 200_000
	consistentScore    = 0.8
	highBurnRate       = 100
	heavyProjection    = 800_000

	// smartMessageMinPercent is the usage below which no smart message is shown.
	smartMessageMinPercent = 50
)

// defaultPeakUsageHours are business hours. They are not derived from
// the input history.
var defaultPeakUsageHours = [...]int{9, 10, 11, 14, 15, 16}

// AnalyzeUsagePattern profiles a trailing window of daily usage. An empty
// window yields the zero pattern with no peak hours.
func AnalyzeUsagePattern(records []models.DailyUsage) models.UsagePattern {
	if len(records) == 0 {
		return models.UsagePattern{PeakUsageHours: []int{}}
	}

	var sum, peak float64
	for i, r := range records {
		tokens := float64(r.Tokens)
		sum += tokens
		if i == 0 || tokens > peak {
			peak = tokens
		}
	}
	n := float64(len(records))
	avg := sum / n

	var sq float64
	for _, r := range records {
		d := float64(r.Tokens) - avg
		sq += d * d
	}
	stdDev := math.Sqrt(sq / n)

	var consistency float64
	if avg != 0 {
		consistency = math.Max(0, 1-stdDev/avg)
	}
	if math.IsNaN(consistency) {
		consistency = 0
	}

	return models.UsagePattern{
		AverageDailyUsage: avg,
		PeakUsageHours:    append([]int(nil), defaultPeakUsageHours[:]...),
		TypicalBurnRate:   avg / activeMinutesPerDay,
		MaxDailyUsage:     peak,
		ConsistencyScore:  consistency,
	}
}

// AdaptiveThresholds shifts the default thresholds for pattern. Heavy
// users and fast burners are warned earlier, consistent users later.
// The period is accepted for future per-period tuning and currently
// has no effect.
func AdaptiveThresholds(pattern models.UsagePattern, _ models.Period) models.Thresholds {
	base := models.DefaultThresholds
	if pattern.AverageDailyUsage == 0 {
		return base
	}

	var adjustment float64
	switch {
	case pattern.AverageDailyUsage > heavyDailyUsage:
		adjustment = -10
	case pattern.AverageDailyUsage > moderateDailyUsage:
		adjustment = -5
	}
	if pattern.ConsistencyScore > consistentScore {
		adjustment += 5
	}
	if pattern.TypicalBurnRate > highBurnRate {
		adjustment -= 5
	}

	return models.Thresholds{
		Warning:  clamp(base.Warning+adjustment, 50, 80),
		Critical: clamp(base.Critical+adjustment, 70, 90),
		Danger:   clamp(base.Danger+adjustment, 85, 98),
	}
}

// AdaptiveWarningLevel classifies pct against t, highest severity first.
func AdaptiveWarningLevel(pct float64, t models.Thresholds) models.WarningLevel {
	switch {
	case pct >= t.Danger:
		return models.LevelDanger
	case pct >= t.Critical:
		return models.LevelCritical
	case pct >= t.Warning:
		return models.LevelWarning
	default:
		return models.LevelSafe
	}
}

// SmartWarningMessage returns the advanced message for pct, gated by the
// adaptive level for pattern. When adaptive is set, at most one
// personalized insight is appended.
func SmartWarningMessage(pct float64, pattern models.UsagePattern, timeToLimit string, adaptive bool) (string, bool) {
	if pct < smartMessageMinPercent {
		return "", false
	}

	thresholds := AdaptiveThresholds(pattern, models.PeriodDay)
	if AdaptiveWarningLevel(pct, thresholds) == models.LevelSafe {
		return "", false
	}

	rate := pattern.TypicalBurnRate
	msg, ok := AdvancedWarningMessage(pct, timeToLimit, &rate)
	if !adaptive || !ok {
		return msg, ok
	}
	return msg + insight(pct, pattern, thresholds), true
}

func insight(pct float64, pattern models.UsagePattern, t models.Thresholds) string {
	typicalPct := pattern.AverageDailyUsage / float64(MaxTokens(models.PeriodDay)) * 100
	switch {
	case pattern.ConsistencyScore > consistentScore && pct > t.Critical:
		return insightInconsistent
	case pattern.AverageDailyUsage > 0 && pct < typicalPct:
		return insightBelowTypical
	case pct > 85 && pattern.TypicalBurnRate > 0:
		if pattern.TypicalBurnRate*activeMinutesPerDay > heavyProjection {
			return insightHeavyAhead
		}
	}
	return ""
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
