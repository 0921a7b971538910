package analytics

import (
	"fmt"
	"math"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

// Time-to-limit labels that ShouldShowUrgentWarning treats as urgent.
const (
	LimitReached   = "Limit reached"
	UnderOneMinute = "< 1 min"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// WarningLevelFor classifies pct against the fixed 70/85/95 thresholds.
func WarningLevelFor(pct float64) models.WarningLevel {
	return AdaptiveWarningLevel(pct, models.DefaultThresholds)
}

// WarningColor returns the hex color for level. Unknown levels get the
// safe color.
func WarningColor(level models.WarningLevel) string {
	if c, ok := warningColors[level]; ok {
		return c
	}
	return warningColors[models.LevelSafe]
}

// WarningMessage returns the basic message for level. The safe level has
// no message.
func WarningMessage(level models.WarningLevel, pct float64) (string, bool) {
	tmpl, ok := basicTemplates[level]
	if !ok {
		return "", false
	}
	return fmt.Sprintf(tmpl, RoundTenths(pct)), true
}

// TimeToLimit estimates how long until limit is reached at burnRate
// tokens per minute. It reports false when the rate is unknown or not
// positive.
func TimeToLimit(current, limit float64, burnRate *float64) (string, bool) {
	if burnRate == nil || *burnRate <= 0 {
		return "", false
	}

	remaining := limit - current
	if remaining <= 0 {
		return LimitReached, true
	}

	minutes := remaining / *burnRate
	switch {
	case minutes < 1:
		return UnderOneMinute, true
	case minutes < minutesPerHour:
		return fmt.Sprintf("%d min", int64(math.Round(minutes))), true
	case minutes < minutesPerDay:
		return fmt.Sprintf("%dh", int64(math.Round(minutes/minutesPerHour))), true
	default:
		return fmt.Sprintf("%dd", int64(math.Round(minutes/minutesPerDay))), true
	}
}

// AdvancedWarningMessage returns the tiered message for pct. timeToLimit
// is a TimeToLimit label or "" when there is no projection.
func AdvancedWarningMessage(pct float64, timeToLimit string, burnRate *float64) (string, bool) {
	level := WarningLevelFor(pct)
	if level == models.LevelSafe {
		return "", false
	}

	detail, hasProjection := projectionDetail(level, timeToLimit, burnRate)
	tmpl := advancedTemplates[templateKey{level: level, hasProjection: hasProjection}]
	if hasProjection {
		return fmt.Sprintf(tmpl, RoundTenths(pct), detail), true
	}
	return fmt.Sprintf(tmpl, RoundTenths(pct)), true
}

// projectionDetail picks the value embedded in the projected variant of
// each tier. Danger ignores a "Limit reached" label, critical accepts any
// label, and warning shows the burn rate instead.
func projectionDetail(level models.WarningLevel, timeToLimit string, burnRate *float64) (string, bool) {
	switch level {
	case models.LevelDanger:
		return timeToLimit, timeToLimit != "" && timeToLimit != LimitReached
	case models.LevelCritical:
		return timeToLimit, timeToLimit != ""
	case models.LevelWarning:
		if burnRate != nil && *burnRate > 0 {
			return fmt.Sprintf("%.1f", RoundTenths(*burnRate)), true
		}
	}
	return "", false
}

// ShouldShowUrgentWarning reports whether the UI should raise an urgent
// indicator: usage at or above 95%, or a limit that is reached or under
// a minute away.
func ShouldShowUrgentWarning(pct float64, timeToLimit string) bool {
	if pct >= models.DefaultThresholds.Danger {
		return true
	}
	return timeToLimit == UnderOneMinute || timeToLimit == LimitReached
}

// BurnRateColor returns the hex color for a tokens-per-minute rate.
func BurnRateColor(rate *float64) string {
	if rate == nil || *rate == 0 {
		return ColorBurnUnknown
	}
	switch r := *rate; {
	case r > 100:
		return ColorBurnHigh
	case r > 50:
		return ColorBurnMedium
	case r > 20:
		return ColorBurnLow
	default:
		return ColorBurnIdle
	}
}
