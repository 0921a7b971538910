// Package models defines data structures and domain types.
package models

// WarningLevel is the severity of current usage. Levels are ordered so
// that comparisons such as level >= LevelCritical work.
type WarningLevel int

const (
	LevelSafe WarningLevel = iota
	LevelWarning
	LevelCritical
	LevelDanger
)

// String returns the lowercase level name.
func (l WarningLevel) String() string {
	switch l {
	case LevelSafe:
		return "safe"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	case LevelDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// Thresholds holds the percentage cutoffs for each non-safe level.
type Thresholds struct {
	Warning  float64
	Critical float64
	Danger   float64
}

// DefaultThresholds are the fixed cutoffs used by the basic classifier.
var DefaultThresholds = Thresholds{Warning: 70, Critical: 85, Danger: 95}

// UsagePattern is a statistical profile of recent daily usage.
type UsagePattern struct {
	AverageDailyUsage float64 // Mean tokens per day
	PeakUsageHours    []int   // Hours of day (0-23)
	TypicalBurnRate   float64 // Tokens per minute over an 8-hour day
	MaxDailyUsage     float64
	ConsistencyScore  float64 // 0..1, 1 means identical usage every day
}
