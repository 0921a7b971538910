package analytics

import "github.com/j-veylop/token-monitor-tui/internal/models"

// templateKey selects an advanced message by tier and by whether a
// projection detail (time left or burn rate) is available.
type templateKey struct {
	level         models.WarningLevel
	hasProjection bool
}

// basicTemplates take the usage percentage.
var basicTemplates = map[models.WarningLevel]string{
	models.LevelDanger:   "⚠️ Critical: %.1f%% usage! Consider upgrading your plan.",
	models.LevelCritical: "🚨 High usage: %.1f%%. Monitor your token consumption.",
	models.LevelWarning:  "⚡ Moderate usage: %.1f%%. Keep an eye on usage.",
}

// advancedTemplates take the usage percentage, then the projection detail
// when hasProjection is set.
var advancedTemplates = map[templateKey]string{
	{models.LevelDanger, true}:    "🚨 Critical: %.1f%% used. Approx. %s remaining at current rate.",
	{models.LevelDanger, false}:   "🚨 Critical: %.1f%% used. Limit almost reached!",
	{models.LevelCritical, true}:  "⚠️ High usage: %.1f%% used. Approx. %s remaining.",
	{models.LevelCritical, false}: "⚠️ High usage: %.1f%% used. Monitor consumption closely.",
	{models.LevelWarning, true}:   "⚡ Moderate usage: %.1f%% used. Current rate: %s/min.",
	{models.LevelWarning, false}:  "⚡ Moderate usage: %.1f%% used. Track your consumption.",
}

// Personalized insights appended by SmartWarningMessage, in priority order.
const (
	insightInconsistent = " You're usually more consistent - consider reviewing today's usage."
	insightBelowTypical = " You're below your typical usage today."
	insightHeavyAhead   = " Your current rate suggests heavy usage ahead."
)

var warningColors = map[models.WarningLevel]string{
	models.LevelDanger:   "#ff4757",
	models.LevelCritical: "#ff6b35",
	models.LevelWarning:  "#ffa726",
	models.LevelSafe:     "#4fc3f7",
}

// Burn rate colors.
const (
	ColorBurnUnknown = "#6b7280"
	ColorBurnHigh    = "#ef4444"
	ColorBurnMedium  = "#f59e0b"
	ColorBurnLow     = "#eab308"
	ColorBurnIdle    = "#10b981"
)
