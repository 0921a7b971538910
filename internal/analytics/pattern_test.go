package analytics

import (
	"math"
	"reflect"
	"testing"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

func daily(tokens ...int64) []models.DailyUsage {
	out := make([]models.DailyUsage, len(tokens))
	for i, t := range tokens {
		out[i] = models.DailyUsage{Date: "2025-01-0" + string(rune('1'+i)), Tokens: t}
	}
	return out
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeUsagePattern_Empty(t *testing.T) {
	got := AnalyzeUsagePattern(nil)
	if got.AverageDailyUsage != 0 || got.TypicalBurnRate != 0 || got.MaxDailyUsage != 0 || got.ConsistencyScore != 0 {
		t.Errorf("AnalyzeUsagePattern(nil) = %+v, want zero pattern", got)
	}
	if len(got.PeakUsageHours) != 0 {
		t.Errorf("PeakUsageHours = %v, want empty", got.PeakUsageHours)
	}
}

func TestAnalyzeUsagePattern(t *testing.T) {
	tests := []struct {
		name            string
		records         []models.DailyUsage
		wantAvg         float64
		wantMax         float64
		wantConsistency float64
	}{
		{"Identical", daily(1000, 1000), 1000, 1000, 1},
		{"Spread", daily(100, 300), 200, 300, 0.5},
		{"AllZero", daily(0, 0), 0, 0, 0},
		{"Spiky", daily(0, 1000, 0, 0), 250, 1000, 0},
		{"Single", daily(42_000), 42_000, 42_000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeUsagePattern(tt.records)
			if !approxEqual(got.AverageDailyUsage, tt.wantAvg) {
				t.Errorf("AverageDailyUsage = %v, want %v", got.AverageDailyUsage, tt.wantAvg)
			}
			if got.MaxDailyUsage != tt.wantMax {
				t.Errorf("MaxDailyUsage = %v, want %v", got.MaxDailyUsage, tt.wantMax)
			}
			if !approxEqual(got.ConsistencyScore, tt.wantConsistency) {
				t.Errorf("ConsistencyScore = %v, want %v", got.ConsistencyScore, tt.wantConsistency)
			}
			if got.ConsistencyScore < 0 || got.ConsistencyScore > 1 || math.IsNaN(got.ConsistencyScore) {
				t.Errorf("ConsistencyScore = %v, want within [0,1]", got.ConsistencyScore)
			}
			if !approxEqual(got.TypicalBurnRate, tt.wantAvg/480) {
				t.Errorf("TypicalBurnRate = %v, want %v", got.TypicalBurnRate, tt.wantAvg/480)
			}
		})
	}
}

func TestAnalyzeUsagePattern_PeakHours(t *testing.T) {
	want := []int{9, 10, 11, 14, 15, 16}

	first := AnalyzeUsagePattern(daily(10, 20))
	if !reflect.DeepEqual(first.PeakUsageHours, want) {
		t.Fatalf("PeakUsageHours = %v, want %v", first.PeakUsageHours, want)
	}

	first.PeakUsageHours[0] = 23
	second := AnalyzeUsagePattern(daily(10, 20))
	if !reflect.DeepEqual(second.PeakUsageHours, want) {
		t.Errorf("PeakUsageHours after caller mutation = %v, want %v", second.PeakUsageHours, want)
	}
}

func TestAdaptiveThresholds(t *testing.T) {
	tests := []struct {
		name    string
		pattern models.UsagePattern
		want    models.Thresholds
	}{
		{"ZeroUsage", models.UsagePattern{}, models.Thresholds{Warning: 70, Critical: 85, Danger: 95}},
		{
			"HeavyFastBurner",
			models.UsagePattern{AverageDailyUsage: 600_000, ConsistencyScore: 0.5, TypicalBurnRate: 1250},
			models.Thresholds{Warning: 55, Critical: 70, Danger: 85},
		},
		{
			"ModerateConsistentFast",
			models.UsagePattern{AverageDailyUsage: 300_000, ConsistencyScore: 0.9, TypicalBurnRate: 625},
			models.Thresholds{Warning: 65, Critical: 80, Danger: 90},
		},
		{
			"LightConsistentFast",
			models.UsagePattern{AverageDailyUsage: 100_000, ConsistencyScore: 0.9, TypicalBurnRate: 208},
			models.Thresholds{Warning: 70, Critical: 85, Danger: 95},
		},
		{
			"LightConsistentSlow",
			models.UsagePattern{AverageDailyUsage: 40_000, ConsistencyScore: 0.9, TypicalBurnRate: 83},
			models.Thresholds{Warning: 75, Critical: 90, Danger: 98},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range models.Periods {
				if got := AdaptiveThresholds(tt.pattern, p); got != tt.want {
					t.Errorf("AdaptiveThresholds(%v) = %+v, want %+v", p, got, tt.want)
				}
			}
		})
	}
}

func TestAdaptiveThresholds_Bounds(t *testing.T) {
	averages := []float64{0, 1, 150_000, 250_000, 600_000, 5_000_000}
	scores := []float64{0, 0.5, 0.81, 1}
	rates := []float64{0, 50, 101, 10_000}

	for _, avg := range averages {
		for _, score := range scores {
			for _, rate := range rates {
				got := AdaptiveThresholds(models.UsagePattern{
					AverageDailyUsage: avg,
					ConsistencyScore:  score,
					TypicalBurnRate:   rate,
				}, models.PeriodDay)
				if got.Warning < 50 || got.Warning > 80 ||
					got.Critical < 70 || got.Critical > 90 ||
					got.Danger < 85 || got.Danger > 98 {
					t.Errorf("AdaptiveThresholds(avg=%v, score=%v, rate=%v) = %+v out of bounds", avg, score, rate, got)
				}
				if got.Warning > got.Critical || got.Critical > got.Danger {
					t.Errorf("AdaptiveThresholds(avg=%v, score=%v, rate=%v) = %+v not ordered", avg, score, rate, got)
				}
			}
		}
	}
}

func TestAdaptiveWarningLevel(t *testing.T) {
	th := models.Thresholds{Warning: 60, Critical: 75, Danger: 90}
	tests := []struct {
		pct  float64
		want models.WarningLevel
	}{
		{59.9, models.LevelSafe},
		{60, models.LevelWarning},
		{75, models.LevelCritical},
		{89.9, models.LevelCritical},
		{90, models.LevelDanger},
	}
	for _, tt := range tests {
		if got := AdaptiveWarningLevel(tt.pct, th); got != tt.want {
			t.Errorf("AdaptiveWarningLevel(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestSmartWarningMessage(t *testing.T) {
	heavy := models.UsagePattern{AverageDailyUsage: 600_000, ConsistencyScore: 0.5, TypicalBurnRate: 1250}
	consistent := models.UsagePattern{AverageDailyUsage: 300_000, ConsistencyScore: 0.9, TypicalBurnRate: 625}
	aboveTypical := models.UsagePattern{AverageDailyUsage: 800_000, ConsistencyScore: 0.5, TypicalBurnRate: 800_000.0 / 480}
	heavyAhead := models.UsagePattern{AverageDailyUsage: 850_000, ConsistencyScore: 0.5, TypicalBurnRate: 850_000.0 / 480}
	light := models.UsagePattern{AverageDailyUsage: 100_000, ConsistencyScore: 0.5, TypicalBurnRate: 100_000.0 / 480}

	tests := []struct {
		name        string
		pct         float64
		pattern     models.UsagePattern
		timeToLimit string
		adaptive    bool
		want        string
		wantOK      bool
	}{
		{"BelowFifty", 40, heavy, "", true, "", false},
		{"AdaptiveSafe", 60, models.UsagePattern{}, "", true, "", false},
		{"AdaptiveWarningButNoBaseMessage", 60, heavy, "", true, "", false},
		{
			"InconsistentInsight", 92, consistent, "1h", true,
			"⚠️ High usage: 92.0% used. Approx. 1h remaining." + insightInconsistent, true,
		},
		{
			"NotAdaptive", 92, consistent, "1h", false,
			"⚠️ High usage: 92.0% used. Approx. 1h remaining.", true,
		},
		{
			"BelowTypicalInsight", 75, aboveTypical, "", true,
			"⚡ Moderate usage: 75.0% used. Current rate: 1666.7/min." + insightBelowTypical, true,
		},
		{
			"HeavyAheadInsight", 90, heavyAhead, "", true,
			"⚠️ High usage: 90.0% used. Monitor consumption closely." + insightHeavyAhead, true,
		},
		{
			"NoInsight", 88, light, "", true,
			"⚠️ High usage: 88.0% used. Monitor consumption closely.", true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SmartWarningMessage(tt.pct, tt.pattern, tt.timeToLimit, tt.adaptive)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("SmartWarningMessage() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSmartWarningMessage_Idempotent(t *testing.T) {
	p := AnalyzeUsagePattern(daily(250_000, 300_000, 275_000))
	a, okA := SmartWarningMessage(91, p, "2h", true)
	b, okB := SmartWarningMessage(91, p, "2h", true)
	if a != b || okA != okB {
		t.Errorf("SmartWarningMessage() not repeatable: (%q, %v) vs (%q, %v)", a, okA, b, okB)
	}
}
