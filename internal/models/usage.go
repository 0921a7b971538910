// Package models defines data structures and domain types.
package models

import "time"

// DateLayout is the calendar date format used by ccusage and the store.
const DateLayout = "2006-01-02"

// UsageStats is a snapshot of current Claude activity.
type UsageStats struct {
	ActiveSession bool
	CurrentTokens int64   // Tokens in the active billing block
	DailyTokens   int64   // Tokens used today
	Cost          float64 // Cost accumulated today (USD)
	Model         string
	SessionCost   float64  // Cost of the active billing block (USD)
	BurnRate      *float64 // Tokens per minute, nil when unknown
}

// HasBurnRate reports whether a positive burn rate is known.
func (s *UsageStats) HasBurnRate() bool {
	return s != nil && s.BurnRate != nil && *s.BurnRate > 0
}

// UsageSummary aggregates usage over a date range.
type UsageSummary struct {
	Period          Period
	StartDate       string // YYYY-MM-DD
	EndDate         string // YYYY-MM-DD
	Days            int
	TotalTokens     int64
	TotalCost       float64
	AvgTokensPerDay float64
	AvgCostPerDay   float64
}

// DailyUsage is the usage recorded for a single calendar day.
type DailyUsage struct {
	Date   string // YYYY-MM-DD
	Tokens int64
	Cost   float64
	Models []string
}

// Day parses Date in the local time zone.
func (d DailyUsage) Day() (time.Time, error) {
	return time.ParseInLocation(DateLayout, d.Date, time.Local)
}

// Snapshot is a point-in-time capture of usage persisted for history.
type Snapshot struct {
	ID         int64
	CapturedAt time.Time
	Stats      UsageStats
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
