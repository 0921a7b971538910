// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"strings"
)

// Period selects the time window a usage figure is reported against.
type Period string

const (
	// PeriodDay covers today.
	PeriodDay Period = "day"
	// PeriodWeek covers the last seven days including today.
	PeriodWeek Period = "week"
	// PeriodMonth covers the current calendar month up to today.
	PeriodMonth Period = "month"
)

// Periods lists all periods in display order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth}

// ParsePeriod converts a string such as "week" into a Period.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return PeriodDay, fmt.Errorf("unknown period %q (want day, week or month)", s)
	}
}

// String returns the period name.
func (p Period) String() string {
	return string(p)
}

// Next cycles to the next period.
func (p Period) Next() Period {
	switch p {
	case PeriodDay:
		return PeriodWeek
	case PeriodWeek:
		return PeriodMonth
	default:
		return PeriodDay
	}
}
