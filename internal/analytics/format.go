// Package analytics derives display values from usage records: formatted
// figures, per-period ceilings, warning levels and adaptive thresholds.
//
// Every function is pure. Nothing in this package holds mutable state, so
// it is safe to call from any goroutine.
package analytics

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const noBurnRate = "No data"

// Formatter renders token counts with locale-aware digit grouping.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a Formatter for the given locale.
func NewFormatter(tag language.Tag) Formatter {
	return Formatter{printer: message.NewPrinter(tag)}
}

// Tokens renders n with the locale's thousands separator.
func (f Formatter) Tokens(n int64) string {
	if f.printer == nil {
		return englishFormatter.Tokens(n)
	}
	return f.printer.Sprintf("%d", n)
}

var englishFormatter = NewFormatter(language.English)

// FormatTokens renders n with English digit grouping, e.g. "1,234,567".
func FormatTokens(n int64) string {
	return englishFormatter.Tokens(n)
}

// FormatCost renders a USD amount with exactly three decimals.
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.3f", cost)
}

// FormatBurnRate renders a tokens-per-minute rate. A nil or non-positive
// rate renders as "No data".
func FormatBurnRate(rate *float64) string {
	if rate == nil || *rate <= 0 {
		return noBurnRate
	}
	if *rate >= 1000 {
		return fmt.Sprintf("%.1fK/min", RoundTenths(*rate/1000))
	}
	return fmt.Sprintf("%.1f/min", RoundTenths(*rate))
}

// RoundTenths rounds v to one decimal place, halves away from zero. fmt
// alone rounds an exact tie such as 0.25 to even.
func RoundTenths(v float64) float64 {
	return math.Round(v*10) / 10
}
