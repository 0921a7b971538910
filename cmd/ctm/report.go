package main

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"

	"github.com/j-veylop/token-monitor-tui/internal/analytics"
	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/services/usage"
)

type reportOptions struct {
	Period   models.Period
	Locale   language.Tag
	Adaptive bool
}

// writeReport prints the plain --once report for snap.
func writeReport(w io.Writer, opts reportOptions, snap *usage.Snapshot, pattern *models.UsagePattern) error {
	var summary *models.UsageSummary
	if snap.Summary != nil && snap.Period == opts.Period {
		summary = snap.Summary
	}
	a := analytics.Assess(opts.Period, snap.Stats, summary, pattern, opts.Adaptive)
	f := analytics.NewFormatter(opts.Locale)

	var b strings.Builder
	row := func(label, format string, args ...any) {
		fmt.Fprintf(&b, "  %-11s %s\n", label, fmt.Sprintf(format, args...))
	}

	fmt.Fprintf(&b, "Claude Token Monitor · %s\n", analytics.PeriodLabel(opts.Period))
	row("Tokens", "%s / %s (%.1f%%)", f.Tokens(a.Tokens), analytics.MaxTokensLabel(opts.Period), analytics.RoundTenths(a.Percentage))
	row("Cost", "%s", analytics.FormatCost(a.Cost))
	row("Status", "%s", a.Level)
	row("Burn rate", "%s", analytics.FormatBurnRate(a.BurnRate))
	if a.TimeToLimit != "" {
		row("Limit in", "%s", a.TimeToLimit)
	}

	if s := snap.Stats; s != nil && s.ActiveSession {
		row("Session", "%s, %s tokens, %s", s.Model, f.Tokens(s.CurrentTokens), analytics.FormatCost(s.SessionCost))
	} else {
		row("Session", "none active")
	}

	switch {
	case a.Advanced != "":
		row("Warning", "%s", a.Advanced)
	case a.Message != "":
		row("Warning", "%s", a.Message)
	}
	if opts.Adaptive && a.Smart != "" {
		row("Insight", "%s", a.Smart)
	}
	if a.Urgent {
		b.WriteString("\n  !! Approaching the limit\n")
	}

	row("Updated", "%s", snap.FetchedAt.Format("2006-01-02 15:04:05"))

	_, err := io.WriteString(w, b.String())
	return err
}
