package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/token-monitor-tui/internal/analytics"
	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/services/usage"
	"github.com/j-veylop/token-monitor-tui/internal/ui/components"
	"github.com/j-veylop/token-monitor-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if !m.state.HasUsage() {
		if err := m.state.LastError(); err != nil {
			return m.renderPage(m.renderError(err))
		}
		return m.renderLoading()
	}

	a := m.state.Assessment()
	snap, pattern := m.state.Usage()

	var sections []string
	if a.Urgent {
		sections = append(sections, m.renderUrgentBanner(a))
	}
	sections = append(sections,
		m.renderUsageCard(a),
		m.renderSessionCard(snap.Stats, a),
		m.renderWarningsCard(a, pattern),
	)
	if err := m.state.LastError(); err != nil {
		sections = append(sections, styles.ErrorTextStyle.Render("  Last refresh failed: "+err.Error()))
	}
	sections = append(sections, m.renderFooter())

	return m.renderPage(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderPage(body string) string {
	content := lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), body)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state, with the last stored reading
// when one exists.
func (m *Model) renderLoading() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.spinner.ViewWithLabel(),
		"",
		components.UsageBarLoading(min(m.width, 60), m.frame),
	)
	if rec := m.state.Recorded(); rec != nil {
		content += "\n\n" + styles.HelpStyle.Render(fmt.Sprintf(
			"Last recorded %s: %s tokens today, %s",
			rec.CapturedAt.Local().Format("Jan 2 15:04"),
			m.state.Formatter().Tokens(rec.Stats.DailyTokens),
			analytics.FormatCost(rec.Stats.Cost),
		))
	}
	return styles.CenterBoth(content, m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Claude Token Monitor")
	subtitle := styles.HelpStyle.Render("Token usage and cost from ccusage")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func cardTitle(icon, title string) string {
	iconStr := lipgloss.NewStyle().Foreground(styles.Claude).Render(icon)
	return fmt.Sprintf("%s %s", iconStr, styles.CardTitleStyle.Render(title))
}

func (m *Model) renderError(err error) string {
	rows := []string{
		cardTitle("⚠", "Usage unavailable"),
		"",
		"  " + styles.ErrorTextStyle.Render(err.Error()),
	}

	var ce *usage.CommandError
	if errors.As(err, &ce) {
		if hint := ce.Hint(); hint != "" {
			rows = append(rows, "")
			for line := range strings.SplitSeq(hint, "\n") {
				rows = append(rows, styles.InfoTextStyle.Render("  "+line))
			}
		}
	}

	rows = append(rows, "", styles.HelpStyle.Render("  Press r to retry"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderUrgentBanner(a analytics.Assessment) string {
	text := fmt.Sprintf("⚠ %.1f%% of %s budget used", analytics.RoundTenths(a.Percentage), analytics.PeriodLabel(a.Period))
	if a.TimeToLimit != "" {
		text += " · limit in " + a.TimeToLimit
	}

	style := styles.UrgentBannerDimStyle
	if m.flashOn {
		style = styles.UrgentBannerStyle
	}
	return style.Width(m.cardWidth()).Render(text) + "\n"
}

func (m *Model) renderUsageCard(a analytics.Assessment) string {
	width := m.cardWidth() - 4
	label := analytics.PeriodLabel(a.Period)

	levelStr := styles.LevelStyle(a.Level).Render(strings.ToUpper(a.Level.String()))
	fraction, caption := periodProgress(a.Period, time.Now())

	rows := []string{
		cardTitle("◈", label+" Usage"),
		"",
		m.usageBar.View(m.usageBar.Percent(), "Tokens", width),
		components.ElapsedBar(fraction, caption, width),
		"",
		fmt.Sprintf("  Tokens  %s / %s",
			lipgloss.NewStyle().Bold(true).Render(m.state.Formatter().Tokens(a.Tokens)),
			analytics.MaxTokensLabel(a.Period)),
		fmt.Sprintf("  Cost    %s", analytics.FormatCost(a.Cost)),
		fmt.Sprintf("  Status  %s", levelStr),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSessionCard(stats *models.UsageStats, a analytics.Assessment) string {
	rows := []string{cardTitle("●", "Current Session"), ""}

	if stats == nil || !stats.ActiveSession {
		rows = append(rows, "  "+styles.HelpStyle.Render("No active session"))
	} else {
		model := stats.Model
		if model == "" {
			model = "unknown"
		}
		rows = append(rows,
			fmt.Sprintf("  Model      %s", model),
			fmt.Sprintf("  Tokens     %s", m.state.Formatter().Tokens(stats.CurrentTokens)),
			fmt.Sprintf("  Cost       %s", analytics.FormatCost(stats.SessionCost)),
		)
	}

	var rate *float64
	if stats != nil {
		rate = stats.BurnRate
	}
	rows = append(rows, fmt.Sprintf("  Burn rate  %s",
		styles.BurnRateStyle(rate).Render(analytics.FormatBurnRate(rate))))

	if a.TimeToLimit != "" {
		rows = append(rows, fmt.Sprintf("  Limit in   %s",
			styles.LevelStyle(a.Level).Render(a.TimeToLimit)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderWarningsCard(a analytics.Assessment, pattern *models.UsagePattern) string {
	rows := []string{cardTitle("▲", "Insights"), ""}

	switch {
	case a.Advanced != "":
		rows = append(rows, "  "+styles.LevelStyle(a.Level).Render(a.Advanced))
	case a.Message != "":
		rows = append(rows, "  "+styles.LevelStyle(a.Level).Render(a.Message))
	default:
		rows = append(rows, "  "+styles.SuccessTextStyle.Render("Usage is within normal range"))
	}

	if m.state.IsAdaptive() && pattern != nil {
		if a.Smart != "" {
			rows = append(rows, "  "+styles.LevelStyle(a.SmartLevel).Render(a.Smart))
		}
		rows = append(rows, "",
			styles.HelpStyle.Render(fmt.Sprintf("  Thresholds (adaptive): %.0f%% / %.0f%% / %.0f%%",
				a.Thresholds.Warning, a.Thresholds.Critical, a.Thresholds.Danger)),
			"  "+components.ThresholdBar(a.Percentage, a.Thresholds, m.cardWidth()-8),
		)
	} else {
		t := models.DefaultThresholds
		mode := "fixed"
		if m.state.IsAdaptive() {
			mode = "no history yet"
		}
		rows = append(rows, "",
			styles.HelpStyle.Render(fmt.Sprintf("  Thresholds (%s): %.0f%% / %.0f%% / %.0f%%",
				mode, t.Warning, t.Critical, t.Danger)),
			"  "+components.ThresholdBar(a.Percentage, t, m.cardWidth()-8),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderFooter() string {
	parts := []string{"Updated " + m.state.GetLastUpdated().Format("15:04:05")}
	if act := m.state.GetLastActivity(); !act.IsZero() {
		parts = append(parts, "activity "+formatAgo(time.Since(act)))
	}
	if m.state.Loading.Usage {
		parts = append(parts, m.spinner.View()+" refreshing")
	}
	return styles.HelpStyle.Render("  " + strings.Join(parts, " · "))
}

// periodProgress reports how much of p has elapsed at now.
func periodProgress(p models.Period, now time.Time) (fraction float64, caption string) {
	start, today, days := usage.PeriodRange(p, now)
	dayFraction := now.Sub(today).Hours() / 24

	switch p {
	case models.PeriodWeek:
		return (float64(days-1) + dayFraction) / 7, "rolling 7 days"
	case models.PeriodMonth:
		inMonth := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, start.Location()).Day()
		return (float64(days-1) + dayFraction) / float64(inMonth), fmt.Sprintf("day %d of %d", days, inMonth)
	default:
		return dayFraction, now.Format("15:04") + " of 24h"
	}
}

func formatAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
