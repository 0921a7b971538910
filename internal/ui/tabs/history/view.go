package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/token-monitor-tui/internal/analytics"
	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/ui/components"
	"github.com/j-veylop/token-monitor-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading && !m.loaded {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if !hasUsage(m.records) {
		return m.renderEmpty()
	}

	pattern := analytics.AnalyzeUsagePattern(m.records)

	sections := []string{
		m.renderHeader(),
		m.renderConsumptionChart(pattern),
		m.renderDailyBreakdown(),
		m.renderPatternCard(pattern),
		m.renderWeeklyPattern(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func hasUsage(records []models.DailyUsage) bool {
	for _, r := range records {
		if r.Tokens > 0 {
			return true
		}
	}
	return false
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No usage recorded yet."),
		styles.HelpStyle.Render("Daily totals appear here after each refresh is stored."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func cardTitle(icon, title string) string {
	iconStr := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	return fmt.Sprintf("%s %s", iconStr, styles.CardTitleStyle.Render(title))
}

func indent(block string) []string {
	var rows []string
	for line := range strings.SplitSeq(block, "\n") {
		rows = append(rows, "  "+line)
	}
	return rows
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Usage History")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] Last %d days", m.Days()))
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	f := m.state.Formatter()
	first, last := m.records[0], m.records[len(m.records)-1]
	var total int64
	var cost float64
	for _, r := range m.records {
		total += r.Tokens
		cost += r.Cost
	}
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("Data: %s → %s (%d days) · %s tokens · %s",
		first.Date, last.Date, len(m.records), f.Tokens(total), analytics.FormatCost(cost)))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderConsumptionChart(pattern models.UsagePattern) string {
	cardWidth := m.cardWidth()
	rows := []string{cardTitle("◈", "Daily Consumption"), ""}

	chartWidth := max(cardWidth-14, 30)
	chart := components.RenderUsageChart(components.DailySeries(m.records), pattern.AverageDailyUsage,
		chartWidth, 8, fmt.Sprintf("Tokens per day, last %d days", m.Days()))
	rows = append(rows, indent(chart)...)

	rows = append(rows, "", "  "+components.RenderLegend([]components.LegendItem{
		{Label: "Tokens", Color: components.ChartTokensColor},
		{Label: "Daily average", Color: components.ChartReferenceColor},
	}), "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderDailyBreakdown() string {
	cardWidth := m.cardWidth()
	rows := []string{cardTitle("▤", "Daily Breakdown"), ""}
	rows = append(rows, indent(components.RenderDailyBars(m.records, cardWidth-8, m.state.Formatter()))...)
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderPatternCard(pattern models.UsagePattern) string {
	bold := lipgloss.NewStyle().Bold(true)
	f := m.state.Formatter()
	period := m.state.Period()
	adaptive := analytics.AdaptiveThresholds(pattern, period)
	base := models.DefaultThresholds

	rows := []string{
		cardTitle("◎", "Usage Pattern"),
		"",
		fmt.Sprintf("  Average per day   %s", bold.Render(f.Tokens(int64(pattern.AverageDailyUsage)))),
		fmt.Sprintf("  Busiest day       %s", bold.Render(f.Tokens(int64(pattern.MaxDailyUsage)))),
		fmt.Sprintf("  Typical burn      %s", analytics.FormatBurnRate(&pattern.TypicalBurnRate)),
		fmt.Sprintf("  Consistency       %.0f%%", pattern.ConsistencyScore*100),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("  Default thresholds   %.0f%% / %.0f%% / %.0f%%",
			base.Warning, base.Critical, base.Danger)),
		fmt.Sprintf("  Adaptive thresholds  %s / %s / %s",
			styles.LevelStyle(models.LevelWarning).Render(fmt.Sprintf("%.0f%%", adaptive.Warning)),
			styles.LevelStyle(models.LevelCritical).Render(fmt.Sprintf("%.0f%%", adaptive.Critical)),
			styles.LevelStyle(models.LevelDanger).Render(fmt.Sprintf("%.0f%%", adaptive.Danger)),
		),
		"",
		"  Peak hours",
		"  " + components.RenderPeakHours(pattern.PeakUsageHours),
		"",
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderWeeklyPattern() string {
	rows := []string{
		cardTitle("▦", "Weekly Pattern"),
		"",
		"  " + components.RenderWeekdayPattern(m.records),
		"",
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
