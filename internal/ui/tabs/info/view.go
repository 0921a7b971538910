package info

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/token-monitor-tui/internal/analytics"
	"github.com/j-veylop/token-monitor-tui/internal/ui/styles"
	"github.com/j-veylop/token-monitor-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderRuntimeCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// renderConfigCard renders the configuration card.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		rows = append(rows,
			m.renderConfigRow("Database", m.databasePath()),
			m.renderConfigRow("Refresh Interval", m.config.RefreshInterval.String()),
			m.renderConfigRow("Default Period", analytics.PeriodLabel(m.config.DefaultPeriod)),
			m.renderConfigRow("Adaptive Warnings", onOff(m.config.AdaptiveWarnings)),
			m.renderConfigRow("Desktop Alerts", onOff(m.config.DesktopNotifications)),
			m.renderConfigRow("Locale", m.config.Locale.String()),
			m.renderConfigRow("Log File", m.config.LogPath),
			m.renderConfigRow("Log Level", m.config.LogLevel),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("Press 'c' to copy the database path"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderRuntimeCard shows what the running services resolved.
func (m *Model) renderRuntimeCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Runtime"))
	rows = append(rows, "")

	if m.services == nil {
		rows = append(rows, styles.HelpStyle.Render("Services not running"))
	} else {
		paths := m.services.Paths()
		watched := m.services.WatchedDir()
		if watched == "" {
			watched = "disabled"
		}
		schema := "unknown"
		if v, err := m.services.Database().SchemaVersion(); err == nil {
			schema = strconv.Itoa(v)
		}
		snapshots := "unknown"
		if snaps, err := m.services.SnapshotsSince(time.Now().Add(-24 * time.Hour)); err == nil {
			snapshots = strconv.Itoa(len(snaps))
		}
		rows = append(rows,
			m.renderConfigRow("ccusage", paths.Ccusage),
			m.renderConfigRow("Node", paths.Node),
			m.renderConfigRow("Watching", watched),
			m.renderConfigRow("Schema Version", schema),
			m.renderConfigRow("Snapshots (24h)", snapshots),
		)
	}

	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		rows = append(rows, m.renderConfigRow("Last Refresh", updated.Format("2006-01-02 15:04:05")))
	}
	if act := m.state.GetLastActivity(); !act.IsZero() {
		rows = append(rows, m.renderConfigRow("Last Activity", act.Format("2006-01-02 15:04:05")))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(20).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Claude Token Monitor"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", version.GetVersion()))
	rows = append(rows, m.renderConfigRow("Build Date", version.GetDate()))
	rows = append(rows, m.renderConfigRow("Git Commit", version.GetCommit()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
