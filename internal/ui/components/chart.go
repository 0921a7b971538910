package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/token-monitor-tui/internal/analytics"
	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/ui/styles"
)

// Chart series colors.
var (
	ChartTokensColor    = lipgloss.Color("#cc785c")
	ChartReferenceColor = lipgloss.Color("#4fc3f7")
)

const noData = "No data available"

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(noData)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(max(height, 3)),
		asciigraph.Width(max(width, 20)),
		asciigraph.Caption(caption),
	)
}

// RenderUsageChart plots daily tokens against a flat reference line such
// as the average daily usage. A zero reference draws only the usage.
func RenderUsageChart(tokens []float64, reference float64, width, height int, caption string) string {
	if len(tokens) == 0 {
		return styles.HelpStyle.Render(noData)
	}
	if reference <= 0 {
		return RenderLineChart(tokens, width, height, caption)
	}

	ref := make([]float64, len(tokens))
	for i := range ref {
		ref[i] = reference
	}

	return asciigraph.PlotMany([][]float64{tokens, ref},
		asciigraph.Height(max(height, 3)),
		asciigraph.Width(max(width, 20)),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
	)
}

// DailySeries converts records into a chart series.
func DailySeries(records []models.DailyUsage) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = float64(r.Tokens)
	}
	return out
}

// RenderDailyBars draws one horizontal bar per day, colored by how close
// the day came to the daily ceiling. Counts are grouped by f.
func RenderDailyBars(records []models.DailyUsage, width int, f analytics.Formatter) string {
	if len(records) == 0 {
		return ""
	}

	var peak int64
	for _, r := range records {
		peak = max(peak, r.Tokens)
	}
	if peak == 0 {
		peak = 1
	}

	const labelWidth = len(models.DateLayout)
	barWidth := max(width-labelWidth-16, 10)
	dayMax := float64(analytics.MaxTokens(models.PeriodDay))

	lines := make([]string, 0, len(records))
	for _, r := range records {
		barLen := max(int(float64(r.Tokens)/float64(peak)*float64(barWidth)), 0)
		level := analytics.WarningLevelFor(float64(r.Tokens) / dayMax * 100)
		bar := styles.LevelStyle(level).Render(strings.Repeat("█", barLen))
		lines = append(lines, fmt.Sprintf("%s │%s %s",
			r.Date, bar, styles.HelpStyle.Render(f.Tokens(r.Tokens))))
	}
	return strings.Join(lines, "\n")
}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// RenderPeakHours draws a 24-hour strip with the given hours highlighted.
func RenderPeakHours(peak []int) string {
	hot := make(map[int]bool, len(peak))
	for _, h := range peak {
		hot[h] = true
	}

	var b strings.Builder
	b.WriteString("00 ")
	for h := range 24 {
		if hot[h] {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Warning).Render(string(HeatmapBlocks[3])))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render(string(HeatmapBlocks[0])))
		}
		if h == 11 {
			b.WriteString(" ")
		}
	}
	b.WriteString(" 23")
	return b.String()
}

// RenderWeekdayPattern sums records per weekday and draws a labeled
// sparkline, Sunday first.
func RenderWeekdayPattern(records []models.DailyUsage) string {
	var totals [7]float64
	for _, r := range records {
		day, err := r.Day()
		if err != nil {
			continue
		}
		totals[day.Weekday()] += float64(r.Tokens)
	}

	names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	spark := []rune(RenderSparkline(totals[:], 7))

	parts := make([]string, 0, 7)
	for i, name := range names {
		parts = append(parts, fmt.Sprintf("%s %c", name, spark[i]))
	}
	return strings.Join(parts, " ")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	step := max(float64(len(values))/float64(width), 1)

	var b strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		v := values[int(float64(i)*step)]
		idx := min(max(int(v/maxVal*float64(len(sparkChars)-1)), 0), len(sparkChars)-1)
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
