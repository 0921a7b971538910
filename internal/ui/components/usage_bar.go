// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/token-monitor-tui/internal/analytics"
	"github.com/j-veylop/token-monitor-tui/internal/logger"
	"github.com/j-veylop/token-monitor-tui/internal/models"
	"github.com/j-veylop/token-monitor-tui/internal/ui/styles"
)

// AnimationTickMsg advances a UsageBar animation.
type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// Gradient endpoints for consumption bars: calm blue rising to red.
const (
	gradientLow  = "#4fc3f7"
	gradientHigh = "#ff4757"
)

// UsageBar renders the share of a period's token ceiling already used.
type UsageBar struct {
	progress       progress.Model
	percent        float64
	isAnimating    bool
	targetPercent  float64
	currentPercent float64
}

// NewUsageBar creates a usage bar with a blue-to-red gradient.
func NewUsageBar() UsageBar {
	return NewUsageBarWithWidth(30)
}

// NewUsageBarWithWidth creates a usage bar with a specific width.
func NewUsageBarWithWidth(width int) UsageBar {
	p := progress.New(
		progress.WithScaledGradient(gradientLow, gradientHigh),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return UsageBar{progress: p}
}

// Init initializes the progress bar model.
func (u UsageBar) Init() tea.Cmd {
	return nil
}

// Update steps the fill animation toward its target.
func (u UsageBar) Update(msg tea.Msg) (UsageBar, tea.Cmd) {
	var cmds []tea.Cmd

	if _, ok := msg.(AnimationTickMsg); ok && u.isAnimating {
		diff := u.targetPercent - u.currentPercent
		switch {
		case diff == 0:
			u.isAnimating = false
		case diff > 0:
			u.currentPercent = min(u.currentPercent+max(diff/10, 0.5), u.targetPercent)
			cmds = append(cmds, animationTick())
		default:
			u.currentPercent = max(u.currentPercent+min(diff/10, -0.5), u.targetPercent)
			cmds = append(cmds, animationTick())
		}
	}

	model, cmd := u.progress.Update(msg)
	if p, ok := model.(progress.Model); ok {
		u.progress = p
	}
	cmds = append(cmds, cmd)

	return u, tea.Batch(cmds...)
}

// SetPercent sets the target percentage and starts animating toward it.
func (u *UsageBar) SetPercent(percent float64) tea.Cmd {
	u.percent = percent
	u.targetPercent = percent

	if !u.isAnimating {
		u.isAnimating = true
		return tea.Batch(
			u.progress.SetPercent(clampUnit(percent/100)),
			animationTick(),
		)
	}
	return u.progress.SetPercent(clampUnit(percent / 100))
}

// Percent returns the current animated percentage.
func (u UsageBar) Percent() float64 {
	return u.currentPercent
}

// Resume restarts the animation ticks after they were dropped, for example
// while the bar was off screen.
func (u UsageBar) Resume() tea.Cmd {
	if !u.isAnimating {
		return nil
	}
	return animationTick()
}

// Target returns the percentage the bar is moving toward.
func (u UsageBar) Target() float64 {
	return u.targetPercent
}

// View renders the bar with a label and a percentage colored by level.
func (u UsageBar) View(percent float64, label string, width int) string {
	u.progress.Width = max(width-30, 10)

	bar := u.progress.ViewAs(clampUnit(percent / 100))

	level := analytics.WarningLevelFor(percent)
	percentStr := styles.LevelStyle(level).Width(7).Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", analytics.RoundTenths(percent)))
	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// RenderGradientBar renders percent (0-100) of width cells. Filled cells
// shade from blue toward red; the rest are dim.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*percent/100), 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			b.WriteString(styles.HexStyle(interpolateColor(gradientLow, gradientHigh, t)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// ThresholdBar renders a plain bar with tick marks at the three threshold
// positions, so adaptive and fixed cutoffs can be compared at a glance.
func ThresholdBar(percent float64, t models.Thresholds, width int) string {
	if width < 10 {
		width = 10
	}

	marks := map[int]models.WarningLevel{
		markIndex(t.Warning, width):  models.LevelWarning,
		markIndex(t.Critical, width): models.LevelCritical,
		markIndex(t.Danger, width):   models.LevelDanger,
	}
	filled := min(max(int(float64(width)*percent/100), 0), width)

	var b strings.Builder
	for i := range width {
		if level, ok := marks[i]; ok {
			b.WriteString(styles.LevelStyle(level).Render("┃"))
			continue
		}
		if i < filled {
			b.WriteString(styles.LevelStyle(analytics.WarningLevelFor(percent)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

func markIndex(pct float64, width int) int {
	return min(max(int(pct/100*float64(width)), 0), width-1)
}

// ElapsedBar renders how much of the current period has passed.
func ElapsedBar(fraction float64, caption string, width int) string {
	barWidth := max(width-len(caption)-4, 10)
	filled := min(max(int(float64(barWidth)*fraction), 0), barWidth)

	var b strings.Builder
	for i := range barWidth {
		if i < filled {
			t := float64(i) / float64(max(1, barWidth-1))
			b.WriteString(styles.HexStyle(interpolateColor("#ffd93d", "#6c5ce7", t)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}

	captionStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(caption)
	return fmt.Sprintf("[%s] %s", b.String(), captionStr)
}

// UsageBarLoading renders a shimmering placeholder while the first
// reading is fetched.
func UsageBarLoading(width, frame int) string {
	const cycle = 120
	barWidth := max(width-12, 10)

	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))

	var b strings.Builder
	for i := range barWidth {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Claude).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}

	dots := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dot := lipgloss.NewStyle().Foreground(styles.Claude).Render(dots[(frame/2)%len(dots)])

	return "    " + b.String() + " " + dot
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
