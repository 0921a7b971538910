package components

import (
	"strings"
	"testing"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

func TestNewUsageBar(t *testing.T) {
	bar := NewUsageBar()
	if bar.percent != 0 {
		t.Errorf("percent = %f, want 0.0", bar.percent)
	}
	if bar.progress.Width != 30 {
		t.Errorf("width = %d, want 30", bar.progress.Width)
	}
	if w := NewUsageBarWithWidth(12).progress.Width; w != 12 {
		t.Errorf("NewUsageBarWithWidth(12) width = %d", w)
	}
}

func TestUsageBar_Setters(t *testing.T) {
	bar := NewUsageBar()
	if cmd := bar.SetPercent(75.5); cmd == nil {
		t.Error("SetPercent() should start an animation")
	}
	if bar.percent != 75.5 || bar.targetPercent != 75.5 {
		t.Errorf("percent = %f, target = %f, want 75.5", bar.percent, bar.targetPercent)
	}
}

func TestUsageBar_Animation(t *testing.T) {
	bar := NewUsageBar()
	bar.SetPercent(10)

	for range 100 {
		bar, _ = bar.Update(AnimationTickMsg{})
	}
	if bar.Percent() != 10 {
		t.Errorf("Percent() = %f, want 10", bar.Percent())
	}

	bar, _ = bar.Update(AnimationTickMsg{})
	if bar.isAnimating {
		t.Error("animation should stop once the target is reached")
	}

	if bar.Resume() != nil {
		t.Error("Resume() on an idle bar should be nil")
	}

	bar.SetPercent(0)
	if bar.Target() != 0 || bar.Resume() == nil {
		t.Errorf("Target() = %f, Resume() should tick while animating", bar.Target())
	}
	for range 100 {
		bar, _ = bar.Update(AnimationTickMsg{})
	}
	if bar.Percent() != 0 {
		t.Errorf("Percent() = %f, want 0 after shrinking", bar.Percent())
	}
}

func TestUsageBar_View(t *testing.T) {
	bar := NewUsageBar()

	view := bar.View(42.0, "Today", 60)
	if !strings.Contains(view, "42.0%") || !strings.Contains(view, "Today") {
		t.Errorf("View() = %q", view)
	}

	over := bar.View(150, "Today", 60)
	if !strings.Contains(over, "150.0%") {
		t.Errorf("View() = %q, want the unclamped percentage", over)
	}
}

func TestRenderGradientBar(t *testing.T) {
	if got := RenderGradientBar(50, 0); got != "" {
		t.Errorf("RenderGradientBar(width 0) = %q, want empty", got)
	}

	tests := []struct {
		percent float64
		filled  int
	}{
		{0, 0},
		{50, 5},
		{100, 10},
		{250, 10},
		{-5, 0},
	}
	for _, tt := range tests {
		s := RenderGradientBar(tt.percent, 10)
		if got := strings.Count(s, "█"); got != tt.filled {
			t.Errorf("RenderGradientBar(%v) filled = %d, want %d", tt.percent, got, tt.filled)
		}
		if got := strings.Count(s, "█") + strings.Count(s, "░"); got != 10 {
			t.Errorf("RenderGradientBar(%v) cells = %d, want 10", tt.percent, got)
		}
	}
}

func TestThresholdBar(t *testing.T) {
	s := ThresholdBar(50, models.DefaultThresholds, 20)
	if got := strings.Count(s, "┃"); got != 3 {
		t.Errorf("threshold marks = %d, want 3", got)
	}
	if got := strings.Count(s, "█"); got != 10 {
		t.Errorf("filled = %d, want 10", got)
	}
}

func TestElapsedBar(t *testing.T) {
	s := ElapsedBar(0.5, "12h left", 34)
	if !strings.Contains(s, "12h left") {
		t.Errorf("ElapsedBar() = %q, want caption", s)
	}
	if got := strings.Count(s, "█"); got != 11 {
		t.Errorf("ElapsedBar() filled = %d, want 11", got)
	}
}

func TestUsageBarLoading(t *testing.T) {
	a := UsageBarLoading(40, 0)
	b := UsageBarLoading(40, 30)
	if a == "" || a == b {
		t.Error("UsageBarLoading() should change between frames")
	}
}

func TestInterpolateColor(t *testing.T) {
	tests := []struct {
		t    float64
		want string
	}{
		{0, "#000000"},
		{1, "#ffffff"},
		{0.5, "#7f7f7f"},
	}
	for _, tt := range tests {
		if got := interpolateColor("#000000", "#ffffff", tt.t); got != tt.want {
			t.Errorf("interpolateColor(%v) = %s, want %s", tt.t, got, tt.want)
		}
	}
	if got := hexToRGB("zz"); got != [3]int{0, 0, 0} {
		t.Errorf("hexToRGB(bad) = %v, want zeros", got)
	}
}
