package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ────────────────────────────────────────────────────────────
// Opacity
// ────────────────────────────────────────────────────────────

// fade returns the color a text of color fg shows at the given opacity
// over the screen background. Terminals have no alpha channel, so the
// foreground is blended toward the background in Lab space.
func fade(fg shade, opacity float64) lipgloss.Color {
	opacity = clampFloat(opacity, 0, 1)
	to, err := colorful.Hex(fg.hex())
	if err != nil {
		return lipgloss.Color(fg.hex())
	}
	if opacity >= 1 {
		return lipgloss.Color(to.Hex())
	}
	if opacity <= 0 {
		return lipgloss.Color(shadeBg.hex())
	}
	from, err := colorful.Hex(shadeBg.hex())
	if err != nil {
		return lipgloss.Color(fg.hex())
	}
	return lipgloss.Color(from.BlendLab(to, opacity).Clamped().Hex())
}

// ────────────────────────────────────────────────────────────
// String helpers
// ────────────────────────────────────────────────────────────

// truncate cuts s to maxWidth cells and appends "…" if truncated.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, "…")
}

// clampFloat restricts val to [lo, hi].
func clampFloat(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// maxInt returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
