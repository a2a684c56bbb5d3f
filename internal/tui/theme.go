package tui

import "github.com/charmbracelet/lipgloss"

// ────────────────────────────────────────────────────────────
// Color Palette
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.
// Every color has a light and a dark variant; the fade-in blends
// between concrete hex values, so adaptive colors are resolved
// here rather than left to lipgloss.

type shade struct {
	light string
	dark  string
}

// hex returns the variant for the current terminal background.
func (s shade) hex() string {
	if lipgloss.HasDarkBackground() {
		return s.dark
	}
	return s.light
}

func (s shade) color() lipgloss.TerminalColor {
	return lipgloss.AdaptiveColor{Light: s.light, Dark: s.dark}
}

var (
	// Base
	shadeBg      = shade{"#F7FAFC", "#0d1117"}
	shadeSurface = shade{"#FFFFFF", "#1c2128"}

	// Text
	shadeTitle    = shade{"#111827", "#e6edf3"}
	shadeSubtitle = shade{"#374151", "#c9d1d9"}
	shadeDate     = shade{"#6B7280", "#8b949e"}
	shadeMuted    = shade{"#999999", "#6e7681"}

	// Accents
	shadeMarker  = shade{"#2563EB", "#58a6ff"}
	shadeSpinner = shade{"#7B5CFA", "#bc8cff"}
	shadeDivider = shade{"#E5E7EB", "#30363d"}
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(shadeSurface.color()).
			Foreground(shadeTitle.color()).
			Padding(0, 1)

	headerBackStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(shadeMarker.color())

	headerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(shadeTitle.color())

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(shadeDate.color())
)

// Timeline
var (
	markerStyle = lipgloss.NewStyle().
			Foreground(shadeMarker.color())

	connectorStyle = lipgloss.NewStyle().
			Foreground(shadeMarker.color())

	contentStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	dateStyle = lipgloss.NewStyle()

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle()

	listStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// Loading and empty states
var (
	spinnerStyle = lipgloss.NewStyle().
			Foreground(shadeSpinner.color())

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(shadeMuted.color()).
			Align(lipgloss.Center)
)

// Footer / status bar
var (
	footerStyle = lipgloss.NewStyle().
			Background(shadeSurface.color())

	statusStyle = lipgloss.NewStyle().
			Foreground(shadeDate.color()).
			Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(shadeTitle.color()).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(shadeMuted.color())

	hintSepStyle = lipgloss.NewStyle().
			Foreground(shadeDivider.color())
)
