package tui

import (
	"fmt"
	"strings"

	"github.com/Mr-Dark-debug/paytrail/internal/timeline"
	"github.com/charmbracelet/lipgloss"
)

const screenTitle = "Payment Status"

// renderHeader produces the top bar:
//
//	←  Payment Status                       5 events
func renderHeader(m *Model) string {
	left := headerBackStyle.Render("←") + "  " + headerTitleStyle.Render(screenTitle)

	var right string
	switch m.state.Mode() {
	case timeline.ModePopulated:
		right = headerMetaStyle.Render(pluralize(len(m.state.Entries), "event"))
	case timeline.ModeLoading:
		right = headerMetaStyle.Render("loading")
	}

	inner := m.width - headerBarStyle.GetHorizontalFrameSize()
	return headerBarStyle.Width(m.width).Render(spread(left, right, inner))
}

// renderFooter produces the bottom bar: status on the left, key hints
// on the right. With full help toggled on, the hint columns sit below
// the status line instead.
func renderFooter(m *Model) string {
	left := statusStyle.Render(statusLine(m.state))
	if m.help.ShowAll {
		return footerStyle.Width(m.width).Render(lipgloss.JoinVertical(lipgloss.Left,
			left,
			statusStyle.Render(m.help.FullHelpView(m.keys.FullHelp())),
		))
	}
	right := m.help.ShortHelpView(m.keys.ShortHelp())
	return footerStyle.Width(m.width).Render(spread(left, right, m.width))
}

func statusLine(s timeline.State) string {
	switch s.Mode() {
	case timeline.ModeLoading:
		return "Loading timeline..."
	case timeline.ModeEmpty:
		return "No events"
	}
	if !s.FadeComplete() {
		return fmt.Sprintf("%s · fading in", pluralize(len(s.Entries), "event"))
	}
	return pluralize(len(s.Entries), "event")
}

// spread places left and right at opposite ends of a width-wide line.
// When both do not fit, right is dropped.
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
