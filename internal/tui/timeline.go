package tui

import (
	"strings"

	"github.com/Mr-Dark-debug/paytrail/internal/timeline"
	"github.com/charmbracelet/lipgloss"
)

const (
	glyphMarker    = "●"
	glyphConnector = "│"

	// gutterWidth is marker/connector plus spacing before the content.
	gutterWidth = 2

	emptyMessage = "No timeline data found."
)

// timelineRow is one rendered entry. connector is false for the last
// row: there is nothing below it to connect to.
type timelineRow struct {
	entry     timeline.Entry
	connector bool
}

// buildRows lays entries out top to bottom in the order given.
func buildRows(entries []timeline.Entry) []timelineRow {
	rows := make([]timelineRow, len(entries))
	for i, e := range entries {
		rows[i] = timelineRow{entry: e, connector: i < len(entries)-1}
	}
	return rows
}

// renderTimeline renders the connected list. All rows share the same
// opacity so they fade in together.
func renderTimeline(entries []timeline.Entry, width int, opacity float64, formatDate func(string) string) string {
	contentWidth := maxInt(width-gutterWidth-contentStyle.GetHorizontalFrameSize(), 10)

	date := dateStyle.Foreground(fade(shadeDate, opacity))
	title := titleStyle.Foreground(fade(shadeTitle, opacity))
	subtitle := subtitleStyle.Foreground(fade(shadeSubtitle, opacity)).Width(contentWidth)

	rows := buildRows(entries)
	blocks := make([]string, 0, len(rows))
	for _, row := range rows {
		content := lipgloss.JoinVertical(lipgloss.Left,
			date.Render(truncate(formatDate(row.entry.CreatedAt), contentWidth)),
			title.Render(truncate(row.entry.Title, contentWidth)),
			subtitle.Render(row.entry.Description),
		)
		blocks = append(blocks, renderRow(contentStyle.Render(content), row.connector))
	}
	return strings.Join(blocks, "\n")
}

// renderRow puts the marker beside the first content line and the
// connector beside every following line. A connected row also gets a
// spacer line so the line visibly runs into the next marker.
func renderRow(content string, connector bool) string {
	lines := strings.Split(content, "\n")
	if connector {
		lines = append(lines, "")
	}

	gutter := make([]string, len(lines))
	for i := range lines {
		switch {
		case i == 0:
			gutter[i] = markerStyle.Render(glyphMarker)
		case connector:
			gutter[i] = connectorStyle.Render(glyphConnector)
		default:
			gutter[i] = " "
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(gutterWidth).Render(strings.Join(gutter, "\n")),
		strings.Join(lines, "\n"),
	)
}

// renderBody renders whichever of the three modes the state is in.
func renderBody(m *Model, width, height int) string {
	switch m.state.Mode() {
	case timeline.ModeLoading:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			m.spinner.View())
	case timeline.ModeEmpty:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			emptyStateStyle.Render(emptyMessage))
	default:
		return m.viewport.View()
	}
}
