package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/glide/internal/listing"
)

const idWidth = 8

// renderList draws exactly the frame's window. Item k of the window starts
// at line (Window.Start+k)*rowHeight - Scroll of the body; lines outside the
// body are dropped.
func (m Model) renderList(f listing.Frame) string {
	height := m.bodyHeight()
	if height == 0 {
		return ""
	}
	styles := m.theme.Styles()
	if f.Total == 0 {
		return m.renderEmpty(f, height, styles)
	}

	rowHeight := max(1, m.cfg.RowHeight)
	view := m.current().view
	lines := make([]string, height)
	for k, item := range f.Items {
		index := f.Window.Start + k
		rowStyles := styles.WithBackground(m.theme.Background)
		bg := m.theme.Background
		if index%2 == 1 {
			rowStyles = styles.WithBackground(m.theme.SurfaceAlt)
			bg = m.theme.SurfaceAlt
		}
		for l, text := range rowLines(item, view.TitleField, view.Fields, rowHeight, m.width) {
			y := index*rowHeight + l - f.Scroll
			if y < 0 || y >= height {
				continue
			}
			style := rowStyles.Text
			if l > 0 {
				style = rowStyles.MutedText
			}
			lines[y] = NewBgStyle(bg).FillLine(style.Render(text), m.width)
		}
	}

	fill := NewBgStyle(m.theme.Background)
	for i, line := range lines {
		if line == "" {
			lines[i] = fill.FillLine("", m.width)
		}
	}
	return strings.Join(lines, "\n")
}

// rowLines lays out one item over rowHeight lines of width cells. The first
// line holds the ID and title; with a single line the remaining fields
// follow on the same line, otherwise one field per line.
func rowLines(item listing.Item, titleField string, fields []string, rowHeight, width int) []string {
	title := item.Field(titleField)
	rest := make([]string, 0, len(fields))
	for _, name := range fields {
		if name == titleField {
			continue
		}
		if v := item.Field(name); v != "" {
			rest = append(rest, v)
		}
	}
	if title == "" && len(rest) > 0 {
		title, rest = rest[0], rest[1:]
	}

	head := padRight("#"+item.ID, idWidth) + " "
	body := max(0, width-idWidth-1)
	lines := make([]string, 0, rowHeight)
	if rowHeight == 1 {
		text := title
		if len(rest) > 0 {
			text += "  " + strings.Join(rest, "  ")
		}
		return append(lines, head+truncate(text, body))
	}

	lines = append(lines, head+truncate(title, body))
	indent := strings.Repeat(" ", idWidth+1)
	for i := 1; i < rowHeight; i++ {
		text := ""
		if i-1 < len(rest) {
			text = rest[i-1]
		}
		lines = append(lines, indent+truncate(text, body))
	}
	return lines
}

func (m Model) renderEmpty(f listing.Frame, height int, styles Styles) string {
	msg := "No items"
	switch {
	case f.Status == listing.StatusInFlight || f.Restoring:
		msg = "Loading…"
	case f.Status == listing.StatusFailed:
		msg = "Could not load items. Press r to retry."
	case f.Search != "":
		msg = "No matches"
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
		styles.MutedText.Render(msg),
		lipgloss.WithWhitespaceBackground(lipgloss.Color(m.theme.Background)),
	)
}
