package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/glide/internal/listing"
)

// renderMain renders header, list body, status bar and command bar.
func (m Model) renderMain() string {
	frame := m.current().ctrl.Frame()
	return strings.Join([]string{
		m.renderHeader(),
		m.renderList(frame),
		m.renderStatusBar(frame),
		m.renderCommandBar(),
	}, "\n")
}

// renderHeader renders the view tabs and the shareable location.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	tabs := make([]string, 0, len(m.panes)+1)
	tabs = append(tabs, bg.Render("glide", styles.WarningText.Bold(true)))
	for i, p := range m.panes {
		if i == m.active {
			tabs = append(tabs, styles.ActiveTab.Render(p.view.Title))
			continue
		}
		tabs = append(tabs, styles.Tab.Render(p.view.Title))
	}
	left := bg.Join(tabs, " ")

	room := m.width - lipgloss.Width(left) - 4
	loc := ""
	if room > 8 {
		loc = bg.Render(truncate(m.current().history.String(), room), styles.MutedText)
	}
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(loc)-2)

	return styles.Header.Width(m.width).Render(left + bg.Spaces(gap) + loc)
}

// renderStatusBar shows the search box while editing, otherwise the load
// state of the active view.
func (m Model) renderStatusBar(f listing.Frame) string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.searching {
		return bg.FillLine(m.search.View(), m.width)
	}

	status := f.Status.String()
	if f.Restoring {
		status = "restoring"
	}
	label := status
	if f.Status == listing.StatusInFlight {
		label = strings.TrimSpace(m.spinner.View()) + " " + status
	}

	parts := []string{styles.StatusStyle(status).Render(label)}
	parts = append(parts, bg.Render(countLabel(f), styles.Text))
	if f.Pages > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d pages", f.Pages), styles.MutedText))
	}
	if f.Exhausted {
		parts = append(parts, bg.Render("end of list", styles.FaintText))
	}
	if f.Search != "" {
		parts = append(parts, bg.Render(fmt.Sprintf("search %q", truncate(f.Search, 24)), styles.AccentText))
	} else if f.Raw != "" {
		parts = append(parts, bg.Render(fmt.Sprintf("typing %q", truncate(f.Raw, 24)), styles.FaintText))
	}
	if f.Status == listing.StatusFailed {
		msg := "failed to load more"
		if f.Err != nil {
			msg += ": " + f.Err.Error()
		}
		parts = append(parts, bg.Render(truncate(msg, max(20, m.width/2)), styles.DangerText))
	}
	if m.status != "" {
		parts = append(parts, bg.Render(m.status, styles.InfoText))
	}

	line := lipgloss.NewStyle().MaxWidth(m.width).Render(bg.Join(parts, "  "))
	return bg.FillLine(line, m.width)
}

func countLabel(f listing.Frame) string {
	if f.Total != f.Loaded {
		return fmt.Sprintf("%d of %d loaded", f.Total, f.Loaded)
	}
	return fmt.Sprintf("%d loaded", f.Loaded)
}

// renderCommandBar lists the most useful key bindings for the active state.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch {
	case m.searching:
		commands = []cmd{{"enter", "Apply"}, {"esc", "Clear"}}
	default:
		f := m.current().ctrl.Frame()
		if f.Status == listing.StatusFailed {
			commands = append(commands, cmd{"r", "Retry"}, cmd{"esc", "Dismiss"})
		}
		commands = append(commands,
			cmd{"j/k", "Scroll"},
			cmd{"/", "Search"},
			cmd{"tab", "View"},
			cmd{"[/]", "Back/Fwd"},
			cmd{"y", "Copy"},
			cmd{"T", "Theme"},
			cmd{"?", "More"},
			cmd{"q", "Quit"},
		)
	}

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments, bg.Join([]string{
			bg.Render(c.key, styles.AccentText),
			bg.Render(c.desc, styles.MutedText),
		}, ":"))
	}
	return styles.Footer.Width(m.width).Render(bg.Join(segments, "  "))
}
