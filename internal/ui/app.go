package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/url"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/glide/internal/config"
	"github.com/five82/glide/internal/listing"
	"github.com/five82/glide/internal/location"
	"github.com/five82/glide/internal/prefs"
	"github.com/five82/glide/internal/remote"
)

const (
	wheelLines       = 3
	chromeHeight     = 3 // header, status bar, command bar
	statusMessageTTL = 4 * time.Second
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Config  config.Config
	Fetcher remote.PageFetcher
	// Histories holds the location history of each view by name. Views
	// without one keep their location in memory.
	Histories map[string]*location.Persisted
	// Snapshots delivers location changes made by other processes.
	Snapshots <-chan location.Snapshot
	View      string
	ThemeName string
	PrefsPath string
	Logger    *log.Logger
	// Clipboard replaces the system clipboard, mainly for tests.
	Clipboard func(string) error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	cfg       config.Config
	fetcher   remote.PageFetcher
	snapshots <-chan location.Snapshot
	prefsPath string
	logger    *log.Logger
	copy      func(string) error

	panes  []*pane
	active int

	theme    Theme
	keys     keyMap
	search   textinput.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	searching bool
	status    string
	statusAt  time.Time
}

// clearStatusMsg expires a transient status message.
type clearStatusMsg struct{ at time.Time }

// New creates a new Bubble Tea model with one pane per configured view.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if len(cfg.Views) == 0 {
		cfg = config.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = config.Default().RequestTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	panes := make([]*pane, 0, len(cfg.Views))
	active := 0
	for i, v := range cfg.Views {
		panes = append(panes, newPane(cfg, v, opts.Histories[v.Name], logger))
		if v.Name == opts.View {
			active = i
		}
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	ti.CharLimit = 200

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:       ctx,
		cfg:       cfg,
		fetcher:   opts.Fetcher,
		snapshots: opts.Snapshots,
		prefsPath: prefsPath,
		logger:    logger,
		copy:      copyFn,
		panes:     panes,
		active:    active,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		search:    ti,
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.mount(m.current()),
		m.spinner.Tick,
		waitForSnapshot(m.snapshots),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.search.Width = max(10, m.width-4)
		cmds := make([]tea.Cmd, 0, len(m.panes))
		for _, p := range m.panes {
			cmds = append(cmds, m.dispatch(p, listing.Resized{Height: m.bodyHeight()}))
		}
		return m, tea.Batch(cmds...)

	case pageLoadedMsg:
		p := m.pane(msg.view)
		if p == nil {
			return m, nil
		}
		if msg.result.Err != nil && !errors.Is(msg.result.Err, context.Canceled) {
			m.logger.Printf("%s: fetch cursor=%q: %v", msg.view, msg.result.Request.Cursor, msg.result.Err)
		}
		return m, m.dispatch(p, listing.PageLoaded{Result: msg.result})

	case debounceMsg:
		p := m.pane(msg.view)
		if p == nil {
			return m, nil
		}
		return m, m.dispatch(p, listing.DebounceElapsed{Seq: msg.seq})

	case snapshotMsg:
		cmd := m.applySnapshot(location.Snapshot(msg))
		return m, tea.Batch(cmd, waitForSnapshot(m.snapshots))

	case watchClosedMsg:
		m.snapshots = nil
		return m, nil

	case clearStatusMsg:
		if msg.at.Equal(m.statusAt) {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) current() *pane {
	return m.panes[m.active]
}

func (m Model) pane(name string) *pane {
	for _, p := range m.panes {
		if p.view.Name == name {
			return p
		}
	}
	return nil
}

func (m Model) bodyHeight() int {
	return max(0, m.height-chromeHeight)
}

// dispatch feeds ev to the pane's controller and runs the resulting effects.
func (m Model) dispatch(p *pane, ev listing.Event) tea.Cmd {
	return m.commands(p, p.ctrl.Handle(ev))
}

func (m Model) mount(p *pane) tea.Cmd {
	if p.mounted {
		return nil
	}
	p.mounted = true
	return m.dispatch(p, listing.Mounted{})
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	p := m.current()
	page := max(1, m.bodyHeight())
	row := max(1, m.cfg.RowHeight)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		cmd := m.flash("theme " + m.theme.Name)
		return m, cmd

	case key.Matches(msg, m.keys.Tab):
		return m.switchTo((m.active + 1) % len(m.panes))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchTo((m.active - 1 + len(m.panes)) % len(m.panes))

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(p.ctrl.Frame().Raw)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Escape):
		f := p.ctrl.Frame()
		if f.Status == listing.StatusFailed {
			return m, m.dispatch(p, listing.Dismiss{})
		}
		if f.Raw != "" || f.Search != "" {
			return m, m.clearSearch(p)
		}
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		return m, m.dispatch(p, listing.Retry{})

	case key.Matches(msg, m.keys.Back):
		v, ok, err := p.history.Back()
		return m.navigate(p, v, ok, err, "no earlier location")

	case key.Matches(msg, m.keys.Forward):
		v, ok, err := p.history.Forward()
		return m.navigate(p, v, ok, err, "no later location")

	case key.Matches(msg, m.keys.Copy):
		loc := p.history.String()
		if err := m.copy(loc); err != nil {
			m.logger.Printf("copy location: %v", err)
			cmd := m.flash("copy failed: " + err.Error())
			return m, cmd
		}
		cmd := m.flash("copied " + loc)
		return m, cmd

	case key.Matches(msg, m.keys.Down):
		return m, m.dispatch(p, listing.ScrolledBy{Delta: row})
	case key.Matches(msg, m.keys.Up):
		return m, m.dispatch(p, listing.ScrolledBy{Delta: -row})
	case key.Matches(msg, m.keys.HalfPageDown):
		return m, m.dispatch(p, listing.ScrolledBy{Delta: max(1, page/2)})
	case key.Matches(msg, m.keys.HalfPageUp):
		return m, m.dispatch(p, listing.ScrolledBy{Delta: -max(1, page/2)})
	case key.Matches(msg, m.keys.PageDown):
		return m, m.dispatch(p, listing.ScrolledBy{Delta: page})
	case key.Matches(msg, m.keys.PageUp):
		return m, m.dispatch(p, listing.ScrolledBy{Delta: -page})
	case key.Matches(msg, m.keys.Top):
		return m, m.dispatch(p, listing.Scrolled{Offset: 0})
	case key.Matches(msg, m.keys.Bottom):
		return m, m.dispatch(p, listing.Scrolled{Offset: math.MaxInt32})
	}

	return m, nil
}

// handleSearchKey edits the search box. Every edit is sent to the
// controller, which debounces it.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.current()
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, m.dispatch(p, listing.TermSubmitted{})
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		return m, m.clearSearch(p)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		return m, tea.Batch(cmd, m.dispatch(p, listing.TermTyped{Raw: after}))
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		return m, m.dispatch(m.current(), listing.ScrolledBy{Delta: wheelLines})
	case tea.MouseButtonWheelUp:
		return m, m.dispatch(m.current(), listing.ScrolledBy{Delta: -wheelLines})
	}
	return m, nil
}

func (m Model) clearSearch(p *pane) tea.Cmd {
	return tea.Batch(
		m.dispatch(p, listing.TermTyped{Raw: ""}),
		m.dispatch(p, listing.TermSubmitted{}),
	)
}

// navigate moves the controller to a location taken from the history.
func (m Model) navigate(p *pane, v url.Values, ok bool, err error, none string) (tea.Model, tea.Cmd) {
	if err != nil {
		m.logger.Printf("%s: save location: %v", p.view.Name, err)
	}
	if !ok {
		cmd := m.flash(none)
		return m, cmd
	}
	return m, m.dispatch(p, listing.LocationChanged{Values: v})
}

// switchTo activates the pane at index i, mounting it on first use.
func (m Model) switchTo(i int) (tea.Model, tea.Cmd) {
	if i == m.active {
		return m, nil
	}
	m.active = i
	p := m.current()
	if err := p.history.Activate(); err != nil {
		m.logger.Printf("%s: save location: %v", p.view.Name, err)
	}
	m.savePrefs()
	return m, m.mount(p)
}

// applySnapshot follows a location file rewritten by another process.
func (m *Model) applySnapshot(snap location.Snapshot) tea.Cmd {
	var cmds []tea.Cmd
	for i, p := range m.panes {
		if _, ok := snap.Views[p.view.Name]; !ok {
			continue
		}
		values := snap.Get(p.view.Name)
		if location.Format(p.view.Name, values) == p.history.String() {
			if snap.Current == p.view.Name {
				m.active = i
			}
			continue
		}
		// The file already holds this entry; record it in memory only.
		if err := p.history.History.Push(values); err != nil {
			m.logger.Printf("%s: record external location: %v", p.view.Name, err)
			continue
		}
		if p.mounted {
			cmds = append(cmds, m.dispatch(p, listing.LocationChanged{Values: values}))
		}
		if snap.Current == p.view.Name {
			m.active = i
		}
	}
	cmds = append(cmds, m.mount(m.current()))
	return tea.Batch(cmds...)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, LastView: m.current().view.Name}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Printf("save prefs: %v", err)
	}
}

// flash shows a transient status message.
func (m *Model) flash(text string) tea.Cmd {
	at := time.Now()
	m.status = text
	m.statusAt = at
	return tea.Tick(statusMessageTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{at: at}
	})
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(opts Options) error {
	m := New(opts)
	ctx := m.ctx
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
