package ui

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/glide/internal/config"
	"github.com/five82/glide/internal/listing"
	"github.com/five82/glide/internal/location"
	"github.com/five82/glide/internal/remote"
)

// pane is one browsable view: its controller, its location history and the
// endpoint it reads from.
type pane struct {
	view    config.View
	remote  remote.View
	ctrl    *listing.Controller
	history *location.Persisted
	mounted bool
}

func newPane(cfg config.Config, view config.View, history *location.Persisted, logger *log.Logger) *pane {
	if history == nil {
		history = location.NewPersisted(location.NewHistory(view.Name, nil), nil)
	}
	ctrl := listing.New(controllerConfig(cfg, view), history)
	if logger != nil {
		ctrl.SetLogger(log.New(logger.Writer(), logger.Prefix()+view.Name+": ", logger.Flags()))
	}
	return &pane{
		view:    view,
		remote:  remoteView(view),
		ctrl:    ctrl,
		history: history,
	}
}

func controllerConfig(cfg config.Config, view config.View) listing.Config {
	lc := listing.Config{
		FirstCursor:      "1",
		CursorKey:        listing.PageKey,
		Fields:           searchFields(view),
		Debounce:         cfg.Debounce,
		ItemHeight:       cfg.RowHeight,
		Overscan:         cfg.Overscan,
		FetchThreshold:   cfg.FetchThreshold,
		ServerSideFilter: view.ServerSideFilter,
		MaxRestorePages:  cfg.MaxRestorePages,
	}
	if remote.Pagination(view.Pagination) == remote.PaginationCursor {
		lc.FirstCursor = ""
		lc.CursorKey = listing.CursorKey
	}
	return lc
}

// searchFields lists the title field first, then the remaining fields.
func searchFields(v config.View) []string {
	fields := make([]string, 0, len(v.Fields)+1)
	if v.TitleField != "" {
		fields = append(fields, v.TitleField)
	}
	for _, f := range v.Fields {
		if f != v.TitleField {
			fields = append(fields, f)
		}
	}
	return fields
}

func remoteView(v config.View) remote.View {
	rv := remote.View{
		Path:        v.Path,
		ItemsKey:    v.ItemsKey,
		IDField:     v.IDField,
		Pagination:  remote.Pagination(v.Pagination),
		PageParam:   v.PageParam,
		LimitParam:  v.LimitParam,
		SkipParam:   v.SkipParam,
		CursorParam: v.CursorParam,
		SearchParam: v.SearchParam,
	}
	// The search endpoint only makes sense when the server filters.
	if v.ServerSideFilter {
		rv.SearchPath = v.SearchPath
	}
	return rv
}

// pageLoadedMsg carries a finished fetch back into the update loop.
type pageLoadedMsg struct {
	view   string
	result listing.FetchResult
}

// debounceMsg fires when a search debounce timer elapses.
type debounceMsg struct {
	view string
	seq  uint64
}

// snapshotMsg is a location file rewritten by another process.
type snapshotMsg location.Snapshot

// watchClosedMsg reports that the snapshot channel was closed.
type watchClosedMsg struct{}

// commands turns controller effects into Bubble Tea commands.
func (m Model) commands(p *pane, effects []listing.Effect) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, eff := range effects {
		switch eff := eff.(type) {
		case listing.FetchEffect:
			cmds = append(cmds, m.fetchCmd(p, eff.Request))
		case listing.DebounceEffect:
			name, seq := p.view.Name, eff.Seq
			cmds = append(cmds, tea.Tick(eff.After, func(time.Time) tea.Msg {
				return debounceMsg{view: name, seq: seq}
			}))
		case listing.LocationEffect:
			// Already written to the history by the controller.
			m.logger.Printf("location %s %s", eff.Mode, location.Format(p.view.Name, eff.Values))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) fetchCmd(p *pane, req listing.FetchRequest) tea.Cmd {
	parent := m.ctx
	fetcher := m.fetcher
	timeout := m.cfg.RequestTimeout
	view := p.remote
	name := p.view.Name
	size := m.cfg.PageSize
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		page, err := fetcher.FetchPage(ctx, view, remote.PageRequest{
			Cursor: req.Cursor,
			Search: req.Search,
			Size:   size,
		})
		return pageLoadedMsg{view: name, result: listing.FetchResult{Request: req, Page: page, Err: err}}
	}
}

// waitForSnapshot blocks on the next external location change.
func waitForSnapshot(ch <-chan location.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}
