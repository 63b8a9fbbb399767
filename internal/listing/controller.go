package listing

import (
	"errors"
	"io"
	"log"
	"net/url"
	"time"
)

// Config tunes a Controller.
type Config struct {
	// FirstCursor is the cursor of page one: "1" for numbered pages, "" for
	// opaque cursor APIs.
	FirstCursor string
	// CursorKey is the location parameter holding the cursor (page or cursor).
	CursorKey string
	// Fields are matched by the client-side filter.
	Fields   []string
	Debounce time.Duration
	// ItemHeight is the fixed height of every row in scroll units.
	ItemHeight     int
	Overscan       int
	FetchThreshold int
	// ServerSideFilter sends the search term to the server and resets the
	// loaded set on every published term. Auto-pagination stays enabled
	// while searching in this mode.
	ServerSideFilter bool
	// MaxRestorePages bounds how many pages are loaded to reach a cursor
	// restored from the location store.
	MaxRestorePages int
}

const (
	defaultDebounce        = 300 * time.Millisecond
	defaultMaxRestorePages = 50
	maxDisorderResets      = 3
)

func (c Config) withDefaults() Config {
	if c.CursorKey == "" {
		c.CursorKey = PageKey
	}
	if c.Debounce <= 0 {
		c.Debounce = defaultDebounce
	}
	if c.ItemHeight <= 0 {
		c.ItemHeight = 1
	}
	if c.Overscan < 0 {
		c.Overscan = 0
	}
	if c.FetchThreshold < 0 {
		c.FetchThreshold = 0
	}
	if c.MaxRestorePages <= 0 {
		c.MaxRestorePages = defaultMaxRestorePages
	}
	return c
}

// Event is an input to Controller.Handle.
type Event interface{ event() }

// Mounted initializes the controller from the location store.
type Mounted struct{}

// Resized reports a new viewport height.
type Resized struct{ Height int }

// Scrolled sets an absolute scroll offset.
type Scrolled struct{ Offset int }

// ScrolledBy moves the scroll offset by Delta.
type ScrolledBy struct{ Delta int }

// TermTyped carries raw filter input.
type TermTyped struct{ Raw string }

// TermSubmitted publishes the raw filter input without waiting.
type TermSubmitted struct{}

// DebounceElapsed reports that the timer for Seq fired.
type DebounceElapsed struct{ Seq uint64 }

// PageLoaded delivers the outcome of a FetchEffect.
type PageLoaded struct{ Result FetchResult }

// LocationChanged reports an external change of the location store.
type LocationChanged struct{ Values url.Values }

// Retry explicitly retries a failed or pending page load.
type Retry struct{}

// Dismiss clears a failure status without retrying.
type Dismiss struct{}

func (Mounted) event()         {}
func (Resized) event()         {}
func (Scrolled) event()        {}
func (ScrolledBy) event()      {}
func (TermTyped) event()       {}
func (TermSubmitted) event()   {}
func (DebounceElapsed) event() {}
func (PageLoaded) event()      {}
func (LocationChanged) event() {}
func (Retry) event()           {}
func (Dismiss) event()         {}

// Effect is work the host must perform after Handle returns.
type Effect interface{ effect() }

// FetchEffect asks the host to load a page and report it with PageLoaded.
type FetchEffect struct{ Request FetchRequest }

// DebounceEffect asks the host to deliver DebounceElapsed{Seq} after After.
type DebounceEffect struct {
	Seq   uint64
	After time.Duration
}

// LocationEffect reports that the location store was written.
type LocationEffect struct {
	Values url.Values
	Mode   HistoryMode
}

func (FetchEffect) effect()    {}
func (DebounceEffect) effect() {}
func (LocationEffect) effect() {}

// Frame is what the render surface draws.
type Frame struct {
	Window    Window
	Items     []Item
	Total     int
	Loaded    int
	Pages     int
	Scroll    int
	Status    FetchStatus
	Err       error
	Search    string
	Raw       string
	Exhausted bool
	Restoring bool
}

// Controller owns the state of one incremental windowed list. It is not
// safe for concurrent use; the host serializes events.
type Controller struct {
	cfg    Config
	cache  *PageCache
	filter *FilterEngine
	fetch  FetchCoordinator
	sync   *LocationSync
	logger *log.Logger

	mounted  bool
	scroll   int
	viewport int

	target   string
	restored int
	disorder int
	// held keeps an adopted location in place: pages loaded after it do not
	// move the location until the user scrolls or searches.
	held bool
}

// New builds a controller bound to store.
func New(cfg Config, store Store) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:    cfg,
		cache:  NewPageCache(cfg.FirstCursor),
		filter: NewFilterEngine(cfg.Fields, cfg.Debounce),
		sync:   NewLocationSync(store, cfg.CursorKey),
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the debug logger.
func (c *Controller) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	c.logger = logger
}

// Cache exposes the loaded set for read-only use.
func (c *Controller) Cache() *PageCache {
	return c.cache
}

// Query returns the last synchronized QueryState.
func (c *Controller) Query() QueryState {
	return c.sync.Last()
}

// Handle applies ev and returns the effects the host must run.
func (c *Controller) Handle(ev Event) []Effect {
	var effects []Effect
	retry := true

	switch ev := ev.(type) {
	case Mounted:
		if c.mounted {
			return nil
		}
		c.mounted = true
		st := c.sync.Read()
		c.filter.Restore(st.Search)
		c.setTarget(st.Cursor)
		c.logger.Printf("mounted search=%q cursor=%q", st.Search, st.Cursor)

	case Resized:
		c.viewport = max(0, ev.Height)
		c.clampScroll()

	case Scrolled:
		c.held = false
		c.scroll = ev.Offset
		c.clampScroll()

	case ScrolledBy:
		c.held = false
		c.scroll += ev.Delta
		c.clampScroll()

	case TermTyped:
		req := c.filter.SetTerm(ev.Raw)
		effects = append(effects, DebounceEffect{Seq: req.Seq, After: req.After})
		retry = false

	case TermSubmitted:
		if term, ok := c.filter.Flush(); ok {
			effects = append(effects, c.termPublished(term)...)
		}

	case DebounceElapsed:
		term, ok := c.filter.Elapsed(ev.Seq)
		if !ok {
			return nil
		}
		effects = append(effects, c.termPublished(term)...)
		retry = false

	case PageLoaded:
		eff, evaluate := c.pageLoaded(ev.Result)
		effects = append(effects, eff...)
		if !evaluate {
			return effects
		}
		retry = false

	case LocationChanged:
		st, changed := c.sync.Observe(ev.Values)
		if !changed {
			return nil
		}
		c.adopt(st)

	case Retry:
		c.disorder = 0
		if c.fetch.Status() == StatusFailed || c.fetch.Status() == StatusIdle {
			if eff, ok := c.begin(); ok {
				return append(effects, eff)
			}
		}

	case Dismiss:
		c.fetch.Dismiss()
		return nil
	}

	if eff, ok := c.evaluate(retry); ok {
		effects = append(effects, eff)
	}
	return effects
}

// Frame returns the current render input.
func (c *Controller) Frame() Frame {
	items := c.visible()
	w := Project(c.scroll, c.viewport, c.cfg.ItemHeight, len(items), c.cfg.Overscan)
	return Frame{
		Window:    w,
		Items:     items[w.Start:w.End],
		Total:     len(items),
		Loaded:    c.cache.Len(),
		Pages:     c.cache.Pages(),
		Scroll:    c.scroll,
		Status:    c.fetch.Status(),
		Err:       c.fetch.Err(),
		Search:    c.filter.Term(),
		Raw:       c.filter.Raw(),
		Exhausted: c.cache.Exhausted(),
		Restoring: c.restoring(),
	}
}

// Window projects the current scroll position over the displayed items.
func (c *Controller) Window() Window {
	return Project(c.scroll, c.viewport, c.cfg.ItemHeight, len(c.visible()), c.cfg.Overscan)
}

func (c *Controller) visible() []Item {
	if c.cfg.ServerSideFilter {
		return c.cache.Items()
	}
	return c.filter.Visible(c.cache.Items())
}

func (c *Controller) clampScroll() {
	c.scroll = ClampScroll(c.scroll, c.viewport, c.cfg.ItemHeight, len(c.visible()))
}

func (c *Controller) setTarget(cursor string) {
	c.restored = 0
	if cursor == "" || cursor == c.cache.FirstCursor() {
		c.target = ""
		return
	}
	c.target = cursor
}

func (c *Controller) restoring() bool {
	return c.target != "" && !c.cache.HasCursor(c.target) && !c.cache.Exhausted() &&
		c.restored < c.cfg.MaxRestorePages
}

// evaluate runs the auto-fetch trigger. A failed status is only retried by
// user-driven events.
func (c *Controller) evaluate(retry bool) (Effect, bool) {
	if !c.mounted || c.disorder >= maxDisorderResets {
		return nil, false
	}
	if c.fetch.Status() == StatusFailed && !retry {
		return nil, false
	}
	if c.cache.Pages() == 0 || c.restoring() {
		return c.begin()
	}
	searching := c.filter.Active() && !c.cfg.ServerSideFilter
	w := c.Window()
	if !c.fetch.ShouldFetch(w.End, c.cache.Len(), c.cfg.FetchThreshold, searching) {
		return nil, false
	}
	return c.begin()
}

func (c *Controller) begin() (Effect, bool) {
	if c.cache.Exhausted() {
		return nil, false
	}
	search := ""
	if c.cfg.ServerSideFilter {
		search = c.filter.Term()
	}
	req, ok := c.fetch.Begin(c.cache.NextCursor(), search)
	if !ok {
		return nil, false
	}
	c.logger.Printf("fetch gen=%d cursor=%q search=%q", req.Gen, req.Cursor, req.Search)
	return FetchEffect{Request: req}, true
}

// pageLoaded applies a fetch result. The boolean reports whether the
// trigger should be evaluated afterwards.
func (c *Controller) pageLoaded(res FetchResult) ([]Effect, bool) {
	err := c.fetch.Complete(res, c.cache)

	var fetchErr *FetchError
	var orderErr *OutOfOrderError
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleResponse):
		c.logger.Printf("discarded stale page gen=%d cursor=%q", res.Request.Gen, res.Request.Cursor)
		return nil, false
	case errors.As(err, &fetchErr):
		c.logger.Printf("fetch failed: %v", fetchErr)
		return nil, false
	case errors.As(err, &orderErr):
		c.logger.Printf("resetting query: %v", orderErr)
		c.disorder++
		c.target = ""
		c.resetQuery()
		return nil, true
	default:
		c.logger.Printf("append page: %v", err)
		return nil, false
	}

	c.disorder = 0
	c.logger.Printf("loaded page cursor=%q items=%d total=%d", res.Page.Cursor, len(res.Page.Items), c.cache.Len())

	if c.target != "" {
		c.restored++
		if c.cache.HasCursor(c.target) {
			c.target = ""
			c.scrollToLastPage()
		} else if c.restoring() {
			return nil, true
		} else {
			c.target = ""
		}
	}

	if c.held {
		return nil, true
	}
	mode := ModeReplace
	if c.cache.Pages() > 1 {
		mode = ModePush
	}
	return c.writeLocation(QueryState{Search: c.filter.Term(), Cursor: c.cache.LastCursor()}, mode), true
}

func (c *Controller) scrollToLastPage() {
	pages := c.cache.pages
	if len(pages) == 0 || c.filter.Active() {
		return
	}
	start := c.cache.Len() - len(pages[len(pages)-1].Items)
	c.scroll = start * c.cfg.ItemHeight
	c.clampScroll()
}

func (c *Controller) termPublished(term string) []Effect {
	c.logger.Printf("search published %q", term)
	c.held = false
	c.scroll = 0
	if c.cfg.ServerSideFilter {
		c.target = ""
		c.resetQuery()
		return c.writeLocation(QueryState{Search: term}, ModeReplace)
	}
	c.clampScroll()
	return c.writeLocation(QueryState{Search: term, Cursor: c.sync.Last().Cursor}, ModeReplace)
}

// adopt applies an authoritative state read from the location store.
func (c *Controller) adopt(st QueryState) {
	c.logger.Printf("location changed search=%q cursor=%q", st.Search, st.Cursor)
	searchChanged := st.Search != c.filter.Term()
	c.filter.Restore(st.Search)
	c.scroll = 0
	c.held = true

	cursor := st.Cursor
	if cursor == "" {
		cursor = c.cache.FirstCursor()
	}
	if cursor != c.cache.LastCursor() || (searchChanged && c.cfg.ServerSideFilter) {
		c.resetQuery()
		c.setTarget(st.Cursor)
	}
	c.clampScroll()
}

func (c *Controller) resetQuery() {
	c.cache.Reset()
	c.fetch.Reset()
	c.filter.Invalidate()
	c.restored = 0
}

func (c *Controller) writeLocation(st QueryState, mode HistoryMode) []Effect {
	wrote, err := c.sync.Write(st, mode)
	if err != nil {
		c.logger.Printf("write location: %v", err)
		return nil
	}
	if !wrote {
		return nil
	}
	return []Effect{LocationEffect{Values: c.sync.Encode(st), Mode: mode}}
}
