package location

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

const defaultMaxEntries = 100

// History is an in-memory location history for one view. Push records a
// navigable entry and drops any forward entries; Replace overwrites the
// current one. It is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	view    string
	entries []url.Values
	index   int
	max     int
}

// NewHistory starts a history for view at initial.
func NewHistory(view string, initial url.Values) *History {
	return &History{
		view:    view,
		entries: []url.Values{cloneValues(initial)},
		max:     defaultMaxEntries,
	}
}

// View returns the view name the history belongs to.
func (h *History) View() string {
	return h.view
}

// Values returns a copy of the current entry.
func (h *History) Values() url.Values {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneValues(h.entries[h.index])
}

// Replace overwrites the current entry.
func (h *History) Replace(v url.Values) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = cloneValues(v)
	return nil
}

// Push appends an entry after the current one, discarding forward history.
// The oldest entries are dropped beyond the size limit.
func (h *History) Push(v url.Values) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], cloneValues(v))
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = append([]url.Values(nil), h.entries[over:]...)
	}
	h.index = len(h.entries) - 1
	return nil
}

// Back moves to the previous entry and returns it.
func (h *History) Back() (url.Values, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return nil, false
	}
	h.index--
	return cloneValues(h.entries[h.index]), true
}

// Forward moves to the next entry and returns it.
func (h *History) Forward() (url.Values, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index >= len(h.entries)-1 {
		return nil, false
	}
	h.index++
	return cloneValues(h.entries[h.index]), true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Index returns the position of the current entry.
func (h *History) Index() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index
}

// String renders the current entry as a shareable "view?query" location.
func (h *History) String() string {
	return Format(h.view, h.Values())
}

// Format renders a shareable location.
func Format(view string, v url.Values) string {
	query := v.Encode()
	if query == "" {
		return view
	}
	return view + "?" + query
}

// Parse splits a shareable location such as "users?page=3&search=ann".
func Parse(loc string) (string, url.Values, error) {
	loc = strings.TrimSpace(loc)
	view, query, _ := strings.Cut(loc, "?")
	view = strings.Trim(strings.TrimSpace(view), "/")
	if view == "" {
		return "", nil, fmt.Errorf("location %q: missing view name", loc)
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", nil, fmt.Errorf("location %q: %w", loc, err)
	}
	return view, values, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
