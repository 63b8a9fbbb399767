package listing

import (
	"net/url"
	"strings"
)

// Location parameter keys.
const (
	SearchKey = "search"
	PageKey   = "page"
	CursorKey = "cursor"
)

// HistoryMode selects how a location write is recorded.
type HistoryMode int

const (
	// ModeReplace overwrites the current history entry (filter changes).
	ModeReplace HistoryMode = iota
	// ModePush creates a navigable history entry (page changes).
	ModePush
)

func (m HistoryMode) String() string {
	if m == ModePush {
		return "push"
	}
	return "replace"
}

// Store is the external addressable-location store.
type Store interface {
	Values() url.Values
	Replace(url.Values) error
	Push(url.Values) error
}

// LocationSync binds QueryState to a Store in both directions. It remembers
// the last synchronized state so its own writes are not re-applied when they
// come back as change notifications.
type LocationSync struct {
	store     Store
	cursorKey string
	last      QueryState
	synced    bool
}

// NewLocationSync binds to store. cursorKey is PageKey or CursorKey; empty
// means PageKey.
func NewLocationSync(store Store, cursorKey string) *LocationSync {
	if strings.TrimSpace(cursorKey) == "" {
		cursorKey = PageKey
	}
	return &LocationSync{store: store, cursorKey: cursorKey}
}

// Read loads the QueryState from the store and marks it synchronized.
func (s *LocationSync) Read() QueryState {
	var values url.Values
	if s.store != nil {
		values = s.store.Values()
	}
	st := s.Decode(values)
	s.last = st
	s.synced = true
	return st
}

// Last returns the most recently synchronized state.
func (s *LocationSync) Last() QueryState {
	return s.last
}

// Write pushes st to the store. Writing the already-synchronized state is a
// no-op.
func (s *LocationSync) Write(st QueryState, mode HistoryMode) (bool, error) {
	if s.synced && st == s.last {
		return false, nil
	}
	if s.store != nil {
		values := s.Encode(st)
		var err error
		if mode == ModePush {
			err = s.store.Push(values)
		} else {
			err = s.store.Replace(values)
		}
		if err != nil {
			return false, err
		}
	}
	s.last = st
	s.synced = true
	return true, nil
}

// Observe handles an external location change. It returns the decoded state
// and true only when it differs from the last synchronized state; the state
// then becomes authoritative.
func (s *LocationSync) Observe(values url.Values) (QueryState, bool) {
	st := s.Decode(values)
	if s.synced && st == s.last {
		return st, false
	}
	s.last = st
	s.synced = true
	return st, true
}

// Encode renders st as location parameters. Empty fields are omitted.
func (s *LocationSync) Encode(st QueryState) url.Values {
	values := url.Values{}
	if st.Search != "" {
		values.Set(SearchKey, st.Search)
	}
	if st.Cursor != "" {
		values.Set(s.cursorKey, st.Cursor)
	}
	return values
}

// Decode reads a QueryState from location parameters.
func (s *LocationSync) Decode(values url.Values) QueryState {
	if values == nil {
		return QueryState{}
	}
	return QueryState{
		Search: values.Get(SearchKey),
		Cursor: strings.TrimSpace(values.Get(s.cursorKey)),
	}
}
