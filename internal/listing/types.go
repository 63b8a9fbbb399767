package listing

import "strings"

// Item is an opaque record from a remote collection. ID is stable across
// refetches of the same logical record.
type Item struct {
	ID     string
	Fields map[string]string
}

// Field returns the named display field, or the ID for the "id" key.
func (i Item) Field(name string) string {
	if v, ok := i.Fields[name]; ok {
		return v
	}
	if strings.EqualFold(name, "id") {
		return i.ID
	}
	return ""
}

// Page is one response from the collection endpoint, already normalized to
// the {items, hasMore} pair.
type Page struct {
	// Cursor is the cursor that was requested to produce this page.
	Cursor string
	// Next is the cursor of the following page, empty when unknown or none.
	Next    string
	Items   []Item
	HasMore bool
}

// QueryState is the shareable part of a list view.
type QueryState struct {
	Search string
	Cursor string
}

// Window is a half-open range [Start, End) into the displayed sequence plus
// the offset of the first rendered item.
type Window struct {
	Start    int
	End      int
	OffsetPx int
}

// Len returns the number of items in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// FetchStatus is the state of a FetchCoordinator.
type FetchStatus int

const (
	StatusIdle FetchStatus = iota
	StatusInFlight
	StatusExhausted
	StatusFailed
)

func (s FetchStatus) String() string {
	switch s {
	case StatusInFlight:
		return "loading"
	case StatusExhausted:
		return "exhausted"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}
