package listing

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DebounceRequest asks the host to call FilterEngine.Elapsed(Seq) once After
// has passed without further input.
type DebounceRequest struct {
	Seq   uint64
	After time.Duration
}

// FilterEngine applies a debounced, case-insensitive substring filter over
// the loaded items.
type FilterEngine struct {
	fields []string
	delay  time.Duration
	fold   cases.Caser

	raw       string
	debounced string
	seq       uint64

	// memo for Visible
	memoValid bool
	memoTerm  string
	memoLen   int
	memo      []Item
}

// NewFilterEngine matches against fields, OR-combined. An empty field list
// matches against the item ID only.
func NewFilterEngine(fields []string, delay time.Duration) *FilterEngine {
	return &FilterEngine{
		fields: append([]string(nil), fields...),
		delay:  delay,
		fold:   cases.Fold(),
	}
}

// Raw returns the latest unpublished input, for echoing back to the user.
func (f *FilterEngine) Raw() string {
	return f.raw
}

// Term returns the published (debounced) term.
func (f *FilterEngine) Term() string {
	return f.debounced
}

// Active reports whether the published term filters anything.
func (f *FilterEngine) Active() bool {
	return strings.TrimSpace(f.debounced) != ""
}

// Pending reports whether raw input is waiting for its debounce timer.
func (f *FilterEngine) Pending() bool {
	return f.raw != f.debounced
}

// SetTerm records raw input immediately and restarts the debounce timer.
// Any earlier outstanding timer becomes a no-op.
func (f *FilterEngine) SetTerm(raw string) DebounceRequest {
	f.raw = raw
	f.seq++
	return DebounceRequest{Seq: f.seq, After: f.delay}
}

// Elapsed handles a fired timer. The raw term is published only when seq is
// the latest timer; published is false for superseded timers and for terms
// that did not change.
func (f *FilterEngine) Elapsed(seq uint64) (term string, published bool) {
	if seq != f.seq {
		return f.debounced, false
	}
	return f.publish()
}

// Flush publishes the raw term immediately and cancels pending timers.
func (f *FilterEngine) Flush() (term string, published bool) {
	f.seq++
	return f.publish()
}

// Restore sets both raw and published term without a debounce, used when
// the term comes from the location store.
func (f *FilterEngine) Restore(term string) {
	f.seq++
	f.raw = term
	f.debounced = term
	f.memoValid = false
}

func (f *FilterEngine) publish() (string, bool) {
	if f.raw == f.debounced {
		return f.debounced, false
	}
	f.debounced = f.raw
	f.memoValid = false
	return f.debounced, true
}

// Invalidate drops the memoized projection. Call after the loaded set is
// reset.
func (f *FilterEngine) Invalidate() {
	f.memoValid = false
	f.memo = nil
}

// Apply returns the items with a field containing term, compared as typed
// after case folding. An empty or all-blank term is the identity.
func (f *FilterEngine) Apply(items []Item, term string) []Item {
	if strings.TrimSpace(term) == "" {
		return items
	}
	needle := f.fold.String(term)
	out := make([]Item, 0, len(items)/4)
	for _, item := range items {
		if f.matches(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

// Visible returns Apply(items, Term()), recomputing only when the term
// changed, the engine was invalidated, or items shrank. Growth filters just
// the appended tail.
func (f *FilterEngine) Visible(items []Item) []Item {
	if !f.Active() {
		return items
	}
	switch {
	case f.memoValid && f.memoTerm == f.debounced && len(items) == f.memoLen:
	case f.memoValid && f.memoTerm == f.debounced && len(items) > f.memoLen:
		f.memo = append(f.memo, f.Apply(items[f.memoLen:], f.debounced)...)
		f.memoLen = len(items)
	default:
		f.memo = f.Apply(items, f.debounced)
		f.memoTerm = f.debounced
		f.memoLen = len(items)
		f.memoValid = true
	}
	return f.memo[:len(f.memo):len(f.memo)]
}

func (f *FilterEngine) matches(item Item, needle string) bool {
	if len(f.fields) == 0 {
		return strings.Contains(f.fold.String(item.ID), needle)
	}
	for _, name := range f.fields {
		if strings.Contains(f.fold.String(item.Field(name)), needle) {
			return true
		}
	}
	return false
}
