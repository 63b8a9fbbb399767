package listing

import (
	"errors"
	"fmt"
)

// ErrStaleResponse reports a page that belongs to an earlier query generation.
// It is never shown to the user; the page is dropped.
var ErrStaleResponse = errors.New("stale response discarded")

// ErrExhausted is returned when appending to a cache whose last page said
// there was nothing more to load.
var ErrExhausted = errors.New("collection exhausted")

// FetchError wraps a failed page request. Loaded items are kept and the
// request may be retried by the next qualifying trigger.
type FetchError struct {
	Cursor string
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Cursor == "" {
		return fmt.Sprintf("fetch first page: %v", e.Cause)
	}
	return fmt.Sprintf("fetch page %s: %v", e.Cursor, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// OutOfOrderError reports a page whose cursor does not continue the cache.
// The current query cannot be trusted afterwards and must be reset.
type OutOfOrderError struct {
	Expected string
	Got      string
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("page out of order: expected cursor %q, got %q", e.Expected, e.Got)
}
