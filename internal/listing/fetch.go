package listing

import "errors"

// FetchRequest describes one page load. Gen tags the query generation the
// request was issued for.
type FetchRequest struct {
	Gen    uint64
	Cursor string
	Search string
}

// FetchResult is the outcome of a FetchRequest as delivered back by the host.
type FetchResult struct {
	Request FetchRequest
	Page    Page
	Err     error
}

// FetchCoordinator is the single-flight page loader for one LoadedSet.
//
//	Idle -> InFlight -> Idle       (success, more pages)
//	                 -> Exhausted  (success, last page)
//	                 -> Failed     (error; retried by the next trigger)
type FetchCoordinator struct {
	status   FetchStatus
	gen      uint64
	inflight FetchRequest
	err      error
}

// Status returns the current state.
func (f *FetchCoordinator) Status() FetchStatus {
	return f.status
}

// Err returns the last fetch failure while the status is Failed.
func (f *FetchCoordinator) Err() error {
	if f.status != StatusFailed {
		return nil
	}
	return f.err
}

// Generation returns the current query generation.
func (f *FetchCoordinator) Generation() uint64 {
	return f.gen
}

// InFlight returns the outstanding request, if any.
func (f *FetchCoordinator) InFlight() (FetchRequest, bool) {
	return f.inflight, f.status == StatusInFlight
}

// idle reports whether a new request may start.
func (f *FetchCoordinator) idle() bool {
	return f.status == StatusIdle || f.status == StatusFailed
}

// ShouldFetch evaluates the auto-fetch trigger: the window tail is within
// threshold of the loaded tail, nothing is in flight, the collection is not
// exhausted, and no search suppresses pagination.
func (f *FetchCoordinator) ShouldFetch(windowEnd, loaded, threshold int, searching bool) bool {
	if searching || !f.idle() {
		return false
	}
	return windowEnd >= loaded-threshold
}

// Begin starts a request for cursor. It returns false while another request
// is in flight or the collection is exhausted.
func (f *FetchCoordinator) Begin(cursor, search string) (FetchRequest, bool) {
	if !f.idle() {
		return FetchRequest{}, false
	}
	f.inflight = FetchRequest{Gen: f.gen, Cursor: cursor, Search: search}
	f.status = StatusInFlight
	f.err = nil
	return f.inflight, true
}

// Complete applies res to cache. Results from an earlier generation return
// ErrStaleResponse and change nothing. A failed request returns *FetchError.
// An append failure is returned unchanged (usually *OutOfOrderError) and
// leaves the coordinator idle so the caller can reset.
func (f *FetchCoordinator) Complete(res FetchResult, cache *PageCache) error {
	if res.Request.Gen != f.gen || f.status != StatusInFlight || res.Request != f.inflight {
		return ErrStaleResponse
	}
	f.inflight = FetchRequest{}

	if res.Err != nil {
		f.status = StatusFailed
		var fe *FetchError
		if !errors.As(res.Err, &fe) {
			fe = &FetchError{Cursor: res.Request.Cursor, Cause: res.Err}
		}
		f.err = fe
		return fe
	}

	if err := cache.Append(res.Page); err != nil {
		f.status = StatusIdle
		if errors.Is(err, ErrExhausted) {
			f.status = StatusExhausted
		}
		return err
	}

	if cache.Exhausted() {
		f.status = StatusExhausted
	} else {
		f.status = StatusIdle
	}
	return nil
}

// Dismiss clears a Failed status without fetching.
func (f *FetchCoordinator) Dismiss() {
	if f.status == StatusFailed {
		f.status = StatusIdle
		f.err = nil
	}
}

// Reset starts a new query generation. Any in-flight request is orphaned and
// its result will be reported stale.
func (f *FetchCoordinator) Reset() {
	f.gen++
	f.status = StatusIdle
	f.inflight = FetchRequest{}
	f.err = nil
}
