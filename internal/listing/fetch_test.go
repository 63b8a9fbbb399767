package listing

import (
	"errors"
	"testing"
)

func TestFetchCoordinator_SingleFlight(t *testing.T) {
	var f FetchCoordinator
	cache := NewPageCache("1")

	req, ok := f.Begin(cache.NextCursor(), "")
	if !ok {
		t.Fatalf("Begin from idle = false")
	}
	for range 5 {
		if f.ShouldFetch(100, 0, 10, false) {
			t.Fatalf("ShouldFetch = true while a request is in flight")
		}
		if _, ok := f.Begin(cache.NextCursor(), ""); ok {
			t.Fatalf("second Begin started while in flight")
		}
	}

	err := f.Complete(FetchResult{Request: req, Page: Page{Cursor: "1", Items: makeItems(1, 3), HasMore: true}}, cache)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if f.Status() != StatusIdle {
		t.Fatalf("Status = %v, want idle", f.Status())
	}
	if cache.Len() != 3 {
		t.Fatalf("cache.Len = %d, want 3", cache.Len())
	}
}

func TestFetchCoordinator_ShouldFetch(t *testing.T) {
	var f FetchCoordinator
	tests := []struct {
		name                   string
		end, loaded, threshold int
		searching              bool
		want                   bool
	}{
		{"far from tail", 4, 10, 5, false, false},
		{"inside threshold", 5, 10, 5, false, true},
		{"at tail", 10, 10, 0, false, true},
		{"searching suppresses", 10, 10, 5, true, false},
	}
	for _, tt := range tests {
		if got := f.ShouldFetch(tt.end, tt.loaded, tt.threshold, tt.searching); got != tt.want {
			t.Fatalf("%s: ShouldFetch = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFetchCoordinator_StaleGenerationDiscarded(t *testing.T) {
	var f FetchCoordinator
	cache := NewPageCache("1")

	old, _ := f.Begin("1", "")
	cache.Reset()
	f.Reset()
	fresh, ok := f.Begin("1", "ann")
	if !ok {
		t.Fatalf("Begin after Reset = false")
	}

	err := f.Complete(FetchResult{Request: old, Page: Page{Cursor: "1", Items: makeItems(1, 5), HasMore: true}}, cache)
	if !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("Complete(old) = %v, want ErrStaleResponse", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("stale items reached the cache: %d", cache.Len())
	}
	if f.Status() != StatusInFlight {
		t.Fatalf("Status = %v, want in flight for the fresh request", f.Status())
	}

	if err := f.Complete(FetchResult{Request: fresh, Page: Page{Cursor: "1", Items: makeItems(1, 1)}}, cache); err != nil {
		t.Fatalf("Complete(fresh): %v", err)
	}
	if f.Status() != StatusExhausted {
		t.Fatalf("Status = %v, want exhausted", f.Status())
	}
	if _, ok := f.Begin("2", ""); ok {
		t.Fatalf("Begin after exhaustion = true")
	}
}

func TestFetchCoordinator_FailureAndDismiss(t *testing.T) {
	var f FetchCoordinator
	cache := NewPageCache("1")
	req, _ := f.Begin("1", "")

	cause := errors.New("connection refused")
	err := f.Complete(FetchResult{Request: req, Err: cause}, cache)

	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, cause) {
		t.Fatalf("Complete error = %v, want *FetchError wrapping cause", err)
	}
	if fe.Cursor != "1" {
		t.Fatalf("FetchError.Cursor = %q, want 1", fe.Cursor)
	}
	if f.Status() != StatusFailed || f.Err() == nil {
		t.Fatalf("Status = %v err = %v, want failed with error", f.Status(), f.Err())
	}
	if !f.ShouldFetch(10, 10, 0, false) {
		t.Fatalf("ShouldFetch = false from failed state")
	}

	f.Dismiss()
	if f.Status() != StatusIdle || f.Err() != nil {
		t.Fatalf("after Dismiss status = %v err = %v", f.Status(), f.Err())
	}
}
