package app

import (
	"context"
	"log"
	"time"

	"github.com/five82/glide/internal/location"
)

const (
	rewatchInterval = 2 * time.Second
	maxBackoff      = 30 * time.Second
)

// WatchLocations forwards location changes made by other processes to out
// until ctx is done, then closes out. A watch that cannot be set up or that
// stops early is re-established with exponential backoff.
func WatchLocations(ctx context.Context, file *location.File, out chan<- location.Snapshot, logger *log.Logger) {
	defer close(out)

	failures := 0
	for {
		in, err := file.Watch(ctx)
		if err != nil {
			failures++
			logger.Printf("location watch failed: %v", err)
		} else {
			failures = 0
			if !forward(ctx, in, out, logger) {
				return
			}
			failures++
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(calculateBackoff(failures, rewatchInterval)):
		}
	}
}

// forward copies snapshots from in to out. It returns false once ctx is done
// and true when in closed on its own.
func forward(ctx context.Context, in <-chan location.Snapshot, out chan<- location.Snapshot, logger *log.Logger) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-in:
			if !ok {
				return ctx.Err() == nil
			}
			logger.Printf("external location change current=%s views=%d", snap.Current, len(snap.Views))
			select {
			case out <- snap:
			case <-ctx.Done():
				return false
			}
		}
	}
}

// calculateBackoff returns the retry delay after consecutive failures,
// doubling from base and capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
