package clock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/beevik/ntp"
)

// QueryFunc asks a time server for the local clock offset.
type QueryFunc func(server string, timeout time.Duration) (time.Duration, error)

// SyncOptions controls network time sync at bring-up.
type SyncOptions struct {
	Server   string
	Attempts int
	Interval time.Duration
	Timeout  time.Duration
	Location *time.Location
	// Query defaults to an NTP query.
	Query QueryFunc
}

// QueryNTP performs a single NTP exchange and validates the response.
func QueryNTP(server string, timeout time.Duration) (time.Duration, error) {
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// Sync tries to establish a wall clock, giving up after opts.Attempts.
// On failure it returns ErrTimeSourceUnavailable and the caller keeps
// using base on its own.
func Sync(ctx context.Context, base *Monotonic, opts SyncOptions) (*Synced, error) {
	if opts.Server == "" {
		return nil, fmt.Errorf("%w: no server configured", ErrTimeSourceUnavailable)
	}
	query := opts.Query
	if query == nil {
		query = QueryNTP
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 && opts.Interval > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrTimeSourceUnavailable, ctx.Err())
			case <-time.After(opts.Interval):
			}
		}

		offset, err := query(opts.Server, opts.Timeout)
		if err == nil {
			log.Printf("clock: synced with %s (offset %v, attempt %d)", opts.Server, offset, i+1)
			return NewSynced(base, offset, opts.Location), nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrTimeSourceUnavailable, opts.Server, attempts, lastErr)
}
