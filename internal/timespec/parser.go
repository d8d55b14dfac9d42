// Package timespec parses the --since and --until flags of session listings.
package timespec

import (
	"fmt"
	"time"
)

// Range is a window of Unix millisecond timestamps.
// A zero bound is open.
type Range struct {
	SinceMs int64
	UntilMs int64
}

// Contains reports whether ms falls inside the range. Since is inclusive,
// until is exclusive.
func (r Range) Contains(ms int64) bool {
	if r.SinceMs > 0 && ms < r.SinceMs {
		return false
	}
	if r.UntilMs > 0 && ms >= r.UntilMs {
		return false
	}
	return true
}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.SinceMs == 0 && r.UntilMs == 0
}

// Parse turns a time specification into a Unix timestamp in milliseconds.
// It accepts either an RFC3339 timestamp ("2026-05-01T09:00:00Z") or a Go
// duration ("2h", "36h", "90m"), which is taken as that long before now.
func Parse(spec string, now time.Time) (int64, error) {
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}

	if d, err := time.ParseDuration(spec); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative duration: %s", spec)
		}
		return now.Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use a duration like '2h' or RFC3339 like '2026-05-01T09:00:00Z')", spec)
}

// ParseRange parses the --since and --until flag values relative to now.
// Empty values leave that end of the range open.
func ParseRange(since, until string, now time.Time) (Range, error) {
	var r Range
	var err error

	if since != "" {
		if r.SinceMs, err = Parse(since, now); err != nil {
			return Range{}, fmt.Errorf("invalid --since: %w", err)
		}
	}

	if until != "" {
		if r.UntilMs, err = Parse(until, now); err != nil {
			return Range{}, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if r.SinceMs > 0 && r.UntilMs > 0 && r.SinceMs >= r.UntilMs {
		return Range{}, fmt.Errorf("--since must be before --until")
	}

	return r, nil
}
