// Package watch streams live assignment changes for a session.
package watch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/canvass/internal/logging"
	"github.com/dyluth/canvass/internal/report"
	"github.com/dyluth/canvass/internal/session"
)

// EventSource opens a subscription to a session's assignment events.
type EventSource interface {
	SubscribeAssignmentEvents(ctx context.Context, sessionID string) (*session.Subscription, error)
}

var _ EventSource = (*session.Client)(nil)

// Options control a stream.
type Options struct {
	Format report.OutputFormat

	// Count stops the stream after this many events. Zero streams until
	// the context is cancelled.
	Count int

	// Now stamps human-readable lines. Defaults to time.Now.
	Now func() time.Time
}

// StreamAssignments writes each assignment event for sessionID to w until
// ctx is cancelled, the subscription ends, or opts.Count events were written.
// Malformed events are logged and skipped.
func StreamAssignments(ctx context.Context, src EventSource, sessionID string, opts Options, w io.Writer, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sub, err := src.SubscribeAssignmentEvents(ctx, sessionID)
	if err != nil {
		return err
	}
	defer sub.Close()

	written := 0
	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			logger.Warn("skipping assignment event", "session", sessionID, "error", err)

		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := writeEvent(w, event, opts); err != nil {
				return err
			}
			written++
			if opts.Count > 0 && written >= opts.Count {
				return nil
			}
		}
	}
}

func writeEvent(w io.Writer, event *session.AssignmentEvent, opts Options) error {
	if opts.Format == report.OutputFormatJSONL {
		return report.FormatJSONL(w, []*session.AssignmentEvent{event})
	}

	stamp := opts.Now().Format("15:04:05")
	var err error
	if event.Assignee == "" {
		_, err = fmt.Fprintf(w, "%s  %-32s cleared\n", stamp, event.ChunkID)
	} else {
		_, err = fmt.Fprintf(w, "%s  %-32s -> %s\n", stamp, event.ChunkID, event.Assignee)
	}
	if err != nil {
		return fmt.Errorf("failed to write assignment event: %w", err)
	}
	return nil
}
