// Package session persists planning sessions in Redis so that manual chunk
// assignments survive re-sequencing and can be shared between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// overviewConcurrency bounds parallel reads in Overviews.
const overviewConcurrency = 8

// Client provides session-scoped Redis operations.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new session client.
func NewClient(redisOpts *redis.Options) *Client {
	return &Client{rdb: redis.NewClient(redisOpts)}
}

// NewClientFromURL creates a client from a redis:// URL.
func NewClientFromURL(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return NewClient(opts), nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// CreateSession writes session metadata to Redis.
func (c *Client) CreateSession(ctx context.Context, s *Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	if err := c.rdb.HSet(ctx, SessionKey(s.ID), SessionToHash(s)).Err(); err != nil {
		return fmt.Errorf("failed to write session to Redis: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID.
// Returns (nil, redis.Nil) if the session doesn't exist.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	hashData, err := c.rdb.HGetAll(ctx, SessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session from Redis: %w", err)
	}

	// HGetAll returns an empty map for missing keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	s, err := HashToSession(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}

	return s, nil
}

// SessionExists checks if a session exists without fetching it.
func (c *Client) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	exists, err := c.rdb.Exists(ctx, SessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return exists > 0, nil
}

// DeleteSession removes a session and its assignments.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.rdb.Del(ctx, SessionKey(sessionID), AssignmentsKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SetAssignment stores the manual selection for one chunk and publishes an
// AssignmentEvent. Returns redis.Nil if the session doesn't exist.
// Referential checks against the roster are the caller's job.
func (c *Client) SetAssignment(ctx context.Context, sessionID, chunkID, assignee string) error {
	if chunkID == "" {
		return fmt.Errorf("chunk ID cannot be empty")
	}
	if assignee == "" {
		return fmt.Errorf("assignee cannot be empty (use ClearAssignment)")
	}

	exists, err := c.SessionExists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return redis.Nil
	}

	if err := c.rdb.HSet(ctx, AssignmentsKey(sessionID), chunkID, assignee).Err(); err != nil {
		return fmt.Errorf("failed to write assignment to Redis: %w", err)
	}

	return c.publish(ctx, &AssignmentEvent{SessionID: sessionID, ChunkID: chunkID, Assignee: assignee})
}

// ClearAssignment removes the manual selection for one chunk, returning it
// to Unassigned. Clearing a chunk with no selection is not an error.
func (c *Client) ClearAssignment(ctx context.Context, sessionID, chunkID string) error {
	removed, err := c.rdb.HDel(ctx, AssignmentsKey(sessionID), chunkID).Result()
	if err != nil {
		return fmt.Errorf("failed to clear assignment: %w", err)
	}
	if removed == 0 {
		return nil
	}

	return c.publish(ctx, &AssignmentEvent{SessionID: sessionID, ChunkID: chunkID})
}

// Assignments returns all manual selections of a session (chunk ID → assignee).
// Returns an empty map if none are stored.
func (c *Client) Assignments(ctx context.Context, sessionID string) (map[string]string, error) {
	assignments, err := c.rdb.HGetAll(ctx, AssignmentsKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read assignments from Redis: %w", err)
	}
	return assignments, nil
}

// ScanSessions returns the IDs of all sessions whose ID starts with prefix,
// sorted. An empty prefix lists every session.
func (c *Client) ScanSessions(ctx context.Context, prefix string) ([]string, error) {
	pattern := SessionKey(prefix) + "*"
	base := keyPrefix + ":"

	seen := make(map[string]bool)
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan sessions: %w", err)
		}

		for _, key := range keys {
			id := strings.TrimPrefix(key, base)
			// Skip sub-keys such as canvass:{id}:assignments
			if strings.Contains(id, ":") {
				continue
			}
			seen[id] = true
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Overviews reads the metadata and assignment count of each session in ids,
// preserving order. Sessions deleted since they were listed are skipped.
func (c *Client) Overviews(ctx context.Context, ids []string) ([]Overview, error) {
	results := make([]*Overview, len(ids))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(overviewConcurrency)
	for i, id := range ids {
		eg.Go(func() error {
			s, err := c.GetSession(egCtx, id)
			if err != nil {
				if IsNotFound(err) {
					return nil
				}
				return err
			}
			n, err := c.rdb.HLen(egCtx, AssignmentsKey(id)).Result()
			if err != nil {
				return fmt.Errorf("failed to count assignments: %w", err)
			}
			results[i] = &Overview{Session: s, Assignments: int(n)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	overviews := make([]Overview, 0, len(ids))
	for _, o := range results {
		if o != nil {
			overviews = append(overviews, *o)
		}
	}
	return overviews, nil
}

func (c *Client) publish(ctx context.Context, event *AssignmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal assignment event: %w", err)
	}

	if err := c.rdb.Publish(ctx, AssignmentEventsChannel(event.SessionID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish assignment event: %w", err)
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to assignment events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *AssignmentEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of assignment events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *AssignmentEvent {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors.
// Malformed messages are reported here and skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeAssignmentEvents subscribes to assignment changes for a session.
// Delivery is at-most-once, as with any Redis Pub/Sub subscriber.
func (c *Client) SubscribeAssignmentEvents(ctx context.Context, sessionID string) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, AssignmentEventsChannel(sessionID))

	// Wait for the subscription to be confirmed so no event published after
	// return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to assignment events: %w", err)
	}

	eventsChan := make(chan *AssignmentEvent, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event AssignmentEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal assignment event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
