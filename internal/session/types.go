package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Session is the stored metadata of one planning session.
type Session struct {
	ID          string `json:"id"`
	Register    string `json:"register,omitempty"` // Register file the session was created for
	CreatedAtMs int64  `json:"created_at_ms"`
}

// NewSession returns a session with a fresh UUID and the current time.
func NewSession(register string) *Session {
	return &Session{
		ID:          uuid.New().String(),
		Register:    register,
		CreatedAtMs: time.Now().UnixMilli(),
	}
}

// Validate checks that the session ID is a UUID.
func (s *Session) Validate() error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("invalid session ID %q: %w", s.ID, err)
	}
	return nil
}

// CreatedAt returns the creation time.
func (s *Session) CreatedAt() time.Time {
	return time.UnixMilli(s.CreatedAtMs)
}

// Overview is a session with the number of manual assignments it holds.
type Overview struct {
	*Session
	Assignments int `json:"assignments"`
}

// AssignmentEvent is published whenever a manual assignment changes.
// An empty Assignee means the selection was cleared.
type AssignmentEvent struct {
	SessionID string `json:"session_id"`
	ChunkID   string `json:"chunk_id"`
	Assignee  string `json:"assignee"`
}

// SessionToHash converts a Session to a Redis hash.
func SessionToHash(s *Session) map[string]interface{} {
	return map[string]interface{}{
		"id":            s.ID,
		"register":      s.Register,
		"created_at_ms": s.CreatedAtMs,
	}
}

// HashToSession converts a Redis hash to a Session.
func HashToSession(hash map[string]string) (*Session, error) {
	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	return &Session{
		ID:          hash["id"],
		Register:    hash["register"],
		CreatedAtMs: createdAtMs,
	}, nil
}
