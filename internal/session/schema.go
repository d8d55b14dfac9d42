package session

import "fmt"

// Redis key pattern helpers
//
// Every key and channel is namespaced by session ID so that several plans can
// share one Redis server.
//
// Key pattern: canvass:{session_id}[:{entity}]
// Channel pattern: canvass:{session_id}:{event_type}_events

// keyPrefix is the leading component of every key this package writes.
const keyPrefix = "canvass"

// SessionKey returns the Redis key for a session's metadata hash.
// Pattern: canvass:{session_id}
func SessionKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, sessionID)
}

// AssignmentsKey returns the Redis key for a session's manual assignments hash
// (field = chunk ID, value = canvasser or pair name).
// Pattern: canvass:{session_id}:assignments
func AssignmentsKey(sessionID string) string {
	return fmt.Sprintf("%s:%s:assignments", keyPrefix, sessionID)
}

// AssignmentEventsChannel returns the Pub/Sub channel for assignment changes.
// Pattern: canvass:{session_id}:assignment_events
func AssignmentEventsChannel(sessionID string) string {
	return fmt.Sprintf("%s:%s:assignment_events", keyPrefix, sessionID)
}
