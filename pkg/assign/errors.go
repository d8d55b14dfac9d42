package assign

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoUnits indicates that automatic assignment had nobody to assign to.
var ErrNoUnits = errors.New("no assignable units: add canvassers or populate a pair")

// IncompleteAssignmentError blocks export while chunks remain unassigned.
// It is user-correctable and never fatal to the session.
type IncompleteAssignmentError struct {
	Chunks []string // Unassigned chunk IDs in route order
}

func (e *IncompleteAssignmentError) Error() string {
	return fmt.Sprintf("%d chunk(s) still unassigned: %s", len(e.Chunks), strings.Join(e.Chunks, ", "))
}

// IsIncompleteAssignment reports whether err is (or wraps) an IncompleteAssignmentError.
func IsIncompleteAssignment(err error) bool {
	var target *IncompleteAssignmentError
	return errors.As(err, &target)
}

// UnknownAssigneeError reports a selection naming neither a canvasser nor a pair.
type UnknownAssigneeError struct {
	ChunkID  string
	Assignee string
}

func (e *UnknownAssigneeError) Error() string {
	return fmt.Sprintf("chunk %q assigned to unknown canvasser or pair %q", e.ChunkID, e.Assignee)
}

// IsUnknownAssignee reports whether err is (or wraps) an UnknownAssigneeError.
func IsUnknownAssignee(err error) bool {
	var target *UnknownAssigneeError
	return errors.As(err, &target)
}

// EmptyPairWarning records a chunk assigned to a pair that has no members.
// Records in the chunk are left with an empty assignee.
type EmptyPairWarning struct {
	Pair    string
	ChunkID string
	Records int
}

func (w EmptyPairWarning) String() string {
	return fmt.Sprintf("pair %q has no members: %d record(s) in chunk %q left unattributed", w.Pair, w.Records, w.ChunkID)
}
