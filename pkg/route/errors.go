package route

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateStreet indicates that a street appears twice in a StreetOrder.
var ErrDuplicateStreet = errors.New("duplicate street in street order")

// OrderingIncompleteError reports streets present in the records but absent
// from the StreetOrder. Under PolicyLenient it is returned as a warning in
// SequenceResult; under PolicyStrict it aborts sequencing.
type OrderingIncompleteError struct {
	Streets []string // Missing streets, in order of first appearance
	Records int      // Number of records on those streets
}

func (e *OrderingIncompleteError) Error() string {
	quoted := make([]string, len(e.Streets))
	for i, s := range e.Streets {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("street order is incomplete: %d record(s) on %d street(s) not in the order: %s",
		e.Records, len(e.Streets), strings.Join(quoted, ", "))
}

// IsOrderingIncomplete reports whether err is (or wraps) an OrderingIncompleteError.
func IsOrderingIncomplete(err error) bool {
	var target *OrderingIncompleteError
	return errors.As(err, &target)
}
