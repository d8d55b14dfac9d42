package roster

import (
	"errors"
	"fmt"
	"strings"
)

// RosterError reports an invalid roster or pairing configuration.
// It is fatal to roster construction only; already computed routes are unaffected.
type RosterError struct {
	Reason string
	Names  []string // Offending names, if any
}

func (e *RosterError) Error() string {
	if len(e.Names) == 0 {
		return fmt.Sprintf("invalid roster: %s", e.Reason)
	}
	return fmt.Sprintf("invalid roster: %s: %s", e.Reason, strings.Join(e.Names, ", "))
}

// IsRosterError reports whether err is (or wraps) a RosterError.
func IsRosterError(err error) bool {
	var target *RosterError
	return errors.As(err, &target)
}
