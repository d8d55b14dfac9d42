package route

import (
	"cmp"
	"fmt"
	"slices"
)

// StreetOrder is the user-chosen walking order of streets.
type StreetOrder []string

// Validate checks that no street appears twice.
func (o StreetOrder) Validate() error {
	seen := make(map[string]bool, len(o))
	for _, s := range o {
		if seen[s] {
			return fmt.Errorf("%w: %q", ErrDuplicateStreet, s)
		}
		seen[s] = true
	}
	return nil
}

// Policy controls what happens to records whose street is missing from the
// StreetOrder.
type Policy int

const (
	// PolicyLenient places missing streets after all ordered streets, in order
	// of first appearance, and reports them as a warning.
	PolicyLenient Policy = iota

	// PolicyStrict fails sequencing when any street is missing.
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "lenient"
}

// SequenceResult describes a completed sequencing run.
type SequenceResult struct {
	// Missing is non-nil when some streets were absent from the order and
	// were placed last (PolicyLenient only).
	Missing *OrderingIncompleteError
}

// Sequence classifies and orders the table in place, then numbers the
// records 1..N in their final order.
//
// The ordering keys are, in priority:
//  1. position of the record's street in order
//  2. parity: Odd, then Even, then Unknown
//  3. house number ascending
//
// Ties keep their input relative order. Nothing is mutated when an error is
// returned.
func Sequence(t *Table, order StreetOrder, policy Policy) (*SequenceResult, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	position := make(map[string]int, len(order))
	for i, s := range order {
		position[s] = i
	}

	// Missing streets are appended after the ordered ones by first appearance
	var missing *OrderingIncompleteError
	isMissing := make(map[string]bool)
	for _, r := range t.Records {
		if _, ok := position[r.Street]; !ok {
			if missing == nil {
				missing = &OrderingIncompleteError{}
			}
			missing.Streets = append(missing.Streets, r.Street)
			isMissing[r.Street] = true
			position[r.Street] = len(position)
		}
		if isMissing[r.Street] {
			missing.Records++
		}
	}

	if missing != nil && policy == PolicyStrict {
		return nil, missing
	}

	Classify(t.Records)

	ordered := slices.Clone(t.Records)
	slices.SortStableFunc(ordered, func(a, b *Record) int {
		if c := cmp.Compare(position[a.Street], position[b.Street]); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Parity(), b.Parity()); c != 0 {
			return c
		}
		return cmp.Compare(a.HouseNumber.Value, b.HouseNumber.Value)
	})

	for i, r := range ordered {
		r.RouteOrder = i + 1
	}
	t.Records = ordered

	return &SequenceResult{Missing: missing}, nil
}
