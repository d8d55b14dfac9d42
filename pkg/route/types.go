package route

import (
	"fmt"
	"strconv"
)

// Column names the core reads from every register.
const (
	ColumnStreet  = "Street"
	ColumnAddress = "Address"
)

// Parity classifies a house number as odd, even or unknown.
// The declaration order is the walking order within a street.
type Parity int

const (
	// ParityOdd covers house numbers where n mod 2 == 1
	ParityOdd Parity = iota

	// ParityEven covers house numbers where n mod 2 == 0
	ParityEven

	// ParityUnknown covers addresses with no parsable house number
	ParityUnknown
)

// String returns the label used inside chunk IDs.
func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "Odd"
	case ParityEven:
		return "Even"
	default:
		return "Unknown"
	}
}

// ParseParity converts a chunk label back into a Parity.
func ParseParity(label string) (Parity, error) {
	switch label {
	case "Odd":
		return ParityOdd, nil
	case "Even":
		return ParityEven, nil
	case "Unknown":
		return ParityUnknown, nil
	default:
		return ParityUnknown, fmt.Errorf("unknown parity label: %q", label)
	}
}

// HouseNumber is the numeric part of an address.
// The zero value is an unknown house number.
type HouseNumber struct {
	Value int64
	Known bool
}

// Parity returns the parity class of the house number.
func (h HouseNumber) Parity() Parity {
	if !h.Known {
		return ParityUnknown
	}
	if h.Value%2 == 1 {
		return ParityOdd
	}
	return ParityEven
}

func (h HouseNumber) String() string {
	if !h.Known {
		return "unknown"
	}
	return strconv.FormatInt(h.Value, 10)
}

// Record is one elector/address entry from the register.
//
// Street and Address are the only columns the core interprets. Every other
// input column is carried untouched in Fields. When Street was cleaned up on
// input, the raw cell is kept in Fields under ColumnStreet for output. The remaining fields are
// filled in by Classify, Sequence and the assignment engine.
type Record struct {
	Street  string            // Value of the Street column
	Address string            // Value of the Address column
	Fields  map[string]string // Pass-through columns, keyed by column name

	HouseNumber     HouseNumber // Parsed from Address
	ChunkID         string      // street + "|" + parity label
	RouteOrder      int         // Dense 1-based walking position, 0 until sequenced
	AssigneeName    string      // Empty = unassigned
	AssigneeContact string      // Resolved from the roster
}

// Field returns the value of an input column for this record.
func (r *Record) Field(column string) string {
	switch column {
	case ColumnStreet:
		if raw, ok := r.Fields[ColumnStreet]; ok {
			return raw
		}
		return r.Street
	case ColumnAddress:
		return r.Address
	default:
		return r.Fields[column]
	}
}

// Parity returns the parity class of the record's house number.
func (r *Record) Parity() Parity {
	return r.HouseNumber.Parity()
}

// Table is an ordered set of records together with the input column order.
type Table struct {
	Columns []string
	Records []*Record
}

// Append adds a record at the end of the table.
func (t *Table) Append(r *Record) {
	t.Records = append(t.Records, r)
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}
