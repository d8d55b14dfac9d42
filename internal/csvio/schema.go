package csvio

import (
	"errors"
	"fmt"
	"strings"
)

// RequiredColumns must be present in every register.
var RequiredColumns = []string{"Street", "Address"}

// StrictColumns is the full electoral-register layout required in strict mode.
var StrictColumns = []string{
	"Elector Number",
	"Full Name",
	"Address",
	"Street",
	"Postcode",
	"Polling District",
	"Ward Name",
	"Constituency Name",
	"Elector Type",
}

// SchemaError reports a table whose header does not match what is required.
// It is fatal and raised before any record is processed.
type SchemaError struct {
	Source    string   // Human label for the table, e.g. "register"
	Missing   []string // Required columns not found
	Duplicate []string // Columns that appear more than once
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing column(s): %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate column(s): %s", strings.Join(e.Duplicate, ", ")))
	}
	return fmt.Sprintf("%s schema error: %s", e.Source, strings.Join(parts, "; "))
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

// checkHeader verifies header contains every required column exactly once.
// match compares a header cell with a required name.
func checkHeader(source string, header, required []string, match func(cell, name string) bool) error {
	schemaErr := &SchemaError{Source: source}

	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			schemaErr.Duplicate = append(schemaErr.Duplicate, h)
		}
		seen[h] = true
	}

	for _, name := range required {
		found := false
		for _, h := range header {
			if match(h, name) {
				found = true
				break
			}
		}
		if !found {
			schemaErr.Missing = append(schemaErr.Missing, name)
		}
	}

	if len(schemaErr.Missing) > 0 || len(schemaErr.Duplicate) > 0 {
		return schemaErr
	}
	return nil
}

func exactMatch(cell, name string) bool {
	return cell == name
}

func foldMatch(cell, name string) bool {
	return strings.EqualFold(cell, name)
}
