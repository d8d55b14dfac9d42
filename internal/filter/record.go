package filter

import (
	"path/filepath"

	"github.com/dyluth/canvass/pkg/route"
)

// Criteria defines filtering criteria for plan records.
// All filters are ANDed together - a record must match ALL criteria to pass.
type Criteria struct {
	StreetGlob string // Glob pattern for the street, empty = no filter
	Assignee   string // Canvasser or pair name, empty = no filter
	ChunkID    string // Exact match on the chunk, empty = no filter

	// Units maps chunk IDs to the unit they are assigned to, so Assignee can
	// name a pair as well as a canvasser. Optional.
	Units map[string]string
}

// Matches returns true if the record matches all filter criteria.
func (c *Criteria) Matches(r *route.Record) bool {
	if c.StreetGlob != "" {
		matched, err := filepath.Match(c.StreetGlob, r.Street)
		if err != nil || !matched {
			return false
		}
	}

	if c.Assignee != "" && r.AssigneeName != c.Assignee && c.Units[r.ChunkID] != c.Assignee {
		return false
	}

	if c.ChunkID != "" && r.ChunkID != c.ChunkID {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.StreetGlob != "" || c.Assignee != "" || c.ChunkID != ""
}

// Validate checks that StreetGlob is a well-formed pattern.
func (c *Criteria) Validate() error {
	if c.StreetGlob == "" {
		return nil
	}
	_, err := filepath.Match(c.StreetGlob, "")
	return err
}

// Apply returns the matching records in their original order.
func (c *Criteria) Apply(records []*route.Record) []*route.Record {
	if !c.HasFilters() {
		return records
	}

	var out []*route.Record
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
