package assign

import (
	"fmt"
	"sort"

	"github.com/dyluth/canvass/pkg/roster"
)

// Unassigned is the manual selection for a chunk nobody has taken yet.
const Unassigned = roster.ReservedName

// Mode selects how chunks are mapped to units.
type Mode string

const (
	// ModeAutomatic assigns chunks round-robin over units
	ModeAutomatic Mode = "automatic"

	// ModeManual stores caller-supplied selections as-is
	ModeManual Mode = "manual"
)

// Validate checks that the mode is a known value.
func (m Mode) Validate() error {
	switch m {
	case ModeAutomatic, ModeManual:
		return nil
	default:
		return fmt.Errorf("unknown assignment mode: %q (must be 'automatic' or 'manual')", m)
	}
}

// Unit is an entity a chunk can be assigned to.
type Unit struct {
	Name    string   // Canvasser name or pair name
	Members []string // Pair members in order, nil for an individual canvasser
	IsPair  bool
}

// ChunkMap maps chunk IDs to unit names (or Unassigned).
type ChunkMap map[string]string

// Unassigned returns the chunks, in the given order, that have no unit.
// A chunk missing from the map counts as unassigned.
func (m ChunkMap) Unassigned(chunks []string) []string {
	var out []string
	for _, c := range chunks {
		if unit, ok := m[c]; !ok || unit == "" || unit == Unassigned {
			out = append(out, c)
		}
	}
	return out
}

// Counts returns the number of chunks held by each unit, Unassigned excluded.
func (m ChunkMap) Counts() map[string]int {
	counts := make(map[string]int)
	for _, unit := range m {
		if unit == "" || unit == Unassigned {
			continue
		}
		counts[unit]++
	}
	return counts
}

// ChunksOf returns the chunk IDs assigned to unit, sorted.
func (m ChunkMap) ChunksOf(unit string) []string {
	var out []string
	for chunk, u := range m {
		if u == unit {
			out = append(out, chunk)
		}
	}
	sort.Strings(out)
	return out
}
