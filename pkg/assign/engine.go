package assign

import (
	"sort"

	"github.com/dyluth/canvass/pkg/roster"
	"github.com/dyluth/canvass/pkg/route"
)

// Engine assigns chunks and attributes records against a fixed roster and
// pairing. It holds no mutable state and is safe to reuse.
type Engine struct {
	roster  *roster.Roster
	pairing *roster.Pairing
	units   []Unit
	byName  map[string]Unit
}

// NewEngine creates an engine. pairing may be nil when pairing is disabled.
func NewEngine(r *roster.Roster, pairing *roster.Pairing) *Engine {
	e := &Engine{
		roster:  r,
		pairing: pairing,
		byName:  make(map[string]Unit),
	}

	// Every pair can be selected manually, even while empty
	for _, p := range pairing.Pairs() {
		unit := Unit{Name: p.Name, Members: p.Members, IsPair: true}
		e.byName[p.Name] = unit
		if len(p.Members) > 0 {
			e.units = append(e.units, unit)
		}
	}

	for _, name := range pairing.Unpaired(r) {
		unit := Unit{Name: name}
		e.byName[name] = unit
		e.units = append(e.units, unit)
	}

	return e
}

// Units returns the assignable units: populated pairs in creation order,
// then unpaired canvassers in roster order.
func (e *Engine) Units() []Unit {
	out := make([]Unit, len(e.units))
	copy(out, e.units)
	return out
}

// Options returns the names a manual selection may use, Unassigned first.
// Empty pairs are included so they can be chosen while still being filled.
func (e *Engine) Options() []string {
	options := []string{Unassigned}
	for _, p := range e.pairing.Pairs() {
		options = append(options, p.Name)
	}
	options = append(options, e.pairing.Unpaired(e.roster)...)
	return options
}

// Lookup returns the unit called name.
func (e *Engine) Lookup(name string) (Unit, bool) {
	u, ok := e.byName[name]
	return u, ok
}

// Automatic assigns chunks[i] to units[i mod len(units)].
//
// Each unit receives floor(C/U) or ceil(C/U) of the C chunks, and the result
// depends only on the chunk order and the unit order.
func (e *Engine) Automatic(chunks []string) (ChunkMap, error) {
	if len(e.units) == 0 {
		return nil, ErrNoUnits
	}

	m := make(ChunkMap, len(chunks))
	for i, chunk := range chunks {
		m[chunk] = e.units[i%len(e.units)].Name
	}

	return m, nil
}

// Manual builds a map from caller selections. Chunks without a selection are
// Unassigned. Selections for chunks not in chunks are ignored; use Stale to
// list them. Returns UnknownAssigneeError if a selection names nobody.
func (e *Engine) Manual(chunks []string, selections map[string]string) (ChunkMap, error) {
	m := make(ChunkMap, len(chunks))
	for _, chunk := range chunks {
		selection, ok := selections[chunk]
		if !ok || selection == "" || selection == Unassigned {
			m[chunk] = Unassigned
			continue
		}
		if _, known := e.byName[selection]; !known {
			return nil, &UnknownAssigneeError{ChunkID: chunk, Assignee: selection}
		}
		m[chunk] = selection
	}

	return m, nil
}

// Stale returns the sorted selection keys that match none of chunks.
// These are usually left over from an earlier register revision.
func Stale(chunks []string, selections map[string]string) []string {
	present := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		present[c] = true
	}

	var stale []string
	for chunk := range selections {
		if !present[chunk] {
			stale = append(stale, chunk)
		}
	}
	sort.Strings(stale)
	return stale
}

// Finalize checks that every chunk has a unit.
// Returns IncompleteAssignmentError listing the unassigned chunks otherwise.
func Finalize(chunks []string, m ChunkMap) error {
	if missing := m.Unassigned(chunks); len(missing) > 0 {
		return &IncompleteAssignmentError{Chunks: missing}
	}
	return nil
}

// Attribute sets AssigneeName and AssigneeContact on every record.
//
// Records must be in route order. A record in a pair's chunk goes to
// Members[i mod len(Members)], where i is the record's zero-based position in
// records. Chunks of an empty pair leave their records unattributed and are
// reported as warnings. Unassigned chunks also leave records unattributed.
func (e *Engine) Attribute(records []*route.Record, m ChunkMap) ([]EmptyPairWarning, error) {
	var warnings []EmptyPairWarning
	warned := make(map[string]int)

	for i, r := range records {
		r.AssigneeName = ""
		r.AssigneeContact = ""

		unitName := m[r.ChunkID]
		if unitName == "" || unitName == Unassigned {
			continue
		}

		unit, ok := e.byName[unitName]
		if !ok {
			return nil, &UnknownAssigneeError{ChunkID: r.ChunkID, Assignee: unitName}
		}

		name := unit.Name
		if unit.IsPair {
			if len(unit.Members) == 0 {
				if idx, seen := warned[r.ChunkID]; seen {
					warnings[idx].Records++
				} else {
					warned[r.ChunkID] = len(warnings)
					warnings = append(warnings, EmptyPairWarning{Pair: unit.Name, ChunkID: r.ChunkID, Records: 1})
				}
				continue
			}
			name = unit.Members[i%len(unit.Members)]
		}

		r.AssigneeName = name
		r.AssigneeContact = e.roster.Contact(name)
	}

	return warnings, nil
}
