// Package planner runs the route pipeline (sequence, assign, attribute,
// compose) over one register and keeps the results together in a Plan.
package planner

import (
	"fmt"

	"github.com/dyluth/canvass/internal/logging"
	"github.com/dyluth/canvass/pkg/assign"
	"github.com/dyluth/canvass/pkg/compose"
	"github.com/dyluth/canvass/pkg/roster"
	"github.com/dyluth/canvass/pkg/route"
)

// Options configures one planning run.
type Options struct {
	StreetOrder route.StreetOrder
	Policy      route.Policy
	Mode        assign.Mode
	Selections  map[string]string // Manual mode only: chunk ID → unit name or Unassigned
}

// Plan holds the state of one planning run. It is owned by the caller; each
// stage runs to completion over the whole table before the next starts.
type Plan struct {
	Table       *route.Table
	Roster      *roster.Roster
	Pairing     *roster.Pairing
	Engine      *assign.Engine
	Chunks      []string        // Chunk IDs in discovery order
	Assignments assign.ChunkMap // Chunk ID → unit name
	Mode        assign.Mode

	// RouteOnly is set when automatic mode ran with no canvassers and no
	// pairing. Chunks stay unassigned and the plan exports with empty
	// canvasser columns.
	RouteOnly bool

	Missing    *route.OrderingIncompleteError // Streets placed last (lenient policy)
	Stale      []string                       // Manual selections for chunks no longer present
	EmptyPairs []assign.EmptyPairWarning      // Set by Attribute

	logger logging.Logger
}

// New creates a plan over table. pairing may be nil.
func New(table *route.Table, r *roster.Roster, pairing *roster.Pairing, logger logging.Logger) *Plan {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Plan{
		Table:   table,
		Roster:  r,
		Pairing: pairing,
		Engine:  assign.NewEngine(r, pairing),
		logger:  logger,
	}
}

// Run sequences and assigns table in one call.
func Run(table *route.Table, r *roster.Roster, pairing *roster.Pairing, opts Options, logger logging.Logger) (*Plan, error) {
	p := New(table, r, pairing, logger)
	if err := p.Sequence(opts.StreetOrder, opts.Policy); err != nil {
		return nil, err
	}
	if err := p.Assign(opts.Mode, opts.Selections); err != nil {
		return nil, err
	}
	return p, nil
}

// Sequence orders the table and records its chunks. Re-running it with a new
// street order keeps every chunk ID, so earlier assignments stay valid.
func (p *Plan) Sequence(order route.StreetOrder, policy route.Policy) error {
	result, err := route.Sequence(p.Table, order, policy)
	if err != nil {
		return fmt.Errorf("failed to sequence route: %w", err)
	}

	p.Missing = result.Missing
	if p.Missing != nil {
		p.logger.Warn("streets missing from street order were placed last",
			"streets", p.Missing.Streets,
			"records", p.Missing.Records)
	}

	p.Chunks = route.Chunks(p.Table.Records)
	p.logger.Debug("route sequenced",
		"records", p.Table.Len(),
		"chunks", len(p.Chunks),
		"policy", policy.String())

	return nil
}

// Assign maps every chunk to a unit. Manual selections are validated
// against the roster; selections for unknown chunks are kept aside in Stale.
func (p *Plan) Assign(mode assign.Mode, selections map[string]string) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	p.Mode = mode

	var (
		m   assign.ChunkMap
		err error
	)
	p.RouteOnly = false
	switch mode {
	case assign.ModeAutomatic:
		if p.noCanvassers() {
			p.RouteOnly = true
			p.Assignments = make(assign.ChunkMap)
			p.logger.Info("no canvassers configured, planning route order only", "chunks", len(p.Chunks))
			return nil
		}
		m, err = p.Engine.Automatic(p.Chunks)
	case assign.ModeManual:
		p.Stale = assign.Stale(p.Chunks, selections)
		for _, chunk := range p.Stale {
			p.logger.Warn("ignoring assignment for chunk not in register", "chunk", chunk, "assignee", selections[chunk])
		}
		m, err = p.Engine.Manual(p.Chunks, selections)
	}
	if err != nil {
		return fmt.Errorf("failed to assign chunks: %w", err)
	}

	p.Assignments = m
	p.logger.Debug("chunks assigned", "mode", string(mode), "units", len(p.Engine.Units()))
	return nil
}

// noCanvassers reports whether there is nobody to assign and pairing is off.
func (p *Plan) noCanvassers() bool {
	return p.Pairing == nil && (p.Roster == nil || p.Roster.Len() == 0)
}

// Unassigned returns the chunks with no unit yet, in route order.
// A route-only plan has nothing left to assign.
func (p *Plan) Unassigned() []string {
	if p.RouteOnly {
		return nil
	}
	return p.Assignments.Unassigned(p.Chunks)
}

// Attribute resolves each record's assignee. Chunks of empty pairs are
// logged and left unattributed.
func (p *Plan) Attribute() error {
	warnings, err := p.Engine.Attribute(p.Table.Records, p.Assignments)
	if err != nil {
		return fmt.Errorf("failed to attribute records: %w", err)
	}

	p.EmptyPairs = warnings
	for _, w := range warnings {
		p.logger.Warn("chunk assigned to a pair with no members",
			"pair", w.Pair,
			"chunk", w.ChunkID,
			"records", w.Records)
	}
	return nil
}

// Export finalizes the plan and composes the output table.
// Returns an IncompleteAssignmentError, and composes nothing, while any
// chunk is unassigned. Route-only plans export with empty canvasser columns.
func (p *Plan) Export() (*compose.Output, error) {
	if !p.RouteOnly {
		if err := assign.Finalize(p.Chunks, p.Assignments); err != nil {
			return nil, err
		}
	}
	if err := p.Attribute(); err != nil {
		return nil, err
	}
	return compose.Compose(p.Table), nil
}

// Summary aggregates the attributed records by assignee.
func (p *Plan) Summary() *compose.Summary {
	return compose.Summarize(p.Table.Records)
}

// ChunkStat describes one chunk for display.
type ChunkStat struct {
	ChunkID  string `json:"chunk_id"`
	Records  int    `json:"records"`
	First    int    `json:"first_route_order"`
	Assignee string `json:"assignee"`
}

// ChunkStats lists chunks in discovery order with their size, first route
// position and current unit. Assignee is empty in a route-only plan.
func (p *Plan) ChunkStats() []ChunkStat {
	index := make(map[string]int, len(p.Chunks))
	stats := make([]ChunkStat, len(p.Chunks))
	for i, c := range p.Chunks {
		index[c] = i
		assignee := assign.Unassigned
		if p.RouteOnly {
			assignee = ""
		} else if u, ok := p.Assignments[c]; ok && u != "" {
			assignee = u
		}
		stats[i] = ChunkStat{ChunkID: c, Assignee: assignee}
	}

	for _, r := range p.Table.Records {
		s := &stats[index[r.ChunkID]]
		if s.Records == 0 {
			s.First = r.RouteOrder
		}
		s.Records++
	}
	return stats
}

// MergeSelections overlays override on base. Neither map is modified.
func MergeSelections(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
