// Package compose projects a sequenced, assigned route into the canonical
// output table and computes per-canvasser workload statistics.
package compose

import (
	"slices"
	"sort"
	"strconv"

	"github.com/dyluth/canvass/pkg/route"
)

// Output column names appended after the input columns.
const (
	ColumnRouteChunk     = "Route Chunk"
	ColumnRouteOrder     = "Route Order"
	ColumnCanvasserName  = "Canvasser Name"
	ColumnCanvasserEmail = "Canvasser Email"
)

// RouteColumns are the columns filled in by the planner, in output order.
var RouteColumns = []string{ColumnRouteChunk, ColumnRouteOrder, ColumnCanvasserName, ColumnCanvasserEmail}

// TrackingColumns are placeholders for canvassers to fill in on the doorstep.
// They are always written empty.
var TrackingColumns = []string{"Voter Intention", "Contacted?", "Date Contacted", "GOTV?", "Notes"}

// Output is the composed plan, ready to be written as CSV.
type Output struct {
	Header []string
	Rows   [][]string
}

// Header returns the output header for the given input columns: input
// columns first, then RouteColumns, then TrackingColumns. Input columns that
// share a name with a generated column are dropped so no column repeats.
func Header(inputColumns []string) []string {
	generated := make(map[string]bool)
	for _, c := range RouteColumns {
		generated[c] = true
	}
	for _, c := range TrackingColumns {
		generated[c] = true
	}

	header := make([]string, 0, len(inputColumns)+len(RouteColumns)+len(TrackingColumns))
	for _, c := range inputColumns {
		if !generated[c] {
			header = append(header, c)
		}
	}
	header = append(header, RouteColumns...)
	header = append(header, TrackingColumns...)
	return header
}

// InputColumns returns the part of an output header that came from the input.
func InputColumns(header []string) []string {
	idx := slices.Index(header, ColumnRouteChunk)
	if idx < 0 {
		return slices.Clone(header)
	}
	return slices.Clone(header[:idx])
}

// Compose builds one row per record, in the table's current order.
func Compose(t *route.Table) *Output {
	header := Header(t.Columns)
	inputs := len(header) - len(RouteColumns) - len(TrackingColumns)

	rows := make([][]string, 0, len(t.Records))
	for _, r := range t.Records {
		row := make([]string, 0, len(header))
		for _, c := range header[:inputs] {
			row = append(row, r.Field(c))
		}
		row = append(row,
			r.ChunkID,
			strconv.Itoa(r.RouteOrder),
			r.AssigneeName,
			r.AssigneeContact,
		)
		for range TrackingColumns {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	return &Output{Header: header, Rows: rows}
}

// AssigneeStats is the workload of one canvasser.
type AssigneeStats struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Records int    `json:"records"`
	Chunks  int    `json:"chunks"`
}

// Summary aggregates a plan by assignee.
type Summary struct {
	Assignees    []AssigneeStats `json:"assignees"`    // Sorted by name
	Records      int             `json:"records"`      // Total records
	Chunks       int             `json:"chunks"`       // Distinct chunks
	Unattributed int             `json:"unattributed"` // Records with no assignee
}

// Summarize counts records and distinct chunks per assignee.
// Records with an empty assignee are counted in Unattributed only.
func Summarize(records []*route.Record) *Summary {
	s := &Summary{Records: len(records)}

	stats := make(map[string]*AssigneeStats)
	chunksByName := make(map[string]map[string]bool)
	allChunks := make(map[string]bool)

	for _, r := range records {
		allChunks[r.ChunkID] = true
		if r.AssigneeName == "" {
			s.Unattributed++
			continue
		}

		st, ok := stats[r.AssigneeName]
		if !ok {
			st = &AssigneeStats{Name: r.AssigneeName, Contact: r.AssigneeContact}
			stats[r.AssigneeName] = st
			chunksByName[r.AssigneeName] = make(map[string]bool)
		}
		st.Records++
		if !chunksByName[r.AssigneeName][r.ChunkID] {
			chunksByName[r.AssigneeName][r.ChunkID] = true
			st.Chunks++
		}
	}

	s.Chunks = len(allChunks)
	s.Assignees = make([]AssigneeStats, 0, len(stats))
	for _, st := range stats {
		s.Assignees = append(s.Assignees, *st)
	}
	sort.Slice(s.Assignees, func(i, j int) bool {
		return s.Assignees[i].Name < s.Assignees[j].Name
	})

	return s
}
