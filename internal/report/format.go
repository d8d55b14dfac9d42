// Package report renders plans, summaries and chunk lists for the terminal,
// as fixed-width tables or line-delimited JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dyluth/canvass/internal/planner"
	"github.com/dyluth/canvass/internal/session"
	"github.com/dyluth/canvass/pkg/compose"
	"github.com/dyluth/canvass/pkg/route"
)

// DefaultPreviewRows is how many plan rows are previewed when not specified.
const DefaultPreviewRows = 20

// RecordView is the JSON shape of one previewed plan row.
type RecordView struct {
	RouteOrder int    `json:"route_order"`
	ChunkID    string `json:"chunk_id"`
	Street     string `json:"street"`
	Address    string `json:"address"`
	Canvasser  string `json:"canvasser,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Views converts the first limit records (all if limit <= 0) to RecordViews.
func Views(records []*route.Record, limit int) []RecordView {
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}

	views := make([]RecordView, limit)
	for i, r := range records[:limit] {
		views[i] = RecordView{
			RouteOrder: r.RouteOrder,
			ChunkID:    r.ChunkID,
			Street:     r.Street,
			Address:    r.Address,
			Canvasser:  r.AssigneeName,
			Email:      r.AssigneeContact,
		}
	}
	return views
}

// FormatPreview writes the first limit records as a table.
// Returns the number of rows written.
func FormatPreview(w io.Writer, records []*route.Record, limit int) int {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records to preview")
		return 0
	}

	views := Views(records, limit)
	fmt.Fprintf(w, "Route plan preview (first %d of %d %s):\n\n", len(views), len(records), plural(len(records), "record"))

	fmt.Fprintf(w, "%-6s %-24s %-30s %s\n", "ORDER", "CHUNK", "ADDRESS", "CANVASSER")
	fmt.Fprintf(w, "%-6s %-24s %-30s %s\n", "------", "------------------------", "------------------------------", "------------------")

	for _, v := range views {
		fmt.Fprintf(w, "%-6d %-24s %-30s %s\n",
			v.RouteOrder,
			truncate(v.ChunkID, 24),
			truncate(v.Address, 30),
			orDash(v.Canvasser),
		)
	}

	return len(views)
}

// FormatSummary writes the per-canvasser workload table.
func FormatSummary(w io.Writer, s *compose.Summary) {
	if len(s.Assignees) == 0 {
		fmt.Fprintln(w, "No records have been assigned")
	} else {
		fmt.Fprintf(w, "%-20s %-28s %7s %6s\n", "CANVASSER", "EMAIL", "RECORDS", "CHUNKS")
		fmt.Fprintf(w, "%-20s %-28s %7s %6s\n", "--------------------", "----------------------------", "-------", "------")

		for _, a := range s.Assignees {
			fmt.Fprintf(w, "%-20s %-28s %7d %6d\n",
				truncate(a.Name, 20),
				truncate(orDash(a.Contact), 28),
				a.Records,
				a.Chunks,
			)
		}
	}

	fmt.Fprintf(w, "\n%d %s in %d %s across %d %s\n",
		s.Records, plural(s.Records, "record"),
		s.Chunks, plural(s.Chunks, "chunk"),
		len(s.Assignees), plural(len(s.Assignees), "canvasser"))
	if s.Unattributed > 0 {
		fmt.Fprintf(w, "%d %s not attributed to a canvasser\n", s.Unattributed, plural(s.Unattributed, "record"))
	}
}

// FormatChunks writes chunks in discovery order with size and assignee.
func FormatChunks(w io.Writer, stats []planner.ChunkStat) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No chunks found")
		return
	}

	fmt.Fprintf(w, "%-32s %7s %6s %s\n", "CHUNK", "RECORDS", "FIRST", "ASSIGNEE")
	fmt.Fprintf(w, "%-32s %7s %6s %s\n", "--------------------------------", "-------", "------", "------------------")

	for _, s := range stats {
		fmt.Fprintf(w, "%-32s %7d %6d %s\n", truncate(s.ChunkID, 32), s.Records, s.First, orDash(s.Assignee))
	}

	fmt.Fprintf(w, "\n%d %s\n", len(stats), plural(len(stats), "chunk"))
}

// FormatAssignments writes stored manual selections sorted by chunk ID.
func FormatAssignments(w io.Writer, assignments map[string]string) {
	if len(assignments) == 0 {
		fmt.Fprintln(w, "No manual assignments stored")
		return
	}

	chunks := make([]string, 0, len(assignments))
	for c := range assignments {
		chunks = append(chunks, c)
	}
	sort.Strings(chunks)

	fmt.Fprintf(w, "%-32s %s\n", "CHUNK", "ASSIGNEE")
	fmt.Fprintf(w, "%-32s %s\n", "--------------------------------", "------------------")
	for _, c := range chunks {
		fmt.Fprintf(w, "%-32s %s\n", truncate(c, 32), assignments[c])
	}
}

// FormatSessions writes sessions, newest first.
func FormatSessions(w io.Writer, sessions []session.Overview) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found")
		return
	}

	sorted := make([]session.Overview, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAtMs > sorted[j].CreatedAtMs
	})

	fmt.Fprintf(w, "%-8s %-16s %8s %s\n", "ID", "CREATED", "ASSIGNED", "REGISTER")
	fmt.Fprintf(w, "%-8s %-16s %8s %s\n", "--------", "----------------", "--------", "------------------")
	for _, s := range sorted {
		fmt.Fprintf(w, "%-8s %-16s %8d %s\n",
			shortID(s.ID), s.CreatedAt().UTC().Format("2006-01-02 15:04"), s.Assignments, orDash(s.Register))
	}

	fmt.Fprintf(w, "\n%d %s\n", len(sorted), plural(len(sorted), "session"))
}

// FormatJSONL writes items as line-delimited JSON (JSONL).
// Each item is written as a single JSON object on its own line.
func FormatJSONL[T any](w io.Writer, items []T) error {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatSingleJSON writes v as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// shortID returns the first 8 characters of a session ID.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
