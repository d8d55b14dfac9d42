// Package csvio reads electoral registers and canvasser rosters from CSV and
// writes composed route plans back out.
package csvio

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dyluth/canvass/pkg/compose"
	"github.com/dyluth/canvass/pkg/roster"
	"github.com/dyluth/canvass/pkg/route"
)

const utf8BOM = "\ufeff"

// readAll reads a CSV with a header row. Header cells are trimmed and a
// leading byte-order mark is dropped. Short rows are padded with "".
func readAll(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("file is empty: no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], utf8BOM))
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}
		if isBlank(row) {
			continue
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, nil, fmt.Errorf("line %d has %d fields but header has %d", line, len(row), len(header))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ReadRegister reads an electoral register. Street and Address are always
// required; strict additionally requires every StrictColumns entry.
func ReadRegister(r io.Reader, strict bool) (*route.Table, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read register: %w", err)
	}

	required := RequiredColumns
	if strict {
		required = StrictColumns
	}
	if err := checkHeader("register", header, required, exactMatch); err != nil {
		return nil, err
	}

	return buildTable(header, rows), nil
}

// buildTable turns rows into records keyed by header. Street is trimmed
// for routing while Field(Street) still returns the cell as read.
func buildTable(header []string, rows [][]string) *route.Table {
	t := &route.Table{Columns: header}
	for _, row := range rows {
		rec := &route.Record{Fields: make(map[string]string, len(header))}
		for i, col := range header {
			switch col {
			case route.ColumnStreet:
				// Routing keys on the trimmed name; the raw cell is written back out
				rec.Street = strings.TrimSpace(row[i])
				if rec.Street != row[i] {
					rec.Fields[col] = row[i]
				}
			case route.ColumnAddress:
				rec.Address = row[i]
			default:
				rec.Fields[col] = row[i]
			}
		}
		t.Append(rec)
	}
	return t
}

// ReadRegisterFile opens path and reads it with ReadRegister.
func ReadRegisterFile(path string, strict bool) (*route.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open register: %w", err)
	}
	defer f.Close()

	return ReadRegister(f, strict)
}

// ReadRoster reads a canvasser roster with Name and Email columns.
// Header matching is case-insensitive; other columns are ignored.
func ReadRoster(r io.Reader) (*roster.Roster, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	if err := checkHeader("roster", header, []string{"Name", "Email"}, foldMatch); err != nil {
		return nil, err
	}

	nameIdx, emailIdx := -1, -1
	for i, h := range header {
		switch {
		case nameIdx < 0 && strings.EqualFold(h, "Name"):
			nameIdx = i
		case emailIdx < 0 && strings.EqualFold(h, "Email"):
			emailIdx = i
		}
	}

	canvassers := make([]roster.Canvasser, 0, len(rows))
	for _, row := range rows {
		canvassers = append(canvassers, roster.Canvasser{Name: row[nameIdx], Contact: row[emailIdx]})
	}

	return roster.New(canvassers)
}

// ReadRosterFile opens path and reads it with ReadRoster.
func ReadRosterFile(path string) (*roster.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	return ReadRoster(f)
}

// ReadPlan reads a previously exported plan and restores route order, chunk
// labels and assignees. Records are returned in route order and the table's
// Columns are the original input columns.
func ReadPlan(r io.Reader) (*route.Table, error) {
	header, rows, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	required := append(append([]string{}, RequiredColumns...), compose.RouteColumns...)
	if err := checkHeader("plan", header, required, exactMatch); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	inputs := compose.InputColumns(header)
	t := buildTable(inputs, projectRows(rows, len(inputs)))

	for i, rec := range t.Records {
		row := rows[i]
		order, err := strconv.Atoi(strings.TrimSpace(row[index[compose.ColumnRouteOrder]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid %s: %w", i+1, compose.ColumnRouteOrder, err)
		}
		rec.RouteOrder = order
		rec.ChunkID = row[index[compose.ColumnRouteChunk]]
		rec.HouseNumber = route.ParseHouseNumber(rec.Address)
		rec.AssigneeName = row[index[compose.ColumnCanvasserName]]
		rec.AssigneeContact = row[index[compose.ColumnCanvasserEmail]]
	}

	sortByRouteOrder(t.Records)
	return t, nil
}

// projectRows keeps the first n cells of every row.
func projectRows(rows [][]string, n int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row[:n]
	}
	return out
}

// ReadPlanFile opens path and reads it with ReadPlan.
func ReadPlanFile(path string) (*route.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan: %w", err)
	}
	defer f.Close()

	return ReadPlan(f)
}

func sortByRouteOrder(records []*route.Record) {
	slices.SortStableFunc(records, func(a, b *route.Record) int {
		return cmp.Compare(a.RouteOrder, b.RouteOrder)
	})
}
