package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dyluth/canvass/pkg/compose"
)

// DefaultPlanFile is the file name used when no output path is given.
const DefaultPlanFile = "Optimised_Route_Plan.csv"

// WritePlan writes a composed plan as UTF-8 CSV with a header row.
func WritePlan(w io.Writer, out *compose.Output) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(out.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(out.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return nil
}

// WritePlanFile writes the plan to path. The file is written to a temporary
// sibling first and renamed, so a failed export never leaves a partial plan.
func WritePlanFile(path string, out *compose.Output) error {
	var buf bytes.Buffer
	if err := WritePlan(&buf, out); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".canvass-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write plan: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move plan into place: %w", err)
	}

	return nil
}
