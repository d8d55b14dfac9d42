package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dyluth/canvass/internal/csvio"
	"github.com/dyluth/canvass/internal/filter"
	"github.com/dyluth/canvass/internal/planner"
	"github.com/dyluth/canvass/internal/printer"
	"github.com/dyluth/canvass/internal/report"
	"github.com/dyluth/canvass/pkg/assign"
	"github.com/spf13/cobra"
)

var (
	planInput    string
	planOutput   string
	planSession  string
	planPreview  int
	planFormat   string
	planStreet   string
	planAssignee string
	planChunk    string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build the route plan and write it as CSV",
	Long: `Sequence the register into walking order, assign every chunk, and write
the plan with route and canvasser columns plus empty doorstep-tracking columns.

Streets follow street_order in canvass.yml (alphabetical if none is set).
Within a street, odd numbers come first, then even, then unnumbered
addresses, each in ascending house number order.

In manual mode, or when --session is given, every chunk must be assigned
before the plan is written. Unassigned chunks are listed and nothing is
written.

With no canvassers configured, the plan has route order only and the
canvasser columns are left empty.

Output Formats (preview only):
  default - Human-readable preview table and workload summary
  jsonl   - Line-delimited JSON, one previewed record per line

Examples:
  # Automatic assignment using canvass.yml
  canvass plan --input register.csv

  # Manual assignments stored in a session
  canvass plan --input register.csv --session 3f2a1c

  # Preview Alice's first 50 doors
  canvass plan --input register.csv --assignee Alice --preview 50

  # Preview everything Pair 1 walks on Elm St
  canvass plan --input register.csv --assignee "Pair 1" --chunk "Elm St|Odd"`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planInput, "input", "i", "", "Electoral register CSV")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", csvio.DefaultPlanFile, "Where to write the plan CSV")
	planCmd.Flags().StringVarP(&planSession, "session", "s", "", "Session holding manual assignments (implies manual mode)")
	planCmd.Flags().IntVarP(&planPreview, "preview", "n", report.DefaultPreviewRows, "Rows to preview (0 = all)")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "default", "Preview format: default or jsonl")

	// Preview filters
	planCmd.Flags().StringVar(&planStreet, "street", "", "Preview only streets matching this glob")
	planCmd.Flags().StringVar(&planAssignee, "assignee", "", "Preview only records of this canvasser or pair")
	planCmd.Flags().StringVar(&planChunk, "chunk", "", "Preview only this chunk (e.g. \"Elm St|Odd\")")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, err := report.ParseOutputFormat(planFormat)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl"})
	}

	criteria := &filter.Criteria{StreetGlob: planStreet, Assignee: planAssignee, ChunkID: planChunk}
	if err := criteria.Validate(); err != nil {
		return printer.Error("invalid --street pattern", err.Error(), nil)
	}

	p, err := buildPlan(cmd.Context(), planRequest{input: planInput, sessionID: planSession})
	if err != nil {
		return err
	}
	human := format == report.OutputFormatDefault

	if human {
		printPlanWarnings(p)
	}
	criteria.Units = p.Assignments

	out, exportErr := p.Export()
	var incomplete *assign.IncompleteAssignmentError
	if exportErr != nil {
		if !errors.As(exportErr, &incomplete) {
			return explainError(exportErr)
		}
		// Still attribute what is assigned so the preview is useful
		if err := p.Attribute(); err != nil {
			return explainError(err)
		}
	}

	preview := criteria.Apply(p.Table.Records)
	if human {
		report.FormatPreview(printer.Out(), preview, planPreview)
		printer.Printf("\n")
	} else if err := report.FormatJSONL(printer.Out(), report.Views(preview, planPreview)); err != nil {
		return err
	}

	if incomplete != nil {
		return printer.ErrorWithContext(
			"assignment incomplete",
			fmt.Sprintf("%d chunk(s) have no canvasser, so no plan was written.", len(incomplete.Chunks)),
			map[string]string{"Unassigned": strings.Join(incomplete.Chunks, ", ")},
			[]string{
				"Assign them in a session:\n  canvass assign CHUNK_ID ASSIGNEE --session ID",
				"Add them under assignment.manual in canvass.yml",
			},
		)
	}

	if human {
		warnings := make([]string, len(p.EmptyPairs))
		for i, w := range p.EmptyPairs {
			warnings[i] = w.String()
		}
		printer.WarningList("Some chunks are assigned to empty pairs:", warnings)
	}

	if err := csvio.WritePlanFile(planOutput, out); err != nil {
		return printer.Error("failed to write plan", err.Error(), []string{"Check that the output directory exists and is writable"})
	}
	logger.Info("plan written", "path", planOutput, "rows", len(out.Rows))

	if human {
		report.FormatSummary(printer.Out(), p.Summary())
		printer.Printf("\n")
		if p.RouteOnly {
			printer.Info("No canvassers configured; the plan has route order only.\n")
		}
		printer.Success("Wrote %d rows to %s\n", len(out.Rows), planOutput)
	}
	return nil
}

// printPlanWarnings reports soft problems found while planning.
func printPlanWarnings(p *planner.Plan) {
	if p.Missing != nil {
		printer.WarningList(
			fmt.Sprintf("%d record(s) are on streets missing from street_order; they are walked last:", p.Missing.Records),
			p.Missing.Streets,
		)
	}
	printer.WarningList("Ignoring assignments for chunks not in this register:", p.Stale)
}
