package commands

import (
	"github.com/dyluth/canvass/internal/printer"
	"github.com/dyluth/canvass/internal/report"
	"github.com/dyluth/canvass/pkg/assign"
	"github.com/spf13/cobra"
)

var (
	chunksInput   string
	chunksSession string
	chunksFormat  string
)

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "List route chunks and who they are assigned to",
	Long: `List every chunk (one side of one street) in walking order, with its
record count, first route position and current assignee.

In manual mode this is the list of chunk IDs to pass to 'canvass assign'.

Output Formats:
  default - Human-readable table
  jsonl   - Line-delimited JSON, one chunk per line`,
	Args: cobra.NoArgs,
	RunE: runChunks,
}

func init() {
	chunksCmd.Flags().StringVarP(&chunksInput, "input", "i", "", "Electoral register CSV")
	chunksCmd.Flags().StringVarP(&chunksSession, "session", "s", "", "Session whose manual assignments to apply")
	chunksCmd.Flags().StringVarP(&chunksFormat, "format", "f", "default", "Output format: default or jsonl")
	rootCmd.AddCommand(chunksCmd)
}

func runChunks(cmd *cobra.Command, args []string) error {
	format, err := report.ParseOutputFormat(chunksFormat)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl"})
	}

	p, err := buildPlan(cmd.Context(), planRequest{input: chunksInput, sessionID: chunksSession})
	if err != nil {
		return err
	}

	if format == report.OutputFormatJSONL {
		return report.FormatJSONL(printer.Out(), p.ChunkStats())
	}

	report.FormatChunks(printer.Out(), p.ChunkStats())
	if p.Mode == assign.ModeManual {
		if unassigned := p.Unassigned(); len(unassigned) > 0 {
			printer.Printf("\n")
			printer.Warning("%d chunk(s) still unassigned\n", len(unassigned))
		}
	}
	return nil
}
