package commands

import (
	"github.com/dyluth/canvass/internal/csvio"
	"github.com/dyluth/canvass/internal/printer"
	"github.com/dyluth/canvass/internal/report"
	"github.com/dyluth/canvass/pkg/compose"
	"github.com/spf13/cobra"
)

var summaryFormat string

var summaryCmd = &cobra.Command{
	Use:   "summary [PLAN_CSV]",
	Short: "Summarize the workload of an exported plan",
	Long: `Read a plan written by 'canvass plan' and show records and chunks per
canvasser. Defaults to ` + csvio.DefaultPlanFile + `.

Output Formats:
  default - Human-readable table
  jsonl   - Line-delimited JSON, one canvasser per line`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "default", "Output format: default or jsonl")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	format, err := report.ParseOutputFormat(summaryFormat)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl"})
	}

	path := csvio.DefaultPlanFile
	if len(args) > 0 {
		path = args[0]
	}

	table, err := csvio.ReadPlanFile(path)
	if err != nil {
		return explainError(err)
	}

	s := compose.Summarize(table.Records)
	if format == report.OutputFormatJSONL {
		return report.FormatJSONL(printer.Out(), s.Assignees)
	}

	report.FormatSummary(printer.Out(), s)
	return nil
}
