package report

import "fmt"

// OutputFormat specifies how listings are rendered.
type OutputFormat string

const (
	// OutputFormatDefault renders fixed-width tables
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL renders one JSON object per line
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatDefault, OutputFormatJSONL:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}
