package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dyluth/canvass/internal/printer"
	"github.com/dyluth/canvass/pkg/assign"
	"github.com/dyluth/canvass/pkg/route"
	"github.com/spf13/cobra"
)

var (
	assignSession string
	assignInput   string
)

var assignCmd = &cobra.Command{
	Use:   "assign CHUNK_ID ASSIGNEE",
	Short: "Assign a chunk to a canvasser or pair in a session",
	Long: `Store a manual assignment in a session. ASSIGNEE is a canvasser name, a
pair name, or "Unassigned" to clear the chunk.

Assignments are keyed by chunk ID ("Street|Odd", "Street|Even" or
"Street|Unknown"), so they stay valid when street_order changes.

Examples:
  canvass assign "High Street|Odd" "Pair 1" --session 3f2a1c
  canvass assign "High Street|Odd" Unassigned --session 3f2a1c`,
	Args: cobra.ExactArgs(2),
	RunE: runAssign,
}

func init() {
	assignCmd.Flags().StringVarP(&assignSession, "session", "s", "", "Session to store the assignment in (required)")
	assignCmd.Flags().StringVarP(&assignInput, "input", "i", "", "Register to check the chunk ID against")
	_ = assignCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(assignCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	chunkID, assignee := args[0], strings.TrimSpace(args[1])

	if _, _, err := route.SplitChunkID(chunkID); err != nil {
		return printer.Error(
			"invalid chunk ID",
			err.Error(),
			[]string{"Run 'canvass chunks --input register.csv' to list chunk IDs"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, pairing, err := loadRoster(cfg)
	if err != nil {
		return err
	}

	engine := assign.NewEngine(r, pairing)
	if assignee != assign.Unassigned {
		if _, ok := engine.Lookup(assignee); !ok {
			return printer.Error(
				"unknown assignee",
				fmt.Sprintf("%q is not an assignable canvasser or pair.", assignee),
				[]string{fmt.Sprintf("Choose one of: %s", strings.Join(engine.Options(), ", "))},
			)
		}
	}

	if assignInput != "" {
		table, err := loadRegister(assignInput, cfg.Strict)
		if err != nil {
			return err
		}
		route.Classify(table.Records)
		if !slices.Contains(route.Chunks(table.Records), chunkID) {
			printer.Warning("%s has no chunk %q; the assignment is stored but ignored until it appears\n", assignInput, chunkID)
		}
	}

	client, err := openSessionStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := resolveSession(ctx, client, assignSession)
	if err != nil {
		return err
	}

	if assignee == assign.Unassigned {
		if err := client.ClearAssignment(ctx, id, chunkID); err != nil {
			return explainError(err)
		}
		printer.Success("Cleared %s in session %s\n", chunkID, shortID(id))
		return nil
	}

	if err := client.SetAssignment(ctx, id, chunkID, assignee); err != nil {
		return explainError(err)
	}
	logger.Debug("stored assignment", "session", id, "chunk", chunkID, "assignee", assignee)

	printer.Success("Assigned %s to %s in session %s\n", chunkID, assignee, shortID(id))
	return nil
}

// shortID truncates a session UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
