package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/canvass/internal/printer"
	"github.com/dyluth/canvass/internal/report"
	"github.com/dyluth/canvass/internal/session"
	"github.com/dyluth/canvass/internal/timespec"
	"github.com/dyluth/canvass/internal/watch"
	"github.com/spf13/cobra"
)

var (
	sessionRegister string
	sessionFormat   string
	sessionSince    string
	sessionUntil    string
	sessionCount    int
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage sessions of manual assignments",
	Long: `A session stores manual chunk assignments in Redis so they can be built up
over several runs and survive changes to street_order.

Session IDs may be shortened to any unique prefix of at least 6 characters.`,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a session",
	Args:  cobra.NoArgs,
	RunE:  runSessionNew,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show SESSION_ID",
	Short: "Show a session's stored assignments",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete SESSION_ID",
	Short: "Delete a session and its assignments",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Long: `List stored sessions, newest first.

--since and --until accept a Go duration counted back from now ("2h", "168h")
or an RFC3339 timestamp.

Examples:
  canvass session list
  canvass session list --since 24h
  canvass session list --format jsonl`,
	Args: cobra.NoArgs,
	RunE: runSessionList,
}

var sessionWatchCmd = &cobra.Command{
	Use:   "watch SESSION_ID",
	Short: "Stream assignment changes to a session as they happen",
	Long: `Stream assignment changes made with 'canvass assign' to a session.

Runs until interrupted, or until --count changes have been seen.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionWatch,
}

func init() {
	sessionNewCmd.Flags().StringVarP(&sessionRegister, "input", "i", "", "Register the session is for (recorded for reference)")
	sessionShowCmd.Flags().StringVarP(&sessionFormat, "format", "f", "default", "Output format: default or jsonl")
	sessionListCmd.Flags().StringVarP(&sessionFormat, "format", "f", "default", "Output format: default or jsonl")
	sessionListCmd.Flags().StringVar(&sessionSince, "since", "", "Only sessions created after this time")
	sessionListCmd.Flags().StringVar(&sessionUntil, "until", "", "Only sessions created before this time")
	sessionWatchCmd.Flags().StringVarP(&sessionFormat, "format", "f", "default", "Output format: default or jsonl")
	sessionWatchCmd.Flags().IntVar(&sessionCount, "count", 0, "Stop after this many changes (0 = run until interrupted)")

	sessionCmd.AddCommand(sessionNewCmd, sessionListCmd, sessionShowCmd, sessionWatchCmd, sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := openSessionStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	s := session.NewSession(sessionRegister)
	if err := client.CreateSession(ctx, s); err != nil {
		return printer.Error("failed to create session", err.Error(), nil)
	}

	printer.Success("Created session %s\n", s.ID)
	printer.Info("\nAssign chunks with:\n  canvass assign CHUNK_ID ASSIGNEE --session %s\n", shortID(s.ID))
	return nil
}

// sessionView is the JSON shape of 'session show --format jsonl'.
type sessionView struct {
	*session.Session
	Assignments map[string]string `json:"assignments"`
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := report.ParseOutputFormat(sessionFormat)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl"})
	}

	client, err := openSessionStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := resolveSession(ctx, client, args[0])
	if err != nil {
		return err
	}

	s, err := client.GetSession(ctx, id)
	if err != nil {
		return printer.Error("failed to read session", err.Error(), nil)
	}
	assignments, err := client.Assignments(ctx, id)
	if err != nil {
		return printer.Error("failed to read session", err.Error(), nil)
	}

	if format == report.OutputFormatJSONL {
		return report.FormatJSONL(printer.Out(), []sessionView{{Session: s, Assignments: assignments}})
	}

	printer.Printf("Session %s\n", s.ID)
	if s.Register != "" {
		printer.Printf("Register: %s\n", s.Register)
	}
	printer.Printf("Created:  %s\n\n", s.CreatedAt().Format("2006-01-02 15:04"))
	report.FormatAssignments(printer.Out(), assignments)
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := openSessionStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := resolveSession(ctx, client, args[0])
	if err != nil {
		return err
	}

	if err := client.DeleteSession(ctx, id); err != nil {
		return printer.Error("failed to delete session", err.Error(), nil)
	}

	printer.Success("Deleted session %s\n", id)
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := report.ParseOutputFormat(sessionFormat)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl"})
	}

	window, err := timespec.ParseRange(sessionSince, sessionUntil, time.Now())
	if err != nil {
		return printer.Error("invalid time range", err.Error(),
			[]string{"Use a duration like --since 2h or a timestamp like --since 2026-05-01T09:00:00Z"})
	}

	client, err := openSessionStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	ids, err := client.ScanSessions(ctx, "")
	if err != nil {
		return printer.Error("failed to list sessions", err.Error(), nil)
	}

	overviews, err := client.Overviews(ctx, ids)
	if err != nil {
		return printer.Error("failed to read sessions", err.Error(), nil)
	}

	listings := make([]session.Overview, 0, len(overviews))
	for _, o := range overviews {
		if window.Contains(o.CreatedAtMs) {
			listings = append(listings, o)
		}
	}

	if format == report.OutputFormatJSONL {
		return report.FormatJSONL(printer.Out(), listings)
	}
	report.FormatSessions(printer.Out(), listings)
	return nil
}

func runSessionWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := report.ParseOutputFormat(sessionFormat)
	if err != nil {
		return printer.Error("invalid output format", err.Error(), []string{"Valid formats: default, jsonl"})
	}
	if sessionCount < 0 {
		return printer.Error("invalid --count", "--count cannot be negative", nil)
	}

	client, err := openSessionStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	id, err := resolveSession(ctx, client, args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if format == report.OutputFormatDefault {
		printer.Info("Watching session %s (Ctrl+C to stop)\n", shortID(id))
	}

	opts := watch.Options{Format: format, Count: sessionCount}
	if err := watch.StreamAssignments(ctx, client, id, opts, printer.Out(), logger); err != nil {
		return printer.Error("failed to watch session", err.Error(), nil)
	}
	return nil
}
