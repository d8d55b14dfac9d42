package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dyluth/canvass/internal/config"
	"github.com/dyluth/canvass/internal/csvio"
	"github.com/dyluth/canvass/internal/planner"
	"github.com/dyluth/canvass/internal/printer"
	"github.com/dyluth/canvass/internal/resolver"
	"github.com/dyluth/canvass/internal/session"
	"github.com/dyluth/canvass/pkg/assign"
	"github.com/dyluth/canvass/pkg/roster"
	"github.com/dyluth/canvass/pkg/route"
)

// loadConfig reads --config, or ./canvass.yml if present. With neither, an
// empty configuration is used: streets in alphabetical order, no canvassers.
func loadConfig() (*config.CanvassConfig, error) {
	path := configPath
	if path == "" {
		path = config.DefaultFile
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no config file found, using defaults", "path", path)
			cfg := &config.CanvassConfig{Version: "1.0"}
			return cfg, cfg.Validate()
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Fix %s, or run 'canvass init' to start from a template", path)},
		)
	}

	logger.Debug("loaded config", "path", path, "streets", len(cfg.StreetOrder), "mode", string(cfg.Assignment.Mode))
	return cfg, nil
}

// loadRegister reads the register named by --input.
func loadRegister(path string, strict bool) (*route.Table, error) {
	if path == "" {
		return nil, printer.Error(
			"no register given",
			"An electoral register CSV is required.",
			[]string{"Pass it with --input register.csv"},
		)
	}

	table, err := csvio.ReadRegisterFile(path, strict)
	if err != nil {
		return nil, explainError(err)
	}

	logger.Debug("read register", "path", path, "records", table.Len(), "columns", len(table.Columns))
	return table, nil
}

// loadRoster builds the roster and pairing from cfg.
func loadRoster(cfg *config.CanvassConfig) (*roster.Roster, *roster.Pairing, error) {
	r, err := cfg.Roster()
	if err != nil {
		return nil, nil, explainError(err)
	}

	pairing, err := cfg.Pairs(r)
	if err != nil {
		return nil, nil, explainError(err)
	}

	return r, pairing, nil
}

// openSessionStore connects to the Redis session store at --redis-url.
func openSessionStore(ctx context.Context) (*session.Client, error) {
	client, err := session.NewClientFromURL(redisURL)
	if err != nil {
		return nil, printer.Error("invalid Redis URL", err.Error(), []string{"Use the form redis://host:6379/0"})
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"cannot reach session store",
			"Manual assignments are kept in Redis, which did not respond.",
			map[string]string{"URL": redisURL, "Error": err.Error()},
			[]string{
				"Start Redis locally:\n  docker run -d -p 6379:6379 redis:7",
				fmt.Sprintf("Point at another server with --redis-url or %s", RedisURLEnv),
			},
		)
	}

	return client, nil
}

// resolveSession expands a possibly-short session ID.
func resolveSession(ctx context.Context, client *session.Client, id string) (string, error) {
	full, err := resolver.ResolveSessionID(ctx, client, id)
	if err == nil {
		return full, nil
	}

	var ambiguous *resolver.AmbiguousError
	switch {
	case errors.As(err, &ambiguous):
		return "", printer.Error("ambiguous session ID", resolver.FormatAmbiguousError(ambiguous), nil)
	case resolver.IsNotFoundError(err):
		return "", printer.Error(
			"session not found",
			err.Error(),
			[]string{"Create one with:\n  canvass session new"},
		)
	default:
		return "", printer.Error("failed to resolve session", err.Error(), nil)
	}
}

// planRequest collects the inputs shared by plan and chunks.
type planRequest struct {
	input     string
	sessionID string
}

// buildPlan loads everything a run needs and sequences and assigns the
// register. A session implies manual mode; its selections override those
// in canvass.yml.
func buildPlan(ctx context.Context, req planRequest) (*planner.Plan, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	table, err := loadRegister(req.input, cfg.Strict)
	if err != nil {
		return nil, err
	}

	r, pairing, err := loadRoster(cfg)
	if err != nil {
		return nil, err
	}

	order := route.StreetOrder(cfg.StreetOrder)
	if len(order) == 0 {
		order = route.DetectStreets(table.Records)
		logger.Info("no street_order configured, walking streets alphabetically", "streets", len(order))
	}

	mode := cfg.Assignment.Mode
	selections := cfg.Assignment.Manual
	if req.sessionID != "" {
		stored, err := sessionAssignments(ctx, req.sessionID)
		if err != nil {
			return nil, err
		}
		selections = planner.MergeSelections(selections, stored)
		mode = assign.ModeManual
	}

	p, err := planner.Run(table, r, pairing, planner.Options{
		StreetOrder: order,
		Policy:      cfg.Policy(),
		Mode:        mode,
		Selections:  selections,
	}, logger)
	if err != nil {
		return nil, explainError(err)
	}

	return p, nil
}

func sessionAssignments(ctx context.Context, id string) (map[string]string, error) {
	client, err := openSessionStore(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	full, err := resolveSession(ctx, client, id)
	if err != nil {
		return nil, err
	}

	stored, err := client.Assignments(ctx, full)
	if err != nil {
		return nil, printer.Error("failed to read session", err.Error(), nil)
	}

	logger.Debug("loaded session assignments", "session", full, "assignments", len(stored))
	return stored, nil
}

// explainError prints err with remedies for the error kinds users can fix,
// and returns a short error for Cobra.
func explainError(err error) error {
	var (
		schema     *csvio.SchemaError
		incomplete *route.OrderingIncompleteError
		rosterErr  *roster.RosterError
		unknown    *assign.UnknownAssigneeError
	)

	switch {
	case errors.As(err, &schema):
		suggestions := []string{"Check the header row of the CSV; names must match exactly"}
		if len(schema.Missing) > 0 && schema.Source == "register" {
			suggestions = append(suggestions, "Set 'strict: false' in canvass.yml if only Street and Address are available")
		}
		return printer.Error(fmt.Sprintf("%s has the wrong columns", schema.Source), err.Error(), suggestions)

	case errors.As(err, &incomplete):
		return printer.ErrorWithContext(
			"street order is incomplete",
			"strict mode requires every street in the register to appear in street_order.",
			map[string]string{"Missing": strings.Join(incomplete.Streets, ", ")},
			[]string{
				"Add the missing streets to street_order in canvass.yml",
				"Set 'strict: false' to walk unlisted streets last",
			},
		)

	case errors.As(err, &rosterErr):
		return printer.Error("invalid roster", err.Error(), []string{"Fix the canvassers or pairing section of canvass.yml"})

	case errors.As(err, &unknown):
		return printer.Error(
			"unknown assignee",
			err.Error(),
			[]string{"Use a canvasser name or pair name from canvass.yml (paired canvassers are assigned through their pair)"},
		)

	case errors.Is(err, assign.ErrNoUnits):
		return printer.Error("nobody to assign chunks to", err.Error(), []string{"List canvassers in canvass.yml, or run 'canvass init' for a template"})

	case errors.Is(err, route.ErrDuplicateStreet):
		return printer.Error("invalid street order", err.Error(), []string{"List each street once in street_order"})

	default:
		return printer.Error("command failed", err.Error(), nil)
	}
}
