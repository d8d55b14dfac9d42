package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/canvass/internal/logging"
	"github.com/spf13/cobra"
)

// RedisURLEnv overrides the default --redis-url.
const RedisURLEnv = "CANVASS_REDIS_URL"

const defaultRedisURL = "redis://localhost:6379/0"

var (
	version string
	commit  string
	date    string

	configPath string
	redisURL   string
	verbose    bool

	logger logging.Logger = logging.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canvass",
	Short: "canvass - door-to-door canvassing route planner",
	Long: `canvass turns an electoral register into a walking plan for a team of
canvassers.

Each street is split into odd, even and unnumbered sides ("chunks"). Streets
are walked in the order given in canvass.yml, each side in ascending house
number order, and chunks are shared out between canvassers or pairs either
round-robin or by hand.`,
	Version: version,
	// Show help rather than silently succeeding when no subcommand is given
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zl, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = zl
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zl, ok := logger.(*logging.ZapLogger); ok {
			_ = zl.Sync()
		}
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Errors are printed by the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	defaultURL := os.Getenv(RedisURLEnv)
	if defaultURL == "" {
		defaultURL = defaultRedisURL
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to canvass.yml (default: ./canvass.yml if present)")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", defaultURL, "Redis URL of the session store (env "+RedisURLEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
}
