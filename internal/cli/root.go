package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/recordview/internal/config"
	"github.com/rshade/recordview/internal/logging"
)

// annotationInteractive marks commands that own the terminal. Their console
// logging is redirected so it cannot corrupt the screen.
const annotationInteractive = "recordview/interactive"

// isTerminal checks if the given file is a terminal.
//
//nolint:gochecknoglobals // Replaced in tests.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the recordview CLI.
// It loads configuration, wires up logging and tracing, and registers the
// records, browse, serve, config and version subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult *logging.LogPathResult
		cfgFile   string
	)

	cmd := &cobra.Command{
		Use:   "recordview",
		Short: "Browse a remote sales-records API",
		Long: `recordview pages, filters, sorts and searches a remote sales-records API.

Use 'records list' for one-shot output, 'browse' for the interactive viewer,
and 'serve' to run a local demo API.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./"+config.DefaultConfigName+" when present)")
	pf.Bool("debug", false, "enable debug logging")
	pf.String("base-url", config.DefaultBaseURL, "base URL of the records API")
	pf.Duration("timeout", config.DefaultTimeout, "timeout for each remote request")
	pf.Float64("rate-limit", config.DefaultRateLimit, "maximum remote requests per second (0 disables)")
	pf.String("log-level", config.DefaultLogLevel, "log level: trace, debug, info, warn, error")
	pf.String("log-format", config.DefaultLogFormat, "log format: console or json")
	pf.String("log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(newRecordsCmd(), NewBrowseCmd(), NewServeCmd(), newConfigCmd(), NewVersionCmd())

	return cmd
}

const rootCmdExample = `  # Run the demo API in one terminal
  recordview serve --addr :8080

  # Browse it interactively in another
  recordview browse --base-url http://localhost:8080

  # Print the last page, ten rows per page
  recordview records list --action last --page-size 10

  # Filter by seller and sort by total, as JSON
  recordview records list --filter seller="Ivan Petrov" --sort total:desc --output json

  # Show the seller and customer tables
  recordview records indexes

  # Write a config file with default values
  recordview config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}
