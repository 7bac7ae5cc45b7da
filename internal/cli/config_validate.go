package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/recordview/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration: defaults, the config file,
RECORDVIEW_* environment variables and flags, merged in that order.

This includes:
- Page size and visible page count
- Source base URL and timeout
- Logging level and format
- Initial sort against the sortable columns`,
		Example: `  # Validate current configuration
  recordview config validate

  # Validate a specific file and show the merged values
  recordview config validate --config ./recordview.yaml --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	path := cfg.ConfigPath()
	if path == "" {
		path = "(defaults only)"
	}

	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", path)
	cmd.Printf("  Source: %s (timeout %s, %.1f req/s)\n",
		cfg.Source.BaseURL, cfg.Source.Timeout, cfg.Source.RateLimit)
	cmd.Printf("  Page size: %d\n", cfg.View.PageSize)
	cmd.Printf("  Visible pages: %d\n", cfg.View.MaxVisiblePages)
	cmd.Printf("  Sort columns: %s\n", strings.Join(cfg.View.Columns, ", "))
	cmd.Printf("  Filters: %s\n", strings.Join(cfg.View.Filters, ", "))
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
}
