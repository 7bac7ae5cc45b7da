package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/recordview/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
func NewConfigInitCmd() *cobra.Command {
	var (
		force bool
		path  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

The file is written to ./` + config.DefaultConfigName + ` unless --path is given, and
is picked up automatically by later commands run from the same directory.`,
		Example: `  # Create ./recordview.yaml
  recordview config init

  # Create configuration, overwriting existing
  recordview config init --force

  # Write somewhere else
  recordview config init --path ~/.config/recordview.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().StringVar(&path, "path", config.DefaultConfigName, "configuration file to write")

	return cmd
}

// initConfig writes the default configuration to path.
func initConfig(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	cfg := config.New()
	cfg.SetConfigPath(path)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", path)

	return nil
}
