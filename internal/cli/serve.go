package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/recordview/internal/config"
	"github.com/rshade/recordview/internal/source"
)

// NewServeCmd creates the demo records API command.
func NewServeCmd() *cobra.Command {
	var receipts int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo records API",
		Long: `Serve /records, /sellers and /customers from a SQLite database.

An empty database is seeded with a deterministic demo dataset. The default
in-memory database is rebuilt on every start.`,
		Example: `  # In-memory demo data on :8080
  recordview serve

  # Keep the data in a file, on another port
  recordview serve --addr 127.0.0.1:9090 --database ./records.db --receipts 1000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeServe(cmd, receipts)
		},
	}

	cmd.Flags().String("addr", config.DefaultServerAddr, "listen address")
	cmd.Flags().String("database", config.DefaultServerDatabase, "SQLite database path or :memory:")
	cmd.Flags().IntVar(&receipts, "receipts", source.DefaultReceiptCount, "receipts to seed into an empty database")

	return cmd
}

func executeServe(cmd *cobra.Command, receipts int) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	store, err := source.Open(ctx, cfg.Server.Database, receipts)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := source.NewServer(source.Config{
		Addr:   cfg.Server.Addr,
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Serving records API on %s (database %s)\n", cfg.Server.Addr, cfg.Server.Database)
	if err = srv.Serve(ctx); err != nil {
		return fmt.Errorf("serving records API: %w", err)
	}
	return nil
}
