package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/recordview/internal/config"
	"github.com/rshade/recordview/internal/tui"
	"github.com/rshade/recordview/internal/viewer"
)

// ErrNotTerminal is returned when browse runs without a terminal on stdout.
var ErrNotTerminal = errors.New("browse needs an interactive terminal; use 'records list' instead")

// NewBrowseCmd creates the interactive browser command.
func NewBrowseCmd() *cobra.Command {
	var sortArg string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse records interactively",
		Long: `Open the interactive records viewer.

Console logging is disabled while the viewer runs; set --log-file to keep logs.`,
		Example: `  # Browse the configured API
  recordview browse

  # Start sorted by total, descending, with logs in a file
  recordview browse --sort total:desc --log-file /tmp/recordview.log --debug`,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeBrowse(cmd, sortArg)
		},
	}

	cmd.Flags().StringVar(&sortArg, "sort", "", "initial sort column and direction, e.g. date:asc")
	cmd.Flags().Int("page-size", config.DefaultPageSize, "initial rows per page")
	cmd.Flags().Int("max-visible-pages", config.DefaultMaxVisiblePages, "page numbers shown in the pager")

	return cmd
}

func executeBrowse(cmd *cobra.Command, sortArg string) error {
	if !isTerminal(os.Stdout) {
		return ErrNotTerminal
	}

	sess, err := newSession(config.GetGlobalConfig(), sortArg)
	if err != nil {
		return err
	}

	panel := tui.NewPanel(sess.cfg.View.SearchField, sess.pipeline.Filter.Fields(), sess.cfg.View.PageSize)
	orch, err := viewer.New(panel, panel, sess.gateway, sess.pipeline)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	m := tui.NewBrowserModel(ctx, orch, panel, sess.sorter.Columns())
	if err = tui.Run(ctx, m); err != nil {
		return err
	}

	stats := sess.gateway.Stats()
	logger.Info().
		Ctx(ctx).
		Int64("remote_calls", stats.RemoteCalls).
		Int64("cache_hits", stats.Hits).
		Int64("cache_misses", stats.Misses).
		Msg("browse session ended")
	return nil
}
