package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/recordview/internal/config"
	"github.com/rshade/recordview/internal/logging"
	"github.com/rshade/recordview/internal/pagination"
	"github.com/rshade/recordview/internal/query"
	"github.com/rshade/recordview/internal/viewer"
)

// newRecordsCmd creates the records command group.
func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "records", Short: "Query the records API"}
	cmd.AddCommand(NewRecordsListCmd(), NewRecordsIndexesCmd())
	return cmd
}

// recordsListParams holds the parameters for the records list command.
type recordsListParams struct {
	page    int
	filters []string
	search  string
	sort    string
	action  string
	refresh bool
	output  string
}

// NewRecordsListCmd creates the "records list" subcommand. It runs one render
// cycle built from flags and prints the resulting page.
//
// Registered flags:
//   - --page: page to show (default 1)
//   - --page-size: rows per page (overrides view.page_size)
//   - --filter: repeatable field=value filter
//   - --search: free-text search
//   - --sort: column and direction, e.g. total:desc
//   - --action: prev, next, first, last, sort:<column> or clear:<field>
//   - --refresh: bypass the query cache
//   - --output: table, json or yaml
func NewRecordsListCmd() *cobra.Command {
	var params recordsListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of records",
		Long: `Print one page of records from the remote API.

Paging actions are resolved against the page count reported by the API: with
--action last the page count is fetched first, then the last page is shown.`,
		Example: recordsListExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeRecordsList(cmd, params)
		},
	}

	cmd.Flags().IntVar(&params.page, "page", pagination.DefaultPage, "page to show")
	cmd.Flags().Int("page-size", config.DefaultPageSize, "rows per page")
	cmd.Flags().Int("max-visible-pages", config.DefaultMaxVisiblePages, "page numbers shown in the pager")
	cmd.Flags().StringArrayVar(&params.filters, "filter", nil,
		"filter expression field=value (fields: "+joinFields(config.DefaultFilters())+")")
	cmd.Flags().StringVar(&params.search, "search", "", "free-text search across date, seller and customer")
	cmd.Flags().StringVar(&params.sort, "sort", "", "sort column and direction, e.g. total:desc")
	cmd.Flags().StringVar(&params.action, "action", "",
		"action to apply: prev, next, first, last, sort:<column> or clear:<field>")
	cmd.Flags().BoolVar(&params.refresh, "refresh", false, "bypass the query cache")
	cmd.Flags().StringVar(&params.output, "output", outputFormatTable, "Output format: table, json, or yaml")

	return cmd
}

const recordsListExample = `  # First page with the configured page size
  recordview records list

  # Third page, twenty rows per page
  recordview records list --page 3 --page-size 20

  # Jump to the last page
  recordview records list --action last

  # Filter by customer and a total range
  recordview records list --filter customer="Olga Popova" --filter totalFrom=100 --filter totalTo=500

  # Search and sort, as YAML
  recordview records list --search 2024-03 --sort date:desc --output yaml`

// executeRecordsList runs the records list command.
func executeRecordsList(cmd *cobra.Command, params recordsListParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	format, err := parseOutputFormat(params.output)
	if err != nil {
		return err
	}
	action, err := query.ParseAction(params.action)
	if err != nil {
		return err
	}

	sess, err := newSession(config.GetGlobalConfig(), params.sort)
	if err != nil {
		return err
	}

	form, err := newFlagForm(
		params.page,
		sess.cfg.View.PageSize,
		sess.cfg.View.SearchField,
		params.search,
		sess.pipeline.Filter.Fields(),
		params.filters,
	)
	if err != nil {
		return err
	}

	orch, err := viewer.New(form, form, sess.gateway, sess.pipeline)
	if err != nil {
		return err
	}

	if _, err = orch.LoadIndexes(ctx); err != nil {
		return fmt.Errorf("loading index tables: %w", err)
	}

	view, err := runCycle(ctx, orch, action, params.refresh)
	if err != nil {
		return fmt.Errorf("fetching records: %w", err)
	}

	key, _ := sess.gateway.CachedKey()
	stats := sess.gateway.Stats()
	log.Debug().
		Ctx(ctx).
		Str("component", "cli").
		Str("operation", "records_list").
		Str("query", key).
		Int64("remote_calls", stats.RemoteCalls).
		Int64("cache_hits", stats.Hits).
		Msg("records fetched")

	return renderRecords(cmd.OutOrStdout(), format, newRecordsOutput(key, view, form.items))
}

// runCycle applies a to the form. Paging actions first run a passive cycle so
// they move relative to a known page count.
func runCycle(ctx context.Context, orch *viewer.Orchestrator, a query.Action, force bool) (pagination.View, error) {
	if a.IsPaging() {
		if _, err := orch.Render(ctx, query.None()); err != nil {
			return pagination.View{}, err
		}
	}
	return orch.Run(ctx, a, force)
}

// recordsIndexesParams holds the parameters for the records indexes command.
type recordsIndexesParams struct {
	output string
}

// NewRecordsIndexesCmd creates the "records indexes" subcommand.
func NewRecordsIndexesCmd() *cobra.Command {
	var params recordsIndexesParams

	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Print the seller and customer tables",
		Example: `  # Show both tables
  recordview records indexes

  # As JSON
  recordview records indexes --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeRecordsIndexes(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.output, "output", outputFormatTable, "Output format: table, json, or yaml")
	return cmd
}

func executeRecordsIndexes(cmd *cobra.Command, params recordsIndexesParams) error {
	format, err := parseOutputFormat(params.output)
	if err != nil {
		return err
	}

	sess, err := newSession(config.GetGlobalConfig(), "")
	if err != nil {
		return err
	}

	indexes, err := sess.gateway.FetchIndexes(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading index tables: %w", err)
	}
	return renderIndexes(cmd.OutOrStdout(), format, indexes)
}
