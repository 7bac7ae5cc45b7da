// Package viewer sequences one render cycle: snapshot the form, build the query
// through the transformer pipeline, fetch through the gateway, refresh the pager
// and render the rows.
//
// A cycle is split into Prepare, Execute and Complete so an event loop can run the
// fetch off its own goroutine. Prepare and Complete must be called from the same
// goroutine; Execute may run anywhere.
package viewer

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rshade/recordview/internal/gateway"
	"github.com/rshade/recordview/internal/logging"
	"github.com/rshade/recordview/internal/pagination"
	"github.com/rshade/recordview/internal/query"
)

// Index table names for IndexBindings.
const (
	TableSellers   = "sellers"
	TableCustomers = "customers"
)

// Common viewer errors.
var (
	// ErrStaleResult is returned by Complete when a newer cycle was prepared after
	// the one that produced the result. The result is dropped.
	ErrStaleResult = errors.New("stale result discarded")
	// ErrPageOutOfRange is returned by Complete when the requested page lies past
	// the page count the source reported. Nothing is rendered; Reissue builds the
	// cycle for the clamped page.
	ErrPageOutOfRange = errors.New("requested page is past the last page")
	ErrNilForm        = errors.New("viewer form cannot be nil")
	ErrNilPresent     = errors.New("viewer presenter cannot be nil")
	ErrNilFetcher     = errors.New("viewer fetcher cannot be nil")
	ErrNilPipeline    = errors.New("viewer pipeline cannot be nil")
)

// Form is the source of UI state.
type Form interface {
	// Values returns the current raw field values.
	Values() map[string]string
	// ClearField empties one field.
	ClearField(name string)
}

// Resetter is implemented by forms that can clear every field at once.
type Resetter interface {
	Reset()
}

// Presenter receives render output.
type Presenter interface {
	Render(items []gateway.Record)
	UpdatePagination(view pagination.View)
	// UpdateIndexes populates choice fields. Keys are form field names.
	UpdateIndexes(bindings map[string]gateway.Index)
}

// Fetcher is the gateway contract used by the orchestrator.
type Fetcher interface {
	FetchRecords(ctx context.Context, q query.Query, force bool) (gateway.Page, error)
	FetchIndexes(ctx context.Context) (gateway.Indexes, error)
}

// Cycle is a prepared render cycle.
type Cycle struct {
	Seq    uint64
	Action query.Action
	State  query.UIState
	Query  query.Query
	Force  bool
}

// Result is the outcome of executing a Cycle.
type Result struct {
	Cycle Cycle
	Page  gateway.Page
	Err   error
}

// Orchestrator wires form, pipeline, gateway and presenter together.
type Orchestrator struct {
	form      Form
	presenter Presenter
	fetcher   Fetcher
	pipeline  *query.Pipeline
	bindings  map[string]string

	seq atomic.Uint64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIndexBindings maps form fields to index tables (TableSellers or
// TableCustomers). The default binds the seller field to the seller table.
func WithIndexBindings(bindings map[string]string) Option {
	return func(o *Orchestrator) {
		o.bindings = make(map[string]string, len(bindings))
		for field, table := range bindings {
			o.bindings[field] = table
		}
	}
}

// New creates an Orchestrator.
func New(form Form, presenter Presenter, fetcher Fetcher, pipeline *query.Pipeline, opts ...Option) (*Orchestrator, error) {
	switch {
	case form == nil:
		return nil, ErrNilForm
	case presenter == nil:
		return nil, ErrNilPresent
	case fetcher == nil:
		return nil, ErrNilFetcher
	case pipeline == nil:
		return nil, ErrNilPipeline
	}

	o := &Orchestrator{
		form:      form,
		presenter: presenter,
		fetcher:   fetcher,
		pipeline:  pipeline,
		bindings:  map[string]string{"seller": TableSellers},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Pipeline returns the transformer pipeline.
func (o *Orchestrator) Pipeline() *query.Pipeline {
	return o.pipeline
}

// FetchIndexes loads the index tables without touching the presenter. It may
// run off the event loop; hand the result to BindIndexes on the loop.
func (o *Orchestrator) FetchIndexes(ctx context.Context) (gateway.Indexes, error) {
	return o.fetcher.FetchIndexes(ctx)
}

// LoadIndexes fetches the index tables and hands the bound ones to the presenter.
func (o *Orchestrator) LoadIndexes(ctx context.Context) (gateway.Indexes, error) {
	indexes, err := o.fetcher.FetchIndexes(ctx)
	if err != nil {
		return gateway.Indexes{}, err
	}
	o.BindIndexes(indexes)
	return indexes, nil
}

// BindIndexes passes the tables named by the index bindings to the presenter.
func (o *Orchestrator) BindIndexes(indexes gateway.Indexes) {
	bound := make(map[string]gateway.Index, len(o.bindings))
	for field, table := range o.bindings {
		switch table {
		case TableSellers:
			bound[field] = indexes.Sellers
		case TableCustomers:
			bound[field] = indexes.Customers
		}
	}
	o.presenter.UpdateIndexes(bound)
}

// Init loads the index tables and runs the first render cycle.
func (o *Orchestrator) Init(ctx context.Context) error {
	if _, err := o.LoadIndexes(ctx); err != nil {
		return err
	}
	_, err := o.Render(ctx, query.None())
	return err
}

// Prepare starts a cycle: it applies the form side of a clear action, takes the
// snapshot, and builds the query. Any previously prepared cycle becomes stale.
func (o *Orchestrator) Prepare(ctx context.Context, a query.Action, force bool) Cycle {
	o.pipeline.Filter.Clear(o.form, a)

	state := query.Collect(o.form.Values())
	q := o.pipeline.Build(state, a)
	seq := o.seq.Add(1)

	logging.FromContext(ctx).Debug().
		Ctx(ctx).
		Str("component", "viewer").
		Str("operation", "prepare").
		Uint64("seq", seq).
		Str("action", a.String()).
		Str("query", q.Encode()).
		Bool("force", force).
		Msg("render cycle prepared")

	return Cycle{Seq: seq, Action: a, State: state, Query: q, Force: force}
}

// Execute fetches the records for c. It touches no orchestrator state besides
// the gateway, so it may run concurrently with the event loop.
func (o *Orchestrator) Execute(ctx context.Context, c Cycle) Result {
	page, err := o.fetcher.FetchRecords(ctx, c.Query, c.Force)
	return Result{Cycle: c, Page: page, Err: err}
}

// Complete applies r if it belongs to the latest cycle. On a fetch error nothing
// is rendered and the previous rows stay visible. On success the pager is
// refreshed from the reported total before the rows are rendered.
func (o *Orchestrator) Complete(ctx context.Context, r Result) (pagination.View, error) {
	log := logging.FromContext(ctx)

	if current := o.seq.Load(); r.Cycle.Seq != current {
		log.Debug().
			Ctx(ctx).
			Str("component", "viewer").
			Str("operation", "complete").
			Uint64("seq", r.Cycle.Seq).
			Uint64("current_seq", current).
			Msg("dropping stale result")
		return pagination.View{}, ErrStaleResult
	}

	if r.Err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "viewer").
			Str("operation", "complete").
			Err(r.Err).
			Msg("fetch failed, keeping previous rows")
		return pagination.View{}, r.Err
	}

	page, ok := r.Cycle.Query.Int(query.KeyPage)
	if !ok {
		page = pagination.DefaultPage
	}
	limit, ok := r.Cycle.Query.Int(query.KeyLimit)
	if !ok {
		limit = pagination.DefaultPageSize
	}

	view := o.pipeline.Paginator.Update(r.Page.Total, page, limit)
	if r.Page.Total > 0 && page > view.TotalPages {
		log.Debug().
			Ctx(ctx).
			Str("component", "viewer").
			Str("operation", "complete").
			Uint64("seq", r.Cycle.Seq).
			Int("page", page).
			Int("page_count", view.TotalPages).
			Msg("page past the end, reissue required")
		return pagination.View{}, ErrPageOutOfRange
	}

	o.presenter.UpdatePagination(view)
	o.presenter.Render(r.Page.Items)

	log.Debug().
		Ctx(ctx).
		Str("component", "viewer").
		Str("operation", "complete").
		Uint64("seq", r.Cycle.Seq).
		Int("total", r.Page.Total).
		Int("rows", len(r.Page.Items)).
		Int("page", view.CurrentPage).
		Int("page_count", view.TotalPages).
		Msg("render cycle completed")

	return view, nil
}

// Reissue prepares a passive cycle from c's snapshot with the page clamped to
// the page count recorded by the last Complete. It supersedes c.
func (o *Orchestrator) Reissue(ctx context.Context, c Cycle) Cycle {
	page, ok := c.Query.Int(query.KeyPage)
	if !ok {
		page = c.State.Page
	}

	state := c.State
	state.Page = pagination.ClampPage(page, o.pipeline.Paginator.PageCount())
	q := o.pipeline.Build(state, query.None())
	seq := o.seq.Add(1)

	logging.FromContext(ctx).Debug().
		Ctx(ctx).
		Str("component", "viewer").
		Str("operation", "reissue").
		Uint64("seq", seq).
		Int("page", state.Page).
		Str("query", q.Encode()).
		Msg("render cycle reissued")

	return Cycle{Seq: seq, Action: query.None(), State: state, Query: q, Force: c.Force}
}

// Run executes one full cycle synchronously, reissuing it once when the
// requested page is past the end.
func (o *Orchestrator) Run(ctx context.Context, a query.Action, force bool) (pagination.View, error) {
	c := o.Prepare(ctx, a, force)
	view, err := o.Complete(ctx, o.Execute(ctx, c))
	if errors.Is(err, ErrPageOutOfRange) {
		c = o.Reissue(ctx, c)
		view, err = o.Complete(ctx, o.Execute(ctx, c))
	}
	return view, err
}

// Render runs one full cycle synchronously.
func (o *Orchestrator) Render(ctx context.Context, a query.Action) (pagination.View, error) {
	return o.Run(ctx, a, false)
}

// Refresh re-runs the passive cycle, bypassing the query cache.
func (o *Orchestrator) Refresh(ctx context.Context) (pagination.View, error) {
	return o.Run(ctx, query.None(), true)
}

// Reset clears the whole form, when supported, and re-renders from the
// cleared state.
func (o *Orchestrator) Reset(ctx context.Context) (pagination.View, error) {
	if r, ok := o.form.(Resetter); ok {
		r.Reset()
	}
	return o.Render(ctx, query.None())
}
