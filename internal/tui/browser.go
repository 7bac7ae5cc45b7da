package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/recordview/internal/gateway"
	"github.com/rshade/recordview/internal/query"
	"github.com/rshade/recordview/internal/viewer"
)

// Layout defaults.
const (
	defaultWidth   = 100
	defaultHeight  = 30
	chromeHeight   = 10
	minTableHeight = 3

	// editDebounce delays the render after a keystroke in a text field.
	editDebounce = 300 * time.Millisecond
)

// indexesLoadedMsg carries the one-time index load.
type indexesLoadedMsg struct {
	indexes gateway.Indexes
	err     error
}

// fetchResultMsg carries an executed render cycle back to the event loop.
type fetchResultMsg struct {
	result viewer.Result
}

// editSettledMsg fires after editDebounce; it is ignored unless seq is the
// latest edit.
type editSettledMsg struct {
	seq int
}

// formResetMsg runs the post-reset render after the fields were cleared.
type formResetMsg struct{}

// BrowserModel is the Bubble Tea model for the interactive records browser.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BrowserModel struct {
	ctx     context.Context
	orch    *viewer.Orchestrator
	panel   *Panel
	columns []string

	state        ViewState
	focus        Focus
	filterCursor int
	indexed      bool

	table    table.Model
	loading  *LoadingState
	fetching bool
	editSeq  int

	width  int
	height int

	err error
}

// NewBrowserModel creates the browser. panel must be the form and presenter
// orch was built with; columns are the sortable columns, bound to 's' and 'S'.
func NewBrowserModel(ctx context.Context, orch *viewer.Orchestrator, panel *Panel, columns []string) BrowserModel {
	m := BrowserModel{
		ctx:     ctx,
		orch:    orch,
		panel:   panel,
		columns: columns,
		state:   ViewStateLoading,
		loading: NewLoadingState(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.table = m.buildTable()
	return m
}

// Init starts the spinner and the index load (Bubble Tea interface).
func (m BrowserModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), m.loadIndexesCmd())
}

func (m BrowserModel) loadIndexesCmd() tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		indexes, err := orch.FetchIndexes(ctx)
		return indexesLoadedMsg{indexes: indexes, err: err}
	}
}

// Update handles messages (Bubble Tea interface).
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.buildTable()
		return m, nil
	case spinner.TickMsg:
		if m.state != ViewStateLoading && !m.fetching {
			return m, nil
		}
		return m, m.loading.Update(msg)
	case indexesLoadedMsg:
		return m.handleIndexesLoaded(msg)
	case fetchResultMsg:
		return m.handleFetchResult(msg)
	case editSettledMsg:
		if msg.seq != m.editSeq {
			return m, nil
		}
		return m.startCycle(query.None(), false)
	case formResetMsg:
		return m.startCycle(query.None(), false)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m BrowserModel) handleIndexesLoaded(msg indexesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = ViewStateError
		m.err = fmt.Errorf("loading index tables: %w", msg.err)
		return m, nil
	}
	m.orch.BindIndexes(msg.indexes)
	m.indexed = true
	m.state = ViewStateList
	m.err = nil
	return m.startCycle(query.None(), false)
}

func (m BrowserModel) handleFetchResult(msg fetchResultMsg) (tea.Model, tea.Cmd) {
	_, err := m.orch.Complete(m.ctx, msg.result)
	if errors.Is(err, viewer.ErrStaleResult) {
		return m, nil
	}
	if errors.Is(err, viewer.ErrPageOutOfRange) {
		return m, m.fetchCmd(m.orch.Reissue(m.ctx, msg.result.Cycle))
	}
	m.fetching = false
	m.err = err
	if err == nil {
		m.table = m.buildTable()
	}
	return m, nil
}

// startCycle prepares a render cycle on the event loop and fetches in a command.
func (m BrowserModel) startCycle(a query.Action, force bool) (BrowserModel, tea.Cmd) {
	c := m.orch.Prepare(m.ctx, a, force)
	m.fetching = true
	return m, tea.Batch(m.fetchCmd(c), m.loading.Init())
}

func (m BrowserModel) fetchCmd(c viewer.Cycle) tea.Cmd {
	orch, ctx := m.orch, m.ctx
	return func() tea.Msg {
		return fetchResultMsg{result: orch.Execute(ctx, c)}
	}
}

// pageStep starts a relative paging cycle. While a fetch is in flight the page
// count and form page are not settled yet, so the key is ignored.
func (m BrowserModel) pageStep(a query.Action) (tea.Model, tea.Cmd) {
	if m.fetching {
		return m, nil
	}
	return m.startCycle(a, false)
}

func (m BrowserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyCtrlC {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}

	switch m.state {
	case ViewStateList:
	case ViewStateError:
		return m.handleErrorKey(msg)
	case ViewStateLoading, ViewStateQuitting:
		return m, nil
	}

	switch m.focus {
	case FocusSearch:
		return m.handleSearchKey(msg)
	case FocusFilters:
		return m.handleFilterKey(msg)
	case FocusTable:
		return m.handleTableKey(msg)
	}
	return m, nil
}

func (m BrowserModel) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyRefresh:
		m.state = ViewStateLoading
		m.err = nil
		return m, tea.Batch(m.loading.Init(), m.loadIndexesCmd())
	}
	return m, nil
}

//nolint:cyclop // Flat key dispatch.
func (m BrowserModel) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyLeft:
		return m.pageStep(query.Prev())
	case keyRight:
		return m.pageStep(query.Next())
	case keyHome:
		return m.pageStep(query.First())
	case keyEnd:
		return m.pageStep(query.Last())
	case keyS:
		return m.sortColumn(0)
	case keyShiftS:
		return m.sortColumn(1)
	case keySlash:
		m.focus = FocusSearch
		return m, m.panel.search.Focus()
	case keyF:
		if len(m.panel.filters) == 0 {
			return m, nil
		}
		m.focus = FocusFilters
		return m, m.panel.filters[m.filterCursor].input.Focus()
	case keyX:
		if len(m.panel.filters) == 0 {
			return m, nil
		}
		return m.startCycle(query.Clear(m.panel.filters[m.filterCursor].name), false)
	case keyR:
		m.panel.CycleRowsPerPage()
		return m.startCycle(query.None(), false)
	case keyRefresh:
		return m.startCycle(query.None(), true)
	case keyResetForm:
		m.panel.Reset()
		return m, func() tea.Msg { return formResetMsg{} }
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		page := int(key[0] - '0')
		if m.panel.Pager().Contains(page) {
			m.panel.SetPage(page)
			return m.startCycle(query.None(), false)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BrowserModel) sortColumn(i int) (tea.Model, tea.Cmd) {
	if i >= len(m.columns) {
		return m, nil
	}
	return m.startCycle(query.Sort(m.columns[i]), false)
}

func (m BrowserModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.focus = FocusTable
		m.panel.search.Blur()
		return m, nil
	case keyEnter:
		m.focus = FocusTable
		m.panel.search.Blur()
		m.editSeq++
		return m.startCycle(query.None(), false)
	}

	before := m.panel.search.Value()
	var cmd tea.Cmd
	m.panel.search, cmd = m.panel.search.Update(msg)
	return m.afterEdit(before != m.panel.search.Value(), cmd)
}

func (m BrowserModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := m.panel.filters[m.filterCursor]

	switch msg.String() {
	case keyEsc:
		m.focus = FocusTable
		current.input.Blur()
		return m, nil
	case keyEnter:
		m.focus = FocusTable
		current.input.Blur()
		m.editSeq++
		return m.startCycle(query.None(), false)
	case keyTab, keyShiftTab:
		step := 1
		if msg.String() == keyShiftTab {
			step = -1
		}
		current.input.Blur()
		n := len(m.panel.filters)
		m.filterCursor = ((m.filterCursor+step)%n + n) % n
		return m, m.panel.filters[m.filterCursor].input.Focus()
	case keyUp, keyDown:
		step := 1
		if msg.String() == keyUp {
			step = -1
		}
		changed := m.panel.CycleChoice(current.name, step)
		return m.afterEdit(changed, nil)
	}

	before := current.input.Value()
	var cmd tea.Cmd
	current.input, cmd = current.input.Update(msg)
	return m.afterEdit(before != current.input.Value(), cmd)
}

// afterEdit schedules a debounced render when a field value changed.
func (m BrowserModel) afterEdit(changed bool, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if !changed {
		return m, cmd
	}
	m.editSeq++
	seq := m.editSeq
	settle := tea.Tick(editDebounce, func(time.Time) tea.Msg {
		return editSettledMsg{seq: seq}
	})
	return m, tea.Batch(cmd, settle)
}

// buildTable creates the records table from the panel's rows.
func (m BrowserModel) buildTable() table.Model {
	columns := []table.Column{
		{Title: "Receipt", Width: 10},                       //nolint:mnd // Column width.
		{Title: m.columnTitle("Date", "date"), Width: 12},   //nolint:mnd // Column width.
		{Title: "Seller", Width: 22},                        //nolint:mnd // Column width.
		{Title: "Customer", Width: 22},                      //nolint:mnd // Column width.
		{Title: m.columnTitle("Total", "total"), Width: 12}, //nolint:mnd // Column width.
	}

	records := m.panel.Rows()
	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = table.Row{r.ID, r.Date, r.Seller, r.Customer, fmt.Sprintf("%.2f", r.Total)}
	}

	height := m.height - chromeHeight
	if height < minTableHeight {
		height = minTableHeight
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)

	return t
}

// columnTitle appends the sort indicator of column to title.
func (m BrowserModel) columnTitle(title, column string) string {
	sorter := m.orch.Pipeline().Sorter
	if sorter == nil {
		return title
	}
	switch sorter.State(column) {
	case query.DirectionAsc:
		return title + " ▲"
	case query.DirectionDesc:
		return title + " ▼"
	case query.DirectionNone:
		return title
	}
	return title
}

// Err returns the last fetch or load error.
func (m BrowserModel) Err() error {
	return m.err
}

// State returns the view state.
func (m BrowserModel) State() ViewState {
	return m.state
}

// Fetching reports whether a cycle is in flight.
func (m BrowserModel) Fetching() bool {
	return m.fetching
}

// Panel returns the form and presenter.
func (m BrowserModel) Panel() *Panel {
	return m.panel
}

// Run starts the browser on the terminal and blocks until it exits.
func Run(ctx context.Context, m BrowserModel, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(m, opts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
