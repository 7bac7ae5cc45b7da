package query

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is the tri-state sort value of a column.
type Direction int

// Sort directions, in cycle order.
const (
	DirectionNone Direction = iota
	DirectionAsc
	DirectionDesc
)

// Common sort errors.
var (
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'total:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrUnknownSortColumn = errors.New("unknown sort column")
)

func (d Direction) String() string {
	switch d {
	case DirectionAsc:
		return "asc"
	case DirectionDesc:
		return "desc"
	case DirectionNone:
		return "none"
	default:
		return "none"
	}
}

// Next returns the following state in the none → asc → desc → none cycle.
func (d Direction) Next() Direction {
	switch d {
	case DirectionNone:
		return DirectionAsc
	case DirectionAsc:
		return DirectionDesc
	case DirectionDesc:
		return DirectionNone
	default:
		return DirectionNone
	}
}

// ParseDirection parses "asc", "desc" or "none".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return DirectionAsc, nil
	case "desc":
		return DirectionDesc, nil
	case "", "none":
		return DirectionNone, nil
	default:
		return DirectionNone, fmt.Errorf("%w: got %q", ErrInvalidSortOrder, s)
	}
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses "field" or "field:order". A bare field sorts ascending.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field string, dir Direction, err error) {
	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		dir = DirectionAsc
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		dir, err = ParseDirection(parts[1])
		if err != nil {
			return "", DirectionNone, err
		}
		if dir == DirectionNone {
			return "", DirectionNone, fmt.Errorf("%w: got %q", ErrInvalidSortOrder, parts[1])
		}
	default:
		return "", DirectionNone, fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", DirectionNone, ErrEmptySortField
	}
	return field, dir, nil
}

// SorterOption configures a Sorter.
type SorterOption func(*Sorter) error

// WithInitialSort activates one column at construction time.
func WithInitialSort(column string, dir Direction) SorterOption {
	return func(s *Sorter) error {
		if !s.Has(column) {
			return fmt.Errorf("%w: %q", ErrUnknownSortColumn, column)
		}
		s.states[column] = dir
		return nil
	}
}

// Sorter owns the per-column sort state. At most one column is active; the state
// only changes through Apply with a sort action.
type Sorter struct {
	columns []string
	states  map[string]Direction
}

// NewSorter creates a Sorter for the given columns, all starting at none.
func NewSorter(columns []string, opts ...SorterOption) (*Sorter, error) {
	s := &Sorter{
		columns: make([]string, len(columns)),
		states:  make(map[string]Direction, len(columns)),
	}
	copy(s.columns, columns)
	for _, c := range columns {
		s.states[c] = DirectionNone
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Columns returns the sortable columns.
func (s *Sorter) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Has reports whether column is sortable.
func (s *Sorter) Has(column string) bool {
	_, ok := s.states[column]
	return ok
}

// State returns the current direction of column.
func (s *Sorter) State(column string) Direction {
	return s.states[column]
}

// Active returns the active column and direction, if any.
func (s *Sorter) Active() (string, Direction, bool) {
	for _, c := range s.columns {
		if d := s.states[c]; d != DirectionNone {
			return c, d, true
		}
	}
	return "", DirectionNone, false
}

// Apply adds sort=<field>:<direction>. A sort action on a known column advances
// that column and resets every other column to none. Any other action re-reads
// the persisted state, so re-renders keep emitting the same value. With no active
// column it returns q.
func (s *Sorter) Apply(q Query, _ UIState, a Action) Query {
	var (
		field string
		dir   Direction
	)

	if a.Kind == ActionSort && s.Has(a.Column) {
		dir = s.states[a.Column].Next()
		field = a.Column
		for _, c := range s.columns {
			s.states[c] = DirectionNone
		}
		s.states[field] = dir
	} else {
		field, dir, _ = s.Active()
	}

	if field == "" || dir == DirectionNone {
		return q
	}
	return q.With(KeySort, field+":"+dir.String())
}
