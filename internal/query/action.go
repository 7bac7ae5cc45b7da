package query

import (
	"errors"
	"fmt"
	"strings"
)

// ActionKind identifies the control that triggered a render cycle.
type ActionKind int

// Action kinds. ActionNone is a passive re-render, e.g. after a field change.
const (
	ActionNone ActionKind = iota
	ActionPrev
	ActionNext
	ActionFirst
	ActionLast
	ActionSort
	ActionClear
)

var actionNames = map[ActionKind]string{ //nolint:gochecknoglobals // Lookup table.
	ActionNone:  "",
	ActionPrev:  "prev",
	ActionNext:  "next",
	ActionFirst: "first",
	ActionLast:  "last",
	ActionSort:  "sort",
	ActionClear: "clear",
}

// ErrUnknownAction is returned by ParseAction for names outside the vocabulary.
var ErrUnknownAction = errors.New("unknown action")

// Action describes the triggering control. Column is set for ActionSort,
// Field for ActionClear.
type Action struct {
	Kind   ActionKind
	Column string
	Field  string
}

// None returns the passive action.
func None() Action { return Action{} }

// Prev moves one page back.
func Prev() Action { return Action{Kind: ActionPrev} }

// Next moves one page forward.
func Next() Action { return Action{Kind: ActionNext} }

// First jumps to the first page.
func First() Action { return Action{Kind: ActionFirst} }

// Last jumps to the last page.
func Last() Action { return Action{Kind: ActionLast} }

// Sort advances the sort state of column.
func Sort(column string) Action { return Action{Kind: ActionSort, Column: column} }

// Clear empties the filter field before state is read.
func Clear(field string) Action { return Action{Kind: ActionClear, Field: field} }

// Name returns the action name used by the presentation layer ("" for none).
func (a Action) Name() string {
	return actionNames[a.Kind]
}

// IsNone reports whether the action is passive.
func (a Action) IsNone() bool {
	return a.Kind == ActionNone
}

// IsPaging reports whether the action is one of prev/next/first/last.
func (a Action) IsPaging() bool {
	switch a.Kind {
	case ActionPrev, ActionNext, ActionFirst, ActionLast:
		return true
	case ActionNone, ActionSort, ActionClear:
		return false
	default:
		return false
	}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionNone:
		return "none"
	case ActionSort:
		return "sort:" + a.Column
	case ActionClear:
		return "clear:" + a.Field
	case ActionPrev, ActionNext, ActionFirst, ActionLast:
		return a.Name()
	default:
		return fmt.Sprintf("action(%d)", int(a.Kind))
	}
}

// ParseAction parses "prev", "next", "first", "last", "sort:<column>" or
// "clear:<field>". The empty string and "none" yield the passive action.
func ParseAction(s string) (Action, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(s), ":")
	name = strings.ToLower(name)

	switch name {
	case "", "none":
		return None(), nil
	case "prev":
		return Prev(), nil
	case "next":
		return Next(), nil
	case "first":
		return First(), nil
	case "last":
		return Last(), nil
	case "sort":
		if arg == "" {
			return Action{}, fmt.Errorf("%w: sort requires a column (sort:<column>)", ErrUnknownAction)
		}
		return Sort(arg), nil
	case "clear":
		if arg == "" {
			return Action{}, fmt.Errorf("%w: clear requires a field (clear:<field>)", ErrUnknownAction)
		}
		return Clear(arg), nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}
