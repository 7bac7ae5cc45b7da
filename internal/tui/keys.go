package tui

// Key bindings.
const (
	keyQuit      = "q"
	keyCtrlC     = "ctrl+c"
	keyEnter     = "enter"
	keyEsc       = "esc"
	keyTab       = "tab"
	keyShiftTab  = "shift+tab"
	keySlash     = "/"
	keyS         = "s"
	keyShiftS    = "S"
	keyF         = "f"
	keyX         = "x"
	keyR         = "r"
	keyLeft      = "left"
	keyRight     = "right"
	keyHome      = "home"
	keyEnd       = "end"
	keyUp        = "up"
	keyDown      = "down"
	keyRefresh   = "ctrl+r"
	keyResetForm = "ctrl+l"
)

// ViewState is the top-level state of the browser.
type ViewState int

// Browser states.
const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateError
	ViewStateQuitting
)

// Focus identifies which input receives key presses.
type Focus int

// Focus targets.
const (
	FocusTable Focus = iota
	FocusSearch
	FocusFilters
)
