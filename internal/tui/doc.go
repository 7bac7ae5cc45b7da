// Package tui provides the interactive records browser built on Bubble Tea.
//
// The browser owns a Panel, which is both the form the orchestrator snapshots
// and the presenter it renders into. Remote fetches run as tea.Cmds and their
// results are applied on the event loop through the orchestrator, so results
// from superseded cycles are dropped instead of overwriting newer rows.
package tui
