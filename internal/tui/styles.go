package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
const (
	colorPrimary = lipgloss.Color("39")
	colorSubtle  = lipgloss.Color("241")
	colorError   = lipgloss.Color("196")
	colorInfo    = lipgloss.Color("45")
	colorValue   = lipgloss.Color("252")
	colorActive  = lipgloss.Color("229")
)

// Shared styles.
//
//nolint:gochecknoglobals // lipgloss styles are package-level by convention.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	LabelStyle  = lipgloss.NewStyle().Foreground(colorSubtle)
	ValueStyle  = lipgloss.NewStyle().Foreground(colorValue)
	SubtleStyle = lipgloss.NewStyle().Foreground(colorSubtle).Italic(true)
	InfoStyle   = lipgloss.NewStyle().Foreground(colorInfo)
	ErrorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(colorSubtle)
	TableSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorActive).Background(lipgloss.Color("57"))

	PageStyle         = lipgloss.NewStyle().Foreground(colorValue).Padding(0, 1)
	ActivePageStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorActive).Background(colorPrimary).Padding(0, 1)
	FocusedFieldStyle = lipgloss.NewStyle().Foreground(colorActive).Bold(true)
)
