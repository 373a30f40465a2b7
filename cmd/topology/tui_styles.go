package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			PaddingLeft(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	canvasFallbackStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(visualization.BackgroundColor))
)

// Layout constants, in terminal cells.
const (
	sidebarWidth = 36
	headerHeight = 1
	footerHeight = 2
	minCanvas    = 10
)
