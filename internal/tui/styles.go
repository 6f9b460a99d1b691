package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray
	colorError     = lipgloss.Color("9")   // bright red

	// Input area
	styleInput = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// List items
	styleListSelected = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	styleFolder = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleDocument = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleUnsupported = lipgloss.NewStyle().
				Foreground(colorDim)

	styleCached = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleMatch = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true).
			Underline(true)

	// Panels
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	styleNotice = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	// Breadcrumb
	styleTitle = lipgloss.NewStyle().
			Foreground(colorDim).
			Bold(true)
)
