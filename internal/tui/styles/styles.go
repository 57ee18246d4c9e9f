// Package styles holds the shared lipgloss palette for the TUI.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#2563EB")
	Secondary = lipgloss.Color("#10B981")
	Error     = lipgloss.Color("#EF4444")
	Warning   = lipgloss.Color("#F59E0B")
	Muted     = lipgloss.Color("#6B7280")
	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#E5E7EB")

	// Message styles
	UserLabel = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	UserMessage = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(White).
			Bold(true)

	AssistantLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	AssistantMessage = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(LightGray)

	// Tool call styles
	ToolEvent = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			PaddingLeft(2)

	ToolName = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	ToolStatus = lipgloss.NewStyle().
			Foreground(Secondary)

	ToolStatusError = lipgloss.NewStyle().
			Foreground(Error)

	// Artifact styles
	ArtifactLine = lipgloss.NewStyle().
			Foreground(Warning).
			PaddingLeft(2)

	ArtifactTitle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// Panels
	PanelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	InputBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	StatusBarStreaming = lipgloss.NewStyle().
				Foreground(Primary).
				Padding(0, 1)

	StatusBarError = lipgloss.NewStyle().
			Foreground(Error).
			Padding(0, 1)

	// Header
	Header = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true).
		Padding(0, 1)

	// Errors shown inline in a view
	InlineError = lipgloss.NewStyle().
			Foreground(Error)

	// Cursor for streaming
	StreamingCursor = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Dashboard list
	ListItem = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(LightGray)

	ListSelected = lipgloss.NewStyle().
			PaddingLeft(0).
			Foreground(Primary).
			Bold(true)
)
