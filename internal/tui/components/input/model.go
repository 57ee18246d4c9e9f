// Package input wraps a textarea for composing chat messages.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vxpredict/predict-tui/internal/tui/styles"
)

// Model is the message composer.
type Model struct {
	textarea textarea.Model
	width    int
	history  []string
	histIdx  int
	focused  bool
}

// New creates a composer sized to width.
func New(width int) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about forecasts, inventory, shortages..."
	ta.Focus()
	ta.CharLimit = 4096
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("shift+enter")

	ta.FocusedStyle.Placeholder = ta.FocusedStyle.Placeholder.Foreground(styles.Muted)
	ta.BlurredStyle.Placeholder = ta.BlurredStyle.Placeholder.Foreground(styles.Muted)

	return Model{
		textarea: ta,
		width:    width,
		history:  []string{},
		histIdx:  -1,
		focused:  true,
	}
}

// Init initializes the composer.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles input keys, including history navigation on up/down when
// the cursor is on an empty line.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up":
			if m.textarea.Value() == "" || m.histIdx >= 0 {
				if m.histIdx < len(m.history)-1 {
					m.histIdx++
					m.textarea.SetValue(m.history[len(m.history)-1-m.histIdx])
					m.textarea.CursorEnd()
				}
				return m, nil
			}
		case "down":
			if m.histIdx >= 0 {
				if m.histIdx > 0 {
					m.histIdx--
					m.textarea.SetValue(m.history[len(m.history)-1-m.histIdx])
					m.textarea.CursorEnd()
				} else {
					m.histIdx = -1
					m.textarea.SetValue("")
				}
				return m, nil
			}
		case "ctrl+u":
			m.textarea.SetValue("")
			m.histIdx = -1
			return m, nil
		}
	}

	if m.focused {
		m.textarea, cmd = m.textarea.Update(msg)
	}
	return m, cmd
}

// View renders the composer with a simple prompt.
func (m Model) View() string {
	prompt := lipgloss.NewStyle().Foreground(styles.Muted).Bold(true).Render("> ")
	return lipgloss.JoinHorizontal(lipgloss.Top, prompt, m.textarea.View())
}

// Value returns the trimmed composer text.
func (m Model) Value() string {
	return strings.TrimSpace(m.textarea.Value())
}

// Clear resets the composer and pushes the sent text onto the history.
func (m *Model) Clear() {
	value := m.textarea.Value()
	if strings.TrimSpace(value) != "" {
		m.history = append(m.history, value)
	}
	m.textarea.Reset()
	m.histIdx = -1
}

// SetWidth updates the composer width.
func (m *Model) SetWidth(width int) {
	m.width = width
	m.textarea.SetWidth(width - 6)
}

// Focus focuses the composer.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.textarea.Focus()
}

// Blur unfocuses the composer.
func (m *Model) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// IsFocused reports whether the composer has focus.
func (m Model) IsFocused() bool {
	return m.focused
}
