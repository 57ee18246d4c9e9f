// Package chat renders the message thread of the open session. The
// component owns only the viewport; all chat state lives in the store and
// the view is rebuilt from it after every mutation.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vxpredict/predict-tui/internal/store"
)

// Model is the chat thread component.
type Model struct {
	viewport viewport.Model
	store    *store.Store
	width    int
	height   int
}

// New creates a chat component reading from st.
func New(st *store.Store, width, height int) Model {
	vp := viewport.New(width, height)
	vp.SetContent("")

	return Model{
		viewport: vp,
		store:    st,
		width:    width,
		height:   height,
	}
}

// Init initializes the component.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the thread.
func (m Model) View() string {
	return m.viewport.View()
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Refresh()
}

// Refresh rebuilds the viewport content from the store and scrolls to the
// bottom. Call it after any store mutation.
func (m *Model) Refresh() {
	msgs := m.store.Messages()
	artifacts := m.store.Artifacts()
	streamingID := m.store.StreamingID()

	var content strings.Builder
	for i, msg := range msgs {
		isStreaming := msg.ID == streamingID
		content.WriteString(renderMessage(msg, m.store.StreamingText(), isStreaming, artifacts, m.width))
		if i < len(msgs)-1 {
			content.WriteString("\n\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// Width returns the current viewport width.
func (m Model) Width() int {
	return m.width
}

// Height returns the current viewport height.
func (m Model) Height() int {
	return m.height
}

// IsEmpty reports whether the thread has no messages.
func (m Model) IsEmpty() bool {
	return len(m.store.Messages()) == 0
}
