package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vxpredict/predict-tui/internal/api"
	"github.com/vxpredict/predict-tui/internal/logger"
	"github.com/vxpredict/predict-tui/internal/store"
)

// Update handles all application messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		chatWidth := msg.Width
		if m.showPanel {
			chatWidth = msg.Width - panelWidth
		}
		chatHeight := msg.Height - 9
		if chatHeight < 5 {
			chatHeight = 5
		}
		m.chat.SetSize(chatWidth, chatHeight)
		m.input.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state == StateStreaming || m.busy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case LoginResultMsg:
		m.busy = false
		if msg.Err != nil {
			m.err = loginError(msg.Err)
			return m, nil
		}
		if err := m.creds.Set(msg.Key); err != nil {
			m.err = fmt.Errorf("save credential: %w", err)
			return m, nil
		}
		m.err = nil
		m.login.Reset()
		m.view = ViewDashboard
		return m, m.loadRecentCmd()

	case UnauthorizedMsg:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.state = StateIdle
		m.busy = false
		m.view = ViewLogin
		m.err = errors.New("API key rejected, sign in again")
		m.login.Reset()
		return m, m.login.Focus()

	case SessionCreatedMsg:
		m.openSession(msg.ID, nil)
		return m, tea.Batch(m.input.Focus(), m.fetchUsageCmd())

	case HistoryLoadedMsg:
		m.openSession(msg.SessionID, msg.Messages)
		return m, tea.Batch(m.input.Focus(), m.fetchUsageCmd())

	case RecentSessionsMsg:
		m.busy = false
		m.recents = msg.Sessions
		if m.cursor >= len(m.recents) {
			m.cursor = 0
		}
		return m, nil

	case MessageSentMsg:
		placeholder := store.NewAssistantPlaceholder(msg.UserID)
		m.store.AddMessage(placeholder)
		m.store.StartStreaming(placeholder.ID)
		m.chat.Refresh()

		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		return m, openStreamCmd(ctx, m.client, msg.StreamID)

	case StreamOpenedMsg:
		m.events = msg.Events
		return m, waitForEvent(m.events)

	case StreamEventMsg:
		m.store.Apply(msg.Event)
		m.chat.Refresh()
		if msg.Event.Terminal() {
			if msg.Event.Type == api.EventError {
				m.err = fmt.Errorf("%s: %s", msg.Event.Code, msg.Event.Message)
			}
			m.state = StateIdle
			m.cancel = nil
			return m, tea.Batch(m.input.Focus(), m.fetchUsageCmd())
		}
		return m, waitForEvent(m.events)

	case StreamClosedMsg:
		if m.state == StateStreaming {
			m.store.CompleteStreaming()
			m.chat.Refresh()
			m.state = StateIdle
			m.cancel = nil
			return m, m.input.Focus()
		}
		return m, nil

	case UsageMsg:
		m.usage = msg.Usage
		return m, nil

	case ErrMsg:
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			// UnauthorizedMsg is already on its way from the client handler.
			return m, nil
		}
		m.err = msg.Err
		m.busy = false
		if m.state == StateStreaming {
			m.store.CompleteStreaming()
			m.chat.Refresh()
			m.state = StateIdle
			m.cancel = nil
			return m, m.input.Focus()
		}
		return m, nil
	}

	return m.updateChildren(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewLogin:
		return m.handleLoginKey(msg)
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		key := strings.TrimSpace(m.login.Value())
		if key == "" || m.busy {
			return m, nil
		}
		m.busy = true
		m.err = nil
		return m, tea.Batch(m.validateKeyCmd(key), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return m, cmd
}

// handleSettingsKey drives the key-replacement flow. A submitted key goes
// through the same backend validation as login.
func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ViewDashboard
		m.err = nil
		m.login.Reset()
		return m, nil
	case "enter":
		key := strings.TrimSpace(m.login.Value())
		if key == "" || m.busy {
			return m, nil
		}
		m.busy = true
		m.err = nil
		return m, tea.Batch(m.validateKeyCmd(key), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return m, cmd
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.recents)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if m.busy || len(m.recents) == 0 {
			return m, nil
		}
		m.busy = true
		m.err = nil
		return m, tea.Batch(m.loadHistoryCmd(m.recents[m.cursor].ID), m.spin.Tick)
	case "n":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.err = nil
		return m, tea.Batch(m.createSessionCmd(), m.spin.Tick)
	case "s":
		m.view = ViewSettings
		m.err = nil
		m.login.Reset()
		return m, m.login.Focus()
	case "x":
		if len(m.recents) == 0 {
			return m, nil
		}
		if m.recent != nil {
			if err := m.recent.Remove(m.recents[m.cursor].ID); err != nil {
				logger.Warnf("remove recent session: %v", err)
			}
		}
		return m, m.loadRecentCmd()
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.state == StateStreaming && m.cancel != nil {
			return m.cancelStream()
		}
		return m, tea.Quit

	case "esc":
		if m.state == StateStreaming && m.cancel != nil {
			return m.cancelStream()
		}
		m.view = ViewDashboard
		m.err = nil
		return m, m.loadRecentCmd()

	case "enter":
		if m.state == StateIdle && m.input.Value() != "" {
			return m.sendMessage()
		}

	case "ctrl+a":
		m.showPanel = !m.showPanel
		chatWidth := m.width
		if m.showPanel {
			chatWidth = m.width - panelWidth
		}
		m.chat.SetSize(chatWidth, m.chat.Height())
		return m, nil

	case "ctrl+n":
		if m.state == StateIdle && !m.busy {
			m.busy = true
			return m, tea.Batch(m.createSessionCmd(), m.spin.Tick)
		}
	}

	return m.updateChildren(msg)
}

// cancelStream aborts the in-flight response. The channel close delivers the
// StreamClosedMsg that finalizes the partial message.
func (m Model) cancelStream() (tea.Model, tea.Cmd) {
	m.cancel()
	m.cancel = nil
	return m, nil
}

func (m Model) sendMessage() (tea.Model, tea.Cmd) {
	text := m.input.Value()

	user := store.NewUserMessage(text)
	m.store.AddMessage(user)
	m.chat.Refresh()

	m.input.Clear()
	m.input.Blur()
	m.state = StateStreaming
	m.err = nil

	if !m.firstSent {
		m.firstSent = true
		if m.recent != nil {
			if err := m.recent.Touch(m.sessionID, sessionTitle(text)); err != nil {
				logger.Warnf("record recent session: %v", err)
			}
		}
	}

	return m, tea.Batch(m.sendMessageCmd(text, user.ID), m.spin.Tick)
}

// openSession resets chat state for the given session. history is nil for a
// brand new session.
func (m *Model) openSession(sessionID string, history []api.Message) {
	m.busy = false
	m.err = nil
	m.sessionID = sessionID
	m.usage = nil
	m.firstSent = len(history) > 0
	m.store.Clear()
	if len(history) > 0 {
		m.store.ReplaceMessages(history)
	}
	m.chat.Refresh()
	m.view = ViewChat

	if m.recent != nil {
		if err := m.recent.Touch(sessionID, ""); err != nil {
			logger.Warnf("record recent session: %v", err)
		}
	}
}

func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.view == ViewLogin || m.view == ViewSettings {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	if m.view == ViewChat {
		if m.state == StateIdle {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func sessionTitle(text string) string {
	title := strings.Join(strings.Fields(text), " ")
	if len(title) > 48 {
		title = title[:48]
	}
	return title
}

func loginError(err error) error {
	var se *api.StatusError
	if errors.As(err, &se) && se.StatusCode == 403 {
		return errors.New("invalid API key")
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return errors.New("invalid API key")
	}
	return fmt.Errorf("could not reach backend: %w", err)
}
