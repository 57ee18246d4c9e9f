package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vxpredict/predict-tui/internal/api"
	"github.com/vxpredict/predict-tui/internal/logger"
)

const requestTimeout = 30 * time.Second

func (m Model) validateKeyCmd(key string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := m.client.ValidateKey(ctx, key)
		return LoginResultMsg{Key: key, Err: err}
	}
}

func (m Model) createSessionCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		id, err := m.client.CreateSession(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SessionCreatedMsg{ID: id}
	}
}

func (m Model) loadHistoryCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		msgs, err := m.client.GetMessages(ctx, sessionID)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return HistoryLoadedMsg{SessionID: sessionID, Messages: msgs}
	}
}

func (m Model) loadRecentCmd() tea.Cmd {
	return func() tea.Msg {
		if m.recent == nil {
			return RecentSessionsMsg{}
		}
		sessions, err := m.recent.List(20)
		if err != nil {
			logger.Warnf("list recent sessions: %v", err)
			return RecentSessionsMsg{}
		}
		return RecentSessionsMsg{Sessions: sessions}
	}
}

func (m Model) sendMessageCmd(text, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		streamID, err := m.client.SendMessage(ctx, m.sessionID, text, m.cfg.ProviderHint)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return MessageSentMsg{StreamID: streamID, UserID: userID}
	}
}

// openStreamCmd subscribes to the response stream. The context comes from
// the model so esc can cancel mid-stream.
func openStreamCmd(ctx context.Context, client *api.Client, streamID string) tea.Cmd {
	return func() tea.Msg {
		events, err := client.SubscribeToStream(ctx, streamID)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StreamOpenedMsg{Events: events}
	}
}

// waitForEvent blocks on the event channel for one event. The update loop
// re-issues it until the channel closes.
func waitForEvent(events <-chan api.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}
		return StreamEventMsg{Event: ev}
	}
}

func (m Model) fetchUsageCmd() tea.Cmd {
	sessionID := m.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		usage, err := m.client.GetUsage(ctx, sessionID)
		if err != nil {
			logger.Warnf("fetch usage for %s: %v", sessionID, err)
			return nil
		}
		return UsageMsg{Usage: usage}
	}
}
