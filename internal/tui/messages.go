package tui

import (
	"github.com/vxpredict/predict-tui/internal/api"
	"github.com/vxpredict/predict-tui/internal/storage"
)

// LoginResultMsg reports the outcome of validating a candidate API key.
type LoginResultMsg struct {
	Key string
	Err error
}

// UnauthorizedMsg is sent when any backend call answered 401. The credential
// is already cleared by the time it arrives.
type UnauthorizedMsg struct{}

// SessionCreatedMsg carries the id of a freshly created session.
type SessionCreatedMsg struct {
	ID string
}

// HistoryLoadedMsg carries the message history of an opened session.
type HistoryLoadedMsg struct {
	SessionID string
	Messages  []api.Message
}

// RecentSessionsMsg carries the persisted recent-sessions list.
type RecentSessionsMsg struct {
	Sessions []storage.RecentSession
}

// MessageSentMsg reports that a user message was accepted and carries the
// stream handle for the assistant response.
type MessageSentMsg struct {
	StreamID string
	UserID   string
}

// StreamOpenedMsg carries the event channel of a subscribed stream.
type StreamOpenedMsg struct {
	Events <-chan api.StreamEvent
}

// StreamEventMsg carries one decoded stream event.
type StreamEventMsg struct {
	Event api.StreamEvent
}

// StreamClosedMsg is sent when the event channel closes. It is the backstop
// that finalizes the streaming cursor when no terminal event was seen, for
// example after a caller-initiated cancel.
type StreamClosedMsg struct{}

// UsageMsg carries refreshed usage counters for the open session.
type UsageMsg struct {
	Usage *api.Usage
}

// ErrMsg is a generic failure surfaced as display-only text.
type ErrMsg struct {
	Err error
}
