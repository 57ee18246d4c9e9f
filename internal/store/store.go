// Package store is the in-memory state container behind the chat view: the
// ordered message thread, the session's artifacts and the transient
// streaming cursor. Every mutation is a total function from current state to
// next state; callers are responsible for valid ids.
//
// The store is mutated only from the bubbletea update loop, so mutations are
// single-threaded and need no locking.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/vxpredict/predict-tui/internal/api"
)

// Store holds the chat state for one open session.
type Store struct {
	messages  []api.Message
	artifacts []api.Artifact

	// streaming cursor: at most one stream is active at a time
	streamingID   string
	streamingText string
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Messages returns the ordered message thread.
func (s *Store) Messages() []api.Message {
	return s.messages
}

// Artifacts returns the session's artifacts in arrival order. The list is
// session-global: artifacts are not tied to the message that produced them.
func (s *Store) Artifacts() []api.Artifact {
	return s.artifacts
}

// AddMessage appends a message to the thread.
func (s *Store) AddMessage(m api.Message) {
	s.messages = append(s.messages, m)
}

// ReplaceMessages swaps in a freshly loaded history.
func (s *Store) ReplaceMessages(msgs []api.Message) {
	s.messages = msgs
}

// AddArtifact appends an artifact.
func (s *Store) AddArtifact(a api.Artifact) {
	s.artifacts = append(s.artifacts, a)
}

// Clear drops all state including any active cursor.
func (s *Store) Clear() {
	s.messages = nil
	s.artifacts = nil
	s.streamingID = ""
	s.streamingText = ""
}

// StartStreaming marks messageID as the stream target and resets the
// accumulated text. Starting a new stream assumes the previous one reached a
// terminal event.
func (s *Store) StartStreaming(messageID string) {
	s.streamingID = messageID
	s.streamingText = ""
}

// StreamingID returns the id of the message currently receiving tokens,
// empty when no stream is active.
func (s *Store) StreamingID() string {
	return s.streamingID
}

// StreamingText returns the text accumulated so far for the active stream.
func (s *Store) StreamingText() string {
	return s.streamingText
}

// CompleteStreaming copies the accumulated text into the target message's
// permanent content and clears the cursor. This is the only place streamed
// content is finalized; calling it with no active stream is a no-op.
func (s *Store) CompleteStreaming() {
	if s.streamingID != "" {
		if m := s.find(s.streamingID); m != nil {
			m.Content = s.streamingText
		}
	}
	s.streamingID = ""
	s.streamingText = ""
}

// Apply folds one stream event into the store, in arrival order. Token text
// accumulates on the cursor; tool and artifact events mutate the target
// message and the artifact list; terminal events finalize the stream.
// Unknown event types are ignored.
func (s *Store) Apply(ev api.StreamEvent) {
	switch ev.Type {
	case api.EventToken:
		s.streamingText += ev.Content

	case api.EventToolStart:
		if m := s.find(s.streamingID); m != nil {
			m.ToolCalls = append(m.ToolCalls, api.ToolCall{
				ID:     uuid.NewString(),
				Name:   ev.ToolName,
				Status: api.ToolRunning,
				Input:  ev.Input,
			})
		}

	case api.EventToolResult:
		s.completeToolCall(ev)

	case api.EventArtifactCreated:
		s.artifacts = append(s.artifacts, api.Artifact{
			ID:      ev.ArtifactID,
			Kind:    api.ArtifactKind(ev.Kind),
			Title:   ev.Title,
			Content: ev.Content,
		})

	case api.EventDone, api.EventError:
		s.CompleteStreaming()
	}
}

// completeToolCall transitions the most recent running call with the event's
// tool name. Matching is by name because the wire contract carries no
// correlation id; two concurrent same-named calls within one message would
// be ambiguous.
func (s *Store) completeToolCall(ev api.StreamEvent) {
	m := s.find(s.streamingID)
	if m == nil {
		return
	}
	for i := len(m.ToolCalls) - 1; i >= 0; i-- {
		tc := &m.ToolCalls[i]
		if tc.Name != ev.ToolName || tc.Status != api.ToolRunning {
			continue
		}
		if ev.Error != "" {
			tc.Status = api.ToolError
			tc.Error = ev.Error
		} else {
			tc.Status = api.ToolCompleted
			tc.Result = ev.Result
		}
		return
	}
}

func (s *Store) find(id string) *api.Message {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return &s.messages[i]
		}
	}
	return nil
}

// NewUserMessage builds a user message with a client-generated id.
func NewUserMessage(text string) api.Message {
	return api.Message{
		ID:        "msg-" + uuid.NewString(),
		Role:      api.RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	}
}

// NewAssistantPlaceholder builds the empty assistant message paired with a
// user message, appended as soon as a stream handle is obtained.
func NewAssistantPlaceholder(userID string) api.Message {
	return api.Message{
		ID:        userID + "-assistant",
		Role:      api.RoleAssistant,
		CreatedAt: time.Now(),
	}
}
