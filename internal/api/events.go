package api

import "encoding/json"

// EventType is the discriminant carried by every stream event.
type EventType string

const (
	EventToken           EventType = "token"
	EventToolStart       EventType = "tool_start"
	EventToolResult      EventType = "tool_result"
	EventArtifactCreated EventType = "artifact_created"
	EventError           EventType = "error"
	EventDone            EventType = "done"
)

// StreamEvent is one decoded frame from the event stream. Exactly one
// group of fields is populated depending on Type; the rest stay zero.
type StreamEvent struct {
	Type EventType `json:"type"`

	// token
	Content string `json:"content,omitempty"`

	// tool_start / tool_result
	ToolName string         `json:"tool_name,omitempty"`
	Input    map[string]any `json:"input,omitempty"`
	Result   string         `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`

	// artifact_created
	ArtifactID string `json:"artifact_id,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Title      string `json:"title,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// done
	Provider   string `json:"provider,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
}

// Terminal reports whether this event ends the stream. The server sends
// nothing meaningful after an error frame, so both variants terminate.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// parseEvent decodes one data frame into a StreamEvent.
func parseEvent(data []byte) (StreamEvent, error) {
	var ev StreamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return StreamEvent{}, err
	}
	return ev, nil
}
