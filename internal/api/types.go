package api

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolStatus is the lifecycle state of a tool call.
type ToolStatus string

const (
	ToolRunning   ToolStatus = "running"
	ToolCompleted ToolStatus = "completed"
	ToolError     ToolStatus = "error"
)

// ToolCall records one backend tool invocation attached to a message.
type ToolCall struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Status ToolStatus     `json:"status"`
	Input  map[string]any `json:"input,omitempty"`
	Result string         `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Message is one entry in a session's conversation thread.
// Content is mutable while the message is being streamed.
type Message struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	TokensUsed int        `json:"tokens_used"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ArtifactKind enumerates the artifact payloads the backend produces.
type ArtifactKind string

const (
	ArtifactHTML      ArtifactKind = "html"
	ArtifactMarkdown  ArtifactKind = "markdown"
	ArtifactCode      ArtifactKind = "code"
	ArtifactChartJSON ArtifactKind = "chart_json"
	ArtifactTable     ArtifactKind = "table"
)

// Artifact is a rendered payload produced by a backend tool during a stream.
type Artifact struct {
	ID      string       `json:"id"`
	Kind    ArtifactKind `json:"kind"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
}

// CreateSessionResponse is returned by POST /api/sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// PostMessageRequest is the body of POST /api/sessions/{id}/messages.
type PostMessageRequest struct {
	Text         string `json:"text"`
	ProviderHint string `json:"provider_hint,omitempty"`
}

// PostMessageResponse is returned by POST /api/sessions/{id}/messages.
type PostMessageResponse struct {
	StreamID string `json:"stream_id"`
}

// Usage aggregates token and cost counters for one session.
type Usage struct {
	SessionID          string  `json:"session_id"`
	TotalInputTokens   int     `json:"total_input_tokens"`
	TotalOutputTokens  int     `json:"total_output_tokens"`
	TotalTokens        int     `json:"total_tokens"`
	EstimatedTotalCost float64 `json:"estimated_total_cost"`
	RecordsCount       int     `json:"records_count"`
}
