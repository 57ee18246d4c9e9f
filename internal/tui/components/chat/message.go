package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/vxpredict/predict-tui/internal/api"
	"github.com/vxpredict/predict-tui/internal/tui/components/artifact"
	"github.com/vxpredict/predict-tui/internal/tui/styles"
)

// renderMessage renders one thread entry. For the message currently being
// streamed, streamingText carries the partial content and a cursor is shown.
func renderMessage(msg api.Message, streamingText string, isStreaming bool, artifacts []api.Artifact, width int) string {
	var sb strings.Builder

	switch msg.Role {
	case api.RoleUser:
		sb.WriteString(styles.UserLabel.Render("You"))
	case api.RoleAssistant:
		sb.WriteString(styles.AssistantLabel.Render("Assistant"))
	}
	sb.WriteString("\n")

	for _, tc := range msg.ToolCalls {
		sb.WriteString(renderToolCall(tc, width))
		sb.WriteString("\n")
	}

	content := msg.Content
	if isStreaming {
		content = streamingText
	}

	if msg.Role == api.RoleAssistant && content != "" && !isStreaming {
		if rendered, err := renderMarkdown(content, width-4); err == nil {
			content = strings.TrimSpace(rendered)
		}
	}
	if isStreaming {
		content += styles.StreamingCursor.Render("▊")
	}

	switch msg.Role {
	case api.RoleUser:
		sb.WriteString(styles.UserMessage.Width(width - 2).Render(content))
	case api.RoleAssistant:
		sb.WriteString(styles.AssistantMessage.Width(width - 2).Render(content))
	}

	// Artifacts are session-global: every assistant message lists all of
	// them, mirroring how the thread has always rendered.
	if msg.Role == api.RoleAssistant && len(artifacts) > 0 {
		for _, a := range artifacts {
			sb.WriteString("\n")
			sb.WriteString(styles.ArtifactLine.Render("◆ " + artifact.Summary(a, width-6)))
		}
	}

	return sb.String()
}

// renderToolCall renders one tool invocation line with its status.
func renderToolCall(tc api.ToolCall, width int) string {
	var status string
	switch tc.Status {
	case api.ToolCompleted:
		status = styles.ToolStatus.Render("✓")
	case api.ToolError:
		status = styles.ToolStatusError.Render("✗")
	default:
		status = styles.ToolStatus.Render("...")
	}

	input := formatInput(tc.Input)
	line := fmt.Sprintf("%s %s %s", status, styles.ToolName.Render(tc.Name), input)
	return styles.ToolEvent.Render(line)
}

func formatInput(input map[string]any) string {
	if len(input) == 0 {
		return ""
	}
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, input[k]))
	}
	s := strings.Join(parts, " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.Truncate(s, 50, "...")
}

func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content, err
	}
	return r.Render(content)
}
