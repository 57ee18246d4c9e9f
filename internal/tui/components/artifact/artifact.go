// Package artifact renders backend artifacts for the terminal. Each kind
// gets a best-effort text rendering; unknown kinds fall back to raw content.
package artifact

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/tidwall/gjson"

	"github.com/vxpredict/predict-tui/internal/api"
)

// Render returns the artifact's content rendered for a terminal of the given
// width.
func Render(a api.Artifact, width int) string {
	switch a.Kind {
	case api.ArtifactMarkdown:
		return renderMarkdown(a.Content, width)
	case api.ArtifactCode:
		return renderMarkdown("```\n"+a.Content+"\n```", width)
	case api.ArtifactHTML:
		// No HTML layout in a terminal; show the source as a code block.
		return renderMarkdown("```html\n"+a.Content+"\n```", width)
	case api.ArtifactChartJSON:
		return renderChart(a.Content)
	case api.ArtifactTable:
		return renderTable(a.Content, width)
	default:
		return a.Content
	}
}

// Summary returns a one-line description used when artifacts are listed
// inline under an assistant message.
func Summary(a api.Artifact, width int) string {
	line := fmt.Sprintf("[%s] %s", a.Kind, a.Title)
	return runewidth.Truncate(line, width, "...")
}

func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}

// renderChart summarizes a chart payload as a sparkline per series. The
// payload shape is {"title": ..., "series": [{"name": ..., "points": [...]}]}.
func renderChart(content string) string {
	var sb strings.Builder

	if title := gjson.Get(content, "title"); title.Exists() {
		sb.WriteString(title.String())
		sb.WriteString("\n")
	}

	series := gjson.Get(content, "series")
	if !series.IsArray() {
		return strings.TrimRight(sb.String(), "\n")
	}

	series.ForEach(func(_, s gjson.Result) bool {
		name := s.Get("name").String()
		points := s.Get("points")

		var values []float64
		points.ForEach(func(_, p gjson.Result) bool {
			values = append(values, p.Float())
			return true
		})

		if len(values) == 0 {
			sb.WriteString(fmt.Sprintf("%-12s (no points)\n", name))
			return true
		}
		sb.WriteString(fmt.Sprintf("%-12s %s  (%d points, min %.0f, max %.0f)\n",
			name, sparkline(values), len(values), minOf(values), maxOf(values)))
		return true
	})

	return strings.TrimRight(sb.String(), "\n")
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minOf(values), maxOf(values)
	span := hi - lo

	var sb strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkRunes)-1))
		}
		sb.WriteRune(sparkRunes[idx])
	}
	return sb.String()
}

// renderTable lays out a {"columns": [...], "rows": [[...], ...]} payload as
// an aligned text table.
func renderTable(content string, width int) string {
	cols := gjson.Get(content, "columns")
	rows := gjson.Get(content, "rows")
	if !cols.IsArray() {
		return content
	}

	var header []string
	cols.ForEach(func(_, c gjson.Result) bool {
		header = append(header, c.String())
		return true
	})

	var body [][]string
	rows.ForEach(func(_, row gjson.Result) bool {
		var cells []string
		row.ForEach(func(_, cell gjson.Result) bool {
			cells = append(cells, cell.String())
			return true
		})
		body = append(body, cells)
		return true
	})

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range body {
		for i, cell := range row {
			if i < len(widths) && runewidth.StringWidth(cell) > widths[i] {
				widths[i] = runewidth.StringWidth(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			if i < len(widths)-1 {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	for i, w := range widths {
		sb.WriteString(strings.Repeat("-", w))
		if i < len(widths)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")
	for _, row := range body {
		writeRow(row)
	}

	out := strings.TrimRight(sb.String(), "\n")
	if width > 0 {
		var clipped []string
		for _, line := range strings.Split(out, "\n") {
			clipped = append(clipped, runewidth.Truncate(line, width, ""))
		}
		out = strings.Join(clipped, "\n")
	}
	return out
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
