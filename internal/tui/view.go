package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vxpredict/predict-tui/internal/tui/components/artifact"
	"github.com/vxpredict/predict-tui/internal/tui/styles"
)

const panelWidth = 36

const welcomeText = `Vx Predict

Ask about demand forecasts, inventory positions, and shortage risk
across your vaccine supply chain.

Type a message below to get started.`

// View renders the application.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.view {
	case ViewLogin:
		return m.loginView()
	case ViewDashboard:
		return m.dashboardView()
	case ViewSettings:
		return m.settingsView()
	default:
		return m.chatView()
	}
}

func (m Model) settingsView() string {
	var b strings.Builder
	b.WriteString(styles.Header.Render("Settings"))
	b.WriteString("\n\n")
	b.WriteString("Backend:  " + m.cfg.BackendURL + "\n")
	b.WriteString("API key:  " + m.creds.Masked())
	b.WriteString("\n\n")
	b.WriteString("Replace key:\n")
	b.WriteString(m.login.View())
	b.WriteString("\n")

	if m.busy {
		b.WriteString("\n" + m.spin.View() + styles.StatusBarStreaming.Render("Checking key..."))
	} else if m.err != nil {
		b.WriteString("\n" + styles.InlineError.Render(m.err.Error()))
	}

	b.WriteString("\n\n" + styles.StatusBar.Render("Enter: save • Esc: back"))

	box := styles.PanelBorder.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(styles.Header.Render("Vx Predict"))
	b.WriteString("\n\n")
	b.WriteString("Enter your API key to connect to " + m.cfg.BackendURL)
	b.WriteString("\n\n")
	b.WriteString(m.login.View())
	b.WriteString("\n")

	if m.busy {
		b.WriteString("\n" + m.spin.View() + styles.StatusBarStreaming.Render("Checking key..."))
	} else if m.err != nil {
		b.WriteString("\n" + styles.InlineError.Render(m.err.Error()))
	}

	b.WriteString("\n\n" + styles.StatusBar.Render("Enter: sign in • Esc: quit"))

	box := styles.PanelBorder.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) dashboardView() string {
	var sections []string
	sections = append(sections, styles.Header.Render("Vx Predict — Sessions"))

	if len(m.recents) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Padding(1, 2).
			Render("No recent sessions. Press n to start one.")
		sections = append(sections, empty)
	} else {
		var list strings.Builder
		for i, s := range m.recents {
			title := s.Title
			if title == "" {
				title = s.ID
			}
			line := fmt.Sprintf("%s  %s", title, s.LastOpened.Format("Jan 2 15:04"))
			if i == m.cursor {
				list.WriteString(styles.ListSelected.Render("> " + line))
			} else {
				list.WriteString(styles.ListItem.Render("  " + line))
			}
			list.WriteString("\n")
		}
		sections = append(sections, list.String())
	}

	if m.err != nil {
		sections = append(sections, styles.InlineError.Render(m.err.Error()))
	}
	if m.busy {
		sections = append(sections, m.spin.View()+styles.StatusBarStreaming.Render("Working..."))
	}

	sections = append(sections, styles.StatusBar.Render(
		"n: new session • Enter: open • s: settings • x: forget • q: quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) chatView() string {
	var sections []string

	header := styles.Header.Render(fmt.Sprintf("Vx Predict — session %s", m.sessionID))
	sections = append(sections, header)

	chatView := m.chat.View()
	if m.chat.IsEmpty() {
		welcomeStyle := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Width(m.chat.Width()).
			Align(lipgloss.Center).
			Padding(2, 0)
		chatView = welcomeStyle.Render(welcomeText)
	}

	if m.showPanel {
		panel := m.sidePanel()
		chatView = lipgloss.JoinHorizontal(lipgloss.Top, chatView, panel)
	}
	sections = append(sections, chatView)

	if m.state == StateStreaming {
		waiting := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Italic(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Muted).
			Padding(0, 1).
			Width(m.width - 2).
			Render("Waiting for response... (Esc to cancel)")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.input.View())
	}

	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// sidePanel shows session usage and the artifacts produced so far.
func (m Model) sidePanel() string {
	var b strings.Builder

	b.WriteString(styles.ArtifactTitle.Render("Usage"))
	b.WriteString("\n")
	if m.usage == nil {
		b.WriteString(styles.StatusBar.Render("not loaded"))
	} else {
		b.WriteString(fmt.Sprintf("in: %d  out: %d\n", m.usage.TotalInputTokens, m.usage.TotalOutputTokens))
		b.WriteString(fmt.Sprintf("total: %d\n", m.usage.TotalTokens))
		b.WriteString(fmt.Sprintf("est. cost: $%.4f\n", m.usage.EstimatedTotalCost))
		b.WriteString(fmt.Sprintf("records: %d", m.usage.RecordsCount))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.ArtifactTitle.Render("Artifacts"))
	b.WriteString("\n")
	artifacts := m.store.Artifacts()
	if len(artifacts) == 0 {
		b.WriteString(styles.StatusBar.Render("none yet"))
	} else {
		for _, a := range artifacts {
			b.WriteString(artifact.Summary(a, panelWidth-6))
			b.WriteString("\n")
		}
	}

	return styles.PanelBorder.
		Width(panelWidth - 2).
		Height(m.chat.Height() - 2).
		Render(b.String())
}

func (m Model) renderStatusBar() string {
	var status string
	var statusStyle lipgloss.Style

	switch {
	case m.state == StateStreaming:
		status = m.spin.View() + "Streaming..."
		statusStyle = styles.StatusBarStreaming
	case m.err != nil:
		status = fmt.Sprintf("Error: %v", m.err)
		statusStyle = styles.StatusBarError
	default:
		status = "Ready"
		statusStyle = styles.StatusBar
	}

	left := statusStyle.Render(status)
	help := styles.StatusBar.Render(
		"Enter: send • Ctrl+A: panel • Esc: sessions • Ctrl+C: quit")

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(help)
	spacerWidth := m.width - leftWidth - rightWidth - 2
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := strings.Repeat(" ", spacerWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, help)
}
