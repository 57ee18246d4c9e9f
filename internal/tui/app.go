// Package tui is the terminal front end. The model owns four screens:
// login, session dashboard, chat and settings. Chat content lives in the
// store and the chat component re-renders from it.
package tui

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vxpredict/predict-tui/internal/api"
	"github.com/vxpredict/predict-tui/internal/auth"
	"github.com/vxpredict/predict-tui/internal/config"
	"github.com/vxpredict/predict-tui/internal/storage"
	"github.com/vxpredict/predict-tui/internal/store"
	"github.com/vxpredict/predict-tui/internal/tui/components/chat"
	"github.com/vxpredict/predict-tui/internal/tui/components/input"
	"github.com/vxpredict/predict-tui/internal/tui/styles"
)

// View selects which screen the model renders.
type View int

const (
	ViewLogin View = iota
	ViewDashboard
	ViewChat
	ViewSettings
)

// State tracks whether a response stream is in flight.
type State int

const (
	StateIdle State = iota
	StateStreaming
)

// SharedState holds the program reference so goroutines outside the update
// loop can send messages into it.
type SharedState struct {
	mu      sync.Mutex
	program *tea.Program
}

// SetProgram sets the program reference.
func (s *SharedState) SetProgram(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
}

// GetProgram gets the program reference.
func (s *SharedState) GetProgram() *tea.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

// Send delivers a message to the running program, if any.
func (s *SharedState) Send(msg tea.Msg) {
	if p := s.GetProgram(); p != nil {
		p.Send(msg)
	}
}

// Model is the main application model.
type Model struct {
	cfg    *config.Config
	client *api.Client
	creds  *auth.Store
	recent *storage.RecentStore
	store  *store.Store
	shared *SharedState

	view  View
	state State

	login     textinput.Model
	spin      spinner.Model
	chat      chat.Model
	input     input.Model
	sessionID string
	firstSent bool

	recents []storage.RecentSession
	cursor  int

	usage     *api.Usage
	showPanel bool

	events <-chan api.StreamEvent
	cancel context.CancelFunc

	width  int
	height int
	ready  bool
	busy   bool
	err    error
}

// New creates the application model. The initial screen depends on whether a
// stored credential is present.
func New(cfg *config.Config, client *api.Client, creds *auth.Store, recent *storage.RecentStore, shared *SharedState) Model {
	ti := textinput.New()
	ti.Placeholder = "Vx Predict API key"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 256
	ti.Width = 48
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Secondary)

	st := store.New()

	view := ViewLogin
	if creds.Authenticated() {
		view = ViewDashboard
	}

	return Model{
		cfg:    cfg,
		client: client,
		creds:  creds,
		recent: recent,
		store:  st,
		shared: shared,
		view:   view,
		state:  StateIdle,
		login:  ti,
		spin:   sp,
		chat:   chat.New(st, 80, 20),
		input:  input.New(80),
	}
}

// SetProgram stores the program reference for out-of-loop sends.
func (m *Model) SetProgram(p *tea.Program) {
	m.shared.SetProgram(p)
}

// Init initializes the application.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.input.Init(), m.chat.Init()}
	if m.view == ViewDashboard {
		cmds = append(cmds, m.loadRecentCmd())
	}
	return tea.Batch(cmds...)
}
