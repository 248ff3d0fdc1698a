package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelltint/shelltint/internal/client"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
	"github.com/shelltint/shelltint/internal/models"
)

// Control rows, in display order.
const (
	rowTaskbar = iota
	rowStart
	rowCount
)

var rowSurface = [rowCount]protocol.Surface{protocol.Taskbar, protocol.Start}

var errNotConnected = errors.New("not connected to the daemon")

// slider is the local state of one opacity control. value leads the
// daemon while a change is waiting out the debounce window.
type slider struct {
	value   int
	seq     int
	pending bool
}

// Model is the root Bubbletea model for the dashboard.
type Model struct {
	client    *client.Client
	connected bool
	attempt   int
	program   *programRef

	status     protocol.Status
	haveStatus bool
	sliders    [rowCount]slider
	selected   int

	err    string
	errSeq int

	keys  keyMap
	help  help.Model
	bar   progress.Model
	width int
}

// NewModel creates the initial dashboard model.
func NewModel(program *programRef) Model {
	return Model{
		program: program,
		keys:    keys,
		help:    help.New(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30)),
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return connectCmd()
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConnectedMsg:
		m.client = msg.Client
		m.connected = true
		m.attempt = 0
		if m.program != nil {
			go listen(msg.Client, m.program)
		}
		return m, nil

	case DisconnectedMsg:
		// A stale listener from a replaced connection reports late.
		if msg.Client != nil && msg.Client != m.client {
			return m, nil
		}
		if m.client != nil {
			_ = m.client.Close()
		}
		m.client = nil
		m.connected = false
		wait := client.Backoff(m.attempt)
		m.attempt++
		cmd := m.setError(fmt.Sprintf("Disconnected: %v. Retrying in %s", msg.Err, wait))
		return m, tea.Batch(cmd, reconnectCmd(wait))

	case ReconnectMsg:
		if m.connected {
			return m, nil
		}
		return m, connectCmd()

	case StatusMsg:
		m.applyStatus(msg.Status)
		return m, nil

	case DaemonErrorMsg:
		text := msg.Error.Message
		if msg.Error.Code != "" {
			text = fmt.Sprintf("%s (%s)", msg.Error.Message, msg.Error.Code)
		}
		cmd := m.setError(text)
		return m, cmd

	case ErrorMsg:
		cmd := m.setError(msg.Err.Error())
		return m, cmd

	case ClearErrorMsg:
		if msg.seq == m.errSeq {
			m.err = ""
		}
		return m, nil

	case opacityDebounceMsg:
		s := &m.sliders[msg.surface]
		if msg.seq != s.seq || !s.pending {
			return m, nil
		}
		s.pending = false
		cmd := m.send(protocol.SetOpacity{Surface: rowSurface[msg.surface], Opacity: s.value})
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.selected = (m.selected + rowCount - 1) % rowCount
	case key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + 1) % rowCount
	case key.Matches(msg, m.keys.Decrease):
		return m.adjust(-5)
	case key.Matches(msg, m.keys.Increase):
		return m.adjust(5)
	case key.Matches(msg, m.keys.FineDown):
		return m.adjust(-1)
	case key.Matches(msg, m.keys.FineUp):
		return m.adjust(1)
	case key.Matches(msg, m.keys.Toggle):
		cmd := m.send(protocol.SetEnabled{Surface: rowSurface[m.selected], Enabled: !m.enabled(m.selected)})
		return m, cmd
	}
	return m, nil
}

// adjust moves the selected slider and restarts its debounce window.
func (m Model) adjust(delta int) (tea.Model, tea.Cmd) {
	s := &m.sliders[m.selected]
	next := models.ClampOpacity(s.value + delta)
	if next == s.value {
		return m, nil
	}
	s.value = next
	s.seq++
	s.pending = true
	return m, debounceCmd(m.selected, s.seq)
}

func (m *Model) applyStatus(st protocol.Status) {
	m.status = st
	m.haveStatus = true
	for row, pct := range [rowCount]int{st.Taskbar.Opacity, st.Start.Opacity} {
		if !m.sliders[row].pending {
			m.sliders[row].value = pct
		}
	}
}

func (m Model) enabled(row int) bool {
	if row == rowStart {
		return m.status.Start.Enabled
	}
	return m.status.Taskbar.Enabled
}

func (m *Model) send(cmd protocol.Command) tea.Cmd {
	if m.client == nil {
		return m.setError(errNotConnected.Error())
	}
	return sendCmd(m.client, cmd)
}

func (m *Model) setError(text string) tea.Cmd {
	m.err = text
	m.errSeq++
	return clearErrorCmd(m.errSeq)
}

func (m Model) close() {
	if m.client != nil {
		_ = m.client.Close()
	}
}
