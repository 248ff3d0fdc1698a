package tui

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelltint/shelltint/internal/client"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

const (
	connectTimeout  = 2 * time.Second
	opacityDebounce = 250 * time.Millisecond
	errorDisplay    = 5 * time.Second
)

func connectCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		c, err := client.Dial(ctx)
		if err != nil {
			return DisconnectedMsg{Err: err}
		}
		return ConnectedMsg{Client: c}
	}
}

// listen forwards every daemon message to the program until the connection
// ends. It runs on its own goroutine.
func listen(c *client.Client, program *programRef) {
	for {
		m, err := c.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.New("daemon closed the connection")
			}
			program.Send(DisconnectedMsg{Client: c, Err: err})
			return
		}
		switch m := m.(type) {
		case protocol.StatusUpdate:
			program.Send(StatusMsg{Status: m.Status})
		case protocol.Error:
			program.Send(DaemonErrorMsg{Error: m})
		}
	}
}

func sendCmd(c *client.Client, cmd protocol.Command) tea.Cmd {
	return func() tea.Msg {
		if err := c.Send(cmd); err != nil {
			return ErrorMsg{Err: err}
		}
		return nil
	}
}

func reconnectCmd(wait time.Duration) tea.Cmd {
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return ReconnectMsg{}
	})
}

func debounceCmd(surface, seq int) tea.Cmd {
	return tea.Tick(opacityDebounce, func(time.Time) tea.Msg {
		return opacityDebounceMsg{surface: surface, seq: seq}
	})
}

func clearErrorCmd(seq int) tea.Cmd {
	return tea.Tick(errorDisplay, func(time.Time) tea.Msg {
		return ClearErrorMsg{seq: seq}
	})
}
