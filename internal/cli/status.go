package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shelltint/shelltint/internal/client"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

const requestTimeout = 3 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show taskbar and start menu state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd, protocol.GetStatus{})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream status updates until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var setCmd = &cobra.Command{
	Use:   "set <taskbar|start> <percent>",
	Short: "Set overlay opacity (0-100)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		surface, err := parseSurface(args[0])
		if err != nil {
			return err
		}
		pct, err := parsePercent(args[1])
		if err != nil {
			return err
		}
		return request(cmd, protocol.SetOpacity{Surface: surface, Opacity: pct})
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <taskbar|start>",
	Short: "Turn an overlay on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <taskbar|start>",
	Short: "Turn an overlay off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

func setEnabled(cmd *cobra.Command, name string, enabled bool) error {
	surface, err := parseSurface(name)
	if err != nil {
		return err
	}
	return request(cmd, protocol.SetEnabled{Surface: surface, Enabled: enabled})
}

// request sends one command and prints the status the daemon answers with.
func request(cmd *cobra.Command, c protocol.Command) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	st, err := client.Do(ctx, c)
	if err != nil {
		if errors.Is(err, client.ErrNotRunning) {
			return fmt.Errorf("daemon not running. Start it with 'shelltint daemon start'")
		}
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatStatus(st))
	return nil
}

func parseSurface(s string) (protocol.Surface, error) {
	switch strings.ToLower(s) {
	case "taskbar", "tb":
		return protocol.Taskbar, nil
	case "start", "startmenu", "start-menu":
		return protocol.Start, nil
	}
	return "", fmt.Errorf("unknown surface %q (expected taskbar or start)", s)
}

func parsePercent(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("percentage %d out of range 0-100", n)
	}
	return n, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	redraw := false
	if f, ok := out.(*os.File); ok {
		redraw = term.IsTerminal(int(f.Fd()))
	}
	return watch(ctx, out, redraw)
}

// watch prints every message until ctx ends, reconnecting with backoff.
// On a terminal each status replaces the previous one.
func watch(ctx context.Context, out io.Writer, redraw bool) error {
	attempt := 0
	for {
		c, err := client.Dial(ctx)
		if err == nil {
			attempt = 0
			err = stream(ctx, c, out, redraw)
		}
		if ctx.Err() != nil {
			return nil
		}

		wait := client.Backoff(attempt)
		attempt++
		fmt.Fprintln(out, styleHint.Render(fmt.Sprintf("Disconnected (%v). Retrying in %s...", err, wait)))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func stream(ctx context.Context, c *client.Client, out io.Writer, redraw bool) error {
	done := make(chan struct{})
	defer close(done)
	defer c.Close()
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	for {
		m, err := c.Recv()
		if err != nil {
			return err
		}
		switch m := m.(type) {
		case protocol.StatusUpdate:
			if redraw {
				fmt.Fprint(out, ansi.CursorHomePosition+ansi.EraseEntireScreen)
			} else {
				fmt.Fprintln(out, styleLabel.Render(time.Now().Format("15:04:05")))
			}
			fmt.Fprint(out, formatStatus(m.Status))
		case protocol.Error:
			fmt.Fprintln(out, formatError(m))
		}
	}
}
