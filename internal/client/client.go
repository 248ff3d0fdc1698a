// Package client speaks the daemon's control protocol over its unix socket.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/shelltint/shelltint/internal/config"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

// ErrNotRunning is returned when nothing listens on the control socket.
var ErrNotRunning = errors.New("daemon not running")

const writeTimeout = 2 * time.Second

// Client is one control-channel connection. Send may be called from any
// goroutine; Recv from one goroutine at a time.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
	writeMu sync.Mutex
}

// Dial connects to the socket named by config.SocketPath.
func Dial(ctx context.Context) (*Client, error) {
	path, err := config.SocketPath()
	if err != nil {
		return nil, err
	}
	return DialPath(ctx, path)
}

// DialPath connects to the socket at path.
func DialPath(ctx context.Context, path string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), protocol.MaxLineSize)
	return &Client{conn: conn, scanner: scanner}, nil
}

// Send writes one command.
func (c *Client) Send(cmd protocol.Command) error {
	line, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.conn.Write(line); err != nil {
		return fmt.Errorf("failed to send %s: %w", commandName(cmd), err)
	}
	return nil
}

// Recv blocks for the next message. Unknown or malformed lines are skipped.
// It returns io.EOF once the daemon closes the connection.
func (c *Client) Recv() (protocol.Message, error) {
	for c.scanner.Scan() {
		m, err := protocol.DecodeMessage(c.scanner.Bytes())
		if err != nil {
			continue
		}
		return m, nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Status waits for the next status update. The daemon pushes one on connect
// and after every command, so a fresh connection answers without a request.
// Error messages seen on the way are returned as errors.
func (c *Client) Status(ctx context.Context) (protocol.Status, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}
	for {
		m, err := c.Recv()
		if err != nil {
			return protocol.Status{}, err
		}
		if u, ok := m.(protocol.StatusUpdate); ok {
			return u.Status, nil
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do connects, sends cmd and returns the status the daemon pushes in reply.
// A nil cmd returns the greeting.
func Do(ctx context.Context, cmd protocol.Command) (protocol.Status, error) {
	c, err := Dial(ctx)
	if err != nil {
		return protocol.Status{}, err
	}
	defer c.Close()

	// Consume the greeting so the reply is the post-command status.
	greeting, err := c.Status(ctx)
	if err != nil || cmd == nil {
		return greeting, err
	}
	if err := c.Send(cmd); err != nil {
		return protocol.Status{}, err
	}
	return c.Status(ctx)
}

func commandName(cmd protocol.Command) string {
	switch c := cmd.(type) {
	case protocol.SetOpacity:
		return "opacity for " + string(c.Surface)
	case protocol.SetEnabled:
		return "enabled for " + string(c.Surface)
	case protocol.GetStatus:
		return "status request"
	case protocol.Shutdown:
		return "shutdown"
	}
	return fmt.Sprintf("%T", cmd)
}

// backoffDelays are the reconnect waits; the last one repeats.
var backoffDelays = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	15 * time.Second,
}

// Backoff returns the wait before reconnect attempt n (0-based).
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(backoffDelays) {
		return backoffDelays[len(backoffDelays)-1]
	}
	return backoffDelays[attempt]
}
