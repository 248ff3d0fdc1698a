package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelltint/shelltint/internal/config"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "stc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "c.sock")
}

// writeMessage runs on server goroutines, so it drops errors instead of
// failing the test.
func writeMessage(conn net.Conn, m protocol.Message) {
	line, err := protocol.EncodeMessage(m)
	if err != nil {
		return
	}
	_, _ = conn.Write(line)
}

// fakeDaemon greets every client with a status and answers each command
// with a status whose taskbar opacity is the command's opacity.
func fakeDaemon(t *testing.T, path string) <-chan protocol.Command {
	t.Helper()
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got := make(chan protocol.Command, 8)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				writeMessage(conn, protocol.StatusUpdate{Status: protocol.Status{
					Taskbar: protocol.TaskbarStatus{Found: true, Edge: "bottom", Opacity: 75},
				}})
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					cmd, err := protocol.DecodeCommand(scanner.Bytes())
					if err != nil {
						writeMessage(conn, protocol.Error{Message: err.Error()})
						continue
					}
					got <- cmd
					reply := protocol.Status{Taskbar: protocol.TaskbarStatus{Found: true, Edge: "bottom"}}
					if so, ok := cmd.(protocol.SetOpacity); ok {
						reply.Taskbar.Opacity = so.Opacity
					}
					writeMessage(conn, protocol.StatusUpdate{Status: reply})
				}
			}(conn)
		}
	}()
	return got
}

func TestDialPathNotRunning(t *testing.T) {
	_, err := DialPath(context.Background(), filepath.Join(t.TempDir(), "missing.sock"))
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestClientGreetingAndReply(t *testing.T) {
	path := socketPath(t)
	got := fakeDaemon(t, path)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := DialPath(ctx, path)
	require.NoError(t, err)
	defer c.Close()

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 75, st.Taskbar.Opacity)

	require.NoError(t, c.Send(protocol.SetOpacity{Surface: protocol.Taskbar, Opacity: 40}))
	st, err = c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, st.Taskbar.Opacity)

	select {
	case cmd := <-got:
		assert.Equal(t, protocol.SetOpacity{Surface: protocol.Taskbar, Opacity: 40}, cmd)
	case <-time.After(time.Second):
		t.Fatal("command not received")
	}
}

func TestRecvSkipsGarbageAndReportsEOF(t *testing.T) {
	path := socketPath(t)
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Write([]byte("not json\n{\"type\":\"Bogus\"}\n"))
		writeMessage(conn, protocol.Error{Message: "boom", Code: "X"})
		conn.Close()
	}()

	c, err := DialPath(context.Background(), path)
	require.NoError(t, err)
	defer c.Close()

	m, err := c.Recv()
	require.NoError(t, err)
	assert.Equal(t, protocol.Error{Message: "boom", Code: "X"}, m)

	_, err = c.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDoUsesConfiguredSocket(t *testing.T) {
	path := socketPath(t)
	t.Setenv(config.EnvSocket, path)
	fakeDaemon(t, path)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	st, err := Do(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 75, st.Taskbar.Opacity)

	st, err = Do(ctx, protocol.SetOpacity{Surface: protocol.Taskbar, Opacity: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, st.Taskbar.Opacity)
}

func TestBackoff(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 15 * time.Second, 15 * time.Second}
	for i, w := range want {
		assert.Equal(t, w, Backoff(i), "attempt %d", i)
	}
	assert.Equal(t, time.Second, Backoff(-3))
}
