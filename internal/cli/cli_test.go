package cli

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelltint/shelltint/internal/config"
	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

func TestParseSurface(t *testing.T) {
	tests := []struct {
		in      string
		want    protocol.Surface
		wantErr bool
	}{
		{"taskbar", protocol.Taskbar, false},
		{"TB", protocol.Taskbar, false},
		{"start", protocol.Start, false},
		{"Start-Menu", protocol.Start, false},
		{"desktop", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSurface(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"75", 75, false},
		{"40%", 40, false},
		{" 100 ", 100, false},
		{"101", 0, true},
		{"-1", 0, true},
		{"half", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePercent(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatStatus(t *testing.T) {
	out := formatStatus(protocol.Status{
		Taskbar: protocol.TaskbarStatus{Found: true, Edge: "left", AutoHide: true, Enabled: true, Opacity: 75},
		Start:   protocol.StartStatus{Detected: true, IsOpen: true, Confidence: 0.9, Enabled: true, Opacity: 50},
	})
	assert.Contains(t, out, "left (auto-hide)")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "open (90% confidence)")
	assert.Contains(t, out, "50%")

	out = formatStatus(protocol.Status{})
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "not watched")
}

func TestFormatError(t *testing.T) {
	assert.Contains(t, formatError(protocol.Error{Message: "detection unreliable", Code: protocol.CodeStartDetectionFailed}),
		"[START_DETECTION_FAILED]")
	assert.Equal(t, "Error: boom", strings.TrimSpace(formatError(protocol.Error{Message: "boom"})))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchPrintsPushedMessages(t *testing.T) {
	dir, err := os.MkdirTemp("", "stw")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "w.sock")
	t.Setenv(config.EnvSocket, path)

	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range []protocol.Message{
			protocol.StatusUpdate{Status: protocol.Status{Taskbar: protocol.TaskbarStatus{Found: true, Edge: "top", Opacity: 33}}},
			protocol.Error{Message: "Start menu detection unreliable", Code: protocol.CodeStartDetectionFailed},
		} {
			line, _ := protocol.EncodeMessage(m)
			conn.Write(line)
		}
		time.Sleep(time.Second)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- watch(ctx, out, false) }()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "START_DETECTION_FAILED")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "top")
	assert.Contains(t, out.String(), "33%")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
