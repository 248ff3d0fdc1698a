// Package server implements the daemon's control channel: a unix socket
// serving one client at a time with line-delimited protocol messages.
package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shelltint/shelltint/internal/daemon/protocol"
)

// ErrServerClosed is returned by Serve after Stop.
var ErrServerClosed = errors.New("control channel closed")

const writeTimeout = 2 * time.Second

// Handler receives decoded commands and produces status snapshots.
type Handler interface {
	HandleCommand(cmd protocol.Command)
	PushStatus()
	Status() protocol.Status
}

// Server is the control channel listener.
type Server struct {
	listener net.Listener
	path     string
	handler  Handler
	log      *zap.Logger

	mu     sync.Mutex
	conn   net.Conn
	connID string
	closed bool
	wg     sync.WaitGroup
}

// New listens on the unix socket at path. A leftover socket file from a
// previous run is removed; a socket that still accepts connections is an error.
func New(path string, handler Handler, log *zap.Logger) (*Server, error) {
	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	return &Server{
		listener: listener,
		path:     path,
		handler:  handler,
		log:      log.Named("server"),
	}, nil
}

func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if conn, err := net.DialTimeout("unix", path, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("control channel %s is in use", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve accepts clients until Stop is called. A new client replaces the
// current one, so at most one connection is served at a time.
func (s *Server) Serve() error {
	s.log.Info("control channel listening", zap.String("socket", s.path))
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			s.log.Warn("accept failed", zap.Error(err))
			time.Sleep(50 * time.Millisecond)
			continue
		}
		s.attach(conn)
	}
}

func (s *Server) attach(conn net.Conn) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	if s.conn != nil {
		s.log.Info("replacing connected client", zap.String("conn", s.connID))
		s.conn.Close()
	}
	id := uuid.NewString()
	s.conn = conn
	s.connID = id
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Info("client connected", zap.String("conn", id))
	go s.handle(conn, id)

	s.handler.PushStatus()
}

func (s *Server) handle(conn net.Conn, id string) {
	defer s.wg.Done()
	defer s.detach(conn, id)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), protocol.MaxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		cmd, err := protocol.DecodeCommand(line)
		if err != nil {
			if errors.Is(err, protocol.ErrUnknownType) {
				s.log.Warn("ignoring unknown message", zap.String("conn", id), zap.Error(err))
			} else {
				s.log.Warn("ignoring malformed message", zap.String("conn", id), zap.Error(err))
			}
			continue
		}
		s.log.Debug("command received", zap.String("conn", id), zap.String("type", fmt.Sprintf("%T", cmd)))
		s.handler.HandleCommand(cmd)
	}
	if err := scanner.Err(); err != nil && !s.isClosed() {
		s.log.Debug("client read ended", zap.String("conn", id), zap.Error(err))
	}
}

func (s *Server) detach(conn net.Conn, id string) {
	conn.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == conn {
		s.conn = nil
		s.connID = ""
		s.log.Info("client disconnected", zap.String("conn", id))
	}
}

// Push writes m to the connected client. Without a client it does nothing.
// A failed write drops the client.
func (s *Server) Push(m protocol.Message) {
	line, err := protocol.EncodeMessage(m)
	if err != nil {
		s.log.Error("failed to encode message", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := s.conn.Write(line); err != nil {
		s.log.Warn("push failed, dropping client", zap.String("conn", s.connID), zap.Error(err))
		s.conn.Close()
	}
}

// Connected reports whether a client is attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Stop closes the listener and the current client, waits for the reader to
// exit and removes the socket file. It must not be called from a Handler
// method. Later calls are no-ops.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	_ = s.listener.Close()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("failed to remove socket", zap.Error(err))
	}
	s.log.Info("control channel stopped")
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
