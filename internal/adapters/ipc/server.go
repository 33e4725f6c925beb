package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cehokocof/telebio/internal/domain/updater"
	"github.com/cehokocof/telebio/internal/ports"
)

// Controller is the daemon surface exposed over the socket.
type Controller interface {
	Status() updater.Status
	History() []updater.Entry
	BotEnabled() bool
	Pause() bool
	Resume() bool
	UpdateNow(ctx context.Context) (string, error)
	Shutdown(ctx context.Context) error
}

// Server answers control requests on a Unix socket.
type Server struct {
	socketPath string
	lockPath   string
	ctrl       Controller
	version    string
	logger     ports.Logger

	listener net.Listener
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
}

// ServerConfig contains configuration for the control server.
type ServerConfig struct {
	SocketPath string
	LockPath   string
	Version    string
	Logger     ports.Logger
}

// DefaultStateDir is where the socket and lock file live unless
// overridden: $XDG_STATE_HOME/telebio, or ~/.local/state/telebio.
func DefaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "telebio")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "telebio")
}

// DefaultSocketPath returns the default control socket path.
func DefaultSocketPath() string {
	return filepath.Join(DefaultStateDir(), "telebio.sock")
}

// DefaultLockPath returns the default lock file path.
func DefaultLockPath() string {
	return filepath.Join(DefaultStateDir(), "telebio.lock")
}

// NewServer creates a control server for the given daemon surface.
func NewServer(cfg ServerConfig, ctrl Controller) *Server {
	if cfg.SocketPath == "" {
		cfg.SocketPath = DefaultSocketPath()
	}
	if cfg.LockPath == "" {
		cfg.LockPath = DefaultLockPath()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = ports.DiscardLogger
	}

	return &Server{
		socketPath: cfg.SocketPath,
		lockPath:   cfg.LockPath,
		ctrl:       ctrl,
		version:    cfg.Version,
		logger:     logger,
	}
}

// Start claims the lock file and begins listening.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("server is closed")
	}

	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	// A leftover socket from a crashed daemon would block the listen.
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("removing stale socket: %w", err)
	}

	if err := s.writeLockFile(); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		s.removeLockFile()
		return fmt.Errorf("listening on control socket: %w", err)
	}

	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		_ = listener.Close()
		s.removeLockFile()
		return fmt.Errorf("restricting socket permissions: %w", err)
	}

	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Debug(context.Background(), "control socket ready", ports.F("path", s.socketPath))
	return nil
}

// Stop closes the listener, waits for in-flight connections and cleans
// up the socket and lock files.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true

	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()

	_ = os.RemoveAll(s.socketPath)
	s.removeLockFile()

	return nil
}

// SocketPath returns the socket path.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.RLock()
			closed := s.closed
			s.mu.RUnlock()

			if closed {
				return
			}
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var msg Message
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		if err != io.EOF {
			s.sendError(conn, msg.RequestID, ErrorCodeInvalidRequest, "cannot decode message")
		}
		return
	}

	s.logger.Debug(context.Background(), "control request",
		ports.F("type", string(msg.Type)),
		ports.F("request_id", msg.RequestID))

	s.handleMessage(conn, &msg)
}

func (s *Server) handleMessage(conn net.Conn, msg *Message) {
	switch msg.Type {
	case MessageTypeStatusRequest:
		s.handleStatus(conn, msg)
	case MessageTypePauseRequest:
		s.handlePause(conn, msg)
	case MessageTypeResumeRequest:
		s.handleResume(conn, msg)
	case MessageTypeUpdateRequest:
		s.handleUpdate(conn, msg)
	case MessageTypeStopRequest:
		s.handleStop(conn, msg)
	default:
		s.sendError(conn, msg.RequestID, ErrorCodeUnknownRequest, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Server) handleStatus(conn net.Conn, msg *Message) {
	s.sendResponse(conn, msg.RequestID, MessageTypeStatusResponse, StatusResponse{
		Status:     s.ctrl.Status(),
		History:    s.ctrl.History(),
		BotEnabled: s.ctrl.BotEnabled(),
		Version:    s.version,
		PID:        os.Getpid(),
	})
}

func (s *Server) handlePause(conn net.Conn, msg *Message) {
	changed := s.ctrl.Pause()
	s.sendResponse(conn, msg.RequestID, MessageTypePauseResponse, PauseResponse{
		Changed: changed,
		Paused:  true,
	})
}

func (s *Server) handleResume(conn net.Conn, msg *Message) {
	changed := s.ctrl.Resume()
	s.sendResponse(conn, msg.RequestID, MessageTypeResumeResponse, ResumeResponse{
		Changed: changed,
		Paused:  false,
	})
}

func (s *Server) handleUpdate(conn net.Conn, msg *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text, err := s.ctrl.UpdateNow(ctx)
	if err != nil {
		s.sendResponse(conn, msg.RequestID, MessageTypeUpdateResponse, UpdateResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	s.sendResponse(conn, msg.RequestID, MessageTypeUpdateResponse, UpdateResponse{
		Success: true,
		Bio:     text,
	})
}

func (s *Server) handleStop(conn net.Conn, msg *Message) {
	var req StopRequest
	if msg.Payload != nil {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.sendError(conn, msg.RequestID, ErrorCodeInvalidRequest, "invalid stop request payload")
			return
		}
	}

	timeout := 30 * time.Second
	switch {
	case req.TimeoutSeconds > 0:
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	case req.Force:
		timeout = 2 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.ctrl.Shutdown(ctx); err != nil {
		s.sendResponse(conn, msg.RequestID, MessageTypeStopResponse, StopResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	s.sendResponse(conn, msg.RequestID, MessageTypeStopResponse, StopResponse{
		Success: true,
		Message: "daemon stopping",
	})
}

func (s *Server) sendResponse(conn net.Conn, requestID string, msgType MessageType, payload any) {
	msg, err := NewMessage(msgType, requestID, payload)
	if err != nil {
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = json.NewEncoder(conn).Encode(msg)
}

func (s *Server) sendError(conn net.Conn, requestID, code, message string) {
	s.sendResponse(conn, requestID, MessageTypeErrorResponse, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) writeLockFile() error {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o700); err != nil {
		return err
	}
	data := fmt.Sprintf("%d\n", os.Getpid())
	return os.WriteFile(s.lockPath, []byte(data), 0o600)
}

func (s *Server) removeLockFile() {
	_ = os.RemoveAll(s.lockPath)
}
