package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotRunning indicates no daemon is listening on the control socket.
var ErrNotRunning = errors.New("telebio daemon is not running")

// Client talks to the daemon's control socket.
type Client struct {
	socketPath string
	lockPath   string
	timeout    time.Duration
}

// ClientConfig contains configuration for the control client.
type ClientConfig struct {
	SocketPath string
	LockPath   string
	Timeout    time.Duration
}

// NewClient creates a control client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.SocketPath == "" {
		cfg.SocketPath = DefaultSocketPath()
	}
	if cfg.LockPath == "" {
		cfg.LockPath = DefaultLockPath()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		socketPath: cfg.SocketPath,
		lockPath:   cfg.LockPath,
		timeout:    cfg.Timeout,
	}
}

// IsRunning reports whether a daemon is answering on the socket. It
// checks the lock file, the socket file and finally dials.
func (c *Client) IsRunning() bool {
	if _, err := os.Stat(c.lockPath); err != nil {
		return false
	}
	if _, err := os.Stat(c.socketPath); err != nil {
		return false
	}

	conn, err := net.DialTimeout("unix", c.socketPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()

	return true
}

// PID returns the daemon's pid from the lock file, or 0.
func (c *Client) PID() int {
	data, err := os.ReadFile(c.lockPath)
	if err != nil {
		return 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}

	return pid
}

// Status fetches the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.call(MessageTypeStatusRequest, nil, MessageTypeStatusResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pause suspends scheduled updates.
func (c *Client) Pause() (*PauseResponse, error) {
	var resp PauseResponse
	if err := c.call(MessageTypePauseRequest, nil, MessageTypePauseResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resume restarts scheduled updates.
func (c *Client) Resume() (*ResumeResponse, error) {
	var resp ResumeResponse
	if err := c.call(MessageTypeResumeRequest, nil, MessageTypeResumeResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update forces one update cycle and returns the applied bio.
func (c *Client) Update() (*UpdateResponse, error) {
	var resp UpdateResponse
	if err := c.call(MessageTypeUpdateRequest, nil, MessageTypeUpdateResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop asks the daemon to shut down.
func (c *Client) Stop(force bool, timeout time.Duration) (*StopResponse, error) {
	req := StopRequest{
		Force:          force,
		TimeoutSeconds: int(timeout.Seconds()),
	}

	var resp StopResponse
	if err := c.call(MessageTypeStopRequest, req, MessageTypeStopResponse, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// call performs one request/response round trip and decodes the
// expected payload type, translating error_response into an error.
func (c *Client) call(reqType MessageType, payload any, respType MessageType, out any) error {
	if !c.IsRunning() {
		return ErrNotRunning
	}

	resp, err := c.send(reqType, payload)
	if err != nil {
		return err
	}

	if resp.Type == MessageTypeErrorResponse {
		var errResp ErrorResponse
		if err := json.Unmarshal(resp.Payload, &errResp); err != nil {
			return fmt.Errorf("parsing error response: %w", err)
		}
		return fmt.Errorf("%s: %s", errResp.Code, errResp.Message)
	}

	if resp.Type != respType {
		return fmt.Errorf("unexpected response type %q", resp.Type)
	}

	if err := json.Unmarshal(resp.Payload, out); err != nil {
		return fmt.Errorf("parsing %s: %w", respType, err)
	}

	return nil
}

func (c *Client) send(msgType MessageType, payload any) (*Message, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon: %w", err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	msg, err := NewMessage(msgType, uuid.New().String(), payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	var resp Message
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &resp, nil
}
