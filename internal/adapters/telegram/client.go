// Package telegram is the MTProto adapter for profile operations.
//
// It wraps a gotd client: the connection lives inside Connect's
// callback, and the ProfileClient methods are valid while that callback
// runs. Authorization is never interactive here; the login flow in
// auth.go owns the prompts.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/cehokocof/telebio/internal/ports"
)

// ErrNotAuthorized means no usable session exists for the account.
var ErrNotAuthorized = errors.New("telegram session is not authorized")

// ErrNotConnected means a profile call happened outside Connect.
var ErrNotConnected = errors.New("telegram client is not connected")

// Config wires a Client.
type Config struct {
	// APIID and APIHash are the MTProto application credentials.
	APIID   int
	APIHash string

	// SessionPath is the session file location.
	SessionPath string

	// Version is reported to Telegram as the app version.
	Version string

	// Logger defaults to ports.DiscardLogger.
	Logger ports.Logger
}

// Client talks MTProto for the user account.
type Client struct {
	tc     *telegram.Client
	logger ports.Logger

	mu   sync.RWMutex
	api  *tg.Client
	self ports.Identity
}

var _ ports.ProfileClient = (*Client)(nil)

// New builds a client around a file-backed session.
func New(cfg Config) (*Client, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("telegram api credentials are required")
	}
	if cfg.SessionPath == "" {
		return nil, fmt.Errorf("session path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = ports.DiscardLogger
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	tc := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionPath},
		Device: telegram.DeviceConfig{
			DeviceModel: "telebio",
			AppVersion:  version,
		},
	})

	return &Client{tc: tc, logger: logger}, nil
}

// Connect dials Telegram, verifies the session is authorized and runs
// fn with a live connection. It returns ErrNotAuthorized when there is
// no session to resume.
func (c *Client) Connect(ctx context.Context, fn func(ctx context.Context) error) error {
	c.logger.Info(ctx, "connecting to telegram")

	return c.tc.Run(ctx, func(ctx context.Context) error {
		status, err := c.tc.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("checking authorization: %w", err)
		}
		if !status.Authorized {
			return ErrNotAuthorized
		}

		self, err := c.tc.Self(ctx)
		if err != nil {
			return fmt.Errorf("fetching own account: %w", err)
		}
		identity := identityFrom(self)

		c.mu.Lock()
		c.api = c.tc.API()
		c.self = identity
		c.mu.Unlock()

		defer func() {
			c.mu.Lock()
			c.api = nil
			c.mu.Unlock()
		}()

		c.logger.Info(ctx, "signed in",
			ports.F("name", identity.FirstName),
			ports.F("id", identity.ID))

		return fn(ctx)
	})
}

// Self returns the signed-in account.
func (c *Client) Self(_ context.Context) (ports.Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.api == nil {
		return ports.Identity{}, ErrNotConnected
	}
	return c.self, nil
}

// UpdateBio sets the account's about field. A flood wait is honored
// once: sleep for the requested time, retry, and give up on a second
// failure. Other RPC errors are logged and returned.
func (c *Client) UpdateBio(ctx context.Context, text string) error {
	err := c.applyBio(ctx, text)
	if err == nil {
		c.logger.Debug(ctx, "bio applied", ports.F("bio", text))
		return nil
	}

	if wait, ok := tgerr.AsFloodWait(err); ok {
		c.logger.Warn(ctx, "telegram asks to wait before the next profile change",
			ports.F("wait", wait.String()))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := c.applyBio(ctx, text); err != nil {
			return fmt.Errorf("updating bio after flood wait: %w", err)
		}
		c.logger.Debug(ctx, "bio applied after flood wait", ports.F("bio", text))
		return nil
	}

	if rpc, ok := tgerr.As(err); ok {
		c.logger.Error(ctx, "telegram rpc error while updating bio",
			ports.F("type", rpc.Type),
			ports.F("code", rpc.Code))
	}
	return fmt.Errorf("updating bio: %w", err)
}

func (c *Client) applyBio(ctx context.Context, text string) error {
	c.mu.RLock()
	api := c.api
	c.mu.RUnlock()
	if api == nil {
		return ErrNotConnected
	}

	req := &tg.AccountUpdateProfileRequest{}
	req.SetAbout(text)

	_, err := api.AccountUpdateProfile(ctx, req)
	return err
}

func identityFrom(user *tg.User) ports.Identity {
	if user == nil {
		return ports.Identity{}
	}
	return ports.Identity{
		ID:        user.ID,
		FirstName: user.FirstName,
		Username:  user.Username,
	}
}
