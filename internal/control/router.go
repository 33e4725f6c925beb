// Package control implements the management bot's command logic.
//
// The router is transport-free: it takes a parsed command and returns
// the reply text, so the Bot API adapter stays a thin polling loop and
// the handlers are testable without the network.
package control

import (
	"context"

	"github.com/cehokocof/telebio/internal/domain/provider"
	"github.com/cehokocof/telebio/internal/domain/updater"
	"github.com/cehokocof/telebio/internal/ports"
)

// Updater is the slice of the update engine the bot drives.
type Updater interface {
	Status() updater.Status
	History() []updater.Entry
	Mode() provider.Mode
	SetMode(provider.Mode) bool
	TogglePause() bool
	UpdateNow(ctx context.Context) (string, error)
}

// Incoming is one parsed bot command.
type Incoming struct {
	// SenderID is the Telegram user id of the message author.
	SenderID int64
	// Command is the command name without the leading slash.
	Command string
	// Args is the raw argument tail, possibly empty.
	Args string
}

// Reply is the message to send back to the owner.
type Reply struct {
	Text string
	HTML bool
}

// RouterConfig wires a Router.
type RouterConfig struct {
	// OwnerID is the only sender whose commands are dispatched.
	OwnerID int64
	// Updater handles the actual work. A nil updater downgrades /new to
	// a "not configured" reply.
	Updater Updater
	// Logger defaults to ports.DiscardLogger.
	Logger ports.Logger
}

// Router gates and dispatches bot commands.
type Router struct {
	ownerID int64
	up      Updater
	logger  ports.Logger
}

// NewRouter creates a command router for one owner.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = ports.DiscardLogger
	}
	return &Router{
		ownerID: cfg.OwnerID,
		up:      cfg.Updater,
		logger:  logger,
	}
}

// Dispatch handles one command. The second return value reports whether
// a reply should be sent; commands from anyone but the owner, unknown
// commands, and plain text all produce none.
func (r *Router) Dispatch(ctx context.Context, in Incoming) (Reply, bool) {
	if in.SenderID != r.ownerID {
		r.logger.Debug(ctx, "ignoring command from non-owner",
			ports.F("sender", in.SenderID),
			ports.F("command", in.Command))
		return Reply{}, false
	}

	if r.up == nil && in.Command != "new" {
		r.logger.Warn(ctx, "command ignored, updater not configured", ports.F("command", in.Command))
		return Reply{}, false
	}

	switch in.Command {
	case "status":
		return r.handleStatus(), true
	case "history":
		return r.handleHistory(), true
	case "set_mode":
		return r.handleSetMode(ctx, in.Args), true
	case "new":
		return r.handleNew(ctx), true
	case "pause":
		return r.handlePause(ctx), true
	default:
		r.logger.Debug(ctx, "ignoring unknown command", ports.F("command", in.Command))
		return Reply{}, false
	}
}
