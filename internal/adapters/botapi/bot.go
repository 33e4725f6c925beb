// Package botapi runs the management bot over the Telegram Bot API.
//
// The adapter is a long-polling loop that feeds parsed commands into
// control.Router and sends its replies back. Everything else lives in
// the router.
package botapi

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cehokocof/telebio/internal/control"
	"github.com/cehokocof/telebio/internal/ports"
)

// pollTimeoutSeconds is the long-poll timeout passed to getUpdates.
const pollTimeoutSeconds = 30

// Config wires a Bot.
type Config struct {
	// Token is the bot token from @BotFather.
	Token string
	// Router handles the commands.
	Router *control.Router
	// Logger defaults to ports.DiscardLogger.
	Logger ports.Logger
}

// Bot is the Bot API transport for the management commands.
type Bot struct {
	api    *tgbotapi.BotAPI
	router *control.Router
	logger ports.Logger
}

// New connects to the Bot API and verifies the token with getMe.
func New(cfg Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if cfg.Router == nil {
		return nil, fmt.Errorf("command router is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = ports.DiscardLogger
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to bot api: %w", err)
	}

	return &Bot{
		api:    api,
		router: cfg.Router,
		logger: logger,
	}, nil
}

// Username returns the bot's username, without the @.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls for updates until ctx is canceled, then drains the update
// channel so the library's poll goroutine can exit.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info(ctx, "management bot started", ports.F("username", "@"+b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			for range updates {
			}
			b.logger.Info(context.Background(), "management bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}

	reply, ok := b.router.Dispatch(ctx, control.Incoming{
		SenderID: msg.From.ID,
		Command:  msg.Command(),
		Args:     strings.TrimSpace(msg.CommandArguments()),
	})
	if !ok {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	if reply.HTML {
		out.ParseMode = tgbotapi.ModeHTML
	}

	if _, err := b.api.Send(out); err != nil {
		b.logger.Error(ctx, "sending bot reply failed",
			ports.F("command", msg.Command()),
			ports.F("error", err.Error()))
	}
}
