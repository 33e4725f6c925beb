package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cehokocof/telebio/internal/adapters/botapi"
	"github.com/cehokocof/telebio/internal/adapters/ipc"
	"github.com/cehokocof/telebio/internal/adapters/telegram"
	"github.com/cehokocof/telebio/internal/control"
	"github.com/cehokocof/telebio/internal/domain/config"
	"github.com/cehokocof/telebio/internal/domain/updater"
	"github.com/cehokocof/telebio/internal/ports"
)

const shutdownTimeout = 30 * time.Second

// Options configures a daemon run.
type Options struct {
	Settings config.Settings
	Version  string
	Logger   ports.Logger

	// SocketPath and LockPath override the control socket location.
	SocketPath string
	LockPath   string
}

// Run starts the daemon and blocks until ctx is canceled, a stop request
// arrives over the control socket, or a component fails. It returns
// telegram.ErrNotAuthorized when no usable session exists.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = ports.DiscardLogger
	}

	client, err := telegram.New(telegram.Config{
		APIID:       opts.Settings.APIID,
		APIHash:     opts.Settings.APIHash,
		SessionPath: opts.Settings.SessionPath(),
		Version:     opts.Version,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return client.Connect(ctx, func(ctx context.Context) error {
		return runConnected(ctx, client, opts, logger)
	})
}

// runConnected owns everything that needs a live Telegram connection:
// the updater, the control socket and the management bot.
func runConnected(ctx context.Context, client *telegram.Client, opts Options, logger ports.Logger) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	settings := opts.Settings

	self, err := client.Self(runCtx)
	if err != nil {
		return err
	}

	up, err := updater.New(updater.Config{
		Interval: settings.UpdateInterval,
		Mode:     settings.Mode,
		Factory:  ProviderFactory(settings, logger),
		Profile:  client,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("building updater: %w", err)
	}

	svc := &Service{
		up:         up,
		botEnabled: settings.BotEnabled(),
		cancel:     cancel,
		stopped:    make(chan struct{}),
	}

	server := ipc.NewServer(ipc.ServerConfig{
		SocketPath: opts.SocketPath,
		LockPath:   opts.LockPath,
		Version:    opts.Version,
		Logger:     logger,
	}, svc)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting control socket: %w", err)
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Warn(context.Background(), "control socket shutdown failed", ports.F("error", err))
		}
	}()

	if err := up.Start(runCtx); err != nil {
		return fmt.Errorf("starting updater: %w", err)
	}

	botErr := make(chan error, 1)
	botRunning := false
	if settings.BotEnabled() {
		router := control.NewRouter(control.RouterConfig{
			OwnerID: self.ID,
			Updater: up,
			Logger:  logger,
		})
		bot, err := botapi.New(botapi.Config{
			Token:  settings.BotToken,
			Router: router,
			Logger: logger,
		})
		if err != nil {
			stopUpdater(up, logger)
			close(svc.stopped)
			return fmt.Errorf("starting management bot: %w", err)
		}
		botRunning = true
		go func() {
			botErr <- bot.Run(runCtx)
		}()
	}

	logger.Info(runCtx, "daemon ready",
		ports.F("interval", settings.UpdateInterval.String()),
		ports.F("mode", settings.Mode.String()),
		ports.F("bot", settings.BotEnabled()))

	var runErr error
	if botRunning {
		select {
		case <-runCtx.Done():
		case err := <-botErr:
			botRunning = false
			if err != nil {
				runErr = fmt.Errorf("management bot failed: %w", err)
			}
		}
	} else {
		<-runCtx.Done()
	}
	cancel()

	// The bot dispatches commands into the updater, so it drains first.
	if botRunning {
		<-botErr
	}

	stopUpdater(up, logger)
	close(svc.stopped)
	return runErr
}

func stopUpdater(up *updater.Updater, logger ports.Logger) {
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := up.Stop(stopCtx); err != nil {
		logger.Warn(stopCtx, "updater shutdown incomplete", ports.F("error", err))
	}
}
