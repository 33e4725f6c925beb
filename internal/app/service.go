package app

import (
	"context"

	"github.com/cehokocof/telebio/internal/adapters/ipc"
	"github.com/cehokocof/telebio/internal/domain/updater"
)

// Service is the daemon surface exposed over the control socket.
type Service struct {
	up         *updater.Updater
	botEnabled bool

	cancel  context.CancelFunc
	stopped chan struct{}
}

var _ ipc.Controller = (*Service)(nil)

// Status reports the updater snapshot.
func (s *Service) Status() updater.Status {
	return s.up.Status()
}

// History lists the recently applied bios, newest last.
func (s *Service) History() []updater.Entry {
	return s.up.History()
}

// BotEnabled reports whether the management bot transport is running.
func (s *Service) BotEnabled() bool {
	return s.botEnabled
}

// Pause suspends scheduled updates.
func (s *Service) Pause() bool {
	return s.up.Pause()
}

// Resume restarts scheduled updates.
func (s *Service) Resume() bool {
	return s.up.Resume()
}

// UpdateNow runs one update cycle immediately.
func (s *Service) UpdateNow(ctx context.Context) (string, error) {
	return s.up.UpdateNow(ctx)
}

// Shutdown asks the daemon to exit and waits until the updater has
// stopped, so a stop request answered over the socket means the work is
// actually done.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()
	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
