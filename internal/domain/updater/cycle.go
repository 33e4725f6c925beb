package updater

import (
	"context"
	"fmt"

	"github.com/cehokocof/telebio/internal/domain/bio"
	"github.com/cehokocof/telebio/internal/ports"
)

// UpdateNow runs one update cycle outside the schedule. It works while
// the updater is paused or not started, and unlike scheduled cycles it
// returns the error to the caller. On success it returns the applied
// bio text.
func (u *Updater) UpdateNow(ctx context.Context) (string, error) {
	text, err := u.runCycle(ctx)
	if err != nil {
		u.track.recordError(err)
		u.logger.Error(ctx, "manual bio update failed", ports.F("error", err.Error()))
		return "", err
	}

	u.logger.Info(ctx, "bio updated", ports.F("bio", text), ports.F("trigger", "manual"))
	return text, nil
}

// runScheduled performs one scheduled cycle. Errors are logged and
// counted but never propagated; the next tick tries again.
func (u *Updater) runScheduled(ctx context.Context) {
	if u.State() != StateRunning {
		return
	}
	u.send(EventTick)

	text, err := u.runCycle(ctx)
	if err != nil {
		u.track.recordError(err)
		u.logger.Error(ctx, "bio update failed, will retry next cycle", ports.F("error", err.Error()))
		u.send(EventUpdateFail)
		return
	}

	u.logger.Info(ctx, "bio updated", ports.F("bio", text))
	u.send(EventUpdateOK)
}

// runCycle resolves the provider for the current mode, generates a bio
// and applies it. Cycles are serialized by cycleMu.
func (u *Updater) runCycle(ctx context.Context) (string, error) {
	u.cycleMu.Lock()
	defer u.cycleMu.Unlock()

	mode := u.track.getMode()

	p, err := u.factory(mode)
	if err != nil {
		return "", fmt.Errorf("resolving %s provider: %w", mode, err)
	}

	text, err := p.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("generating bio: %w", err)
	}

	text = bio.Sanitize(text)
	if err := bio.Validate(text); err != nil {
		return "", fmt.Errorf("provider %s: %w", p.Name(), err)
	}

	text, truncated := bio.Truncate(text)
	if truncated {
		u.logger.Warn(ctx, "bio truncated to the profile limit", ports.F("provider", p.Name()))
	}

	if err := u.profile.UpdateBio(ctx, text); err != nil {
		return "", fmt.Errorf("applying bio: %w", err)
	}

	u.track.recordUpdate(text, mode)
	return text, nil
}
