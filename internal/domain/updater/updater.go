// Package updater runs the scheduled bio update loop.
//
// A statekit machine tracks the lifecycle; a scheduler goroutine feeds
// it ticks. Scheduled cycles swallow their errors and retry on the next
// tick. Manual cycles report them.
package updater

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/cehokocof/telebio/internal/domain/provider"
	"github.com/cehokocof/telebio/internal/ports"
)

// State is the updater's lifecycle state.
type State string

const (
	// StateStopped indicates the updater is not running.
	StateStopped State = "stopped"
	// StateStarting indicates the updater is initializing.
	StateStarting State = "starting"
	// StateRunning indicates the updater is waiting for the next tick.
	StateRunning State = "running"
	// StateUpdating indicates a scheduled update cycle is in flight.
	StateUpdating State = "updating"
	// StatePaused indicates scheduled updates are suspended.
	StatePaused State = "paused"
	// StateStopping indicates the updater is shutting down.
	StateStopping State = "stopping"
)

// Event types for the updater state machine.
const (
	EventStart      = "START"
	EventStarted    = "STARTED"
	EventTick       = "TICK"
	EventUpdateOK   = "UPDATE_OK"
	EventUpdateFail = "UPDATE_FAIL"
	EventPause      = "PAUSE"
	EventResume     = "RESUME"
	EventStop       = "STOP"
)

// Config wires the updater's collaborators.
type Config struct {
	// Interval is the pause between scheduled update cycles.
	Interval time.Duration

	// Mode selects the provider for the first cycle.
	Mode provider.Mode

	// Factory resolves the provider for the mode active at each cycle.
	Factory provider.Factory

	// Profile applies the generated bio to the account.
	Profile ports.ProfileClient

	// Logger defaults to ports.DiscardLogger.
	Logger ports.Logger
}

// Updater owns the update schedule, the pause flag, the mode and the
// history of applied bios.
type Updater struct {
	interval time.Duration
	factory  provider.Factory
	profile  ports.ProfileClient
	logger   ports.Logger

	track *tracker

	interp *statekit.Interpreter[Status]

	// cycleMu serializes scheduled and manual update cycles.
	cycleMu sync.Mutex

	mu        sync.RWMutex
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// New creates an updater. It does not start the scheduler.
func New(cfg Config) (*Updater, error) {
	if cfg.Factory == nil {
		return nil, fmt.Errorf("provider factory is required")
	}
	if cfg.Profile == nil {
		return nil, fmt.Errorf("profile client is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("update interval must be positive")
	}
	if cfg.Logger == nil {
		cfg.Logger = ports.DiscardLogger
	}

	mode := cfg.Mode
	if mode == "" {
		mode = provider.ModeList
	}

	return &Updater{
		interval:  cfg.Interval,
		factory:   cfg.Factory,
		profile:   cfg.Profile,
		logger:    cfg.Logger,
		track:     newTracker(mode),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// buildMachine constructs the updater state machine. The tracker pointer
// is captured by the actions so they mutate shared state, not the
// machine's own context copy.
func buildMachine(track *tracker) (*statekit.Interpreter[Status], error) {
	machine, err := statekit.NewMachine[Status]("telebio-updater").
		WithInitial("stopped").
		WithContext(Status{}).
		WithAction("recordStart", func(_ *Status, _ statekit.Event) {
			track.recordStart()
		}).
		// Stopped state
		State("stopped").
		On(EventStart).Target("starting").Done().
		// Starting state
		State("starting").
		OnEntry("recordStart").
		On(EventStarted).Target("running").
		On(EventStop).Target("stopping").Done().
		// Running state (waiting for next tick)
		State("running").
		On(EventTick).Target("updating").
		On(EventPause).Target("paused").
		On(EventStop).Target("stopping").Done().
		// Updating state (scheduled cycle in flight)
		State("updating").
		On(EventUpdateOK).Target("running").
		On(EventUpdateFail).Target("running").
		On(EventPause).Target("paused").
		On(EventStop).Target("stopping").Done().
		// Paused state (ticks pass by without a cycle)
		State("paused").
		On(EventResume).Target("running").
		On(EventStop).Target("stopping").Done().
		// Stopping state
		State("stopping").
		After(100 * time.Millisecond).Target("stopped").Done().
		Build()

	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

// Start builds the state machine and launches the scheduler. The first
// update cycle runs right away; later cycles follow the interval.
func (u *Updater) Start(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.interp != nil {
		return fmt.Errorf("updater already started")
	}

	interp, err := buildMachine(u.track)
	if err != nil {
		return fmt.Errorf("building state machine: %w", err)
	}
	u.interp = interp

	u.stopCh = make(chan struct{})
	u.stoppedCh = make(chan struct{})

	interp.Start()
	interp.Send(statekit.Event{Type: EventStart})
	interp.Send(statekit.Event{Type: EventStarted})

	go u.runScheduler(ctx)

	u.logger.Info(ctx, "updater started",
		ports.F("interval", u.interval.String()),
		ports.F("mode", u.track.getMode().String()))

	return nil
}

// Stop shuts the scheduler down and waits for an in-flight cycle,
// bounded by ctx. Stopping a stopped updater is a no-op.
func (u *Updater) Stop(ctx context.Context) error {
	u.mu.Lock()
	interp := u.interp
	stopCh := u.stopCh
	stoppedCh := u.stoppedCh

	if interp == nil {
		u.mu.Unlock()
		return nil
	}

	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
	u.mu.Unlock()

	interp.Send(statekit.Event{Type: EventStop})

	select {
	case <-stoppedCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	// A manual cycle may still hold cycleMu; stopping the interpreter
	// behind it waits for that cycle to finish.
	u.cycleMu.Lock()
	u.mu.Lock()
	interp.Stop()
	u.interp = nil
	u.mu.Unlock()
	u.cycleMu.Unlock()

	u.logger.Info(ctx, "updater stopped")
	return nil
}

// State returns the current lifecycle state.
func (u *Updater) State() State {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.interp == nil {
		return StateStopped
	}
	return State(u.interp.State().Value)
}

// Pause suspends scheduled updates. It reports whether the call changed
// anything; pausing a paused updater is a no-op.
func (u *Updater) Pause() bool {
	switch u.State() {
	case StateRunning, StateUpdating:
		u.send(EventPause)
		return true
	default:
		return false
	}
}

// Resume restarts scheduled updates after Pause.
func (u *Updater) Resume() bool {
	if u.State() != StatePaused {
		return false
	}
	u.send(EventResume)
	return true
}

// TogglePause flips the pause flag and reports whether the updater is
// paused afterwards.
func (u *Updater) TogglePause() bool {
	if u.State() == StatePaused {
		u.Resume()
		return false
	}
	return u.Pause()
}

// Mode returns the provider mode the next cycle will use.
func (u *Updater) Mode() provider.Mode {
	return u.track.getMode()
}

// SetMode switches the provider mode for subsequent cycles. It reports
// whether the mode actually changed.
func (u *Updater) SetMode(mode provider.Mode) bool {
	changed := u.track.setMode(mode)
	if changed {
		u.logger.Info(context.Background(), "provider mode changed", ports.F("mode", mode.String()))
	}
	return changed
}

// History returns a copy of the recent update entries, newest last.
func (u *Updater) History() []Entry {
	return u.track.entries()
}

// runScheduler drives the update loop: one immediate cycle, then one
// per interval.
func (u *Updater) runScheduler(ctx context.Context) {
	defer close(u.stoppedCh)

	// Let the machine settle in running before the first cycle.
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return
	case <-u.stopCh:
		return
	}

	u.runScheduled(ctx)

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-u.stopCh:
			return
		case <-ticker.C:
			u.runScheduled(ctx)
		}
	}
}

func (u *Updater) send(event string) {
	u.mu.RLock()
	interp := u.interp
	u.mu.RUnlock()

	if interp != nil {
		interp.Send(statekit.Event{Type: statekit.EventType(event)})
	}
}
