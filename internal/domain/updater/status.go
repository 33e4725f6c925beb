package updater

import (
	"sync"
	"time"

	"github.com/cehokocof/telebio/internal/domain/provider"
)

// Status is a point-in-time snapshot of the updater.
type Status struct {
	State        State         `json:"state"`
	Mode         provider.Mode `json:"mode"`
	Paused       bool          `json:"paused"`
	StartedAt    time.Time     `json:"started_at,omitempty"`
	LastBio      string        `json:"last_bio,omitempty"`
	LastUpdateAt time.Time     `json:"last_update_at,omitempty"`
	NextUpdateAt time.Time     `json:"next_update_at,omitempty"`
	UpdateCount  int           `json:"update_count"`
	ErrorCount   int           `json:"error_count"`
	LastError    string        `json:"last_error,omitempty"`
	Interval     time.Duration `json:"interval"`
	Uptime       time.Duration `json:"uptime,omitempty"`
}

// Status returns a snapshot of the updater. NextUpdateAt is only set
// while the schedule is live; a paused updater has none.
func (u *Updater) Status() Status {
	status := u.track.snapshot()
	status.State = u.State()
	status.Paused = status.State == StatePaused
	status.Interval = u.interval

	if !status.StartedAt.IsZero() {
		status.Uptime = time.Since(status.StartedAt)
	}

	if status.State == StateRunning || status.State == StateUpdating {
		switch {
		case !status.LastUpdateAt.IsZero():
			status.NextUpdateAt = status.LastUpdateAt.Add(u.interval)
		case !status.StartedAt.IsZero():
			status.NextUpdateAt = status.StartedAt.Add(u.interval)
		}
	}

	return status
}

// tracker guards the mutable counters shared by the machine actions,
// the update cycles and Status().
type tracker struct {
	mu           sync.RWMutex
	mode         provider.Mode
	startedAt    time.Time
	lastBio      string
	lastUpdateAt time.Time
	updateCount  int
	errorCount   int
	lastErr      error
	history      *history
}

func newTracker(mode provider.Mode) *tracker {
	return &tracker{mode: mode, history: newHistory()}
}

func (t *tracker) recordStart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Now()
}

func (t *tracker) recordUpdate(text string, mode provider.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := newEntry(text, mode)
	t.lastBio = text
	t.lastUpdateAt = e.Timestamp
	t.updateCount++
	t.history.add(e)
}

func (t *tracker) recordError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errorCount++
	t.lastErr = err
}

func (t *tracker) getMode() provider.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

func (t *tracker) setMode(mode provider.Mode) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == mode {
		return false
	}
	t.mode = mode
	return true
}

func (t *tracker) entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.history.list()
}

func (t *tracker) snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Status{
		Mode:         t.mode,
		StartedAt:    t.startedAt,
		LastBio:      t.lastBio,
		LastUpdateAt: t.lastUpdateAt,
		UpdateCount:  t.updateCount,
		ErrorCount:   t.errorCount,
	}
	if t.lastErr != nil {
		s.LastError = t.lastErr.Error()
	}
	return s
}
