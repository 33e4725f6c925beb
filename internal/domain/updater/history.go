package updater

import (
	"time"

	"github.com/google/uuid"

	"github.com/cehokocof/telebio/internal/domain/provider"
)

// historySize caps how many applied bios the updater remembers.
const historySize = 10

// Entry is one applied bio.
type Entry struct {
	ID        string        `json:"id"`
	Bio       string        `json:"bio"`
	Mode      provider.Mode `json:"mode"`
	Timestamp time.Time     `json:"timestamp"`
}

// newEntry stamps an applied bio with an id and the current time.
func newEntry(text string, mode provider.Mode) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Bio:       text,
		Mode:      mode,
		Timestamp: time.Now(),
	}
}

// history is a fixed-size ring of Entries, oldest first. Not
// goroutine-safe; the tracker guards it.
type history struct {
	entries []Entry
}

func newHistory() *history {
	return &history{entries: make([]Entry, 0, historySize)}
}

func (h *history) add(e Entry) {
	if len(h.entries) == historySize {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:historySize-1]
	}
	h.entries = append(h.entries, e)
}

func (h *history) list() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
