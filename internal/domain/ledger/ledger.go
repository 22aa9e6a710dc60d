// Package ledger keeps the append-only, ordered list of saved meals for one session.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists flat meal records for an owner (user name or session key).
type Store interface {
	Append(ctx context.Context, owner string, record Record) error
	List(ctx context.Context, owner string) ([]Record, error)
}

// Ledger is safe for concurrent use: appends are serialized and reads work on a copy.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
	newID   func() string
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Restore builds a ledger from persisted records, preserving their order.
// Records that cannot be parsed are returned in skipped.
func Restore(records []Record) (l *Ledger, skipped []Record) {
	l = New()
	for _, rec := range records {
		entry, err := FromRecord(rec)
		if err != nil {
			skipped = append(skipped, rec)
			continue
		}
		l.Add(entry)
	}
	return l, skipped
}

// Add appends entry unconditionally; identical meals produce separate rows.
func (l *Ledger) Add(entry Entry) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry.ID == "" {
		entry.ID = l.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now().UTC()
	}
	if entry.Slot == "" {
		entry.Slot = SlotUnlabeled
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Query returns entries dated within [start, end] in insertion order.
func (l *Ledger) Query(start, end Date) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0)
	for _, e := range l.entries {
		if e.Date.Within(start, end) {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns a snapshot of every entry.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
