// Package dedupe tracks recently generated record ids. Ids are random
// draws with no uniqueness guarantee; the tracker exists so collisions can
// be logged, never to suppress a record.
package dedupe

import (
	"sync"
	"time"
)

type entry struct {
	id int64
	ts time.Time
}

// Tracker keeps a fixed-size set of recently observed record ids.
type Tracker struct {
	mu       sync.Mutex
	items    map[int64]time.Time
	order    []entry
	capacity int
	ttl      time.Duration
}

// NewTracker creates a tracker with the provided capacity and ttl.
func NewTracker(capacity int, ttl time.Duration) *Tracker {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Tracker{
		items:    make(map[int64]time.Time, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Observe records the id and reports whether it was already seen inside
// the ttl window, i.e. whether the random draw collided.
func (t *Tracker) Observe(id int64) bool {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	ts, seen := t.items[id]
	collided := seen && now.Sub(ts) <= t.ttl

	t.items[id] = now
	t.order = append(t.order, entry{id: id, ts: now})
	t.compact(now)

	return collided
}

func (t *Tracker) compact(now time.Time) {
	cutoff := now.Add(-t.ttl)

	for len(t.order) > 0 && (len(t.items) > t.capacity || t.order[0].ts.Before(cutoff)) {
		oldest := t.order[0]
		t.order = t.order[1:]

		if ts, ok := t.items[oldest.id]; ok && ts == oldest.ts {
			delete(t.items, oldest.id)
		}
	}
}
