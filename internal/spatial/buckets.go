package spatial

import (
	"context"
	"slices"
	"sync"
)

// Buckets is an in-memory Index keyed by zone.
type Buckets struct {
	mu    sync.RWMutex
	zones map[int][]Entry
}

// NewBuckets returns an empty index.
func NewBuckets() *Buckets {
	return &Buckets{zones: make(map[int][]Entry)}
}

// Insert adds or replaces an entry.
func (b *Buckets) Insert(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.removeLocked(e.ID)
	z := Zone(e.Dec)
	b.zones[z] = append(b.zones[z], e)
}

// Remove deletes the entry with id, if present.
func (b *Buckets) Remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(id)
}

func (b *Buckets) removeLocked(id int64) {
	for z, entries := range b.zones {
		if i := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id }); i >= 0 {
			b.zones[z] = slices.Delete(entries, i, i+1)
			return
		}
	}
}

// Len returns the number of indexed entries.
func (b *Buckets) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, entries := range b.zones {
		n += len(entries)
	}
	return n
}

// Candidates implements Index. Results are ordered by id and never nil.
func (b *Buckets) Candidates(ctx context.Context, p Point, radius float64) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	box := NewBox(p, radius)

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Entry, 0)
	for _, z := range box.Zones {
		for _, e := range b.zones[z] {
			if box.Contains(e.RA, e.Dec) {
				out = append(out, e)
			}
		}
	}
	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}
