package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

var (
	// ErrNotFound is returned when no snapshot is available for a given site.
	ErrNotFound = errors.New("no snapshot for site")
)

// SnapshotHistory holds a time-ordered list of snapshots for a site.
type SnapshotHistory struct {
	Snapshots []solar.Snapshot
}

// MemoryStore is a concurrency-safe in-memory implementation of a snapshot store.
// A snapshot is saved and read as a whole under the lock, so readers never
// see fields from two different ticks.
type MemoryStore struct {
	mu sync.RWMutex

	// key: site id, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per site
	maxAge     time.Duration // optional max age for snapshots
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveSnapshot appends a new snapshot for its site and enforces retention.
func (s *MemoryStore) SaveSnapshot(snapshot solar.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[snapshot.SiteID]
	if !ok {
		history = &SnapshotHistory{}
		s.data[snapshot.SiteID] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = append([]solar.Snapshot(nil), history.Snapshots[over:]...)
	}

	// Enforce retention by age. The newest snapshot is always kept.
	if s.maxAge > 0 {
		cutoff := snapshot.Timestamp.Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots)-1; i++ {
			if !history.Snapshots[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history.Snapshots = history.Snapshots[i:]
		}
	}
}

// GetLatest returns the most recent snapshot for a site.
func (s *MemoryStore) GetLatest(siteID string) (solar.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[siteID]
	if !ok || len(history.Snapshots) == 0 {
		return solar.Snapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// Latest returns the most recent snapshot of every site that has one,
// ordered by site id.
func (s *MemoryStore) Latest() []solar.Snapshot {
	s.mu.RLock()
	out := make([]solar.Snapshot, 0, len(s.data))
	for _, history := range s.data {
		if n := len(history.Snapshots); n > 0 {
			out = append(out, history.Snapshots[n-1])
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out
}

// GetRange returns all snapshots for a site between from and to (inclusive).
func (s *MemoryStore) GetRange(siteID string, from, to time.Time) ([]solar.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[siteID]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []solar.Snapshot
	for _, snap := range history.Snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
