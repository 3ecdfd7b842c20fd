package solar

import (
	"context"
	"time"
)

// Loader materializes the recorded dataset of a site. A missing source is
// not an error: it yields an empty Dataset.
type Loader interface {
	Load(ctx context.Context, siteID string) (Dataset, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(snapshot Snapshot)
	GetLatest(siteID string) (Snapshot, error)
	GetRange(siteID string, from, to time.Time) ([]Snapshot, error)
	Latest() []Snapshot
}

// Publisher forwards each tick's snapshots to an external sink.
type Publisher interface {
	Publish(ctx context.Context, snapshots []Snapshot) error
}
