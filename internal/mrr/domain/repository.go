package domain

import (
	"context"
	"time"
)

// SnapshotRepository is the append-only snapshot store. Snapshots are never
// updated in place; a re-run appends and latest-by-date wins.
type SnapshotRepository interface {
	Append(ctx context.Context, snap *Snapshot) error
	LatestByDate(ctx context.Context, onOrBefore time.Time, source SnapshotSource) (*Snapshot, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]Snapshot, error)
}
