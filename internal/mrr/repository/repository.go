// Package repository provides the gorm-backed snapshot store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

type Params struct {
	fx.In

	DB    *gorm.DB
	GenID *snowflake.Node
}

func NewRepository(p Params) mrrdomain.SnapshotRepository {
	return &Repository{
		db:    p.DB,
		genID: p.GenID,
	}
}

func (r *Repository) Append(ctx context.Context, snap *mrrdomain.Snapshot) error {
	if snap == nil {
		return mrrdomain.ErrSnapshotNotFound
	}
	if snap.ID == 0 {
		snap.ID = r.genID.Generate()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(snap).Error
}

func (r *Repository) LatestByDate(ctx context.Context, onOrBefore time.Time, source mrrdomain.SnapshotSource) (*mrrdomain.Snapshot, error) {
	var snap mrrdomain.Snapshot
	err := r.db.WithContext(ctx).
		Where("snapshot_date <= ? AND source = ?", onOrBefore, source).
		Order("snapshot_date DESC, created_at DESC, id DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *Repository) ListBetween(ctx context.Context, start, end time.Time) ([]mrrdomain.Snapshot, error) {
	var snaps []mrrdomain.Snapshot
	err := r.db.WithContext(ctx).
		Where("snapshot_date >= ? AND snapshot_date <= ?", start, end).
		Order("snapshot_date ASC, created_at ASC, id ASC").
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}
	return dedupeLatest(snaps), nil
}

// dedupeLatest keeps the newest row per (period, source). Input is ordered
// ascending so later rows supersede earlier ones.
func dedupeLatest(snaps []mrrdomain.Snapshot) []mrrdomain.Snapshot {
	type key struct {
		month  string
		source mrrdomain.SnapshotSource
	}
	latest := make(map[key]int, len(snaps))
	out := make([]mrrdomain.Snapshot, 0, len(snaps))
	for _, snap := range snaps {
		k := key{month: snap.Month(), source: snap.Source}
		if idx, ok := latest[k]; ok {
			out[idx] = snap
			continue
		}
		latest[k] = len(out)
		out = append(out, snap)
	}
	return out
}
