// Package repository holds the score cache: the most recent batch pass's
// engagement scores, published as an immutable snapshot.
package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gympulse/engage/internal/domain/model"
)

// Cache serves the most recently computed scores without recomputation.
type Cache interface {
	// Get returns the cached score for a client.
	// Returns ErrScoreNotFound if the client was not in the last pass.
	Get(ctx context.Context, clientID string) (model.EngagementScore, error)

	// ListAll returns all cached scores in no guaranteed order.
	ListAll(ctx context.Context) []model.EngagementScore

	// Info reports the snapshot size and when it was computed.
	Info(ctx context.Context) model.CacheInfo

	// Replace swaps the entire cache contents in one step. Entries from
	// clients absent in scores do not survive.
	Replace(ctx context.Context, scores []model.EngagementScore, computedAt time.Time)
}

// snapshot is the immutable state published to readers. It is never mutated
// after the pointer swap, so readers need no locks.
type snapshot struct {
	byID       map[string]model.EngagementScore
	list       []model.EngagementScore
	computedAt time.Time
}

// SnapshotCache implements Cache with an atomically swapped snapshot.
// Readers observe either the fully previous or the fully new pass, never a
// mix. Only the batch engine calls Replace.
type SnapshotCache struct {
	current atomic.Pointer[snapshot]
}

// NewSnapshotCache creates an empty cache.
func NewSnapshotCache() *SnapshotCache {
	c := &SnapshotCache{}
	c.current.Store(&snapshot{byID: map[string]model.EngagementScore{}})
	return c
}

// Get returns the cached score for a client.
func (c *SnapshotCache) Get(_ context.Context, clientID string) (model.EngagementScore, error) {
	snap := c.current.Load()
	score, ok := snap.byID[clientID]
	if !ok {
		return model.EngagementScore{}, fmt.Errorf("%w: %s", ErrScoreNotFound, clientID)
	}
	return score, nil
}

// ListAll returns a copy of all cached scores.
func (c *SnapshotCache) ListAll(_ context.Context) []model.EngagementScore {
	snap := c.current.Load()
	out := make([]model.EngagementScore, len(snap.list))
	copy(out, snap.list)
	return out
}

// Info reports the snapshot size and computation time.
func (c *SnapshotCache) Info(_ context.Context) model.CacheInfo {
	snap := c.current.Load()
	return model.CacheInfo{
		Count:          len(snap.list),
		LastComputedAt: snap.computedAt,
	}
}

// Replace builds a fresh snapshot from scores and publishes it in a single
// pointer swap.
func (c *SnapshotCache) Replace(_ context.Context, scores []model.EngagementScore, computedAt time.Time) {
	byID := make(map[string]model.EngagementScore, len(scores))
	list := make([]model.EngagementScore, len(scores))
	copy(list, scores)
	for _, s := range list {
		byID[s.ClientID] = s
	}
	c.current.Store(&snapshot{
		byID:       byID,
		list:       list,
		computedAt: computedAt,
	})
}
