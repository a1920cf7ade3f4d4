package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tour_dataset/internal/domain"
)

type QueryService struct {
	repo     domain.SnapshotReader
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.SnapshotReader, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetSnapshot(ctx context.Context, entityType, id string) (domain.Snapshot, error) {
	key := fmt.Sprintf("snapshot:%s:%s", entityType, id)
	var snap domain.Snapshot
	if ok, _ := s.cache.Get(ctx, key, &snap); ok {
		return snap, nil
	}
	snap, err := s.repo.GetSnapshot(ctx, entityType, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	_ = s.cache.Set(ctx, key, snap, int(s.cacheTTL.Seconds()))
	return snap, nil
}

func (s *QueryService) ListSnapshots(ctx context.Context, q domain.SnapshotQuery) (domain.SnapshotPage, error) {
	key := fmt.Sprintf("snapshots:%s:%d:%d", q.EntityType, q.Limit, q.AfterEventID)
	var out domain.SnapshotPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	page, err := s.repo.ListSnapshots(ctx, q)
	if err != nil {
		return domain.SnapshotPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array
	cp := copySnapshotPage(page)

	// optional size guard
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}

func copySnapshotPage(in domain.SnapshotPage) domain.SnapshotPage {
	out := domain.SnapshotPage{NextAfterID: in.NextAfterID}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.Snapshot, n)
		copy(out.Items, in.Items)
	}
	return out
}
