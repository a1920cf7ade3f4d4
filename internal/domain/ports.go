package domain

import "context"

// Source fetches the raw bundle the assembler works on.
type Source interface {
	FetchRaw(ctx context.Context) (RawDataset, error)
}

type RawStore interface {
	RawExists() bool
	LoadRaw() (RawDataset, error)
	SaveRaw(raw RawDataset) error
	SaveParsed(ds *Dataset) error
}

// Write paths

type EventStore interface {
	AppendEvents(ctx context.Context, events []Event) error
}

type SnapshotStore interface {
	UpsertSnapshots(ctx context.Context, snaps []Snapshot) error
}

type ScriptWriter interface {
	WriteBatches(batches []EventBatch) error
}

// Read paths

type SnapshotReader interface {
	GetSnapshot(ctx context.Context, entityType, entityID string) (Snapshot, error)
	ListSnapshots(ctx context.Context, q SnapshotQuery) (SnapshotPage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries
type SnapshotQuery struct {
	EntityType string
	Limit      int
	// AfterEventID pages by last_event_id; 0 starts at the beginning.
	AfterEventID int64
}

type SnapshotPage struct {
	Items       []Snapshot `json:"items"`
	NextAfterID *int64     `json:"next_after_id,omitempty"`
}
