package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tour_dataset/internal/domain"
)

const (
	snapshotsCollection = "snapshots"
	batchSize           = 500
)

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*driver.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := driver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Repo keeps one document per entity in the snapshots collection, the same
// shape the generated mongosh scripts insert.
type Repo struct {
	coll *driver.Collection
}

func New(ctx context.Context, db *driver.Database) (*Repo, error) {
	r := &Repo{coll: db.Collection(snapshotsCollection)}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []driver.IndexModel{
		{Keys: bson.D{{Key: "entity_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "last_event_id", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// UpsertSnapshots replaces each entity's document, inserting it when absent.
func (r *Repo) UpsertSnapshots(ctx context.Context, snaps []domain.Snapshot) error {
	for lo := 0; lo < len(snaps); lo += batchSize {
		hi := min(lo+batchSize, len(snaps))
		models := make([]driver.WriteModel, 0, hi-lo)
		for _, s := range snaps[lo:hi] {
			models = append(models, driver.NewReplaceOneModel().
				SetFilter(bson.M{"entity_id": s.EntityID}).
				SetReplacement(s).
				SetUpsert(true))
		}
		if _, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("bulk upsert snapshots: %w", err)
		}
	}
	return nil
}

func (r *Repo) GetSnapshot(ctx context.Context, entityType, entityID string) (domain.Snapshot, error) {
	var s domain.Snapshot
	err := r.coll.FindOne(ctx, bson.M{"entity_type": entityType, "entity_id": entityID}).Decode(&s)
	if errors.Is(err, driver.ErrNoDocuments) {
		return domain.Snapshot{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	return normalize(s), nil
}

func (r *Repo) ListSnapshots(ctx context.Context, q domain.SnapshotQuery) (domain.SnapshotPage, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	filter := bson.M{"entity_type": q.EntityType, "last_event_id": bson.M{"$gt": q.AfterEventID}}
	opts := options.Find().
		SetSort(bson.D{{Key: "last_event_id", Value: 1}}).
		SetLimit(int64(q.Limit + 1))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return domain.SnapshotPage{}, err
	}
	defer cur.Close(ctx)

	out := make([]domain.Snapshot, 0, q.Limit)
	for cur.Next(ctx) {
		var s domain.Snapshot
		if err := cur.Decode(&s); err != nil {
			return domain.SnapshotPage{}, err
		}
		out = append(out, normalize(s))
	}
	if err := cur.Err(); err != nil {
		return domain.SnapshotPage{}, err
	}

	page := domain.SnapshotPage{Items: out}
	if len(out) > q.Limit {
		page.Items = out[:q.Limit]
		next := page.Items[q.Limit-1].LastEventID
		page.NextAfterID = &next
	}
	return page, nil
}

// normalize turns the driver's bson.D and bson.A values back into plain
// maps and slices so snapshots encode the same way whichever store served them.
func normalize(s domain.Snapshot) domain.Snapshot {
	if s.Data != nil {
		s.Data = plainMap(s.Data)
	}
	return s
}

func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case bson.D:
		return plainMap(t.Map())
	case bson.M:
		return plainMap(t)
	case map[string]any:
		return plainMap(t)
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}
