package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tour_dataset/internal/domain"
)

// batchSize bounds the rows of one multi-row INSERT.
const batchSize = 500

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// AppendEvents inserts the events in one transaction. Events already stored
// unchanged are skipped, so re-exporting the same dataset is a no-op; an id
// stored with another entity or payload fails with domain.ErrEventConflict.
func (r *Repo) AppendEvents(ctx context.Context, events []domain.Event) error {
	return r.inTx(ctx, len(events), func(tx *sql.Tx, lo, hi int) error {
		window := events[lo:hi]
		stored, err := storedEvents(ctx, tx, window)
		if err != nil {
			return err
		}

		values := make([]string, 0, len(window))
		args := make([]any, 0, len(window)*5) // 5 params per row
		for _, ev := range window {
			data, err := json.Marshal(ev.Data)
			if err != nil {
				return fmt.Errorf("event %d: %w", ev.ID, err)
			}
			if old, ok := stored[ev.ID]; ok {
				if !old.matches(ev, data) {
					return fmt.Errorf("%w: id %d (stored %s %s, new %s %s)",
						domain.ErrEventConflict, ev.ID, old.entityType, old.entityID, ev.EntityType, ev.EntityID)
				}
				continue
			}
			values = append(values, "(?,?,?,?,?)")
			args = append(args, ev.ID, ev.EntityID, ev.EntityType, ev.Name, string(data))
		}
		if len(values) == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, insertEventsPrefix+strings.Join(values, ","), args...)
		return err
	})
}

func storedEvents(ctx context.Context, tx *sql.Tx, events []domain.Event) (map[int64]storedEvent, error) {
	marks := make([]string, 0, len(events))
	args := make([]any, 0, len(events))
	for _, ev := range events {
		marks = append(marks, "?")
		args = append(args, ev.ID)
	}
	rows, err := tx.QueryContext(ctx, selectEventsPrefix+strings.Join(marks, ",")+selectEventsSuffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]storedEvent)
	for rows.Next() {
		var id int64
		var se storedEvent
		if err := rows.Scan(&id, &se.entityID, &se.entityType, &se.name, &se.data); err != nil {
			return nil, err
		}
		out[id] = se
	}
	return out, rows.Err()
}

func (r *Repo) UpsertSnapshots(ctx context.Context, snaps []domain.Snapshot) error {
	return r.inTx(ctx, len(snaps), func(tx *sql.Tx, lo, hi int) error {
		values := make([]string, 0, hi-lo)
		args := make([]any, 0, (hi-lo)*4) // 4 params per row
		for _, s := range snaps[lo:hi] {
			data, err := json.Marshal(s.Data)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", s.EntityID, err)
			}
			values = append(values, "(?,?,?,?)")
			args = append(args, s.EntityID, s.EntityType, s.LastEventID, string(data))
		}
		_, err := tx.ExecContext(ctx, upsertSnapshotsPrefix+strings.Join(values, ",")+upsertSnapshotsOnDup, args...)
		return err
	})
}

// inTx runs exec over [lo, hi) windows of n rows inside one transaction.
func (r *Repo) inTx(ctx context.Context, n int, exec func(tx *sql.Tx, lo, hi int) error) error {
	if n == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for lo := 0; lo < n; lo += batchSize {
		hi := min(lo+batchSize, n)
		if err := exec(tx, lo, hi); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) GetSnapshot(ctx context.Context, entityType, entityID string) (domain.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, getSnapshotSQL, entityType, entityID)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrNotFound
	}
	return s, err
}

func (r *Repo) ListSnapshots(ctx context.Context, q domain.SnapshotQuery) (domain.SnapshotPage, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listSnapshotsSQL, q.EntityType, q.AfterEventID, q.Limit+1)
	if err != nil {
		return domain.SnapshotPage{}, err
	}
	defer rows.Close()

	out := make([]domain.Snapshot, 0, q.Limit)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return domain.SnapshotPage{}, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
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

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (domain.Snapshot, error) {
	var s domain.Snapshot
	var data []byte
	if err := sc.Scan(&s.EntityID, &s.EntityType, &s.LastEventID, &data); err != nil {
		return domain.Snapshot{}, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.Data); err != nil {
			return domain.Snapshot{}, fmt.Errorf("snapshot %s data: %w", s.EntityID, err)
		}
	}
	return s, nil
}
