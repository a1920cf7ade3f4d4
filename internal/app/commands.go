package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tour_dataset/internal/domain"
)

var ErrRawExists = errors.New("raw dataset already exists")

type ScrapeService struct {
	source    domain.Source
	store     domain.RawStore
	skipFetch bool
}

// NewScrapeService wires the source and the raw store. With skipFetch the
// previously saved raw dataset is assembled instead of fetching a new one.
func NewScrapeService(src domain.Source, store domain.RawStore, skipFetch bool) *ScrapeService {
	return &ScrapeService{source: src, store: store, skipFetch: skipFetch}
}

// Run obtains the raw bundle, assembles it and saves the parsed dataset.
func (s *ScrapeService) Run(ctx context.Context) (*domain.Dataset, Stats, error) {
	raw, err := s.raw(ctx)
	if err != nil {
		return nil, Stats{}, err
	}

	ds, stats, err := Assemble(raw)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("assemble: %w", err)
	}
	if err := s.store.SaveParsed(ds); err != nil {
		return nil, Stats{}, fmt.Errorf("save parsed dataset: %w", err)
	}
	return ds, stats, nil
}

func (s *ScrapeService) raw(ctx context.Context) (domain.RawDataset, error) {
	if s.skipFetch {
		raw, err := s.store.LoadRaw()
		if err != nil {
			return domain.RawDataset{}, fmt.Errorf("load raw dataset: %w", err)
		}
		log.Info().Int("rates", len(raw.Rates)).Msg("raw dataset loaded")
		return raw, nil
	}

	// refuse to clobber an earlier scrape before spending time on a new one
	if s.store.RawExists() {
		return domain.RawDataset{}, ErrRawExists
	}
	raw, err := s.source.FetchRaw(ctx)
	if err != nil {
		return domain.RawDataset{}, fmt.Errorf("fetch raw dataset: %w", err)
	}
	if err := s.store.SaveRaw(raw); err != nil {
		return domain.RawDataset{}, fmt.Errorf("save raw dataset: %w", err)
	}
	return raw, nil
}

type ExportService struct {
	scripts   domain.ScriptWriter
	events    domain.EventStore
	snapshots []domain.SnapshotStore
	seed      int64
}

// NewExportService accepts nil sinks; only the configured ones are written.
func NewExportService(scripts domain.ScriptWriter, events domain.EventStore, seed int64, snapshots ...domain.SnapshotStore) *ExportService {
	var snaps []domain.SnapshotStore
	for _, s := range snapshots {
		if s != nil {
			snaps = append(snaps, s)
		}
	}
	return &ExportService{scripts: scripts, events: events, snapshots: snaps, seed: seed}
}

// Export builds the creation events once and hands them to the sinks. Scripts
// are written concurrently with the stores; snapshots are upserted only after
// the event log accepted the events, so a conflicting export leaves them as
// they were. The sinks only read the batches.
func (s *ExportService) Export(ctx context.Context, ds *domain.Dataset) error {
	batches := BuildEvents(ds, s.seed)
	snaps := Snapshots(batches)

	g, ctx := errgroup.WithContext(ctx)
	if s.scripts != nil {
		g.Go(func() error {
			if err := s.scripts.WriteBatches(batches); err != nil {
				return fmt.Errorf("write scripts: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		if s.events != nil {
			if err := s.events.AppendEvents(ctx, Flatten(batches)); err != nil {
				return fmt.Errorf("append events: %w", err)
			}
		}
		sg, ctx := errgroup.WithContext(ctx)
		for _, st := range s.snapshots {
			sg.Go(func() error {
				if err := st.UpsertSnapshots(ctx, snaps); err != nil {
					return fmt.Errorf("upsert snapshots: %w", err)
				}
				return nil
			})
		}
		return sg.Wait()
	})
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Int("batches", len(batches)).Int("events", len(snaps)).Msg("export completed")
	return nil
}
