// Package files keeps the raw and parsed datasets as JSON files in one
// output directory.
package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"tour_dataset/internal/domain"
)

const (
	RawDatasetFile    = "raw_dataset.json"
	ParsedDatasetFile = "parsed_dataset.json"
)

type Store struct{ dir string }

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) RawPath() string    { return filepath.Join(s.dir, RawDatasetFile) }
func (s *Store) ParsedPath() string { return filepath.Join(s.dir, ParsedDatasetFile) }

func (s *Store) RawExists() bool {
	_, err := os.Stat(s.RawPath())
	return err == nil
}

func (s *Store) LoadRaw() (domain.RawDataset, error) {
	f, err := os.Open(s.RawPath())
	if err != nil {
		return domain.RawDataset{}, err
	}
	defer f.Close()

	var raw domain.RawDataset
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return domain.RawDataset{}, fmt.Errorf("decode %s: %w", RawDatasetFile, err)
	}
	return raw, nil
}

// SaveRaw refuses to overwrite an existing raw dataset: a scrape is
// expensive and the file is the input of every later skip-scraping run.
func (s *Store) SaveRaw(raw domain.RawDataset) error {
	f, err := os.OpenFile(s.RawPath(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := writeJSON(f, raw); err != nil {
		f.Close()
		// a half-written raw dataset would block the next run
		if rmErr := os.Remove(s.RawPath()); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", s.RawPath()).Msg("remove partial raw dataset")
		}
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("path", s.RawPath()).Int("rates", len(raw.Rates)).Msg("raw dataset saved")
	return nil
}

// SaveParsed replaces the parsed dataset atomically.
func (s *Store) SaveParsed(ds *domain.Dataset) error {
	if ds == nil {
		return errors.New("nil dataset")
	}
	tmp, err := os.CreateTemp(s.dir, ParsedDatasetFile+".*")
	if err != nil {
		return err
	}
	if err := writeJSON(tmp, ds); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.ParsedPath()); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	log.Info().Str("path", s.ParsedPath()).Int("hotels", ds.Hotels.Len()).Msg("parsed dataset saved")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
