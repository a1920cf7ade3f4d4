package files_test

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"tour_dataset/internal/domain"
	"tour_dataset/internal/storage/files"
)

func TestStore_RawRoundTrip(t *testing.T) {
	st, err := files.New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if st.RawExists() {
		t.Fatalf("fresh dir must not have a raw dataset")
	}

	raw := domain.RawDataset{
		DestinationRegions: []map[string]any{{"type": "country", "value": "turcja", "title": "Turcja"}},
		Rates:              []map[string]any{{"id": "r1"}},
		TransportDetails:   map[string][]map[string]any{"r1": nil},
		AllProductContent:  map[string]map[string]any{"r1": {"title": "Hotel Sol"}},
	}
	if err := st.SaveRaw(raw); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !st.RawExists() {
		t.Fatalf("expected raw dataset to exist")
	}

	got, err := st.LoadRaw()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Rates) != 1 || got.AllProductContent["r1"]["title"] != "Hotel Sol" {
		t.Fatalf("unexpected raw dataset: %+v", got)
	}
	if segs, ok := got.TransportDetails["r1"]; !ok || segs != nil {
		t.Fatalf("null transport details must survive: %+v", got.TransportDetails)
	}

	// never overwritten
	if err := st.SaveRaw(raw); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected os.ErrExist, got %v", err)
	}
}

func TestStore_SaveParsed(t *testing.T) {
	st, err := files.New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ds := domain.NewDataset()
	ds.Meals.Set("A", domain.Meal{Identifier: "A", Title: "All inclusive"})

	for i := 0; i < 2; i++ { // second save replaces the first
		if err := st.SaveParsed(ds); err != nil {
			t.Fatalf("save parsed: %v", err)
		}
	}

	b, err := os.ReadFile(st.ParsedPath())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := out["meals"]["A"]; !ok {
		t.Fatalf("expected meal A in parsed dataset: %s", b)
	}
	if len(out) != 8 {
		t.Fatalf("expected 8 tables, got %d", len(out))
	}
}
