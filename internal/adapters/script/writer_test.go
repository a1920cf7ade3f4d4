package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tour_dataset/internal/domain"
)

func TestQuoteLiteral(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain", "'plain'"},
		{"O'Hara", "'O''Hara'"},
		{`a\b`, `E'a\\b'`},
		{`it's \n`, `E'it''s \\n'`},
		{"", "''"},
	}
	for _, c := range cases {
		if got := quoteLiteral(c.in); got != c.want {
			t.Errorf("quoteLiteral(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestWriteBatches(t *testing.T) {
	dir := t.TempDir()
	batches := []domain.EventBatch{
		{Name: "airports", Events: []domain.Event{
			{ID: 1, EntityID: "a-1", EntityType: domain.EntityAirport, Name: "AirportCreated",
				Data: map[string]any{"code": "WAW", "city": "Warszawa"}},
		}},
		{Name: "hotels", Events: []domain.Event{
			{ID: 2, EntityID: "h-1", EntityType: domain.EntityHotel, Name: "HotelCreated",
				Data: map[string]any{"title": `Hotel "Bob's" <Inn> \ Spa`}},
		}},
	}

	if err := New(dir, "rsww_184529").WriteBatches(batches); err != nil {
		t.Fatalf("err: %v", err)
	}

	sqlOut := read(t, filepath.Join(dir, "sql", "50_airports.sql"))
	if !strings.HasPrefix(sqlOut, "-- Sample airports data\n-- @generated\n\nINSERT INTO events") {
		t.Fatalf("unexpected sql header:\n%s", sqlOut)
	}
	if !strings.Contains(sqlOut, "    1,\n    'a-1',\n    'AirportCreated',\n    '{\"city\":\"Warszawa\",\"code\":\"WAW\"}'\n);") {
		t.Fatalf("unexpected sql insert:\n%s", sqlOut)
	}

	hotels := read(t, filepath.Join(dir, "sql", "51_hotels.sql"))
	if !strings.Contains(hotels, `E'{"title":"Hotel \\"Bob''s\\" <Inn> \\\\ Spa"}'`) {
		t.Fatalf("hotel data not escaped as expected:\n%s", hotels)
	}

	js := read(t, filepath.Join(dir, "mongo", "51_hotels.js"))
	if !strings.HasPrefix(js, "// Sample hotels data\n// @generated\ndb = db.getSiblingDB(\"rsww_184529\");\n\ndb.snapshots.insertOne({\n  \"entity_id\": \"h-1\",") {
		t.Fatalf("unexpected mongo script:\n%s", js)
	}
	if !strings.Contains(js, "\"last_event_id\": 2,") || !strings.HasSuffix(js, "});\n") {
		t.Fatalf("unexpected mongo document:\n%s", js)
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
