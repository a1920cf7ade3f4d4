package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpserver "tour_dataset/internal/adapters/http_server"
	"tour_dataset/internal/app"
	"tour_dataset/internal/domain"
)

type fakeReader struct {
	snaps []domain.Snapshot
	lastQ domain.SnapshotQuery
}

func (f *fakeReader) GetSnapshot(ctx context.Context, entityType, id string) (domain.Snapshot, error) {
	for _, s := range f.snaps {
		if s.EntityType == entityType && s.EntityID == id {
			return s, nil
		}
	}
	return domain.Snapshot{}, domain.ErrNotFound
}

func (f *fakeReader) ListSnapshots(ctx context.Context, q domain.SnapshotQuery) (domain.SnapshotPage, error) {
	f.lastQ = q
	var page domain.SnapshotPage
	for _, s := range f.snaps {
		if s.EntityType == q.EntityType && s.LastEventID > q.AfterEventID {
			page.Items = append(page.Items, s)
		}
	}
	return page, nil
}

type noCache struct{}

func (noCache) Get(ctx context.Context, key string, dst any) (bool, error)   { return false, nil }
func (noCache) Set(ctx context.Context, key string, v any, ttlSec int) error { return nil }
func (noCache) Del(ctx context.Context, key string) error                    { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *fakeReader) {
	t.Helper()
	repo := &fakeReader{snaps: []domain.Snapshot{
		{EntityID: "h-1", EntityType: domain.EntityHotel, LastEventID: 10, Data: map[string]any{"title": "Hotel Sol"}},
		{EntityID: "h-2", EntityType: domain.EntityHotel, LastEventID: 11, Data: map[string]any{"title": "Hotel Luna"}},
		{EntityID: "m-1", EntityType: domain.EntityMeal, LastEventID: 5, Data: map[string]any{"title": "All inclusive"}},
	}}
	s := httpserver.New()
	s.MountHandlers(&httpserver.Handlers{Q: app.NewQueryService(repo, noCache{}, time.Minute)})
	ts := httptest.NewServer(s.Mux())
	t.Cleanup(ts.Close)
	return ts, repo
}

func get(t *testing.T, url string, hdr map[string]string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestGetEntity_ETag(t *testing.T) {
	ts, _ := newTestServer(t)

	res := get(t, ts.URL+"/v1/entities/hotels/h-1", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var snap domain.Snapshot
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.EntityID != "h-1" || snap.Data["title"] != "Hotel Sol" {
		t.Fatalf("unexpected body: %+v", snap)
	}

	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}
	res = get(t, ts.URL+"/v1/entities/hotels/h-1", map[string]string{"If-None-Match": etag})
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res.StatusCode)
	}
}

func TestGetEntity_NotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	// an id of another type must not leak through
	res := get(t, ts.URL+"/v1/entities/meals/h-1", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type %s", ct)
	}

	res = get(t, ts.URL+"/v1/entities/tours/x", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown type, got %d", res.StatusCode)
	}
}

func TestListEntities(t *testing.T) {
	ts, repo := newTestServer(t)

	res := get(t, ts.URL+"/v1/entities/hotels?limit=10&after=10", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var page domain.SnapshotPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].EntityID != "h-2" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if repo.lastQ.Limit != 10 || repo.lastQ.EntityType != domain.EntityHotel {
		t.Fatalf("unexpected query: %+v", repo.lastQ)
	}
}

func TestListEntities_BadParams(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, q := range []string{"limit=0", "limit=201", "limit=x", "after=-1"} {
		res := get(t, ts.URL+"/v1/entities/meals?"+q, nil)
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, res.StatusCode)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	if res := get(t, ts.URL+"/healthz", nil); res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
}
