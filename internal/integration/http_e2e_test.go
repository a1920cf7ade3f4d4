//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	server "tour_dataset/internal/adapters/http_server"
	redisad "tour_dataset/internal/adapters/redis"
	"tour_dataset/internal/app"
	"tour_dataset/internal/domain"
	mysqlrepo "tour_dataset/internal/storage/mysql"
)

// ---------- helpers ----------
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// dataset builds one complete hotel with its country, city and meal.
func dataset() *domain.Dataset {
	ds := domain.NewDataset()
	tr := domain.NewCountry("turcja", "Turcja")
	tr.Cities.Set("antalya", domain.City{Identifier: "antalya", Title: "Antalya"})
	ds.Countries.Set(tr.Identifier, tr)

	meal := domain.Meal{Identifier: "A", Title: "All inclusive"}
	ds.Meals.Set(meal.Identifier, meal)

	city := "antalya"
	h := &domain.Hotel{
		Title: "Hotel Sol", Rating: 45, DestinationCountryID: "turcja", DestinationCityID: &city,
		Latitude: 36.85, Longitude: 30.75, Meals: []domain.Meal{}, Rooms: []domain.Room{},
	}
	h.AddMeal(meal)
	h.AddRoom(domain.Room{Title: "Pokój standardowy", BedCount: 2})
	ds.Hotels.Set(h.Title, h)
	return ds
}

// ---------- the test ----------
func TestHTTP_EndToEnd_ExportThenRead(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=tours",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "tours")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Export the dataset into MySQL only
	exp := app.NewExportService(nil, repo, app.DefaultEventSeed, repo)
	if err := exp.Export(ctx, dataset()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	batches := app.BuildEvents(dataset(), app.DefaultEventSeed)
	hotel := batches[len(batches)-1].Events[0]

	// Serve it back through the real router with a miniredis cache
	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: app.NewQueryService(repo, cache, time.Minute)})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	res, err := http.Get(fmt.Sprintf("%s/v1/entities/hotels/%s", ts.URL, hotel.EntityID))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}

	var body domain.Snapshot
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.LastEventID != hotel.ID || body.Data["title"] != "Hotel Sol" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(mr.Keys()) == 0 {
		t.Fatalf("expected the snapshot to be cached")
	}
}
