package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"tour_dataset/internal/adapters/itaka"
	"tour_dataset/internal/adapters/observability"
	"tour_dataset/internal/adapters/script"
	"tour_dataset/internal/app"
	"tour_dataset/internal/domain"
	"tour_dataset/internal/shared"
	"tour_dataset/internal/storage/files"
	mongorepo "tour_dataset/internal/storage/mongo"
	mysqlrepo "tour_dataset/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// flags override the environment
	flag.BoolVar(&cfg.SkipScraping, "skip-scraping", cfg.SkipScraping, "assemble the raw_dataset.json already in the output dir")
	flag.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory")
	flag.Parse()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	log.Info().
		Str("url", cfg.ItakaURL).
		Str("out", cfg.OutputDir).
		Bool("skip_scraping", cfg.SkipScraping).
		Msg("scraper starting")

	params, err := shared.LoadRateParams(cfg.RateParamsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load rate params")
	}
	client, err := itaka.New(cfg.ItakaURL, itaka.Options{
		RPS:      cfg.ItakaRPS,
		MaxTries: cfg.ItakaMaxTries,
		PageSize: cfg.RatesPageSize,
		Params:   params.Vars(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize GraphQL client")
	}
	store, err := files.New(cfg.OutputDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare output dir")
	}

	// 2) fetch (or load) and assemble
	ds, stats, err := app.NewScrapeService(client, store, cfg.SkipScraping).Run(ctx)
	if errors.Is(err, app.ErrRawExists) {
		log.Fatal().Str("path", store.RawPath()).Msg("raw dataset already exists; remove it or run with -skip-scraping")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("scrape failed")
	}
	recordStats(ds, stats)

	// 3) export to every configured sink
	var events domain.EventStore
	var snapshots []domain.SnapshotStore

	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("db ping ok")
		repo := mysqlrepo.New(db)
		events = repo
		snapshots = append(snapshots, repo)
	}
	if cfg.MongoURI != "" {
		mc, err := mongorepo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect failed")
		}
		defer func() { _ = mc.Disconnect(context.Background()) }()
		repo, err := mongorepo.New(ctx, mc.Database(cfg.MongoDB))
		if err != nil {
			log.Fatal().Err(err).Msg("mongo repo init failed")
		}
		snapshots = append(snapshots, repo)
	}

	exp := app.NewExportService(script.New(cfg.OutputDir, cfg.MongoDB), events, app.DefaultEventSeed, snapshots...)
	if err := exp.Export(ctx, ds); err != nil {
		log.Fatal().Err(err).Msg("export failed")
	}
	log.Info().Msg("scrape completed")
}

func recordStats(ds *domain.Dataset, stats app.Stats) {
	observability.ObserveAssembly("rates", stats.Rates)
	observability.ObserveAssembly("countries", ds.Countries.Len())
	observability.ObserveAssembly("airports", ds.Airports.Len())
	observability.ObserveAssembly("flight_routes", ds.FlightRoutes.Len())
	observability.ObserveAssembly("bus_stops", ds.BusStops.Len())
	observability.ObserveAssembly("bus_routes", ds.BusRoutes.Len())
	observability.ObserveAssembly("hotels", ds.Hotels.Len())
	observability.ObserveAssembly("meals", ds.Meals.Len())

	observability.ObserveDropped("orphan_city", stats.OrphanCities)
	observability.ObserveDropped("hotel_without_geolocation", stats.HotelsWithoutGeolocation)
	observability.ObserveDropped("unparsed_room_section", stats.SkippedRoomSections)
	observability.ObserveDropped("incomplete_hotel", stats.IncompleteHotels)

	log.Info().
		Int("rates", stats.Rates).
		Int("hotels", ds.Hotels.Len()).
		Int("meals", ds.Meals.Len()).
		Int("flight_routes", ds.FlightRoutes.Len()).
		Int("bus_routes", ds.BusRoutes.Len()).
		Int("orphan_cities", stats.OrphanCities).
		Int("hotels_without_geolocation", stats.HotelsWithoutGeolocation).
		Int("unparsed_room_sections", stats.SkippedRoomSections).
		Int("incomplete_hotels", stats.IncompleteHotels).
		Msg("dataset assembled")
}
