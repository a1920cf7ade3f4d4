package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "tour_dataset/internal/adapters/http_server"
	"tour_dataset/internal/adapters/observability"
	redisad "tour_dataset/internal/adapters/redis"
	"tour_dataset/internal/app"
	"tour_dataset/internal/domain"
	"tour_dataset/internal/shared"
	mongorepo "tour_dataset/internal/storage/mongo"
	mysqlrepo "tour_dataset/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// snapshots are read from MySQL, or from Mongo when only that is configured
	var repo domain.SnapshotReader
	switch {
	case cfg.MySQLDSN != "":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	case cfg.MongoURI != "":
		mc, err := mongorepo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect failed")
		}
		r, err := mongorepo.New(ctx, mc.Database(cfg.MongoDB))
		if err != nil {
			log.Fatal().Err(err).Msg("mongo repo init failed")
		}
		log.Info().Msg("mongo connection ok")
		repo = r
	default:
		log.Fatal().Msg("MYSQL_DSN or MONGO_URI is required")
	}

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable; serving without cache hits")
	}
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
