package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotel_bookings/internal/adapters/csvsource"
	"hotel_bookings/internal/adapters/geo"
	server "hotel_bookings/internal/adapters/http_server"
	"hotel_bookings/internal/adapters/memo"
	"hotel_bookings/internal/adapters/observability"
	redisad "hotel_bookings/internal/adapters/redis"
	"hotel_bookings/internal/app"
	"hotel_bookings/internal/domain"
	_ "hotel_bookings/internal/forest" // registers the classifier with gob
	"hotel_bookings/internal/shared"
	"hotel_bookings/internal/storage/artifact"
	mysqlrepo "hotel_bookings/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the audit log and the cache are optional; predictions work without them
	var repo domain.PredictionRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Warn().Err(err).Msg("database unreachable, predictions will not be recorded")
		} else {
			log.Info().Msg("database connection ok")
			repo = mysqlrepo.New(db)
		}
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, prediction cache disabled")
		} else {
			cache = rc
		}
	}

	var geoSrc domain.GeoSource
	if cfg.GeoSource != "" {
		geoSrc, err = geo.NewSource(cfg.GeoSource, cfg.GeoRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("geo source")
		}
	}

	src := csvsource.FileSource{Path: cfg.DataPath, Delimiter: cfg.Delimiter()}
	store := artifact.NewStore(cfg.ArtifactDir)
	q := app.NewQueryService(src, store, geoSrc, memo.New("process"))
	p := app.NewPredictionService(q, repo, cache, cfg.CacheTTL)

	// warm the dataset so the first dashboard request is not the slow one
	go func() {
		start := time.Now()
		if _, err := q.Dataset(ctx); err != nil {
			log.Warn().Err(err).Str("path", cfg.DataPath).Msg("dataset warmup failed")
			return
		}
		log.Info().Dur("duration", time.Since(start)).Msg("dataset loaded")
	}()

	// http
	srv := server.New(server.DefaultTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, P: p})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
