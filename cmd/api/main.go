package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/revuo/reviews-api/internal/api"
	"github.com/revuo/reviews-api/internal/infrastructure/db/mongo"
	"github.com/revuo/reviews-api/internal/infrastructure/db/redis"
	"github.com/revuo/reviews-api/internal/infrastructure/queue"
	"github.com/revuo/reviews-api/internal/infrastructure/storage"
	"github.com/revuo/reviews-api/internal/pkg/config"
	"github.com/revuo/reviews-api/internal/realtime"
	"github.com/revuo/reviews-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongo.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes failed")
	}
	if err := mongo.NewReviewRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure review indexes failed")
	}

	// --- Redis ---
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Image host ---
	images, err := storage.NewImageHost(storage.Config{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("image host init failed")
	}

	// --- Realtime fan-out: services publish to the dispatcher, which feeds
	// the redis bridge, which delivers to the hub ---
	hub := realtime.NewHub(log)
	bridge := redis.NewBridge(rdb, hub, log)
	go bridge.Run(ctx)

	dispatcher := queue.NewDispatcher(0, bridge, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Deps{
		Logger:      log,
		DB:          db,
		Redis:       rdb,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		Images:      images,
		Broadcaster: dispatcher,
		Hub:         hub,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
