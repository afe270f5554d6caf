package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"huduku-gateway/internal/aggregate"
	"huduku-gateway/internal/auth"
	"huduku-gateway/internal/cache"
	"huduku-gateway/internal/clients"
	"huduku-gateway/internal/config"
	"huduku-gateway/internal/httpapi"
	"huduku-gateway/internal/kstream"
	"huduku-gateway/internal/location"
	"huduku-gateway/internal/logging"
)

func main() {
	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identity := clients.NewIdentityClient(cfg.IdentityURL, cfg.ReadTimeout)
	inventory := clients.NewInventoryClient(cfg.InventoryURL, cfg.ReadTimeout, cfg.UploadTimeout)
	geo := clients.NewGeoClient(cfg.GeoURL, cfg.ReadTimeout)

	store := cache.NewRedis(cfg.RedisAddr)
	defer store.Close()

	verifier := auth.NewVerifier(identity, logger)
	resolver := location.NewResolver(geo, logger)
	engine := aggregate.NewEngine(inventory, store, cfg.CacheTTL, logger)
	producer := kstream.NewProducer(cfg.KafkaBroker)

	// Cache invalidation consumer runs for the life of the process.
	go func() {
		if err := kstream.ConsumeListingEvents(ctx, cfg.KafkaBroker, store, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorw("cache invalidator stopped", "err", err)
		}
	}()

	r := mux.NewRouter()
	api := httpapi.NewServer(identity, inventory, geo, verifier, resolver, engine, producer, logger)
	api.RegisterRoutes(r)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Infow("shutting down")
		cancel()
		_ = server.Shutdown(context.Background())
	}()

	logger.Infow("gateway listening", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("server error", "err", err)
	}
}
