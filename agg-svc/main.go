package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpapi "friendlyeats/agg-svc/internal/api/http"
	"friendlyeats/agg-svc/internal/service"
	"friendlyeats/agg-svc/internal/storage"
	"friendlyeats/config"
	"friendlyeats/internal/docstore"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Writes made by the updaters go back onto the change topic so that the
	// follow-up events hit the idempotence checks like any other write.
	writer := config.NewKafkaWriter(cfg, cfg.ChangesTopic)
	defer writer.Close()

	store, closeStore := config.MustInitDocStore(cfg, docstore.NewKafkaChangeSink(writer))
	defer closeStore()

	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	dispatcher := service.NewDispatcher(
		service.NewRatingAggregator(store, storage.NewStatsCache(rdb, cfg.StatsTTL)),
		service.NewRenamePropagator(store),
		service.NewYumDeduplicator(store),
	)

	reader := config.NewKafkaReader(cfg, cfg.ChangesTopic, cfg.ConsumerGroup)
	defer reader.Close()

	consumer := service.NewConsumer(reader, dispatcher)
	go consumer.Start(ctx)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.NewHandler(dispatcher)),
	}
	go func() {
		log.Printf("Aggregation Service starting on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
}
