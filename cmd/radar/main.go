package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/powder-radar-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/powder-radar-service/internal/adapter/kafka"
	"github.com/couchcryptid/powder-radar-service/internal/conditions"
	"github.com/couchcryptid/powder-radar-service/internal/config"
	"github.com/couchcryptid/powder-radar-service/internal/observability"
	"github.com/couchcryptid/powder-radar-service/internal/radar"
	"github.com/couchcryptid/powder-radar-service/internal/scheduler"
	"github.com/couchcryptid/powder-radar-service/internal/source"
	"github.com/couchcryptid/powder-radar-service/internal/synth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Observation points come from Kafka when brokers are configured,
	// otherwise from polling the conditions API with a TTL cache.
	var provider conditions.Provider
	var feed *kafkaadapter.Feed
	if cfg.KafkaEnabled() {
		feed = kafkaadapter.NewFeed(cfg, logger)
		provider = feed
		go func() {
			if err := feed.Run(ctx); err != nil {
				logger.Error("conditions feed error", "error", err)
			}
		}()
		logger.Info("conditions feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaConditionsTopic)
	} else {
		client := conditions.NewClient(cfg.ConditionsURL, cfg.ConditionsTimeout, logger)
		provider = conditions.NewCachedProvider(client, cfg.ConditionsTTL)
		logger.Info("conditions polling enabled", "url", cfg.ConditionsURL, "ttl", cfg.ConditionsTTL)
	}

	renderer := synth.NewRenderer(logger, metrics)
	synthetic := source.NewSynthetic(provider, renderer, logger, metrics)

	sources := []source.Source{synthetic}
	if cfg.RainViewerEnabled {
		sources = append(sources, source.WithBreaker(source.NewRainViewer(cfg.SourceTimeout, logger), logger))
	}
	if cfg.NEXRADEnabled {
		sources = append(sources, source.WithBreaker(source.NewNEXRAD(cfg.SourceTimeout, logger), logger))
	}
	registry := source.NewRegistry(sources...)
	logger.Info("radar sources registered", "sources", registry.Names())

	manager := radar.New(registry, cfg.FrameTTL, cfg.SourceTimeout, cfg.TileCacheSize, logger, metrics)

	sched := scheduler.New(manager, cfg.FrameRefreshInterval, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, manager, synthetic, manager, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if feed != nil {
		if err := feed.Close(); err != nil {
			logger.Error("conditions feed close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
