package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/narcan-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/narcan-map/internal/adapter/kafka"
	"github.com/couchcryptid/narcan-map/internal/adapter/s3"
	"github.com/couchcryptid/narcan-map/internal/adapter/source"
	"github.com/couchcryptid/narcan-map/internal/config"
	"github.com/couchcryptid/narcan-map/internal/domain"
	"github.com/couchcryptid/narcan-map/internal/observability"
	"github.com/couchcryptid/narcan-map/internal/pipeline"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader, resource, err := newLoader(cfg)
	if err != nil {
		logger.Error("failed to create csv loader", "error", err)
		os.Exit(1)
	}
	policy, err := domain.ParseMarkerPolicy(cfg.MarkerPolicy)
	if err != nil {
		logger.Error("invalid marker policy", "error", err)
		os.Exit(1)
	}
	logger.Info("csv source configured", "source", cfg.CSVSource, "resource", resource, "marker_policy", cfg.MarkerPolicy)

	// Marker publishing is feature-flagged via KAFKA_ENABLED.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka marker publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka marker publishing disabled")
	}

	ctrl := pipeline.New(loader, resource, policy, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, ctrl, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx); err != nil {
			logger.Error("controller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("controller did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newLoader builds the Record Loader for the configured CSV source and
// returns it with a label for the resource it reads.
func newLoader(cfg *config.Config) (domain.Loader, string, error) {
	switch cfg.CSVSource {
	case config.SourceHTTP:
		l, err := source.NewHTTPLoader(cfg.BasePath, cfg.CSVPath, cfg.FetchTimeout)
		if err != nil {
			return nil, "", err
		}
		return l, l.URL(), nil
	case config.SourceFile:
		l := source.NewFileLoader(cfg.BasePath, cfg.CSVPath)
		return l, "file:" + l.Path(), nil
	case config.SourceS3:
		l, err := s3.NewLoader(s3.Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Key:       cfg.CSVPath,
		})
		if err != nil {
			return nil, "", err
		}
		return l, l.Resource(), nil
	default:
		return nil, "", fmt.Errorf("unsupported csv source %q", cfg.CSVSource)
	}
}
