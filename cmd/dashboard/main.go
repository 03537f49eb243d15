// Package main serves the Auto MPG analytical dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/WessleyAI/mpg-dashboard/engine/dataset"
	"github.com/WessleyAI/mpg-dashboard/engine/events"
	"github.com/WessleyAI/mpg-dashboard/pkg/natsutil"
)

// Config holds all environment-based configuration.
type Config struct {
	Port            string
	DatasetURL      string
	DatasetFile     string
	DatasetTimeout  time.Duration
	DatasetAttempts int
	NATSURL         string
	CORSOrigin      string
	RateLimit       float64
	RateBurst       int
	LogLevel        string
}

func loadConfig() Config {
	return Config{
		Port:            envOr("PORT", "8080"),
		DatasetURL:      envOr("DATASET_URL", dataset.DefaultURL),
		DatasetFile:     envOr("DATASET_FILE", ""),
		DatasetTimeout:  envDuration("DATASET_TIMEOUT", 30*time.Second),
		DatasetAttempts: envInt("DATASET_ATTEMPTS", 3),
		NATSURL:         envOr("NATS_URL", ""),
		CORSOrigin:      envOr("CORS_ORIGIN", "*"),
		RateLimit:       envFloat("RATE_LIMIT", 20),
		RateBurst:       envInt("RATE_BURST", 40),
		LogLevel:        envOr("LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// source picks the local file when one is configured.
func (c Config) source() dataset.Source {
	if c.DatasetFile != "" {
		return dataset.FileSource{Path: c.DatasetFile}
	}
	return dataset.NewHTTPSource(c.DatasetURL, c.DatasetTimeout, c.DatasetAttempts)
}

func main() {
	cfg := loadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("dashboard exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Load the dataset once; nothing is served without it ---
	src := cfg.source()
	if hs, ok := src.(*dataset.HTTPSource); ok {
		hs.Retry.OnRetry = func(attempt int, err error, wait time.Duration) {
			logger.Warn("dataset fetch failed, retrying", "attempt", attempt, "wait", wait, "err", err)
		}
	}
	tbl, report, err := dataset.Load(ctx, src, logger)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	app, err := newServer(ctx, tbl, report, cfg, logger)
	if err != nil {
		return err
	}

	// --- Optional NATS bridge ---
	if cfg.NATSURL != "" {
		nc, err := natsutil.Connect(cfg.NATSURL, "mpg-dashboard", logger)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Drain()
		bridge, err := events.Start(nc, app.dash, app.panels, logger)
		if err != nil {
			return fmt.Errorf("nats bridge: %w", err)
		}
		defer bridge.Close()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard starting", "port", cfg.Port, "rows", tbl.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
