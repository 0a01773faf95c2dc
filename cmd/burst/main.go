// Command burst sends a fixed number of concurrent GET requests to one URL
// and prints a preview of every response body in submission order.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/burst-fetch/pkg/config"
	"github.com/Sternrassler/burst-fetch/pkg/dispatch"
	"github.com/Sternrassler/burst-fetch/pkg/fetch"
	"github.com/Sternrassler/burst-fetch/pkg/history"
	"github.com/Sternrassler/burst-fetch/pkg/logging"
	"github.com/Sternrassler/burst-fetch/pkg/metrics"
	"github.com/Sternrassler/burst-fetch/pkg/report"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Stdout)
	stop()
	os.Exit(code)
}

// execute runs one burst and returns the process exit code.
func execute(ctx context.Context, stdout io.Writer) int {
	cfg, err := config.Load(os.Getenv(config.EnvConfigFile))
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		logger := logging.NewLogger("burst")
		logger.Error().Err(err).Msg("Invalid configuration")
		return 1
	}

	logging.Setup(cfg.Logging())
	logger := logging.NewLogger("burst")

	var runHistory *history.Manager
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, run history disabled")
		} else {
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
			runHistory = history.NewManager(redisClient, cfg.Redis.HistoryTTL)
		}
	}

	runErr := run(ctx, cfg, runHistory, stdout, logger)

	if cfg.Metrics.PushURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := metrics.Push(pushCtx, cfg.Metrics.PushURL, metrics.DefaultJob); err != nil {
			logger.Warn().Err(err).Msg("Failed to push metrics")
		} else {
			logger.Info().Str("url", cfg.Metrics.PushURL).Msg("Pushed metrics")
		}
		cancel()
	}

	if runErr != nil {
		logger.Error().Err(runErr).Msg("Run failed")
		return 1
	}
	return 0
}

// run dispatches cfg.Requests GETs against cfg.URL, records the run when
// runHistory is non-nil, and writes the report. Nothing is written to stdout
// when any request failed.
func run(ctx context.Context, cfg config.Config, runHistory *history.Manager, stdout io.Writer, logger zerolog.Logger) error {
	client, err := fetch.New(fetch.Config{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.Timeout,
		MaxBodyBytes: fetch.DefaultConfig().MaxBodyBytes,
	})
	if err != nil {
		return fmt.Errorf("create fetch client: %w", err)
	}

	dispatcher := dispatch.New(client, dispatch.DefaultConfig())

	started := time.Now()
	results, err := dispatcher.Dispatch(ctx, cfg.URL, cfg.Requests)
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	if runHistory != nil {
		recordRun(ctx, runHistory, history.NewRunRecord(cfg.URL, started, time.Since(started), results), logger)
	}

	return report.Write(stdout, cfg.URL, results)
}

// recordRun saves rec and compares it with the previous run. History is best
// effort: failures are logged, never returned.
func recordRun(ctx context.Context, runHistory *history.Manager, rec *history.RunRecord, logger zerolog.Logger) {
	prev, err := runHistory.Latest(ctx)
	if err != nil && !errors.Is(err, history.ErrRunNotFound) {
		logger.Warn().Err(err).Msg("Failed to load previous run")
	}

	if err := runHistory.Save(ctx, rec); err != nil {
		logger.Warn().Err(err).Msg("Failed to save run")
		return
	}

	event := logger.Info().
		Str("run_id", rec.ID).
		Int("requests", rec.Requests).
		Int("failed", rec.Failed())
	if prev != nil {
		event = event.Str("previous_run_id", prev.ID).Bool("same_shape", rec.SameShape(prev))
	}
	event.Msg("Saved run")
}
