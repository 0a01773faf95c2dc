package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/Sternrassler/burst-fetch/pkg/fetch"
	"github.com/Sternrassler/burst-fetch/pkg/metrics"
	"github.com/alitto/pond/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for dispatch operations.
var (
	tasksTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "burst_tasks_total",
		Help: "Total dispatched tasks by outcome",
	}, []string{"outcome"})

	tasksInFlight = promauto.With(metrics.Registry).NewGauge(prometheus.GaugeOpts{
		Name: "burst_tasks_in_flight",
		Help: "Tasks currently running in the worker pool",
	})

	dispatchDuration = promauto.With(metrics.Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "burst_dispatch_duration_seconds",
		Help:    "Wall time of a whole dispatch, from first submit to last result",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)

const maxDefaultWorkers = 32

// DefaultWorkers returns the pool size used when none is configured:
// min(32, NumCPU+4).
func DefaultWorkers() int {
	return min(maxDefaultWorkers, runtime.NumCPU()+4)
}

// Fetcher performs a single blocking GET.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Config holds dispatcher configuration.
type Config struct {
	// Workers caps concurrently running tasks. 0 selects DefaultWorkers.
	Workers int

	// TaskTimeout bounds each fetch. 0 leaves timing to the Fetcher.
	TaskTimeout time.Duration
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers: DefaultWorkers(),
	}
}

// Dispatcher submits batches of GET tasks to a worker pool.
type Dispatcher struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger
}

// New creates a new dispatcher.
func New(fetcher Fetcher, config Config) *Dispatcher {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if config.Workers <= 0 {
		config.Workers = DefaultWorkers()
	}
	if config.TaskTimeout < 0 {
		config.TaskTimeout = 0
	}

	return &Dispatcher{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch performs n GET requests against url and returns n results in
// submission order. The returned error is non-nil only for invalid input;
// per-task failures are reported through Results.
func (d *Dispatcher) Dispatch(ctx context.Context, url string, n int) (Results, error) {
	if n < 0 {
		return nil, fmt.Errorf("request count must be >= 0 (got %d)", n)
	}
	if url == "" {
		return nil, errors.New("url is required")
	}

	start := time.Now()
	defer func() {
		dispatchDuration.Observe(time.Since(start).Seconds())
	}()

	if n == 0 {
		d.logger.Info().Str("url", url).Int("requests", 0).Msg("Nothing to dispatch")
		return Results{}, nil
	}

	d.logger.Info().
		Str("url", url).
		Int("requests", n).
		Int("workers", d.config.Workers).
		Msg("Dispatching requests")

	pool := pond.NewResultPool[Result](d.config.Workers)
	group := pool.NewGroup()

	for i := 0; i < n; i++ {
		task := Task{Index: i, URL: url}
		group.Submit(func() Result {
			return d.run(ctx, task)
		})
	}

	results, err := group.Wait()
	pool.StopAndWait()
	if err != nil {
		// run recovers its own panics, so this only fires on pool misuse.
		return nil, fmt.Errorf("wait for tasks: %w", err)
	}

	out := Results(results)
	succeeded := out.Succeeded()

	event := d.logger.Info()
	if succeeded < n {
		event = d.logger.Warn()
	}
	event.
		Str("url", url).
		Int("requests", n).
		Int("succeeded", succeeded).
		Int("failed", n-succeeded).
		Dur("duration", time.Since(start)).
		Msg("Dispatch complete")

	return out, nil
}

// run executes a single task. It never panics and never returns a Result
// for a different task.
func (d *Dispatcher) run(ctx context.Context, task Task) (result Result) {
	result.Task = task
	start := time.Now()
	tasksInFlight.Inc()

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
		tasksInFlight.Dec()
		result.Duration = time.Since(start)

		if result.Err != nil {
			tasksTotal.WithLabelValues("failure").Inc()
			d.logger.Warn().
				Err(result.Err).
				Int("task", task.Index).
				Str("error_class", string(fetch.ClassOf(result.Err))).
				Msg("Task failed")
			return
		}
		tasksTotal.WithLabelValues("success").Inc()
		d.logger.Debug().
			Int("task", task.Index).
			Int("status", result.StatusCode).
			Int("bytes", len(result.Body)).
			Dur("duration", result.Duration).
			Msg("Task complete")
	}()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	taskCtx := withTask(ctx, task)
	if d.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, d.config.TaskTimeout)
		defer cancel()
	}

	resp, err := d.fetcher.Get(taskCtx, task.URL)
	if err != nil {
		var fe *fetch.FetchError
		if errors.As(err, &fe) {
			result.StatusCode = fe.StatusCode
		}
		result.Err = err
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Body = string(resp.Body)
	return result
}
