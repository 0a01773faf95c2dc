// Package metrics is the reference for every Prometheus metric burst-fetch
// exposes and pushes them to a Pushgateway at the end of a run.
//
// Metrics are defined with promauto.With(Registry) in the package that
// records them (dispatch, fetch, history).
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry is the registerer all burst-fetch metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer Push reads from.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// DefaultJob is the Pushgateway job label for CLI runs.
const DefaultJob = "burst_fetch"

// Push replaces the metrics of job on the Pushgateway at url with the current
// contents of Gatherer.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return fmt.Errorf("pushgateway url is required")
	}
	if job == "" {
		job = DefaultJob
	}

	if err := push.New(url, job).Gatherer(Gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Dispatch Metrics (pkg/dispatch):
//   - burst_tasks_total{outcome} (Counter): Tasks by outcome (success, failure)
//   - burst_tasks_in_flight (Gauge): Tasks currently running in the pool
//   - burst_dispatch_duration_seconds (Histogram): Wall time of a whole dispatch
//
// Fetch Metrics (pkg/fetch):
//   - burst_requests_total{status} (Counter): GETs by HTTP status or network_error
//   - burst_request_duration_seconds (Histogram): GET duration including body read
//   - burst_errors_total{class} (Counter): Failed GETs by class (network, client, server, status)
//
// History Metrics (pkg/history):
//   - burst_history_saves_total (Counter): Run records written to Redis
//   - burst_history_errors_total{operation} (Counter): Redis errors by operation
//
// Example Prometheus Queries:
//
//   # Failure ratio of the last pushed run
//   burst_tasks_total{outcome="failure"} / ignoring(outcome) sum(burst_tasks_total)
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(burst_request_duration_seconds_bucket[5m]))
