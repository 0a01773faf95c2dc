package history

import (
	"time"

	"github.com/Sternrassler/burst-fetch/pkg/dispatch"
	"github.com/Sternrassler/burst-fetch/pkg/report"
	"github.com/google/uuid"
)

// RunRecord is the stored summary of one dispatch.
type RunRecord struct {
	ID        string         `json:"id"`
	URL       string         `json:"url"`
	Requests  int            `json:"requests"`
	Succeeded int            `json:"succeeded"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Results   []ResultRecord `json:"results"`
}

// ResultRecord is the stored outcome of one task. Only the report preview of
// the body is kept.
type ResultRecord struct {
	Index      int           `json:"index"`
	StatusCode int           `json:"status_code,omitempty"`
	Bytes      int           `json:"bytes"`
	Preview    string        `json:"preview,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// OK reports whether the task succeeded.
func (r ResultRecord) OK() bool {
	return r.Error == ""
}

// NewRunRecord summarizes results under a fresh id.
func NewRunRecord(url string, startedAt time.Time, duration time.Duration, results dispatch.Results) *RunRecord {
	rec := &RunRecord{
		ID:        uuid.NewString(),
		URL:       url,
		Requests:  len(results),
		Succeeded: results.Succeeded(),
		StartedAt: startedAt.UTC(),
		Duration:  duration,
		Results:   make([]ResultRecord, len(results)),
	}

	for i, r := range results {
		rr := ResultRecord{
			Index:      r.Index,
			StatusCode: r.StatusCode,
			Bytes:      len(r.Body),
			Preview:    report.Preview(r.Body, report.PreviewLength),
			Duration:   r.Duration,
		}
		if r.Err != nil {
			rr.Error = r.Err.Error()
		}
		rec.Results[i] = rr
	}

	return rec
}

// Failed returns the number of failed tasks.
func (r *RunRecord) Failed() int {
	return r.Requests - r.Succeeded
}

// SameShape reports whether other has the same URL, request count and the
// same per-index success pattern. Bodies may differ.
func (r *RunRecord) SameShape(other *RunRecord) bool {
	if other == nil || r.URL != other.URL || len(r.Results) != len(other.Results) {
		return false
	}
	for i := range r.Results {
		if r.Results[i].Index != other.Results[i].Index || r.Results[i].OK() != other.Results[i].OK() {
			return false
		}
	}
	return true
}
