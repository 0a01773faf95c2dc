package dispatch

import (
	"context"
	"errors"
	"time"
)

// Task is one GET submitted to the pool.
type Task struct {
	// Index is the zero-based submission position.
	Index int
	URL   string
}

// Result is the outcome of a Task. Err is nil on success.
type Result struct {
	Task
	StatusCode int
	Body       string
	Duration   time.Duration
	Err        error
}

// OK reports whether the task succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Results holds one Result per task, indexed by submission order.
type Results []Result

// Succeeded returns the number of successful tasks.
func (rs Results) Succeeded() int {
	n := 0
	for _, r := range rs {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failed returns the failed results in submission order.
func (rs Results) Failed() []Result {
	var failed []Result
	for _, r := range rs {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err joins every task failure as *TaskError, in submission order.
// It returns nil when all tasks succeeded.
func (rs Results) Err() error {
	var errs []error
	for _, r := range rs {
		if !r.OK() {
			errs = append(errs, &TaskError{Index: r.Index, Err: r.Err})
		}
	}
	return errors.Join(errs...)
}

// Bodies returns the body of every task in submission order, or the joined
// failures if any task failed.
func (rs Results) Bodies() ([]string, error) {
	if err := rs.Err(); err != nil {
		return nil, err
	}
	bodies := make([]string, len(rs))
	for i, r := range rs {
		bodies[i] = r.Body
	}
	return bodies, nil
}

type taskKey struct{}

func withTask(ctx context.Context, task Task) context.Context {
	return context.WithValue(ctx, taskKey{}, task)
}

// TaskFromContext returns the Task a fetch is running for.
func TaskFromContext(ctx context.Context) (Task, bool) {
	task, ok := ctx.Value(taskKey{}).(Task)
	return task, ok
}
