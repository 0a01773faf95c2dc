package dispatch

import (
	"errors"
	"fmt"
)

// ErrTaskPanicked is wrapped into a task's error when its fetch panicked.
var ErrTaskPanicked = errors.New("task panicked")

// TaskError attributes a failure to a submitted task.
type TaskError struct {
	Index int
	Err   error
}

// Error implements the error interface. The index is shown 1-based, matching
// report output.
func (e *TaskError) Error() string {
	return fmt.Sprintf("request %d: %v", e.Index+1, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TaskError) Unwrap() error {
	return e.Err
}
