package history

import (
	"fmt"
	"strings"
)

// Redis keys.
const (
	keyPrefix = "burst"

	// KeyRecent is the list of run ids, newest first.
	KeyRecent = "burst:runs:recent"
)

// MaxRecent caps the recent list.
const MaxRecent = 100

// RunKey identifies a stored run.
type RunKey struct {
	ID string
}

// String returns the Redis key of the run.
//
// Example:
//
//	burst:run:6f1c2b9e-3a51-4e0c-9b7d-2f4e8a1c0d55
func (k RunKey) String() string {
	return fmt.Sprintf("%s:run:%s", keyPrefix, strings.TrimSpace(k.ID))
}
