// Package history keeps a Redis-backed record of past runs.
//
// Each run is stored as one JSON document under burst:run:<id>, and its id is
// pushed onto the burst:runs:recent list (newest first, capped at MaxRecent).
// Records expire with the manager's TTL; the recent list is trimmed on every
// save, so ids of expired runs fall out of it over time.
//
// Example usage:
//
//	manager := history.NewManager(redisClient, 24*time.Hour)
//	prev, _ := manager.Latest(ctx)
//	rec := history.NewRunRecord(url, started, time.Since(started), results)
//	if err := manager.Save(ctx, rec); err != nil {
//		// history is best effort
//	}
//	if prev != nil && !rec.SameShape(prev) {
//		// this run's outcomes differ from the previous one
//	}
package history
