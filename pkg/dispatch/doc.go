// Package dispatch fans a fixed number of identical GET tasks out to a worker
// pool and collects their results in submission order.
//
// Example usage:
//
//	client, _ := fetch.New(fetch.DefaultConfig())
//	d := dispatch.New(client, dispatch.DefaultConfig())
//	results, err := d.Dispatch(ctx, "http://localhost/", 20)
//	if err != nil {
//		return err // invalid input, nothing was sent
//	}
//	if err := results.Err(); err != nil {
//		// one or more tasks failed; results still holds every task
//	}
//
// The dispatcher:
//   - Submits every task to the pool up front (no throttling beyond pool size)
//   - Sizes the pool like a default thread pool executor: min(32, NumCPU+4)
//   - Waits for all tasks, joins the workers, then returns results where
//     results[i].Index == i regardless of completion order
//   - Captures each task's failure in its Result so one failure never hides
//     the others
package dispatch
