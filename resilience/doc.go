// Package resilience provides retry with exponential backoff for remote
// calls and a bulkhead that caps concurrent work.
//
//	out, err := resilience.Retry(ctx, cfg, func() (*Response, error) {
//	    return client.Do(ctx, req)
//	})
//
//	err := bulkhead.Execute(ctx, func() error { return run(ctx) })
package resilience
