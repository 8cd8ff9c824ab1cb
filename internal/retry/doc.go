// Package retry retries database operations that fail for transient
// reasons, such as a server that is still starting up, with exponential
// backoff.
//
//	err := retry.Do(ctx, retry.DefaultPolicy(), func(ctx context.Context) error {
//	    pool, err = pgxpool.New(ctx, connString)
//	    ...
//	})
package retry
