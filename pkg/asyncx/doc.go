// Package asyncx provides the small set of concurrency primitives the
// service layers share: cooperative cancellation, interruptible waits,
// a bounded worker pool, retries with backoff and lazy one-time
// initialisation.
//
// # Cancellation
//
// A [Token] is the observing side of a cancellation request. It can be
// polled with [Token.IsCancelled] or subscribed to with
// [Token.OnCancelled]. The owning side is either a [Source] created
// with [NewSource], or any [context.Context] adapted with [FromContext].
//
//	src := asyncx.NewSource()
//	time.AfterFunc(1500*time.Millisecond, src.Cancel)
//	err := processx.Process(numbers, processx.WithToken(src.Token()))
//
// # Waiting
//
// [Sleep] waits for a duration but returns early, reporting false, when
// the token is cancelled. It never busy-waits.
//
// # Worker Pool
//
// [Pool] limits concurrency to a fixed number of workers and returns
// results in input order.
//
//	pages, err := asyncx.Pool(ctx, 4, skips, func(ctx context.Context, skip int) (*users.APIResponse, error) {
//	    return dir.FetchPage(ctx, skip, limit)
//	})
//
// # Retry
//
// [RetryWithBackoff] retries a call with exponential backoff while the
// context allows it.
//
// # Once
//
// [Once] memoises the first result of a constructor, which is how the
// default mock user set is built lazily.
package asyncx
