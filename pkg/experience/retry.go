package experience

import (
	"context"
	"time"

	"github.com/XiaoConstantine/swexp-go/pkg/errors"
	"github.com/XiaoConstantine/swexp-go/pkg/logging"
)

// withRetry runs op up to attempts times with a fixed inter-attempt delay.
// Context cancellation between attempts stops the loop; a slow in-flight
// call is never interrupted, only not retried.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, operation string, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	logger := logging.GetLogger()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := errors.CheckContext(ctx, operation); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		logger.Debug(ctx, "%s attempt %d/%d failed: %v", operation, attempt, attempts, lastErr)

		if attempt < attempts && backoff > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), errors.Canceled, operation+" canceled during backoff")
			}
		}
	}
	return lastErr
}
