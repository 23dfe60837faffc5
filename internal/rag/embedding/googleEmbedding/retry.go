package googleEmbedding

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rpillai/docuchat/pkg/logger_i"
)

const (
	maxEmbedAttempts  = 3
	retryBackoffStart = 2 * time.Second
)

// isRateLimited reports whether the API pushed back with a quota error, the
// one failure worth retrying during a batch.
func isRateLimited(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted {
			log.Error("Rate limit hit! ", "error", err)
			return true
		}
	}
	return false
}

// withRetry runs the call, backing off and retrying only on rate limiting.
func withRetry(ctx context.Context, log *logger_i.Logger, call func() error) error {
	backoff := retryBackoffStart
	var err error
	for attempt := 1; attempt <= maxEmbedAttempts; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if !isRateLimited(err, log) || attempt == maxEmbedAttempts {
			return err
		}

		log.Warn("Backing off before retry", "attempt", attempt, "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return err
}
