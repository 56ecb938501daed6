package notion

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/constants"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
)

// RetryConfig controls retry behavior for Notion API calls.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration

	// Multiplier grows the delay between attempts.
	Multiplier float64
}

// DefaultRetryConfig returns sensible defaults for Notion API retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  constants.MaxRetryAttempts,
		InitialDelay: constants.InitialBackoff,
		MaxDelay:     constants.MaxBackoff,
		Multiplier:   constants.BackoffMultiplier,
	}
}

// executeWithRetry runs attempt until it succeeds, returns a non-retryable
// error, or MaxAttempts is reached. Returns the result, attempts made, and the
// final error.
func executeWithRetry[R any](
	ctx context.Context,
	config RetryConfig,
	logger zerolog.Logger,
	attempt func(ctx context.Context) (R, error),
) (result R, attempts int, finalErr error) {
	delay := config.InitialDelay
	maxAttempts := max(config.MaxAttempts, 1)

	for n := 1; n <= maxAttempts; n++ {
		attempts = n

		res, err := attempt(ctx)
		if err == nil {
			return res, attempts, nil
		}
		result = res
		finalErr = err

		if !isRetryable(err) || n == maxAttempts {
			break
		}

		wait := delay
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > wait {
			wait = min(apiErr.RetryAfter, config.MaxDelay)
		}

		logger.Debug().
			Err(err).
			Int("attempt", n).
			Dur("delay", wait).
			Msg("retrying notion request")

		select {
		case <-ctx.Done():
			return result, attempts, ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return result, attempts, finalErr
}

// isRetryable reports whether a failed request may succeed if repeated:
// rate limiting, conflicts, server errors and transport failures.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == 429 || apiErr.Status == 409 || apiErr.Status >= 500
	}
	var tErr *transportError
	return errors.As(err, &tErr) || errors.Is(err, nferrors.ErrRateLimited)
}
