package translate

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"google.golang.org/genai"

	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// DefaultMaxAttempts bounds the retry loop per batch request.
const DefaultMaxAttempts = 4

const (
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 12 * time.Second
)

// backoffDelay returns baseRetryDelay * 2^(attempt-1), capped.
func backoffDelay(attempt int) time.Duration {
	delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// retryableStatus reports whether an HTTP status from a backend marks a
// transient failure: rate limits, request timeouts, and server errors.
func retryableStatus(status int) bool {
	return status == 429 || status == 408 || status >= 500
}

// IsRetryable classifies an error as transient. Rate limits, server errors,
// timeouts, network failures, and malformed responses (the model may emit
// valid output on the next attempt) are retryable; authentication, invalid
// requests, and cancellation are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case types.ErrAPIRateLimit, types.ErrNetwork, types.ErrBadResponse:
			return true
		case types.ErrConfig, types.ErrInvalidInput:
			return false
		}
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return retryableStatus(openaiErr.StatusCode)
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return retryableStatus(anthropicErr.StatusCode)
	}
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return retryableStatus(geminiErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Fallback for backends that only surface wrapped string errors.
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit", "too many requests", "status 429",
		"timeout", "timed out", "connection", "network",
		"eof", "reset by peer", "service unavailable",
		"bad gateway", "overloaded", "status 5",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}

// withRetry runs fn up to maxAttempts times, sleeping with exponential
// backoff between attempts while the error stays retryable.
func withRetry(ctx context.Context, label string, maxAttempts int, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			logger.Error("non-retryable backend error", lastErr,
				logger.String("label", label),
				logger.Int("attempt", attempt))
			return lastErr
		}

		logger.Warn("backend attempt failed",
			logger.String("label", label),
			logger.Int("attempt", attempt),
			logger.Int("maxAttempts", maxAttempts),
			logger.Err(lastErr))

		if attempt < maxAttempts {
			delay := backoffDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return lastErr
}
