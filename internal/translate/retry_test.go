package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"doc-translator/internal/types"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 1, expected: 1 * time.Second},
		{attempt: 2, expected: 2 * time.Second},
		{attempt: 3, expected: 4 * time.Second},
		{attempt: 4, expected: 8 * time.Second},
		{attempt: 5, expected: 12 * time.Second},
		{attempt: 10, expected: 12 * time.Second},
	}

	for _, tt := range tests {
		if got := backoffDelay(tt.attempt); got != tt.expected {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected bool
	}{
		{status: 429, expected: true},
		{status: 408, expected: true},
		{status: 500, expected: true},
		{status: 503, expected: true},
		{status: 400, expected: false},
		{status: 401, expected: false},
		{status: 404, expected: false},
		{status: 200, expected: false},
	}

	for _, tt := range tests {
		if got := retryableStatus(tt.status); got != tt.expected {
			t.Errorf("retryableStatus(%d) = %v, want %v", tt.status, got, tt.expected)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "context canceled", err: context.Canceled, expected: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, expected: true},
		{
			name:     "rate limit app error",
			err:      types.NewAppError(types.ErrAPIRateLimit, "rate limited", nil),
			expected: true,
		},
		{
			name:     "network app error",
			err:      types.NewAppError(types.ErrNetwork, "connection refused", nil),
			expected: true,
		},
		{
			name:     "bad response app error",
			err:      types.NewAppError(types.ErrBadResponse, "no valid JSON", nil),
			expected: true,
		},
		{
			name:     "config app error",
			err:      types.NewAppError(types.ErrConfig, "missing API key", nil),
			expected: false,
		},
		{
			name:     "invalid input app error",
			err:      types.NewAppError(types.ErrInvalidInput, "empty batch", nil),
			expected: false,
		},
		{name: "timeout string", err: errors.New("request timed out"), expected: true},
		{name: "connection string", err: errors.New("connection reset by peer"), expected: true},
		{name: "429 string", err: errors.New("unexpected status 429"), expected: true},
		{name: "overloaded string", err: errors.New("model is overloaded"), expected: true},
		{name: "plain failure", err: errors.New("invalid request payload"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestWithRetrySucceedsAfterTransient(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), "test", 3, func() error {
		calls++
		if calls == 1 {
			return types.NewAppError(types.ErrNetwork, "transient", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("withRetry() made %d calls, want 2", calls)
	}
}

func TestWithRetryNonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	wantErr := types.NewAppError(types.ErrConfig, "bad config", nil)
	err := withRetry(context.Background(), "test", 4, func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("withRetry() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("withRetry() made %d calls, want 1", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), "test", 2, func() error {
		calls++
		return types.NewAppError(types.ErrNetwork, "still down", nil)
	})
	if err == nil {
		t.Fatal("withRetry() expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("withRetry() made %d calls, want 2", calls)
	}
}

func TestWithRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := withRetry(ctx, "test", 4, func() error {
		calls++
		return types.NewAppError(types.ErrNetwork, "transient", nil)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("withRetry() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("withRetry() made %d calls, want 1", calls)
	}
}
