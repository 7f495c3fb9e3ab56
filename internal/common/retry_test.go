package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/service"
)

func fastOpts(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return nil
	}, fastOpts(3))

	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetryEventualSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, fastOpts(5))

	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("persistent")
	}, fastOpts(3))

	if !errors.Is(err, ErrMaxRetries) {
		t.Fatalf("expected ErrMaxRetries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryHonorsNonRetryable(t *testing.T) {
	calls := 0
	fatal := &RetryableError{Err: errors.New("bad credentials"), Retryable: false}
	err := WithRetry(context.Background(), func() error {
		calls++
		return fatal
	}, fastOpts(5))

	if !errors.Is(err, fatal) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries on non-retryable errors)", calls)
	}
}

func TestWithRetryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return errors.New("transient")
	}, fastOpts(3))

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrRateLimit) {
		t.Error("rate limit should be retryable")
	}
	if !IsRetryable(context.DeadlineExceeded) {
		t.Error("deadline exceeded should be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
	if !IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}) {
		t.Error("retryable wrapper ignored")
	}
}
