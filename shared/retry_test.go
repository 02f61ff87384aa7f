package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want FailureClass
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), FailureTransient},
		{"deadline exceeded", status.Error(codes.DeadlineExceeded, "slow"), FailureTransient},
		{"permission denied", status.Error(codes.PermissionDenied, "no"), FailurePermanent},
		{"unauthenticated", status.Error(codes.Unauthenticated, "who"), FailurePermanent},
		{"not found", status.Error(codes.NotFound, "gone"), FailurePermanent},
		{"plain error", errors.New("boom"), FailurePermanent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyFailure(tc.err); got != tc.want {
				t.Errorf("ClassifyFailure(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRetryTransientExhaustsBudget(t *testing.T) {
	attempts := 0
	opErr := status.Error(codes.Unavailable, "still down")

	err := testPolicy().Do(context.Background(), "test", func(ctx context.Context) error {
		attempts++
		return opErr
	})

	if attempts != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, opErr) && status.Code(err) != codes.Unavailable {
		t.Errorf("expected last error to surface, got %v", err)
	}
}

func TestRetryPermanentFailsFast(t *testing.T) {
	attempts := 0
	opErr := status.Error(codes.PermissionDenied, "no access")

	err := testPolicy().Do(context.Background(), "test", func(ctx context.Context) error {
		attempts++
		return opErr
	})

	if attempts != 1 {
		t.Errorf("permanent failure should not retry, got %d attempts", attempts)
	}
	if status.Code(err) != codes.PermissionDenied {
		t.Errorf("expected permission denied, got %v", err)
	}
}

func TestRetrySucceedsMidway(t *testing.T) {
	attempts := 0

	err := testPolicy().Do(context.Background(), "test", func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return status.Error(codes.Unavailable, "flap")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Minute}

	err := policy.Do(ctx, "test", func(ctx context.Context) error {
		attempts++
		cancel()
		return status.Error(codes.Unavailable, "down")
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRetryBackoffDoubles(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}

	start := time.Now()
	_ = policy.Do(context.Background(), "test", func(ctx context.Context) error {
		return status.Error(codes.Unavailable, "down")
	})
	elapsed := time.Since(start)

	// Two sleeps: 10ms then 20ms.
	if elapsed < 30*time.Millisecond {
		t.Errorf("expected at least 30ms of backoff, got %v", elapsed)
	}
}
