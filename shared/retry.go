package shared

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FailureClass is the closed set of remote failure categories. Classification
// happens here and nowhere else so every remote call retries identically.
type FailureClass int

const (
	FailurePermanent FailureClass = iota
	FailureTransient
)

func (c FailureClass) String() string {
	if c == FailureTransient {
		return "transient"
	}
	return "permanent"
}

// ClassifyFailure maps a remote error onto a failure class via its transport
// status code. Service-unavailable and deadline-exceeded are the only
// transient conditions; everything else (auth, permission, validation,
// unknown) surfaces immediately.
func ClassifyFailure(err error) FailureClass {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return FailureTransient
	default:
		return FailurePermanent
	}
}

// RetryPolicy wraps remote operations in bounded exponential backoff:
// attempt n sleeps BaseDelay * 2^(n-1) before retrying. Transient failures
// are retried up to MaxAttempts total invocations; the last error is
// returned once the budget is spent.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

func (p RetryPolicy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ClassifyFailure(err) == FailurePermanent {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.BaseDelay << (attempt - 1)
		log.WithError(err).WithFields(log.Fields{
			"op":      name,
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn("Transient remote failure, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
