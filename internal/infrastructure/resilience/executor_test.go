package resilience

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{
			Retryable:     errors.Is(err, errTemp),
			RecordFailure: true,
		}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDefaultsToSingleAttempt(t *testing.T) {
	exec := NewExecutor(Config{BreakerEnabled: false})

	attempts := 0
	err := exec.Execute(context.Background(), "zero_shot", func(context.Context) error {
		attempts++
		return &HTTPStatusError{Service: "huggingface", Operation: "classify", StatusCode: http.StatusServiceUnavailable, Status: "503 Service Unavailable"}
	}, ClassifyInferenceError)
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})

	errTemp := errors.New("temporary")
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errTemp
		}, nil)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	if state := exec.State("op"); state != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", state)
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
}

func TestStateOfUnknownOperationIsClosed(t *testing.T) {
	exec := NewExecutor(DefaultConfig())
	if state := exec.State("never_run"); state != gobreaker.StateClosed {
		t.Fatalf("expected closed, got %s", state)
	}
}

func TestDoReturnsValue(t *testing.T) {
	exec := NewExecutor(DefaultConfig())

	got, err := Do(context.Background(), exec, "op", func(context.Context) (int, error) {
		return 42, nil
	}, nil)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestDoWithNilExecutorCallsDirectly(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), nil, "op", func(context.Context) (string, error) {
		calls++
		return "ok", nil
	}, nil)
	if err != nil || got != "ok" || calls != 1 {
		t.Fatalf("unexpected result: %q, %v, calls=%d", got, err, calls)
	}
}

func TestClassifyInferenceError(t *testing.T) {
	overloaded := ClassifyInferenceError(&HTTPStatusError{StatusCode: http.StatusTooManyRequests})
	if !overloaded.Retryable || !overloaded.RecordFailure {
		t.Fatalf("expected retryable failure for 429, got %+v", overloaded)
	}

	badRequest := ClassifyInferenceError(&HTTPStatusError{StatusCode: http.StatusBadRequest})
	if badRequest.Retryable || badRequest.RecordFailure {
		t.Fatalf("expected permanent non-failure for 400, got %+v", badRequest)
	}

	canceled := ClassifyInferenceError(context.Canceled)
	if canceled.Retryable || canceled.RecordFailure {
		t.Fatalf("expected cancellation to be ignored, got %+v", canceled)
	}
}

func TestHTTPStatusErrorIncludesBody(t *testing.T) {
	err := &HTTPStatusError{Service: "ollama", Operation: "generate", Status: "502 Bad Gateway", Body: " model unavailable \n"}
	if got := err.Error(); got != "ollama generate status: 502 Bad Gateway: model unavailable" {
		t.Fatalf("unexpected message: %q", got)
	}
}
