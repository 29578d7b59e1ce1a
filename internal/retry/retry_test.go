package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func testPolicy() Policy {
	return Policy{
		MaxRetries:    3,
		BaseDelay:     1 * time.Millisecond,
		BackoffFactor: 2.0,
		MaxDelay:      8 * time.Millisecond,
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("invalid request payload"), false},
		{"connection_reset", errors.New("read tcp: connection reset by peer"), true},
		{"rate_limit", errors.New("429 Too Many Requests"), true},
		{"bad_gateway", errors.New("upstream returned Bad Gateway"), true},
		{"wrapped_timeout", fmt.Errorf("agent call: %w", errors.New("connection timeout while dialing")), true},
		{"http_500", &HTTPError{StatusCode: 500, Body: "boom"}, true},
		{"http_429", &HTTPError{StatusCode: 429, Body: "slow down"}, true},
		{"http_400", &HTTPError{StatusCode: 400, Body: "bad request"}, false},
		{"wrapped_http_503", fmt.Errorf("complete: %w", &HTTPError{StatusCode: 503, Body: ""}), true},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Retryable(tc.err); got != tc.want {
				t.Fatalf("Retryable(%v)=%v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestDoRetryableCallsMaxRetriesPlusOne(t *testing.T) {
	p := testPolicy()
	calls := 0
	err := p.Do(context.Background(), nil, func() error {
		calls++
		return errors.New("connection reset")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != p.MaxRetries+1 {
		t.Fatalf("op called %d times, want %d", calls, p.MaxRetries+1)
	}
}

func TestDoNonRetryableCallsOnce(t *testing.T) {
	p := testPolicy()
	calls := 0
	start := time.Now()
	fatal := errors.New("schema validation rejected")
	err := p.Do(context.Background(), nil, func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("got err %v, want %v propagated as-is", err, fatal)
	}
	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("non-retryable path slept for %v", elapsed)
	}
}

func TestDoSucceedsMidway(t *testing.T) {
	p := testPolicy()
	calls := 0
	err := p.Do(context.Background(), nil, func() error {
		calls++
		if calls < 3 {
			return errors.New("gateway timeout")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("op called %d times, want 3", calls)
	}
}

func TestBackoffMonotonicAndCapped(t *testing.T) {
	p := Policy{
		MaxRetries:    6,
		BaseDelay:     1 * time.Second,
		BackoffFactor: 2.0,
		MaxDelay:      10 * time.Second,
	}
	prev := time.Duration(0)
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		d := p.backoff(attempt)
		if d < prev {
			t.Fatalf("backoff(%d)=%v below backoff(%d)=%v", attempt, d, attempt-1, prev)
		}
		if d > p.MaxDelay {
			t.Fatalf("backoff(%d)=%v above cap %v", attempt, d, p.MaxDelay)
		}
		prev = d
	}
	if got := p.backoff(20); got != p.MaxDelay {
		t.Fatalf("large attempt backoff=%v, want cap %v", got, p.MaxDelay)
	}
}

func TestDelayJitterWithinBounds(t *testing.T) {
	p := Policy{
		MaxRetries:    3,
		BaseDelay:     100 * time.Millisecond,
		BackoffFactor: 2.0,
		MaxDelay:      time.Second,
	}
	for attempt := 0; attempt < 4; attempt++ {
		base := p.backoff(attempt)
		low := time.Duration(float64(base) * 0.75)
		high := time.Duration(float64(base) * 1.25)
		for i := 0; i < 200; i++ {
			d := p.Delay(attempt)
			if d < low || d > high {
				t.Fatalf("Delay(%d)=%v outside [%v, %v]", attempt, d, low, high)
			}
		}
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	p := Policy{
		MaxRetries:    5,
		BaseDelay:     time.Hour,
		BackoffFactor: 2.0,
		MaxDelay:      time.Hour,
	}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, nil, func() error {
			calls++
			return errors.New("service unavailable")
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	if calls != 1 {
		t.Fatalf("op called %d times before cancel, want 1", calls)
	}
}
