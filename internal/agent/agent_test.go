package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courseloom/courseloom-backend/internal/logger"
	"github.com/courseloom/courseloom-backend/internal/retry"
)

type scriptedCompleter struct {
	calls   int
	replies []any // string or error, consumed in order
}

func (s *scriptedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if s.calls >= len(s.replies) {
		return "", errors.New("script exhausted")
	}
	reply := s.replies[s.calls]
	s.calls++
	if err, ok := reply.(error); ok {
		return "", err
	}
	return reply.(string), nil
}

func fastPolicy(maxRetries int) retry.Policy {
	return retry.Policy{
		MaxRetries:    maxRetries,
		BaseDelay:     time.Millisecond,
		BackoffFactor: 2.0,
		MaxDelay:      4 * time.Millisecond,
	}
}

func TestRunSuccess(t *testing.T) {
	c := &scriptedCompleter{replies: []any{"# Lesson body"}}
	a := New("test", "system", c, fastPolicy(2), logger.Nop())

	res := a.Run(context.Background(), "prompt")
	if !res.OK() {
		t.Fatalf("expected success, got failure: %+v", res.Failure)
	}
	if res.Content != "# Lesson body" {
		t.Fatalf("unexpected content %q", res.Content)
	}
}

func TestRunRetriesTransientThenSucceeds(t *testing.T) {
	c := &scriptedCompleter{replies: []any{
		errors.New("connection reset by peer"),
		errors.New("gateway timeout"),
		"recovered",
	}}
	a := New("test", "system", c, fastPolicy(3), logger.Nop())

	res := a.Run(context.Background(), "prompt")
	if !res.OK() {
		t.Fatalf("expected success after retries, got %+v", res.Failure)
	}
	if c.calls != 3 {
		t.Fatalf("completer called %d times, want 3", c.calls)
	}
}

func TestRunTagsExhaustedRetriesAsRetryableFailure(t *testing.T) {
	c := &scriptedCompleter{replies: []any{
		&retry.HTTPError{StatusCode: 503, Body: "overloaded"},
		&retry.HTTPError{StatusCode: 503, Body: "overloaded"},
	}}
	a := New("test", "system", c, fastPolicy(1), logger.Nop())

	res := a.Run(context.Background(), "prompt")
	if res.OK() {
		t.Fatal("expected failure")
	}
	if !res.Failure.Retryable {
		t.Fatalf("exhausted transient failure should keep Retryable=true: %+v", res.Failure)
	}
	if c.calls != 2 {
		t.Fatalf("completer called %d times, want 2", c.calls)
	}
}

func TestRunTagsFatalFailureImmediately(t *testing.T) {
	c := &scriptedCompleter{replies: []any{&retry.HTTPError{StatusCode: 400, Body: "bad prompt"}}}
	a := New("test", "system", c, fastPolicy(5), logger.Nop())

	res := a.Run(context.Background(), "prompt")
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Failure.Retryable {
		t.Fatalf("4xx failure should not be retryable: %+v", res.Failure)
	}
	if c.calls != 1 {
		t.Fatalf("completer called %d times, want 1", c.calls)
	}
}
