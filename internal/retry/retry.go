package retry

import (
  "context"
  "errors"
  "fmt"
  "math"
  "math/rand"
  "net"
  "strings"
  "time"

  "github.com/courseloom/courseloom-backend/internal/logger"
)

// HTTPError is a non-2xx upstream response. Transports return it so the
// classifier can retry 408/429/5xx and fail fast on everything else.
type HTTPError struct {
  StatusCode int
  Body       string
}

func (e *HTTPError) Error() string {
  return fmt.Sprintf("upstream http %d: %s", e.StatusCode, e.Body)
}

// transientSignatures are message fragments that mark an error as retryable
// even when it arrives untyped (wrapped provider errors, proxied failures).
var transientSignatures = []string{
  "connection error",
  "connection timeout",
  "timeout",
  "server disconnected",
  "remote protocol error",
  "connection reset",
  "connection refused",
  "network error",
  "api connection error",
  "rate limit",
  "too many requests",
  "service unavailable",
  "internal server error",
  "bad gateway",
  "gateway timeout",
  "overloaded",
}

// Retryable reports whether an error is a transient failure worth retrying.
func Retryable(err error) bool {
  if err == nil {
    return false
  }
  if errors.Is(err, context.Canceled) {
    // Caller gave up; retrying would only fight the cancellation.
    return false
  }
  if errors.Is(err, context.DeadlineExceeded) {
    return true
  }
  var httpErr *HTTPError
  if errors.As(err, &httpErr) {
    code := httpErr.StatusCode
    return code == 408 || code == 429 || (code >= 500 && code <= 599)
  }
  var netErr net.Error
  if errors.As(err, &netErr) && netErr.Timeout() {
    return true
  }
  msg := strings.ToLower(err.Error())
  for _, sig := range transientSignatures {
    if strings.Contains(msg, sig) {
      return true
    }
  }
  return false
}

// Policy holds the backoff knobs for one call site. Every field is
// caller-supplied; there are no ambient defaults inside the retry loop.
type Policy struct {
  MaxRetries    int
  BaseDelay     time.Duration
  BackoffFactor float64
  MaxDelay      time.Duration
}

// backoff is the deterministic exponential delay for a given attempt,
// capped at MaxDelay. Jitter is applied on top by Delay.
func (p Policy) backoff(attempt int) time.Duration {
  d := time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt)))
  if d > p.MaxDelay || d < 0 {
    d = p.MaxDelay
  }
  return d
}

// Delay returns the sleep before retry number attempt+1: exponential
// backoff with +/-25% uniform jitter, never negative.
func (p Policy) Delay(attempt int) time.Duration {
  d := p.backoff(attempt)
  jitter := float64(d) * 0.25 * (2*rand.Float64() - 1)
  d = time.Duration(float64(d) + jitter)
  if d < 0 {
    d = 0
  }
  return d
}

// Do runs op up to MaxRetries+1 times, sleeping between retryable
// failures. The final error is propagated as-is: converting errors into
// persisted failure states is the orchestrator's concern, not the retry
// loop's.
func (p Policy) Do(ctx context.Context, log *logger.Logger, op func() error) error {
  var lastErr error
  for attempt := 0; attempt <= p.MaxRetries; attempt++ {
    if err := ctx.Err(); err != nil {
      return err
    }
    lastErr = op()
    if lastErr == nil {
      return nil
    }
    if !Retryable(lastErr) {
      if log != nil {
        log.Error("Operation failed with non-retryable error", "error", lastErr)
      }
      return lastErr
    }
    if attempt == p.MaxRetries {
      if log != nil {
        log.Error("Operation failed after exhausting retries", "retries", p.MaxRetries, "error", lastErr)
      }
      return lastErr
    }
    delay := p.Delay(attempt)
    if log != nil {
      log.Warn("Operation failed, retrying",
        "attempt", attempt+1,
        "max_attempts", p.MaxRetries+1,
        "sleep", delay.String(),
        "error", lastErr)
    }
    select {
    case <-ctx.Done():
      return ctx.Err()
    case <-time.After(delay):
    }
  }
  return lastErr
}
