package tasks

import (
  "context"

  "golang.org/x/sync/semaphore"

  "github.com/courseloom/courseloom-backend/internal/logger"
)

// Runner is the execution substrate for long-running generation work.
// Go returns immediately; the function runs detached from the caller's
// request context. Injecting the runner lets tests execute tasks inline.
type Runner interface {
  Go(name string, fn func(ctx context.Context))
}

type runner struct {
  base context.Context
  log  *logger.Logger
  sem  *semaphore.Weighted
}

// NewRunner builds the production runner. maxConcurrent bounds how many
// tasks do work at once (0 = unbounded); excess tasks queue inside their
// goroutine, so callers still return immediately.
func NewRunner(base context.Context, baseLog *logger.Logger, maxConcurrent int64) Runner {
  r := &runner{
    base: base,
    log:  baseLog.With("component", "TaskRunner"),
  }
  if maxConcurrent > 0 {
    r.sem = semaphore.NewWeighted(maxConcurrent)
  }
  return r
}

func (r *runner) Go(name string, fn func(ctx context.Context)) {
  go func() {
    if r.sem != nil {
      if err := r.sem.Acquire(r.base, 1); err != nil {
        r.log.Warn("Background task not started, runner shutting down", "task", name, "error", err)
        return
      }
      defer r.sem.Release(1)
    }
    r.log.Debug("Background task started", "task", name)
    defer func() {
      if rec := recover(); rec != nil {
        // Last resort only; tasks are expected to recover themselves
        // and persist a terminal failure state.
        r.log.Error("Background task panicked", "task", name, "panic", rec)
      }
    }()
    fn(r.base)
    r.log.Debug("Background task finished", "task", name)
  }()
}

// SyncRunner executes tasks inline. Used by tests so "background" work
// completes before assertions run.
type SyncRunner struct{}

func (SyncRunner) Go(name string, fn func(ctx context.Context)) {
  fn(context.Background())
}
