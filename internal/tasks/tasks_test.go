package tasks

import (
  "context"
  "sync"
  "testing"

  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/logger"
)

func TestSyncRunnerRunsInline(t *testing.T) {
  ran := false
  SyncRunner{}.Go("inline", func(ctx context.Context) {
    if ctx == nil {
      t.Error("nil context passed to task")
    }
    ran = true
  })
  if !ran {
    t.Fatal("task did not run before Go returned")
  }
}

func TestRunnerExecutesTask(t *testing.T) {
  r := NewRunner(context.Background(), logger.Nop(), 1)
  done := make(chan struct{})
  r.Go("task", func(ctx context.Context) {
    close(done)
  })
  <-done
}

func TestRunnerRecoversPanic(t *testing.T) {
  r := NewRunner(context.Background(), logger.Nop(), 0)
  done := make(chan struct{})
  r.Go("panics", func(ctx context.Context) {
    defer close(done)
    panic("boom")
  })
  <-done
  // A second task still runs after a panicked one.
  again := make(chan struct{})
  r.Go("after", func(ctx context.Context) { close(again) })
  <-again
}

func TestCourseLocksSerializeSameCourse(t *testing.T) {
  locks := NewCourseLocks()
  courseID := uuid.New()

  const workers = 8
  counter := 0
  var wg sync.WaitGroup
  wg.Add(workers)
  for i := 0; i < workers; i++ {
    go func() {
      defer wg.Done()
      unlock := locks.Lock(courseID)
      defer unlock()
      counter++
    }()
  }
  wg.Wait()
  if counter != workers {
    t.Errorf("counter = %d, want %d", counter, workers)
  }
}

func TestCourseLocksIndependentCourses(t *testing.T) {
  locks := NewCourseLocks()
  a := locks.Lock(uuid.New())
  // A different course must not block.
  b := locks.Lock(uuid.New())
  b()
  a()
}
