package tasks

import (
  "sync"

  "github.com/google/uuid"
)

// CourseLocks serializes mutating pipeline operations on the same course
// (course-level retry vs lesson-level regeneration). Entries are created
// on demand and kept for the process lifetime; the set of courses under
// active mutation stays small.
type CourseLocks struct {
  mu    sync.Mutex
  locks map[uuid.UUID]*sync.Mutex
}

func NewCourseLocks() *CourseLocks {
  return &CourseLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the mutex for a course and returns its unlock func.
func (c *CourseLocks) Lock(courseID uuid.UUID) func() {
  c.mu.Lock()
  l, ok := c.locks[courseID]
  if !ok {
    l = &sync.Mutex{}
    c.locks[courseID] = l
  }
  c.mu.Unlock()

  l.Lock()
  return l.Unlock
}
