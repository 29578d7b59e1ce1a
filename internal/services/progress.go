package services

import (
  "github.com/courseloom/courseloom-backend/internal/types"
)

// DeriveCourseStatus folds lesson-level learner statuses into the course
// status. Courses with no lessons are not_started; completion requires
// every lesson completed; any touched lesson puts the course in progress.
func DeriveCourseStatus(lessonStatuses []types.UserLessonStatus) types.UserCourseStatus {
  if len(lessonStatuses) == 0 {
    return types.UserCourseNotStarted
  }
  allCompleted := true
  anyTouched := false
  for _, s := range lessonStatuses {
    if s != types.UserLessonCompleted {
      allCompleted = false
    }
    if s == types.UserLessonInProgress || s == types.UserLessonCompleted {
      anyTouched = true
    }
  }
  if allCompleted {
    return types.UserCourseCompleted
  }
  if anyTouched {
    return types.UserCourseInProgress
  }
  return types.UserCourseNotStarted
}
