package services

import "errors"

var (
  ErrCourseNotFound = errors.New("course not found")
  ErrLessonNotFound = errors.New("lesson not found")
  ErrQuizNotFound   = errors.New("quiz not found")

  // ErrNoOutlinePlan rejects a retry on a course that never got past
  // planning; there is nothing to regenerate from.
  ErrNoOutlinePlan = errors.New("course has no lesson outline plan")

  ErrInvalidUserStatus = errors.New("invalid user status")
  ErrInvalidDifficulty = errors.New("invalid difficulty")
)
