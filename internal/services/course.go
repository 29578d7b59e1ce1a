package services

import (
  "context"
  "strings"

  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/repos"
  "github.com/courseloom/courseloom-backend/internal/tasks"
  "github.com/courseloom/courseloom-backend/internal/types"
)

// UpdateCourseRequest carries the caller-editable course fields; nil
// fields are left untouched. Replacing the outline plan wipes the
// course's lessons and quizzes and recreates placeholders from the new
// plan.
type UpdateCourseRequest struct {
  Title             *string                 `json:"title"`
  Description       *string                 `json:"description"`
  Icon              *string                 `json:"icon"`
  Difficulty        *types.CourseDifficulty `json:"difficulty"`
  HasQuizzes        *bool                   `json:"has_quizzes"`
  LessonOutlinePlan []types.OutlineItem     `json:"lesson_outline_plan"`
}

type CourseService interface {
  GetByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
  List(ctx context.Context, offset, limit int) ([]*types.Course, error)
  Update(ctx context.Context, courseID uuid.UUID, req UpdateCourseRequest) (*types.Course, error)
  Delete(ctx context.Context, courseID uuid.UUID) error
}

type courseService struct {
  courseRepo repos.CourseRepo
  lessonRepo repos.LessonRepo
  quizRepo   repos.QuizRepo
  lessons    LessonService
  locks      *tasks.CourseLocks
  log        *logger.Logger
}

func NewCourseService(
  courseRepo repos.CourseRepo,
  lessonRepo repos.LessonRepo,
  quizRepo repos.QuizRepo,
  lessons LessonService,
  locks *tasks.CourseLocks,
  baseLog *logger.Logger,
) CourseService {
  return &courseService{
    courseRepo: courseRepo,
    lessonRepo: lessonRepo,
    quizRepo:   quizRepo,
    lessons:    lessons,
    locks:      locks,
    log:        baseLog.With("service", "CourseService"),
  }
}

func (s *courseService) GetByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, err
  }
  if len(courses) == 0 {
    return nil, ErrCourseNotFound
  }
  course := courses[0]
  lessons, err := s.lessonRepo.GetByCourseID(ctx, nil, courseID)
  if err != nil {
    return nil, err
  }
  course.Lessons = lessons
  return course, nil
}

func (s *courseService) List(ctx context.Context, offset, limit int) ([]*types.Course, error) {
  return s.courseRepo.GetAll(ctx, nil, offset, limit)
}

func (s *courseService) Update(ctx context.Context, courseID uuid.UUID, req UpdateCourseRequest) (*types.Course, error) {
  unlock := s.locks.Lock(courseID)
  defer unlock()

  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, err
  }
  if len(courses) == 0 {
    return nil, ErrCourseNotFound
  }
  course := courses[0]

  updates := map[string]interface{}{}
  if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
    updates["title"] = *req.Title
    course.Title = *req.Title
  }
  if req.Description != nil {
    updates["description"] = *req.Description
    course.Description = *req.Description
  }
  if req.Icon != nil {
    updates["icon"] = *req.Icon
    course.Icon = *req.Icon
  }
  if req.Difficulty != nil {
    if !req.Difficulty.Valid() {
      return nil, ErrInvalidDifficulty
    }
    updates["difficulty"] = *req.Difficulty
    course.Difficulty = *req.Difficulty
  }
  if req.HasQuizzes != nil {
    updates["has_quizzes"] = *req.HasQuizzes
    course.HasQuizzes = *req.HasQuizzes
  }

  // Outline replacement invalidates everything generated from the old
  // plan: lessons and quizzes are wiped and planned placeholders take
  // their place; the course drops back to draft until regenerated.
  if req.LessonOutlinePlan != nil {
    if len(req.LessonOutlinePlan) == 0 {
      return nil, ErrNoOutlinePlan
    }
    plan := types.EncodeOutlinePlan(req.LessonOutlinePlan)
    updates["lesson_outline_plan"] = plan
    updates["generation_status"] = types.CourseDraft
    course.LessonOutlinePlan = plan
    course.GenerationStatus = types.CourseDraft

    if err := s.quizRepo.DeleteByCourseID(ctx, nil, courseID); err != nil {
      return nil, err
    }
    if err := s.lessonRepo.DeleteByCourseID(ctx, nil, courseID); err != nil {
      return nil, err
    }
  }

  if len(updates) > 0 {
    if err := s.courseRepo.UpdateFields(ctx, nil, courseID, updates); err != nil {
      return nil, err
    }
  }

  if req.LessonOutlinePlan != nil {
    outline, err := types.DecodeOutlinePlan(course.LessonOutlinePlan)
    if err != nil {
      return nil, err
    }
    for _, item := range outline {
      if _, err := s.lessons.CreatePlaceholder(ctx, course, item); err != nil {
        return nil, err
      }
    }
  }

  lessons, err := s.lessonRepo.GetByCourseID(ctx, nil, courseID)
  if err != nil {
    return nil, err
  }
  course.Lessons = lessons
  return course, nil
}

func (s *courseService) Delete(ctx context.Context, courseID uuid.UUID) error {
  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return err
  }
  if len(courses) == 0 {
    return ErrCourseNotFound
  }
  if err := s.quizRepo.DeleteByCourseID(ctx, nil, courseID); err != nil {
    return err
  }
  if err := s.lessonRepo.DeleteByCourseID(ctx, nil, courseID); err != nil {
    return err
  }
  return s.courseRepo.Delete(ctx, nil, courseID)
}
