package services

import (
  "context"
  "fmt"
  "strings"

  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/agent"
  "github.com/courseloom/courseloom-backend/internal/events"
  "github.com/courseloom/courseloom-backend/internal/llmjson"
  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/repos"
  "github.com/courseloom/courseloom-backend/internal/tasks"
  "github.com/courseloom/courseloom-backend/internal/types"
)

type CreateCourseRequest struct {
  Title      string                 `json:"title" binding:"required"`
  Subject    string                 `json:"subject" binding:"required"`
  Difficulty types.CourseDifficulty `json:"difficulty"`
  HasQuizzes bool                   `json:"has_quizzes"`
}

// CourseGenerationService owns the generation pipeline: planning runs on
// the caller's request, everything downstream runs fire-and-forget.
type CourseGenerationService interface {
  // PlanAndCreateCourse plans the outline synchronously, persists the
  // course, kicks off background lesson generation, and returns. The
  // returned course is already in generating state.
  PlanAndCreateCourse(ctx context.Context, req CreateCourseRequest) (*types.Course, error)
  // RetryCourse wipes all lessons and quizzes of a previously planned
  // course and regenerates everything from the stored outline.
  RetryCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
}

type courseGenerationService struct {
  courseRepo repos.CourseRepo
  lessonRepo repos.LessonRepo
  quizRepo   repos.QuizRepo
  planner    *agent.Agent
  lessons    LessonService
  quizzes    QuizService
  runner     tasks.Runner
  locks      *tasks.CourseLocks
  hub        *events.Hub
  cfg        GenerationConfig
  log        *logger.Logger
}

func NewCourseGenerationService(
  courseRepo repos.CourseRepo,
  lessonRepo repos.LessonRepo,
  quizRepo repos.QuizRepo,
  planner *agent.Agent,
  lessons LessonService,
  quizzes QuizService,
  runner tasks.Runner,
  locks *tasks.CourseLocks,
  hub *events.Hub,
  cfg GenerationConfig,
  baseLog *logger.Logger,
) CourseGenerationService {
  return &courseGenerationService{
    courseRepo: courseRepo,
    lessonRepo: lessonRepo,
    quizRepo:   quizRepo,
    planner:    planner,
    lessons:    lessons,
    quizzes:    quizzes,
    runner:     runner,
    locks:      locks,
    hub:        hub,
    cfg:        cfg,
    log:        baseLog.With("service", "CourseGenerationService"),
  }
}

// plannerResponse mirrors the planner agent's JSON output contract.
type plannerResponse struct {
  CourseTitle       string              `json:"courseTitle"`
  CourseDescription string              `json:"courseDescription"`
  CourseIcon        string              `json:"courseIcon"`
  CourseField       string              `json:"courseField"`
  LessonOutlinePlan []types.OutlineItem `json:"lesson_outline_plan"`
}

func parsePlan(raw string) (*plannerResponse, error) {
  var plan plannerResponse
  if err := llmjson.Decode(raw, &plan); err != nil {
    return nil, err
  }
  if strings.TrimSpace(plan.CourseTitle) == "" {
    return nil, fmt.Errorf("planner response missing courseTitle")
  }
  if strings.TrimSpace(plan.CourseDescription) == "" {
    return nil, fmt.Errorf("planner response missing courseDescription")
  }
  if len(plan.LessonOutlinePlan) == 0 {
    return nil, fmt.Errorf("planner response has empty lesson_outline_plan")
  }
  for i, item := range plan.LessonOutlinePlan {
    if strings.TrimSpace(item.PlannedTitle) == "" {
      return nil, fmt.Errorf("outline item %d missing planned title", i)
    }
  }
  // Some models omit the order field; fall back to array position.
  allZero := true
  for _, item := range plan.LessonOutlinePlan {
    if item.Order != 0 {
      allZero = false
      break
    }
  }
  if allZero && len(plan.LessonOutlinePlan) > 1 {
    for i := range plan.LessonOutlinePlan {
      plan.LessonOutlinePlan[i].Order = i
    }
  }
  return &plan, nil
}

func (s *courseGenerationService) PlanAndCreateCourse(ctx context.Context, req CreateCourseRequest) (*types.Course, error) {
  if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Subject) == "" {
    return nil, fmt.Errorf("title and subject are required")
  }
  if !req.Difficulty.Valid() {
    req.Difficulty = types.DifficultyMedium
  }

  prompt := plannerPrompt(req)
  res := s.planner.Run(ctx, prompt)
  if !res.OK() {
    return nil, fmt.Errorf("course planning: %s", res.Failure.Reason)
  }
  plan, err := parsePlan(res.Content)
  if err != nil {
    s.log.Warn("Planner response failed to parse, re-asking once", "error", err)
    res = s.planner.Run(ctx, prompt+reparsePrompt)
    if !res.OK() {
      return nil, fmt.Errorf("course planning: %s", res.Failure.Reason)
    }
    plan, err = parsePlan(res.Content)
    if err != nil {
      return nil, fmt.Errorf("planner response unusable after re-ask: %w", err)
    }
  }

  if n := len(plan.LessonOutlinePlan); n < s.cfg.MinLessons || n > s.cfg.MaxLessons {
    s.log.Warn("Outline size outside requested bounds, keeping it",
      "lessons", n, "min", s.cfg.MinLessons, "max", s.cfg.MaxLessons)
  }

  field := types.FieldOfStudy(plan.CourseField)
  if !field.Valid() {
    field = ""
  }

  course := &types.Course{
    Title:             plan.CourseTitle,
    Subject:           req.Subject,
    Description:       plan.CourseDescription,
    Icon:              plan.CourseIcon,
    Difficulty:        req.Difficulty,
    FieldOfStudy:      field,
    LessonOutlinePlan: types.EncodeOutlinePlan(plan.LessonOutlinePlan),
    GenerationStatus:  types.CourseDraft,
    UserStatus:        types.UserCourseNotStarted,
    HasQuizzes:        req.HasQuizzes,
  }
  created, err := s.courseRepo.Create(ctx, nil, []*types.Course{course})
  if err != nil {
    return nil, err
  }
  course = created[0]
  s.log.Info("Course planned", "courseID", course.ID, "lessons", len(plan.LessonOutlinePlan))

  // Persist generating before dispatch so a concurrent poll never sees
  // draft on a course whose pipeline is already running.
  if err := s.courseRepo.UpdateFields(ctx, nil, course.ID, map[string]interface{}{
    "generation_status": types.CourseGenerating,
  }); err != nil {
    return nil, err
  }
  course.GenerationStatus = types.CourseGenerating
  s.startGeneration(course.ID)
  return course, nil
}

func (s *courseGenerationService) RetryCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
  unlock := s.locks.Lock(courseID)

  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    unlock()
    return nil, err
  }
  if len(courses) == 0 {
    unlock()
    return nil, ErrCourseNotFound
  }
  course := courses[0]

  outline, err := types.DecodeOutlinePlan(course.LessonOutlinePlan)
  if err != nil || len(outline) == 0 {
    unlock()
    return nil, ErrNoOutlinePlan
  }

  if err := s.quizRepo.DeleteByCourseID(ctx, nil, courseID); err != nil {
    unlock()
    return nil, err
  }
  if err := s.lessonRepo.DeleteByCourseID(ctx, nil, courseID); err != nil {
    unlock()
    return nil, err
  }
  if err := s.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
    "generation_status": types.CourseGenerating,
  }); err != nil {
    unlock()
    return nil, err
  }
  course.GenerationStatus = types.CourseGenerating

  // Release before dispatch: a synchronous runner would otherwise
  // deadlock against the generation task taking the same lock.
  unlock()
  s.startGeneration(courseID)
  return course, nil
}

func (s *courseGenerationService) startGeneration(courseID uuid.UUID) {
  s.runner.Go("course-generation:"+courseID.String(), func(ctx context.Context) {
    s.generate(ctx, courseID)
  })
}

// generate is the background pipeline body. Lesson failures are recorded
// and skipped; only infrastructure errors or a panic fail the course.
func (s *courseGenerationService) generate(ctx context.Context, courseID uuid.UUID) {
  defer func() {
    if rec := recover(); rec != nil {
      s.log.Error("Course generation panicked", "courseID", courseID, "panic", rec)
      s.markFailed(ctx, courseID)
    }
  }()

  unlock := s.locks.Lock(courseID)
  defer unlock()

  if err := s.run(ctx, courseID); err != nil {
    s.log.Error("Course generation failed", "courseID", courseID, "error", err)
    s.markFailed(ctx, courseID)
  }
}

func (s *courseGenerationService) run(ctx context.Context, courseID uuid.UUID) error {
  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return err
  }
  if len(courses) == 0 {
    return ErrCourseNotFound
  }
  course := courses[0]

  outline, err := types.DecodeOutlinePlan(course.LessonOutlinePlan)
  if err != nil {
    return err
  }
  if len(outline) == 0 {
    return ErrNoOutlinePlan
  }

  if err := s.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
    "generation_status": types.CourseGenerating,
  }); err != nil {
    return err
  }
  course.GenerationStatus = types.CourseGenerating
  s.broadcast(courseID, events.EventCourseGenerationStarted, map[string]any{
    "lesson_count": len(outline),
  })

  lessons, err := s.lessonRepo.GetByCourseID(ctx, nil, courseID)
  if err != nil {
    return err
  }
  if len(lessons) == 0 {
    lessons = make([]*types.Lesson, 0, len(outline))
    for _, item := range outline {
      lesson, err := s.lessons.CreatePlaceholder(ctx, course, item)
      if err != nil {
        // A failed insert skips that item only; siblings still run.
        s.log.Warn("Lesson placeholder insert failed, skipping item", "courseID", courseID, "order", item.Order, "error", err)
        continue
      }
      lessons = append(lessons, lesson)
    }
  }

  for _, lesson := range lessons {
    if lesson.GenerationStatus == types.LessonCompleted {
      continue
    }
    if err := s.lessons.GenerateContent(ctx, course, lesson); err != nil {
      s.broadcast(courseID, events.EventLessonGenerationFailed, map[string]any{
        "lesson_id": lesson.ID,
        "order":     lesson.OrderInCourse,
      })
      continue
    }
    s.broadcast(courseID, events.EventLessonGenerated, map[string]any{
      "lesson_id": lesson.ID,
      "order":     lesson.OrderInCourse,
      "status":    lesson.GenerationStatus,
    })
  }

  if course.HasQuizzes {
    if quiz, err := s.quizzes.CreateFinalQuizForCourse(ctx, course, lessons); err != nil {
      s.log.Warn("Final quiz creation failed", "courseID", courseID, "error", err)
    } else {
      s.broadcast(courseID, events.EventQuizGenerated, map[string]any{
        "quiz_id":       quiz.ID,
        "is_final_quiz": true,
      })
    }
  }

  if err := s.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
    "generation_status": types.CourseCompleted,
  }); err != nil {
    return err
  }
  s.broadcast(courseID, events.EventCourseGenerationDone, nil)
  s.log.Info("Course generation completed", "courseID", courseID, "lessons", len(lessons))
  return nil
}

func (s *courseGenerationService) markFailed(ctx context.Context, courseID uuid.UUID) {
  if err := s.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
    "generation_status": types.CourseGenerationFailed,
  }); err != nil {
    s.log.Error("Failed to mark course as failed", "courseID", courseID, "error", err)
  }
  s.broadcast(courseID, events.EventCourseGenerationFailed, nil)
}

func (s *courseGenerationService) broadcast(courseID uuid.UUID, event events.Event, data map[string]any) {
  s.hub.Broadcast(events.Message{
    Channel: events.CourseChannel(courseID),
    Event:   event,
    Data:    data,
  })
}

func plannerPrompt(req CreateCourseRequest) string {
  var b strings.Builder
  fmt.Fprintf(&b, "Plan a course about the subject %q.\n", req.Subject)
  fmt.Fprintf(&b, "Working title: %q\n", req.Title)
  fmt.Fprintf(&b, "Target difficulty: %s\n", req.Difficulty)
  if req.HasQuizzes {
    b.WriteString("The course will include quizzes; set has_quiz on lessons that deserve a knowledge check.\n")
  } else {
    b.WriteString("The course will not include quizzes.\n")
  }
  return b.String()
}
