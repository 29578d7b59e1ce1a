package services

import (
  "context"
  "fmt"
  "regexp"
  "strings"

  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/agent"
  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/repos"
  "github.com/courseloom/courseloom-backend/internal/tasks"
  "github.com/courseloom/courseloom-backend/internal/types"
)

var markdownLinkRe = regexp.MustCompile(`\[[^\]]*?\]\(([^)]+?)\)`)

// extractMarkdownLinks pulls link targets out of markdown in document
// order. Duplicates are kept as-is; the stored array mirrors the content.
func extractMarkdownLinks(md string) []string {
  matches := markdownLinkRe.FindAllStringSubmatch(md, -1)
  links := make([]string, 0, len(matches))
  for _, m := range matches {
    target := strings.TrimSpace(m[1])
    if target == "" {
      continue
    }
    links = append(links, target)
  }
  return links
}

type LessonService interface {
  CreatePlaceholder(ctx context.Context, course *types.Course, item types.OutlineItem) (*types.Lesson, error)
  // GenerateContent fills one placeholder lesson. A failure is persisted
  // on the lesson (status + message in content) and returned; the caller
  // decides whether the course keeps going.
  GenerateContent(ctx context.Context, course *types.Course, lesson *types.Lesson) error
  RegenerateLesson(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error)
  SetUserStatus(ctx context.Context, lessonID uuid.UUID, status types.UserLessonStatus) (*types.Lesson, error)
  GetByID(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error)
  GetByCourseID(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error)
}

type lessonService struct {
  lessonRepo repos.LessonRepo
  courseRepo repos.CourseRepo
  writer     *agent.Agent
  quizzes    QuizService
  locks      *tasks.CourseLocks
  cfg        GenerationConfig
  log        *logger.Logger
}

func NewLessonService(
  lessonRepo repos.LessonRepo,
  courseRepo repos.CourseRepo,
  writer *agent.Agent,
  quizzes QuizService,
  locks *tasks.CourseLocks,
  cfg GenerationConfig,
  baseLog *logger.Logger,
) LessonService {
  return &lessonService{
    lessonRepo: lessonRepo,
    courseRepo: courseRepo,
    writer:     writer,
    quizzes:    quizzes,
    locks:      locks,
    cfg:        cfg,
    log:        baseLog.With("service", "LessonService"),
  }
}

func (s *lessonService) CreatePlaceholder(ctx context.Context, course *types.Course, item types.OutlineItem) (*types.Lesson, error) {
  lesson := &types.Lesson{
    CourseID:           course.ID,
    OrderInCourse:      item.Order,
    Title:              item.PlannedTitle,
    PlannedDescription: item.PlannedDescription,
    ExternalLinks:      types.EncodeExternalLinks(nil),
    GenerationStatus:   types.LessonPlanned,
    UserStatus:         types.UserLessonNotStarted,
    HasQuiz:            item.HasQuiz && course.HasQuizzes,
  }
  created, err := s.lessonRepo.Create(ctx, nil, []*types.Lesson{lesson})
  if err != nil {
    return nil, err
  }
  return created[0], nil
}

func (s *lessonService) GenerateContent(ctx context.Context, course *types.Course, lesson *types.Lesson) error {
  if err := s.lessonRepo.UpdateFields(ctx, nil, lesson.ID, map[string]interface{}{
    "generation_status": types.LessonGenerating,
  }); err != nil {
    return err
  }
  lesson.GenerationStatus = types.LessonGenerating

  res := s.writer.Run(ctx, lessonContentPrompt(course, lesson))
  if !res.OK() {
    msg := contentFailureMessage(res.Failure)
    if err := s.lessonRepo.UpdateFields(ctx, nil, lesson.ID, map[string]interface{}{
      "content_md":        msg,
      "generation_status": types.LessonGenerationFailed,
    }); err != nil {
      return err
    }
    lesson.ContentMD = msg
    lesson.GenerationStatus = types.LessonGenerationFailed
    s.log.Warn("Lesson content generation failed", "lessonID", lesson.ID, "retryable", res.Failure.Retryable, "reason", res.Failure.Reason)
    return fmt.Errorf("lesson content generation: %s", res.Failure.Reason)
  }

  content := res.Content
  links := extractMarkdownLinks(content)
  status := types.LessonCompleted
  if len([]rune(content)) < s.cfg.MinContentChars {
    status = types.LessonNeedsReview
  }

  if err := s.lessonRepo.UpdateFields(ctx, nil, lesson.ID, map[string]interface{}{
    "content_md":        content,
    "external_links":    types.EncodeExternalLinks(links),
    "generation_status": status,
  }); err != nil {
    return err
  }
  lesson.ContentMD = content
  lesson.ExternalLinks = types.EncodeExternalLinks(links)
  lesson.GenerationStatus = status
  s.log.Info("Lesson content generated", "lessonID", lesson.ID, "status", status, "links", len(links))

  if lesson.HasQuiz {
    if _, err := s.quizzes.CreateQuizForLesson(ctx, course, lesson); err != nil {
      // Quiz failure does not take the lesson down with it.
      s.log.Warn("Lesson quiz creation failed", "lessonID", lesson.ID, "error", err)
    }
  }
  return nil
}

func (s *lessonService) RegenerateLesson(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error) {
  lesson, err := s.lessonRepo.GetWithCourse(ctx, nil, lessonID)
  if err != nil {
    return nil, err
  }
  if lesson == nil {
    return nil, ErrLessonNotFound
  }
  if lesson.Course == nil {
    return nil, ErrCourseNotFound
  }
  course := lesson.Course
  if !course.Difficulty.Valid() {
    course.Difficulty = types.DifficultyMedium
  }

  unlock := s.locks.Lock(lesson.CourseID)
  defer unlock()

  if err := s.lessonRepo.UpdateFields(ctx, nil, lesson.ID, map[string]interface{}{
    "content_md":        "",
    "external_links":    types.EncodeExternalLinks(nil),
    "generation_status": types.LessonGenerating,
  }); err != nil {
    return nil, err
  }
  lesson.ContentMD = ""
  lesson.ExternalLinks = types.EncodeExternalLinks(nil)
  lesson.GenerationStatus = types.LessonGenerating

  // Failure is recorded on the lesson itself; the caller reads the
  // resulting generation status.
  _ = s.GenerateContent(ctx, course, lesson)
  return lesson, nil
}

func (s *lessonService) SetUserStatus(ctx context.Context, lessonID uuid.UUID, status types.UserLessonStatus) (*types.Lesson, error) {
  if !status.Valid() {
    return nil, ErrInvalidUserStatus
  }
  found, err := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, ErrLessonNotFound
  }
  lesson := found[0]

  if lesson.UserStatus != status {
    if err := s.lessonRepo.UpdateFields(ctx, nil, lesson.ID, map[string]interface{}{
      "user_status": status,
    }); err != nil {
      return nil, err
    }
    lesson.UserStatus = status
  }

  if err := s.reconcileCourseStatus(ctx, lesson.CourseID); err != nil {
    return nil, err
  }
  return lesson, nil
}

// reconcileCourseStatus re-derives the course's learner status from its
// lessons and writes it back only when it changed.
func (s *lessonService) reconcileCourseStatus(ctx context.Context, courseID uuid.UUID) error {
  lessons, err := s.lessonRepo.GetByCourseID(ctx, nil, courseID)
  if err != nil {
    return err
  }
  statuses := make([]types.UserLessonStatus, 0, len(lessons))
  for _, l := range lessons {
    statuses = append(statuses, l.UserStatus)
  }
  derived := DeriveCourseStatus(statuses)

  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return err
  }
  if len(courses) == 0 {
    return ErrCourseNotFound
  }
  course := courses[0]
  if course.UserStatus == derived {
    return nil
  }
  return s.courseRepo.UpdateFields(ctx, nil, courseID, map[string]interface{}{
    "user_status": derived,
  })
}

func (s *lessonService) GetByID(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error) {
  found, err := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, ErrLessonNotFound
  }
  return found[0], nil
}

func (s *lessonService) GetByCourseID(ctx context.Context, courseID uuid.UUID) ([]*types.Lesson, error) {
  return s.lessonRepo.GetByCourseID(ctx, nil, courseID)
}

func contentFailureMessage(f *agent.Failure) string {
  if f.Retryable {
    return "Content generation failed due to connection issues with the AI service. Please try regenerating this lesson."
  }
  return "Content generation failed: the AI service could not produce usable content. Please try regenerating this lesson."
}

func lessonContentPrompt(course *types.Course, lesson *types.Lesson) string {
  var b strings.Builder
  fmt.Fprintf(&b, "Write the lesson %q for the course %q.\n", lesson.Title, course.Title)
  fmt.Fprintf(&b, "Course subject: %s\nDifficulty: %s\n", course.Subject, course.Difficulty)
  if lesson.PlannedDescription != "" {
    fmt.Fprintf(&b, "Lesson description: %s\n", lesson.PlannedDescription)
  }
  fmt.Fprintf(&b, "This is lesson %d of the course.", lesson.OrderInCourse+1)
  return b.String()
}
