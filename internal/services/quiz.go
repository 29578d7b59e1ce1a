package services

import (
  "context"
  "fmt"
  "strings"

  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/agent"
  "github.com/courseloom/courseloom-backend/internal/llmjson"
  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/repos"
  "github.com/courseloom/courseloom-backend/internal/types"
)

// reparsePrompt is appended to the original prompt for the single
// corrective re-ask after an unparseable or invalid model response.
const reparsePrompt = "\n\nIMPORTANT: Your previous response could not be parsed as valid JSON matching the required schema. Respond again with ONLY the JSON object and nothing else. No prose, no code fences."

// UpdateQuizSettingsRequest carries the caller-editable quiz knobs; nil
// fields are left untouched.
type UpdateQuizSettingsRequest struct {
  TimeLimitSeconds *int  `json:"time_limit_seconds"`
  PassingScore     *int  `json:"passing_score"`
  IsActive         *bool `json:"is_active"`
}

type QuizService interface {
  CreateQuizForLesson(ctx context.Context, course *types.Course, lesson *types.Lesson) (*types.Quiz, error)
  CreateFinalQuizForCourse(ctx context.Context, course *types.Course, lessons []*types.Lesson) (*types.Quiz, error)
  // CreateForLesson / CreateFinalForCourse are the id-resolving variants
  // used by the HTTP surface.
  CreateForLesson(ctx context.Context, lessonID uuid.UUID) (*types.Quiz, error)
  CreateFinalForCourse(ctx context.Context, courseID uuid.UUID) (*types.Quiz, error)
  RegenerateQuiz(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error)
  UpdatePassed(ctx context.Context, quizID uuid.UUID, passed bool) (*types.Quiz, error)
  UpdateSettings(ctx context.Context, quizID uuid.UUID, req UpdateQuizSettingsRequest) (*types.Quiz, error)
  DeleteQuiz(ctx context.Context, quizID uuid.UUID) error
  GetByID(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error)
  GetForLesson(ctx context.Context, lessonID uuid.UUID) (*types.Quiz, error)
  GetFinalForCourse(ctx context.Context, courseID uuid.UUID) (*types.Quiz, error)
  GetByCourseID(ctx context.Context, courseID uuid.UUID) ([]*types.Quiz, error)
}

type quizService struct {
  quizRepo   repos.QuizRepo
  lessonRepo repos.LessonRepo
  courseRepo repos.CourseRepo
  writer     *agent.Agent
  cfg        GenerationConfig
  log        *logger.Logger
}

func NewQuizService(
  quizRepo repos.QuizRepo,
  lessonRepo repos.LessonRepo,
  courseRepo repos.CourseRepo,
  writer *agent.Agent,
  cfg GenerationConfig,
  baseLog *logger.Logger,
) QuizService {
  return &quizService{
    quizRepo:   quizRepo,
    lessonRepo: lessonRepo,
    courseRepo: courseRepo,
    writer:     writer,
    cfg:        cfg,
    log:        baseLog.With("service", "QuizService"),
  }
}

// generateQuizData runs the quiz agent and parses its output. A response
// that fails parsing or schema validation earns exactly one corrective
// re-ask before the failure is surfaced.
func (s *quizService) generateQuizData(ctx context.Context, prompt string) (*types.QuizData, error) {
  res := s.writer.Run(ctx, prompt)
  if !res.OK() {
    return nil, fmt.Errorf("quiz generation: %s", res.Failure.Reason)
  }
  qd, err := parseQuizData(res.Content)
  if err == nil {
    return qd, nil
  }
  s.log.Warn("Quiz response failed to parse, re-asking once", "error", err)

  res = s.writer.Run(ctx, prompt+reparsePrompt)
  if !res.OK() {
    return nil, fmt.Errorf("quiz generation: %s", res.Failure.Reason)
  }
  qd, err = parseQuizData(res.Content)
  if err != nil {
    return nil, fmt.Errorf("quiz response unusable after re-ask: %w", err)
  }
  return qd, nil
}

func parseQuizData(raw string) (*types.QuizData, error) {
  var qd types.QuizData
  if err := llmjson.Decode(raw, &qd); err != nil {
    return nil, err
  }
  if err := qd.Validate(); err != nil {
    return nil, err
  }
  return &qd, nil
}

func (s *quizService) CreateQuizForLesson(ctx context.Context, course *types.Course, lesson *types.Lesson) (*types.Quiz, error) {
  existing, err := s.quizRepo.GetByLessonID(ctx, nil, lesson.ID)
  if err != nil {
    return nil, err
  }
  if existing != nil {
    return existing, nil
  }

  qd, err := s.generateQuizData(ctx, lessonQuizPrompt(course, lesson))
  if err != nil {
    return nil, err
  }

  quiz := &types.Quiz{
    CourseID:         course.ID,
    LessonID:         &lesson.ID,
    QuizData:         qd.Encode(),
    TimeLimitSeconds: s.cfg.LessonQuizTimeLimitSeconds,
    PassingScore:     s.cfg.LessonQuizPassingScore,
    IsFinalQuiz:      false,
    IsActive:         true,
  }
  created, err := s.quizRepo.Create(ctx, nil, []*types.Quiz{quiz})
  if err != nil {
    return nil, err
  }
  if !lesson.HasQuiz {
    if err := s.lessonRepo.UpdateFields(ctx, nil, lesson.ID, map[string]interface{}{"has_quiz": true}); err != nil {
      return nil, err
    }
    lesson.HasQuiz = true
  }
  s.log.Info("Created lesson quiz", "lessonID", lesson.ID, "questions", len(qd.Questions))
  return created[0], nil
}

func (s *quizService) CreateFinalQuizForCourse(ctx context.Context, course *types.Course, lessons []*types.Lesson) (*types.Quiz, error) {
  existing, err := s.quizRepo.GetFinalQuizByCourseID(ctx, nil, course.ID)
  if err != nil {
    return nil, err
  }
  if existing != nil {
    return existing, nil
  }

  qd, err := s.generateQuizData(ctx, finalQuizPrompt(course, lessons))
  if err != nil {
    return nil, err
  }
  qd.Title = course.Title + " - Final Quiz"

  quiz := &types.Quiz{
    CourseID:         course.ID,
    LessonID:         nil,
    QuizData:         qd.Encode(),
    TimeLimitSeconds: s.cfg.FinalQuizTimeLimitSeconds,
    PassingScore:     s.cfg.FinalQuizPassingScore,
    IsFinalQuiz:      true,
    IsActive:         true,
  }
  created, err := s.quizRepo.Create(ctx, nil, []*types.Quiz{quiz})
  if err != nil {
    return nil, err
  }
  s.log.Info("Created final quiz", "courseID", course.ID, "questions", len(qd.Questions))
  return created[0], nil
}

func (s *quizService) CreateForLesson(ctx context.Context, lessonID uuid.UUID) (*types.Quiz, error) {
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
  return s.CreateQuizForLesson(ctx, lesson.Course, lesson)
}

func (s *quizService) CreateFinalForCourse(ctx context.Context, courseID uuid.UUID) (*types.Quiz, error) {
  courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
  if err != nil {
    return nil, err
  }
  if len(courses) == 0 {
    return nil, ErrCourseNotFound
  }
  lessons, err := s.lessonRepo.GetByCourseID(ctx, nil, courseID)
  if err != nil {
    return nil, err
  }
  return s.CreateFinalQuizForCourse(ctx, courses[0], lessons)
}

func (s *quizService) RegenerateQuiz(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error) {
  found, err := s.quizRepo.GetByIDs(ctx, nil, []uuid.UUID{quizID})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, ErrQuizNotFound
  }
  quiz := found[0]

  var prompt string
  var courseTitle string
  if quiz.LessonID != nil {
    lesson, err := s.lessonRepo.GetWithCourse(ctx, nil, *quiz.LessonID)
    if err != nil {
      return nil, err
    }
    if lesson == nil || lesson.Course == nil {
      return nil, ErrLessonNotFound
    }
    prompt = lessonQuizPrompt(lesson.Course, lesson)
  } else {
    courses, err := s.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{quiz.CourseID})
    if err != nil {
      return nil, err
    }
    if len(courses) == 0 {
      return nil, ErrCourseNotFound
    }
    lessons, err := s.lessonRepo.GetByCourseID(ctx, nil, quiz.CourseID)
    if err != nil {
      return nil, err
    }
    courseTitle = courses[0].Title
    prompt = finalQuizPrompt(courses[0], lessons)
  }

  qd, err := s.generateQuizData(ctx, prompt)
  if err != nil {
    return nil, err
  }
  if quiz.IsFinalQuiz {
    qd.Title = courseTitle + " - Final Quiz"
  }

  updates := map[string]interface{}{
    "quiz_data": qd.Encode(),
    "passed":    nil,
  }
  if err := s.quizRepo.UpdateFields(ctx, nil, quiz.ID, updates); err != nil {
    return nil, err
  }
  quiz.QuizData = qd.Encode()
  quiz.Passed = nil
  return quiz, nil
}

func (s *quizService) UpdatePassed(ctx context.Context, quizID uuid.UUID, passed bool) (*types.Quiz, error) {
  found, err := s.quizRepo.GetByIDs(ctx, nil, []uuid.UUID{quizID})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, ErrQuizNotFound
  }
  quiz := found[0]
  if err := s.quizRepo.UpdateFields(ctx, nil, quiz.ID, map[string]interface{}{"passed": passed}); err != nil {
    return nil, err
  }
  quiz.Passed = &passed
  return quiz, nil
}

func (s *quizService) UpdateSettings(ctx context.Context, quizID uuid.UUID, req UpdateQuizSettingsRequest) (*types.Quiz, error) {
  found, err := s.quizRepo.GetByIDs(ctx, nil, []uuid.UUID{quizID})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, ErrQuizNotFound
  }
  quiz := found[0]

  updates := map[string]interface{}{}
  if req.TimeLimitSeconds != nil && *req.TimeLimitSeconds > 0 {
    updates["time_limit_seconds"] = *req.TimeLimitSeconds
    quiz.TimeLimitSeconds = *req.TimeLimitSeconds
  }
  if req.PassingScore != nil && *req.PassingScore >= 0 && *req.PassingScore <= 100 {
    updates["passing_score"] = *req.PassingScore
    quiz.PassingScore = *req.PassingScore
  }
  if req.IsActive != nil {
    updates["is_active"] = *req.IsActive
    quiz.IsActive = *req.IsActive
  }
  if len(updates) == 0 {
    return quiz, nil
  }
  if err := s.quizRepo.UpdateFields(ctx, nil, quiz.ID, updates); err != nil {
    return nil, err
  }
  return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, quizID uuid.UUID) (*types.Quiz, error) {
  found, err := s.quizRepo.GetByIDs(ctx, nil, []uuid.UUID{quizID})
  if err != nil {
    return nil, err
  }
  if len(found) == 0 {
    return nil, ErrQuizNotFound
  }
  return found[0], nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, quizID uuid.UUID) error {
  found, err := s.quizRepo.GetByIDs(ctx, nil, []uuid.UUID{quizID})
  if err != nil {
    return err
  }
  if len(found) == 0 {
    return ErrQuizNotFound
  }
  quiz := found[0]
  if err := s.quizRepo.Delete(ctx, nil, quiz.ID); err != nil {
    return err
  }
  if quiz.LessonID != nil {
    if err := s.lessonRepo.UpdateFields(ctx, nil, *quiz.LessonID, map[string]interface{}{"has_quiz": false}); err != nil {
      return err
    }
  }
  return nil
}

func (s *quizService) GetForLesson(ctx context.Context, lessonID uuid.UUID) (*types.Quiz, error) {
  return s.quizRepo.GetByLessonID(ctx, nil, lessonID)
}

func (s *quizService) GetFinalForCourse(ctx context.Context, courseID uuid.UUID) (*types.Quiz, error) {
  return s.quizRepo.GetFinalQuizByCourseID(ctx, nil, courseID)
}

func (s *quizService) GetByCourseID(ctx context.Context, courseID uuid.UUID) ([]*types.Quiz, error) {
  return s.quizRepo.GetByCourseID(ctx, nil, courseID)
}

const quizContentLimit = 8000

func lessonQuizPrompt(course *types.Course, lesson *types.Lesson) string {
  var b strings.Builder
  fmt.Fprintf(&b, "Create a quiz for the lesson %q from the course %q (subject: %s, difficulty: %s).\n\n",
    lesson.Title, course.Title, course.Subject, course.Difficulty)
  fmt.Fprintf(&b, "Lesson content:\n%s", truncateRunes(lesson.ContentMD, quizContentLimit))
  return b.String()
}

func finalQuizPrompt(course *types.Course, lessons []*types.Lesson) string {
  // Failed lessons carry their failure message in ContentMD; only
  // generated content feeds the final quiz.
  generated := make([]*types.Lesson, 0, len(lessons))
  for _, lesson := range lessons {
    switch lesson.GenerationStatus {
    case types.LessonCompleted, types.LessonNeedsReview:
      generated = append(generated, lesson)
    }
  }

  var b strings.Builder
  fmt.Fprintf(&b, "Create a comprehensive final quiz for the course %q (subject: %s, difficulty: %s), covering all lessons below.\n",
    course.Title, course.Subject, course.Difficulty)
  perLesson := quizContentLimit
  if len(generated) > 0 {
    perLesson = quizContentLimit / len(generated)
  }
  for _, lesson := range generated {
    fmt.Fprintf(&b, "\n## %s\n%s\n", lesson.Title, truncateRunes(lesson.ContentMD, perLesson))
  }
  return b.String()
}

func truncateRunes(s string, limit int) string {
  if limit <= 0 {
    return ""
  }
  runes := []rune(s)
  if len(runes) <= limit {
    return s
  }
  return string(runes[:limit])
}
