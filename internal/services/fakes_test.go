package services

import (
  "context"
  "fmt"
  "sort"
  "sync"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/courseloom/courseloom-backend/internal/types"
)

// In-memory repo fakes. The tx parameter is ignored; tests never span
// transactions.

type fakeCourseRepo struct {
  mu      sync.Mutex
  courses map[uuid.UUID]*types.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
  return &fakeCourseRepo{courses: make(map[uuid.UUID]*types.Course)}
}

func (r *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  for _, c := range courses {
    if c.ID == uuid.Nil {
      c.ID = uuid.New()
    }
    if c.CreatedAt.IsZero() {
      c.CreatedAt = time.Now()
    }
    r.courses[c.ID] = c
  }
  return courses, nil
}

func (r *fakeCourseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  var out []*types.Course
  for _, id := range ids {
    if c, ok := r.courses[id]; ok {
      out = append(out, c)
    }
  }
  return out, nil
}

func (r *fakeCourseRepo) GetAll(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Course, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  var out []*types.Course
  for _, c := range r.courses {
    out = append(out, c)
  }
  sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
  if offset >= len(out) {
    return nil, nil
  }
  out = out[offset:]
  if limit > 0 && limit < len(out) {
    out = out[:limit]
  }
  return out, nil
}

func (r *fakeCourseRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  r.mu.Lock()
  defer r.mu.Unlock()
  c, ok := r.courses[id]
  if !ok {
    return nil
  }
  for k, v := range updates {
    switch k {
    case "title":
      c.Title = v.(string)
    case "description":
      c.Description = v.(string)
    case "icon":
      c.Icon = v.(string)
    case "difficulty":
      c.Difficulty = v.(types.CourseDifficulty)
    case "has_quizzes":
      c.HasQuizzes = v.(bool)
    case "lesson_outline_plan":
      c.LessonOutlinePlan = v.(datatypes.JSON)
    case "generation_status":
      c.GenerationStatus = v.(types.CourseGenerationStatus)
    case "user_status":
      c.UserStatus = v.(types.UserCourseStatus)
    case "updated_at":
      c.UpdatedAt = v.(time.Time)
    }
  }
  return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  r.mu.Lock()
  defer r.mu.Unlock()
  delete(r.courses, id)
  return nil
}

type fakeLessonRepo struct {
  mu      sync.Mutex
  lessons map[uuid.UUID]*types.Lesson
  courses *fakeCourseRepo
  // failCreateFor makes Create reject any lesson with this title.
  failCreateFor string
}

func newFakeLessonRepo(courses *fakeCourseRepo) *fakeLessonRepo {
  return &fakeLessonRepo{lessons: make(map[uuid.UUID]*types.Lesson), courses: courses}
}

func (r *fakeLessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  for _, l := range lessons {
    if r.failCreateFor != "" && l.Title == r.failCreateFor {
      return nil, fmt.Errorf("insert rejected for %q", l.Title)
    }
  }
  for _, l := range lessons {
    if l.ID == uuid.Nil {
      l.ID = uuid.New()
    }
    if l.CreatedAt.IsZero() {
      l.CreatedAt = time.Now()
    }
    r.lessons[l.ID] = l
  }
  return lessons, nil
}

func (r *fakeLessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Lesson, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  var out []*types.Lesson
  for _, id := range ids {
    if l, ok := r.lessons[id]; ok {
      out = append(out, l)
    }
  }
  return out, nil
}

func (r *fakeLessonRepo) GetWithCourse(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lesson, error) {
  r.mu.Lock()
  l, ok := r.lessons[id]
  r.mu.Unlock()
  if !ok {
    return nil, nil
  }
  courses, _ := r.courses.GetByIDs(ctx, nil, []uuid.UUID{l.CourseID})
  if len(courses) > 0 {
    l.Course = courses[0]
  }
  return l, nil
}

func (r *fakeLessonRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Lesson, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  var out []*types.Lesson
  for _, l := range r.lessons {
    if l.CourseID == courseID {
      out = append(out, l)
    }
  }
  sort.Slice(out, func(i, j int) bool { return out[i].OrderInCourse < out[j].OrderInCourse })
  return out, nil
}

func (r *fakeLessonRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  r.mu.Lock()
  defer r.mu.Unlock()
  l, ok := r.lessons[id]
  if !ok {
    return nil
  }
  for k, v := range updates {
    switch k {
    case "content_md":
      l.ContentMD = v.(string)
    case "external_links":
      l.ExternalLinks = v.(datatypes.JSON)
    case "generation_status":
      l.GenerationStatus = v.(types.LessonGenerationStatus)
    case "user_status":
      l.UserStatus = v.(types.UserLessonStatus)
    case "has_quiz":
      l.HasQuiz = v.(bool)
    case "updated_at":
      l.UpdatedAt = v.(time.Time)
    }
  }
  return nil
}

func (r *fakeLessonRepo) DeleteByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
  r.mu.Lock()
  defer r.mu.Unlock()
  for id, l := range r.lessons {
    if l.CourseID == courseID {
      delete(r.lessons, id)
    }
  }
  return nil
}

type fakeQuizRepo struct {
  mu      sync.Mutex
  quizzes map[uuid.UUID]*types.Quiz
}

func newFakeQuizRepo() *fakeQuizRepo {
  return &fakeQuizRepo{quizzes: make(map[uuid.UUID]*types.Quiz)}
}

func (r *fakeQuizRepo) Create(ctx context.Context, tx *gorm.DB, quizzes []*types.Quiz) ([]*types.Quiz, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  for _, q := range quizzes {
    if q.ID == uuid.Nil {
      q.ID = uuid.New()
    }
    if q.CreatedAt.IsZero() {
      q.CreatedAt = time.Now()
    }
    r.quizzes[q.ID] = q
  }
  return quizzes, nil
}

func (r *fakeQuizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  var out []*types.Quiz
  for _, id := range ids {
    if q, ok := r.quizzes[id]; ok {
      out = append(out, q)
    }
  }
  return out, nil
}

func (r *fakeQuizRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Quiz, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  for _, q := range r.quizzes {
    if q.LessonID != nil && *q.LessonID == lessonID && q.IsActive {
      return q, nil
    }
  }
  return nil, nil
}

func (r *fakeQuizRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Quiz, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  var out []*types.Quiz
  for _, q := range r.quizzes {
    if q.CourseID == courseID {
      out = append(out, q)
    }
  }
  sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
  return out, nil
}

func (r *fakeQuizRepo) GetFinalQuizByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Quiz, error) {
  r.mu.Lock()
  defer r.mu.Unlock()
  for _, q := range r.quizzes {
    if q.CourseID == courseID && q.LessonID == nil && q.IsActive {
      return q, nil
    }
  }
  return nil, nil
}

func (r *fakeQuizRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  r.mu.Lock()
  defer r.mu.Unlock()
  q, ok := r.quizzes[id]
  if !ok {
    return nil
  }
  for k, v := range updates {
    switch k {
    case "quiz_data":
      q.QuizData = v.(datatypes.JSON)
    case "time_limit_seconds":
      q.TimeLimitSeconds = v.(int)
    case "passing_score":
      q.PassingScore = v.(int)
    case "is_active":
      q.IsActive = v.(bool)
    case "passed":
      if v == nil {
        q.Passed = nil
      } else {
        b := v.(bool)
        q.Passed = &b
      }
    case "updated_at":
      q.UpdatedAt = v.(time.Time)
    }
  }
  return nil
}

func (r *fakeQuizRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  r.mu.Lock()
  defer r.mu.Unlock()
  delete(r.quizzes, id)
  return nil
}

func (r *fakeQuizRepo) DeleteByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
  r.mu.Lock()
  defer r.mu.Unlock()
  for id, q := range r.quizzes {
    if q.CourseID == courseID {
      delete(r.quizzes, id)
    }
  }
  return nil
}

// funcCompleter routes model calls through a test-supplied function.
type funcCompleter struct {
  fn func(system, user string) (string, error)
}

func (f funcCompleter) Complete(ctx context.Context, system, user string) (string, error) {
  return f.fn(system, user)
}
