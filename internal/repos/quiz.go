package repos

import (
  "context"
  "errors"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/types"
)

type QuizRepo interface {
  Create(ctx context.Context, tx *gorm.DB, quizzes []*types.Quiz) ([]*types.Quiz, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error)
  GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Quiz, error)
  GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Quiz, error)
  // GetFinalQuizByCourseID returns the course's active final quiz
  // (lesson_id IS NULL), or nil when none exists.
  GetFinalQuizByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Quiz, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
  DeleteByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
}

type quizRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
  return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(ctx context.Context, tx *gorm.DB, quizzes []*types.Quiz) ([]*types.Quiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(quizzes) == 0 {
    return []*types.Quiz{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&quizzes).Error; err != nil {
    return nil, err
  }
  return quizzes, nil
}

func (r *quizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Quiz
  if len(ids) == 0 {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *quizRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Quiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if lessonID == uuid.Nil {
    return nil, nil
  }
  var quiz types.Quiz
  err := transaction.WithContext(ctx).
    Where("lesson_id = ? AND is_active = ?", lessonID, true).
    First(&quiz).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &quiz, nil
}

func (r *quizRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Quiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Quiz
  if courseID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("course_id = ?", courseID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *quizRepo) GetFinalQuizByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Quiz, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if courseID == uuid.Nil {
    return nil, nil
  }
  var quiz types.Quiz
  err := transaction.WithContext(ctx).
    Where("course_id = ? AND lesson_id IS NULL AND is_active = ?", courseID, true).
    First(&quiz).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &quiz, nil
}

func (r *quizRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil
  }
  if updates == nil {
    updates = map[string]interface{}{}
  }
  if _, ok := updates["updated_at"]; !ok {
    updates["updated_at"] = time.Now()
  }
  return transaction.WithContext(ctx).
    Model(&types.Quiz{}).
    Where("id = ?", id).
    Updates(updates).Error
}

func (r *quizRepo) DeleteByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if courseID == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("course_id = ?", courseID).
    Delete(&types.Quiz{}).Error
}

func (r *quizRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id = ?", id).
    Delete(&types.Quiz{}).Error
}
