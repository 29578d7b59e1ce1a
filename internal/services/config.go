package services

import (
  "time"

  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/retry"
  "github.com/courseloom/courseloom-backend/internal/utils"
)

// GenerationConfig carries every tunable the pipeline reads. It is
// resolved from the environment once at startup and passed in at
// construction; nothing in a generation call path touches os.Getenv.
type GenerationConfig struct {
  // Outline size the planner is asked for. Soft bounds: outlines
  // outside the range are logged, not rejected.
  MinLessons int
  MaxLessons int

  // Lessons whose generated content is shorter than this are marked
  // needs_review instead of completed.
  MinContentChars int

  // Per-stage retry policies. Planner calls are interactive (the user
  // is waiting on the request), so it gets the tightest budget.
  PlannerRetry retry.Policy
  LessonRetry  retry.Policy
  QuizRetry    retry.Policy

  // Quiz defaults applied at creation.
  LessonQuizTimeLimitSeconds int
  LessonQuizPassingScore     int
  FinalQuizTimeLimitSeconds  int
  FinalQuizPassingScore      int

  // Upper bound on concurrently running background generation tasks
  // (0 = unbounded).
  MaxConcurrent int64
}

func LoadGenerationConfig(log *logger.Logger) GenerationConfig {
  return GenerationConfig{
    MinLessons:      utils.GetEnvAsInt("COURSEGEN_MIN_LESSONS", 5, log),
    MaxLessons:      utils.GetEnvAsInt("COURSEGEN_MAX_LESSONS", 10, log),
    MinContentChars: utils.GetEnvAsInt("LESSON_MIN_CONTENT_CHARS", 200, log),
    PlannerRetry: retry.Policy{
      MaxRetries:    utils.GetEnvAsInt("PLANNER_MAX_RETRIES", 3, log),
      BaseDelay:     time.Duration(utils.GetEnvAsFloat("PLANNER_BASE_DELAY_SECONDS", 1.0, log) * float64(time.Second)),
      BackoffFactor: 2.0,
      MaxDelay:      10 * time.Second,
    },
    LessonRetry: retry.Policy{
      MaxRetries:    utils.GetEnvAsInt("LESSON_MAX_RETRIES", 4, log),
      BaseDelay:     time.Duration(utils.GetEnvAsFloat("LESSON_BASE_DELAY_SECONDS", 2.0, log) * float64(time.Second)),
      BackoffFactor: 2.0,
      MaxDelay:      30 * time.Second,
    },
    QuizRetry: retry.Policy{
      MaxRetries:    utils.GetEnvAsInt("QUIZ_MAX_RETRIES", 3, log),
      BaseDelay:     time.Duration(utils.GetEnvAsFloat("QUIZ_BASE_DELAY_SECONDS", 2.0, log) * float64(time.Second)),
      BackoffFactor: 2.0,
      MaxDelay:      20 * time.Second,
    },
    LessonQuizTimeLimitSeconds: utils.GetEnvAsInt("LESSON_QUIZ_TIME_LIMIT_SECONDS", 300, log),
    LessonQuizPassingScore:     utils.GetEnvAsInt("LESSON_QUIZ_PASSING_SCORE", 70, log),
    FinalQuizTimeLimitSeconds:  utils.GetEnvAsInt("FINAL_QUIZ_TIME_LIMIT_SECONDS", 600, log),
    FinalQuizPassingScore:      utils.GetEnvAsInt("FINAL_QUIZ_PASSING_SCORE", 80, log),
    MaxConcurrent:              int64(utils.GetEnvAsInt("COURSEGEN_MAX_CONCURRENT", 4, log)),
  }
}
