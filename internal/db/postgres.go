package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/types"
  "github.com/courseloom/courseloom-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "courseloom", log)

  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  log.Info("Connecting to Postgres...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres", "error", err)
    return nil, fmt.Errorf("connect to postgres: %w", err)
  }

  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension", "error", err)
    return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
  }

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Auto migrating postgres tables...")
  err := s.db.AutoMigrate(
    &types.Course{},
    &types.Lesson{},
    &types.Quiz{},
  )
  if err != nil {
    s.log.Error("Auto migration failed for postgres tables", "error", err)
    return err
  }
  s.log.Info("Configuring foreign key relationships for postgres tables...")
  if err := s.db.Exec(`
    ALTER TABLE "lesson"
    DROP CONSTRAINT IF EXISTS "fk_lesson_course_id";
    ALTER TABLE "lesson"
    ADD CONSTRAINT "fk_lesson_course_id"
    FOREIGN KEY ("course_id")
    REFERENCES "course"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("add fk_lesson_course_id: %w", err)
  }
  if err := s.db.Exec(`
    ALTER TABLE "quiz"
    DROP CONSTRAINT IF EXISTS "fk_quiz_course_id";
    ALTER TABLE "quiz"
    ADD CONSTRAINT "fk_quiz_course_id"
    FOREIGN KEY ("course_id")
    REFERENCES "course"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("add fk_quiz_course_id: %w", err)
  }
  if err := s.db.Exec(`
    ALTER TABLE "quiz"
    DROP CONSTRAINT IF EXISTS "fk_quiz_lesson_id";
    ALTER TABLE "quiz"
    ADD CONSTRAINT "fk_quiz_lesson_id"
    FOREIGN KEY ("lesson_id")
    REFERENCES "lesson"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("add fk_quiz_lesson_id: %w", err)
  }
  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
