package main

import (
  "context"
  "fmt"
  "os"
  "time"

  "github.com/joho/godotenv"

  "github.com/courseloom/courseloom-backend/internal/agent"
  "github.com/courseloom/courseloom-backend/internal/db"
  "github.com/courseloom/courseloom-backend/internal/events"
  "github.com/courseloom/courseloom-backend/internal/handlers"
  "github.com/courseloom/courseloom-backend/internal/logger"
  "github.com/courseloom/courseloom-backend/internal/repos"
  "github.com/courseloom/courseloom-backend/internal/server"
  "github.com/courseloom/courseloom-backend/internal/services"
  "github.com/courseloom/courseloom-backend/internal/tasks"
  "github.com/courseloom/courseloom-backend/internal/utils"
)

func main() {
  // Optional .env for local development.
  _ = godotenv.Load()

  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  genConfig := services.LoadGenerationConfig(log)
  modelConfig := agent.ClientConfig{
    BaseURL: utils.GetEnv("MODEL_BASE_URL", "", log),
    APIKey:  utils.GetEnv("MODEL_API_KEY", "", log),
    Model:   utils.GetEnv("MODEL_NAME", "", log),
    Timeout: time.Duration(utils.GetEnvAsInt("MODEL_TIMEOUT_SECONDS", 180, log)) * time.Second,
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  courseRepo := repos.NewCourseRepo(thePG, log)
  lessonRepo := repos.NewLessonRepo(thePG, log)
  quizRepo := repos.NewQuizRepo(thePG, log)

  // Model client and agents
  modelClient, err := agent.NewClient(log, modelConfig)
  if err != nil {
    log.Error("Could not init model client", "error", err)
    os.Exit(1)
  }
  planner := agent.NewPlanner(modelClient, genConfig.PlannerRetry, log)
  lessonWriter := agent.NewLessonWriter(modelClient, genConfig.LessonRetry, log)
  quizWriter := agent.NewQuizWriter(modelClient, genConfig.QuizRetry, log)

  // Events hub
  log.Info("Setting up events hub now...")
  hub := events.NewHub(log)

  // Background runner
  runner := tasks.NewRunner(context.Background(), log, genConfig.MaxConcurrent)
  locks := tasks.NewCourseLocks()

  // Services
  log.Info("Setting up Services from main...")
  quizService := services.NewQuizService(quizRepo, lessonRepo, courseRepo, quizWriter, genConfig, log)
  lessonService := services.NewLessonService(lessonRepo, courseRepo, lessonWriter, quizService, locks, genConfig, log)
  courseService := services.NewCourseService(courseRepo, lessonRepo, quizRepo, lessonService, locks, log)
  courseGenService := services.NewCourseGenerationService(
    courseRepo,
    lessonRepo,
    quizRepo,
    planner,
    lessonService,
    quizService,
    runner,
    locks,
    hub,
    genConfig,
    log,
  )

  // Handlers
  log.Info("Setting up handlers from main...")
  courseHandler := handlers.NewCourseHandler(courseService, courseGenService)
  lessonHandler := handlers.NewLessonHandler(lessonService)
  quizHandler := handlers.NewQuizHandler(quizService)
  eventsHandler := handlers.NewEventsHandler(log, hub)

  // Router
  log.Info("Setting up router from main...")
  allowOrigins := utils.SplitCommaList(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", log))
  router := server.NewRouter(server.RouterConfig{
    CourseHandler: courseHandler,
    LessonHandler: lessonHandler,
    QuizHandler:   quizHandler,
    EventsHandler: eventsHandler,
    AllowOrigins:  allowOrigins,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
