package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/courseloom/courseloom-backend/internal/handlers"
  "github.com/courseloom/courseloom-backend/internal/utils"
)

type RouterConfig struct {
  CourseHandler *handlers.CourseHandler
  LessonHandler *handlers.LessonHandler
  QuizHandler   *handlers.QuizHandler
  EventsHandler *handlers.EventsHandler
  AllowOrigins  []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  origins := cfg.AllowOrigins
  if len(origins) == 0 {
    origins = utils.SplitCommaList("http://localhost:3000,http://localhost:5173")
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api")
  {
    // Courses
    api.POST("/courses", cfg.CourseHandler.CreateCourse)
    api.GET("/courses", cfg.CourseHandler.ListCourses)
    api.GET("/courses/:id", cfg.CourseHandler.GetCourse)
    api.PATCH("/courses/:id", cfg.CourseHandler.UpdateCourse)
    api.DELETE("/courses/:id", cfg.CourseHandler.DeleteCourse)
    api.POST("/courses/:id/retry", cfg.CourseHandler.RetryCourse)
    api.GET("/courses/:id/lessons", cfg.LessonHandler.ListLessonsForCourse)
    api.GET("/courses/:id/quizzes", cfg.QuizHandler.ListQuizzesForCourse)
    api.GET("/courses/:id/final-quiz", cfg.QuizHandler.GetFinalQuiz)
    api.POST("/courses/:id/final-quiz", cfg.QuizHandler.CreateFinalQuiz)
    api.GET("/courses/:id/events", cfg.EventsHandler.StreamCourseEvents)
    // Lessons
    api.GET("/lessons/:id", cfg.LessonHandler.GetLesson)
    api.POST("/lessons/:id/regenerate", cfg.LessonHandler.RegenerateLesson)
    api.PATCH("/lessons/:id/status", cfg.LessonHandler.SetUserStatus)
    api.GET("/lessons/:id/quiz", cfg.QuizHandler.GetLessonQuiz)
    api.POST("/lessons/:id/quiz", cfg.QuizHandler.CreateLessonQuiz)
    // Quizzes
    api.GET("/quizzes/:id", cfg.QuizHandler.GetQuiz)
    api.PATCH("/quizzes/:id", cfg.QuizHandler.UpdateQuizSettings)
    api.POST("/quizzes/:id/regenerate", cfg.QuizHandler.RegenerateQuiz)
    api.PATCH("/quizzes/:id/passed", cfg.QuizHandler.SetPassed)
    api.DELETE("/quizzes/:id", cfg.QuizHandler.DeleteQuiz)
  }

  return router
}
