package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/services"
)

type QuizHandler struct {
  svc services.QuizService
}

func NewQuizHandler(svc services.QuizService) *QuizHandler {
  return &QuizHandler{svc: svc}
}

// GET /api/courses/:id/quizzes
func (h *QuizHandler) ListQuizzesForCourse(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quizzes, err := h.svc.GetByCourseID(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"quizzes": quizzes})
}

// GET /api/courses/:id/final-quiz
func (h *QuizHandler) GetFinalQuiz(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quiz, err := h.svc.GetFinalForCourse(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  if quiz == nil {
    RespondError(c, http.StatusNotFound, "not_found", services.ErrQuizNotFound)
    return
  }
  RespondOK(c, gin.H{"quiz": quiz})
}

// GET /api/lessons/:id/quiz
func (h *QuizHandler) GetLessonQuiz(c *gin.Context) {
  lessonID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quiz, err := h.svc.GetForLesson(c.Request.Context(), lessonID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  if quiz == nil {
    RespondError(c, http.StatusNotFound, "not_found", services.ErrQuizNotFound)
    return
  }
  RespondOK(c, gin.H{"quiz": quiz})
}

// POST /api/lessons/:id/quiz
func (h *QuizHandler) CreateLessonQuiz(c *gin.Context) {
  lessonID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quiz, err := h.svc.CreateForLesson(c.Request.Context(), lessonID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

// POST /api/courses/:id/final-quiz
func (h *QuizHandler) CreateFinalQuiz(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quiz, err := h.svc.CreateFinalForCourse(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
  quizID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quiz, err := h.svc.GetByID(c.Request.Context(), quizID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"quiz": quiz})
}

// PATCH /api/quizzes/:id
func (h *QuizHandler) UpdateQuizSettings(c *gin.Context) {
  quizID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  var req services.UpdateQuizSettingsRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quiz, err := h.svc.UpdateSettings(c.Request.Context(), quizID, req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"quiz": quiz})
}

// POST /api/quizzes/:id/regenerate
func (h *QuizHandler) RegenerateQuiz(c *gin.Context) {
  quizID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quiz, err := h.svc.RegenerateQuiz(c.Request.Context(), quizID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"quiz": quiz})
}

type setPassedRequest struct {
  Passed *bool `json:"passed" binding:"required"`
}

// PATCH /api/quizzes/:id/passed
func (h *QuizHandler) SetPassed(c *gin.Context) {
  quizID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  var req setPassedRequest
  if err := c.ShouldBindJSON(&req); err != nil || req.Passed == nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  quiz, err := h.svc.UpdatePassed(c.Request.Context(), quizID, *req.Passed)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"quiz": quiz})
}

// DELETE /api/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
  quizID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  if err := h.svc.DeleteQuiz(c.Request.Context(), quizID); err != nil {
    RespondServiceError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}
