package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/services"
  "github.com/courseloom/courseloom-backend/internal/types"
)

type LessonHandler struct {
  svc services.LessonService
}

func NewLessonHandler(svc services.LessonService) *LessonHandler {
  return &LessonHandler{svc: svc}
}

// GET /api/courses/:id/lessons
func (h *LessonHandler) ListLessonsForCourse(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  lessons, err := h.svc.GetByCourseID(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"lessons": lessons})
}

// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
  lessonID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  lesson, err := h.svc.GetByID(c.Request.Context(), lessonID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"lesson": lesson})
}

// POST /api/lessons/:id/regenerate
func (h *LessonHandler) RegenerateLesson(c *gin.Context) {
  lessonID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  lesson, err := h.svc.RegenerateLesson(c.Request.Context(), lessonID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"lesson": lesson})
}

type setUserStatusRequest struct {
  Status types.UserLessonStatus `json:"status" binding:"required"`
}

// PATCH /api/lessons/:id/user-status
func (h *LessonHandler) SetUserStatus(c *gin.Context) {
  lessonID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  var req setUserStatusRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  lesson, err := h.svc.SetUserStatus(c.Request.Context(), lessonID, req.Status)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"lesson": lesson})
}
