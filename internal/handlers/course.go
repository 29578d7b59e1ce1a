package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/services"
)

type CourseHandler struct {
  svc services.CourseService
  gen services.CourseGenerationService
}

func NewCourseHandler(svc services.CourseService, gen services.CourseGenerationService) *CourseHandler {
  return &CourseHandler{svc: svc, gen: gen}
}

// POST /api/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
  var req services.CreateCourseRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  course, err := h.gen.PlanAndCreateCourse(c.Request.Context(), req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  c.JSON(http.StatusCreated, gin.H{"course": course})
}

// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
  offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

  courses, err := h.svc.List(c.Request.Context(), offset, limit)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  course, err := h.svc.GetByID(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"course": course})
}

// PATCH /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }
  var req services.UpdateCourseRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  course, err := h.svc.Update(c.Request.Context(), courseID, req)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"course": course})
}

// DELETE /api/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  if err := h.svc.Delete(c.Request.Context(), courseID); err != nil {
    RespondServiceError(c, err)
    return
  }
  c.Status(http.StatusNoContent)
}

// POST /api/courses/:id/retry
func (h *CourseHandler) RetryCourse(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  course, err := h.gen.RetryCourse(c.Request.Context(), courseID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  c.JSON(http.StatusAccepted, gin.H{"course": course})
}
