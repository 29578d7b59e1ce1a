package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/courseloom/courseloom-backend/internal/services"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps service sentinels to HTTP statuses.
func RespondServiceError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, services.ErrCourseNotFound),
    errors.Is(err, services.ErrLessonNotFound),
    errors.Is(err, services.ErrQuizNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, services.ErrNoOutlinePlan),
    errors.Is(err, services.ErrInvalidUserStatus),
    errors.Is(err, services.ErrInvalidDifficulty):
    RespondError(c, http.StatusBadRequest, "bad_request", err)
  default:
    RespondError(c, http.StatusInternalServerError, "internal", err)
  }
}
