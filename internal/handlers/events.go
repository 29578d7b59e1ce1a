package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/courseloom/courseloom-backend/internal/events"
  "github.com/courseloom/courseloom-backend/internal/logger"
)

type EventsHandler struct {
  log *logger.Logger
  hub *events.Hub
}

func NewEventsHandler(log *logger.Logger, hub *events.Hub) *EventsHandler {
  return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub}
}

// GET /api/courses/:id/events
// Streams generation progress for one course over SSE until the client
// disconnects.
func (h *EventsHandler) StreamCourseEvents(c *gin.Context) {
  courseID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  client := h.hub.NewClient()
  h.hub.AddChannel(client, events.CourseChannel(courseID))
  defer h.hub.CloseClient(client)

  h.hub.ServeHTTP(c.Writer, c.Request, client)
}
