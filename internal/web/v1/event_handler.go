package v1

import (
	"context"
	"net/http"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// JoinEvent handles POST /api/v1/events/join
func (h *Handler) JoinEvent(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	var req domain.JoinEventRequest
	if !bindJSON(c, span, logger, &req) {
		return
	}

	result, err := h.events.JoinEvent(ctx, session, req.Code)
	if err != nil {
		writeError(c, span, logger, "Failed to join event", err)
		return
	}

	span.SetAttributes(
		attribute.String("event.id", result.Event.ID),
		attribute.Bool("event.already_joined", result.AlreadyJoined),
	)
	logger.Info("Event joined",
		zap.String("user_id", session.UserID),
		zap.String("event_id", result.Event.ID),
		zap.Bool("already_joined", result.AlreadyJoined),
	)
	c.JSON(http.StatusOK, result)
}

// MyEvents handles GET /api/v1/events/mine
func (h *Handler) MyEvents(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	events, err := h.events.ActiveEventsForUser(ctx, session)
	if err != nil {
		writeError(c, span, logger, "Failed to list events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetEvent handles GET /api/v1/events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("event.id", id))

	event, err := h.events.GetEvent(ctx, id)
	if err != nil {
		writeError(c, span, logger, "Failed to get event", err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListAttendees handles GET /api/v1/events/:id/attendees
func (h *Handler) ListAttendees(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("event.id", id))

	attendees, err := h.events.ListAttendees(ctx, id)
	if err != nil {
		writeError(c, span, logger, "Failed to list attendees", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attendees": attendees})
}

// CreateEvent handles POST /api/v1/admin/events
func (h *Handler) CreateEvent(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	var req domain.CreateEventRequest
	if !bindJSON(c, span, logger, &req) {
		return
	}

	event, err := h.events.CreateEvent(ctx, session, req)
	if err != nil {
		writeError(c, span, logger, "Failed to create event", err)
		return
	}

	logger.Info("Event created", zap.String("event_id", event.ID), zap.String("code", event.Code))
	c.JSON(http.StatusCreated, event)
}

// ListEvents handles GET /api/v1/admin/events
func (h *Handler) ListEvents(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	events, err := h.events.ListEvents(ctx, session)
	if err != nil {
		writeError(c, span, logger, "Failed to list events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// EndEvent handles POST /api/v1/admin/events/:id/end
func (h *Handler) EndEvent(c *gin.Context) {
	h.changeEventStatus(c, h.events.EndEvent, domain.EventOver)
}

// DeleteEvent handles DELETE /api/v1/admin/events/:id
func (h *Handler) DeleteEvent(c *gin.Context) {
	h.changeEventStatus(c, h.events.DeleteEvent, domain.EventDeleted)
}

func (h *Handler) changeEventStatus(c *gin.Context, change func(ctx context.Context, session domain.Session, eventID string) error, status domain.EventStatus) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	id := c.Param("id")
	span.SetAttributes(attribute.String("event.id", id), attribute.String("event.status", string(status)))

	if err := change(ctx, session, id); err != nil {
		writeError(c, span, logger, "Failed to update event status", err)
		return
	}

	logger.Info("Event status changed", zap.String("event_id", id), zap.String("status", string(status)))
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}
