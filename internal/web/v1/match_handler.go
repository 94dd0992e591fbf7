package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ListMatches handles GET /api/v1/events/:id/matches
func (h *Handler) ListMatches(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event.id", eventID))

	matches, err := h.matches.ListMatches(ctx, session, eventID)
	if err != nil {
		writeError(c, span, logger, "Failed to list matches", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// ComputeMatches handles POST /api/v1/events/:id/matches/compute
func (h *Handler) ComputeMatches(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event.id", eventID))

	matches, err := h.matches.ComputeMatches(ctx, session, eventID)
	if err != nil {
		writeError(c, span, logger, "Failed to compute matches", err)
		return
	}

	logger.Info("Matches computed", zap.String("event_id", eventID), zap.Int("count", len(matches)))
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// GetMatch handles GET /api/v1/matches/:id
func (h *Handler) GetMatch(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	id := c.Param("id")
	span.SetAttributes(attribute.String("match.id", id))

	detail, err := h.matches.GetMatch(ctx, session, id)
	if err != nil {
		writeError(c, span, logger, "Failed to get match", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GenerateRecap handles POST /api/v1/events/:id/recap
func (h *Handler) GenerateRecap(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event.id", eventID))

	url, err := h.matches.GenerateRecap(ctx, session, eventID)
	if err != nil {
		writeError(c, span, logger, "Failed to generate recap", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recap_url": url})
}

// RecomputeEvent handles POST /api/v1/admin/events/:id/recompute
func (h *Handler) RecomputeEvent(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event.id", eventID))

	result, err := h.matches.RecomputeEvent(ctx, session, eventID)
	if err != nil {
		writeError(c, span, logger, "Failed to recompute matches", err)
		return
	}

	logger.Info("Event matches recomputed",
		zap.String("event_id", eventID),
		zap.Int("attendees", result.Attendees),
		zap.Int("failures", result.Failures),
	)
	c.JSON(http.StatusOK, result)
}

// GetDashboard handles GET /api/v1/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	dashboard, err := h.dashboards.Dashboard(ctx, session)
	if err != nil {
		writeError(c, span, logger, "Failed to load dashboard", err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
