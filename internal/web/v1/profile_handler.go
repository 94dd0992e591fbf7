package v1

import (
	"net/http"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GetMyProfile handles GET /api/v1/profile
func (h *Handler) GetMyProfile(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	profile, err := h.profiles.GetMyProfile(ctx, session)
	if err != nil {
		writeError(c, span, logger, "Failed to get profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpsertMyProfile handles PUT /api/v1/profile
func (h *Handler) UpsertMyProfile(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	var req domain.UpdateProfileRequest
	if !bindJSON(c, span, logger, &req) {
		return
	}

	profile, err := h.profiles.UpsertMyProfile(ctx, session, req)
	if err != nil {
		writeError(c, span, logger, "Failed to update profile", err)
		return
	}

	logger.Info("Profile updated", zap.String("user_id", session.UserID))
	c.JSON(http.StatusOK, profile)
}

// GetProfile handles GET /api/v1/profiles/:id
func (h *Handler) GetProfile(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("profile.id", id))

	profile, err := h.profiles.GetProfile(ctx, id)
	if err != nil {
		writeError(c, span, logger, "Failed to get profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
