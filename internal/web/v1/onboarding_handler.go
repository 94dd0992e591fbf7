package v1

import (
	"errors"
	"net/http"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GetOnboardingStatus handles GET /api/v1/onboarding/status.
// A superseded resolution answers 409 so the client ignores it instead of navigating.
func (h *Handler) GetOnboardingStatus(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	res, err := h.onboarding.Resolve(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrResolutionSuperseded) {
			span.SetAttributes(attribute.Bool("onboarding.superseded", true))
			logger.Debug("Onboarding resolution superseded", zap.Uint64("generation", res.Generation))
			c.JSON(http.StatusConflict, gin.H{
				"error":      "Superseded by a newer request",
				"status":     "superseded",
				"generation": res.Generation,
			})
			return
		}
		writeError(c, span, logger, "Failed to resolve onboarding status", err)
		return
	}

	span.SetAttributes(
		attribute.String("onboarding.status", string(res.Status)),
		attribute.Int64("onboarding.generation", int64(res.Generation)),
	)
	logger.Info("Onboarding status resolved",
		zap.String("user_id", session.UserID),
		zap.String("status", string(res.Status)),
		zap.String("redirect_to", res.RedirectTo),
		zap.Strings("missing_fields", res.MissingFields),
	)
	c.JSON(http.StatusOK, res)
}

// SubmitAnswers handles POST /api/v1/events/answers
func (h *Handler) SubmitAnswers(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	var req domain.SubmitAnswersRequest
	if !bindJSON(c, span, logger, &req) {
		return
	}

	next, err := h.answers.SubmitAnswers(ctx, session, req)
	if err != nil {
		writeError(c, span, logger, "Failed to submit answers", err)
		return
	}

	logger.Info("Event answers submitted", zap.String("user_id", session.UserID))
	c.JSON(http.StatusOK, gin.H{"redirect_to": next})
}
