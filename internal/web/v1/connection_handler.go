package v1

import (
	"context"
	"net/http"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ListConnections handles GET /api/v1/connections
func (h *Handler) ListConnections(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	list, err := h.connections.ListConnections(ctx, session)
	if err != nil {
		writeError(c, span, logger, "Failed to list connections", err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// RequestConnection handles POST /api/v1/connections
func (h *Handler) RequestConnection(c *gin.Context) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	var req domain.ConnectionRequest
	if !bindJSON(c, span, logger, &req) {
		return
	}

	conn, err := h.connections.RequestConnection(ctx, session, req.ReceiverID)
	if err != nil {
		writeError(c, span, logger, "Failed to request connection", err)
		return
	}

	logger.Info("Connection requested",
		zap.String("connection_id", conn.ID),
		zap.String("sender_id", conn.SenderID),
		zap.String("receiver_id", conn.ReceiverID),
	)
	c.JSON(http.StatusCreated, conn)
}

// AcceptConnection handles POST /api/v1/connections/:id/accept
func (h *Handler) AcceptConnection(c *gin.Context) {
	h.answerConnection(c, h.connections.AcceptConnection)
}

// RejectConnection handles POST /api/v1/connections/:id/reject
func (h *Handler) RejectConnection(c *gin.Context) {
	h.answerConnection(c, h.connections.RejectConnection)
}

func (h *Handler) answerConnection(c *gin.Context, answer func(ctx context.Context, session domain.Session, id string) (*domain.Connection, error)) {
	ctx, span, logger := startRequest(c)
	defer span.End()

	session, ok := requireSession(c, logger)
	if !ok {
		return
	}

	id := c.Param("id")
	span.SetAttributes(attribute.String("connection.id", id))

	conn, err := answer(ctx, session, id)
	if err != nil {
		writeError(c, span, logger, "Failed to answer connection", err)
		return
	}

	logger.Info("Connection answered", zap.String("connection_id", id), zap.String("status", string(conn.Status)))
	c.JSON(http.StatusOK, conn)
}
