package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Onboarding resolves where a user resumes the onboarding funnel
type Onboarding interface {
	Resolve(ctx context.Context, userID string) (domain.Resolution, error)
}

type Profiles interface {
	GetMyProfile(ctx context.Context, session domain.Session) (*domain.Profile, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpsertMyProfile(ctx context.Context, session domain.Session, req domain.UpdateProfileRequest) (*domain.Profile, error)
}

type Answers interface {
	SubmitAnswers(ctx context.Context, session domain.Session, req domain.SubmitAnswersRequest) (string, error)
}

type Events interface {
	CreateEvent(ctx context.Context, session domain.Session, req domain.CreateEventRequest) (*domain.Event, error)
	ListEvents(ctx context.Context, session domain.Session) ([]domain.Event, error)
	EndEvent(ctx context.Context, session domain.Session, eventID string) error
	DeleteEvent(ctx context.Context, session domain.Session, eventID string) error
	JoinEvent(ctx context.Context, session domain.Session, code string) (*domain.JoinResult, error)
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error)
	ActiveEventsForUser(ctx context.Context, session domain.Session) ([]domain.Event, error)
}

type Connections interface {
	RequestConnection(ctx context.Context, session domain.Session, receiverID string) (*domain.Connection, error)
	AcceptConnection(ctx context.Context, session domain.Session, id string) (*domain.Connection, error)
	RejectConnection(ctx context.Context, session domain.Session, id string) (*domain.Connection, error)
	ListConnections(ctx context.Context, session domain.Session) (*domain.ConnectionList, error)
}

type Matches interface {
	ListMatches(ctx context.Context, session domain.Session, eventID string) ([]domain.Match, error)
	GetMatch(ctx context.Context, session domain.Session, matchID string) (*domain.MatchDetail, error)
	ComputeMatches(ctx context.Context, session domain.Session, eventID string) ([]domain.ComputedMatch, error)
	RecomputeEvent(ctx context.Context, session domain.Session, eventID string) (*domain.RecomputeResult, error)
	GenerateRecap(ctx context.Context, session domain.Session, eventID string) (string, error)
}

type Dashboards interface {
	Dashboard(ctx context.Context, session domain.Session) (*domain.Dashboard, error)
}

// Handler serves the /api/v1 endpoints
type Handler struct {
	onboarding  Onboarding
	profiles    Profiles
	answers     Answers
	events      Events
	connections Connections
	matches     Matches
	dashboards  Dashboards
}

// Services groups the logic-layer dependencies of a Handler
type Services struct {
	Onboarding  Onboarding
	Profiles    Profiles
	Answers     Answers
	Events      Events
	Connections Connections
	Matches     Matches
	Dashboards  Dashboards
}

// NewHandler creates a new handler
func NewHandler(s Services) *Handler {
	return &Handler{
		onboarding:  s.Onboarding,
		profiles:    s.Profiles,
		answers:     s.Answers,
		events:      s.Events,
		connections: s.Connections,
		matches:     s.Matches,
		dashboards:  s.Dashboards,
	}
}

// startRequest opens the request span and returns the request-scoped logger
func startRequest(c *gin.Context) (context.Context, trace.Span, *zap.Logger) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	return ctx, span, middleware.GetLoggerFromGinContext(c)
}

// requireSession writes 401 and returns false when the auth middleware did not run
func requireSession(c *gin.Context, logger *zap.Logger) (domain.Session, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		logger.Warn("No session in context", zap.String("path", c.FullPath()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return domain.Session{}, false
	}
	return session, true
}

// bindJSON binds the request body and writes 400 on failure
func bindJSON(c *gin.Context, span trace.Span, logger *zap.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.Warn("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeValidationError(err)})
		return false
	}
	span.SetAttributes(attribute.Bool("request.valid", true))
	return true
}

var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrProfileNotFound, http.StatusNotFound, "Profile not found"},
	{domain.ErrEventNotFound, http.StatusNotFound, "Event not found"},
	{domain.ErrConnectionNotFound, http.StatusNotFound, "Connection not found"},
	{domain.ErrMatchNotFound, http.StatusNotFound, "Match not found"},
	{domain.ErrEventCodeTaken, http.StatusConflict, "Event code already in use"},
	{domain.ErrConnectionExists, http.StatusConflict, "Connection already exists"},
	{domain.ErrResolutionSuperseded, http.StatusConflict, "Superseded by a newer request"},
	{domain.ErrConnectToSelf, http.StatusBadRequest, "Cannot connect to yourself"},
	{domain.ErrInvalidAnswers, http.StatusBadRequest, "Both questions must be answered"},
	{domain.ErrInvalidID, http.StatusBadRequest, "Invalid id"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{domain.ErrExternalService, http.StatusBadGateway, "Upstream service unavailable"},
}

// writeError maps a logic-layer error to its HTTP response
func writeError(c *gin.Context, span trace.Span, logger *zap.Logger, msg string, err error) {
	span.RecordError(err)

	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			logger.Warn(msg, zap.Error(err), zap.Int("status", r.status))
			c.JSON(r.status, gin.H{"error": r.message})
			return
		}
	}

	logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
