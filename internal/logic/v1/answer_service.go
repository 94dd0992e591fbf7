package v1

import (
	"context"
	"fmt"
	"strings"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AnswerService stores the onboarding survey answers
type AnswerService struct {
	answers     domain.EventAnswerRepository
	publisher   domain.EventPublisher
	invalidator ResolutionInvalidator
	eventID     string
	logger      *zap.Logger
}

func NewAnswerService(answers domain.EventAnswerRepository, publisher domain.EventPublisher, invalidator ResolutionInvalidator, eventID string, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		answers:     answers,
		publisher:   publisher,
		invalidator: invalidator,
		eventID:     eventID,
		logger:      logger,
	}
}

// SubmitAnswers upserts the session user's answers for the onboarding event
// and returns the route to continue at.
func (s *AnswerService) SubmitAnswers(ctx context.Context, session domain.Session, req domain.SubmitAnswersRequest) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "answers.submit", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
		attribute.String("event.id", s.eventID),
	))
	defer span.End()

	q1 := combineAnswer(req.Question1, req.Question1Other)
	q2 := combineAnswer(req.Question2, req.Question2Other)
	if q1 == "" || q2 == "" {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return "", domain.ErrInvalidAnswers
	}

	answer := &domain.EventAnswer{
		UserID:    session.UserID,
		EventID:   s.eventID,
		Question1: q1,
		Question2: q2,
	}
	if err := s.answers.UpsertEventAnswer(ctx, answer); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("save answers for %q: %w", session.UserID, err)
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, session.UserID)
	}

	event := domain.NewDomainEvent(domain.EventAnswersSubmitted, session.UserID)
	event.EventID = s.eventID
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish answers event", zap.String("user_id", session.UserID), zap.Error(err))
	}

	return domain.RouteEnd, nil
}

// combineAnswer joins selected options and the custom answer with ", ",
// options first, dropping blanks.
func combineAnswer(options []string, other string) string {
	parts := make([]string, 0, len(options)+1)
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			parts = append(parts, o)
		}
	}
	if other = strings.TrimSpace(other); other != "" {
		parts = append(parts, other)
	}
	return strings.Join(parts, ", ")
}
