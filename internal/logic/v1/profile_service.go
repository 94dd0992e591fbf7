package v1

import (
	"context"
	"fmt"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ResolutionInvalidator is told when a write changes a user's onboarding inputs
type ResolutionInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// ProfileService defines the business logic for attendee profiles
type ProfileService struct {
	profiles    domain.ProfileRepository
	external    domain.ExternalAPI
	publisher   domain.EventPublisher
	invalidator ResolutionInvalidator
	logger      *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profiles domain.ProfileRepository, external domain.ExternalAPI, publisher domain.EventPublisher, invalidator ResolutionInvalidator, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		profiles:    profiles,
		external:    external,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger,
	}
}

// GetMyProfile returns the session user's profile
func (s *ProfileService) GetMyProfile(ctx context.Context, session domain.Session) (*domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "profile.get_mine", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
	))
	defer span.End()

	profile, err := s.profiles.GetProfile(ctx, session.UserID)
	if err != nil {
		span.SetAttributes(attribute.Bool("profile.found", false))
		return nil, fmt.Errorf("get profile for %q: %w", session.UserID, err)
	}

	span.SetAttributes(attribute.Bool("profile.found", true))
	return profile, nil
}

// GetProfile returns another attendee's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "profile.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	if err := validateID("user", userID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile for %q: %w", userID, err)
	}
	return profile, nil
}

// UpsertMyProfile applies a partial update, creating the profile if it does
// not exist yet. The embedding refresh and event publish that follow a write
// are best effort.
func (s *ProfileService) UpsertMyProfile(ctx context.Context, session domain.Session, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "profile.upsert", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
	))
	defer span.End()

	profile, err := s.profiles.UpdateProfile(ctx, session.UserID, req.Apply)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save profile for %q: %w", session.UserID, err)
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, session.UserID)
	}

	hobbies, about := profile.EmbeddingText()
	if hobbies != "" || about != "" {
		if _, err := s.external.GenerateEmbedding(ctx, session.UserID, hobbies, about); err != nil {
			externalCallFailures.WithLabelValues("embedding").Inc()
			s.logger.Warn("Embedding refresh failed, continuing",
				zap.String("user_id", session.UserID), zap.Error(err))
		}
	}

	event := domain.NewDomainEvent(domain.EventProfileUpdated, session.UserID)
	event.Attributes = map[string]string{"complete": fmt.Sprint(profile.IsComplete())}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish profile event", zap.String("user_id", session.UserID), zap.Error(err))
	}

	span.SetAttributes(attribute.Bool("profile.updated", true))
	return profile, nil
}
