package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MatchService reads matches and delegates their computation to the external service
type MatchService struct {
	matches  domain.MatchRepository
	profiles domain.ProfileRepository
	events   domain.EventRepository
	external domain.ExternalAPI
	logger   *zap.Logger
}

func NewMatchService(matches domain.MatchRepository, profiles domain.ProfileRepository, events domain.EventRepository, external domain.ExternalAPI, logger *zap.Logger) *MatchService {
	return &MatchService{
		matches:  matches,
		profiles: profiles,
		events:   events,
		external: external,
		logger:   logger,
	}
}

// ListMatches returns the session user's matches for the event
func (s *MatchService) ListMatches(ctx context.Context, session domain.Session, eventID string) ([]domain.Match, error) {
	ctx, span := middleware.StartSpan(ctx, "match.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
		attribute.String("event.id", eventID),
	))
	defer span.End()

	if err := validateID("event", eventID); err != nil {
		return nil, err
	}
	matches, err := s.matches.ListMatches(ctx, session.UserID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list matches for %q in %q: %w", session.UserID, eventID, err)
	}
	span.SetAttributes(attribute.Int("match.count", len(matches)))
	return matches, nil
}

// GetMatch returns one of the session user's matches with the matched profile
func (s *MatchService) GetMatch(ctx context.Context, session domain.Session, matchID string) (*domain.MatchDetail, error) {
	ctx, span := middleware.StartSpan(ctx, "match.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
		attribute.String("match.id", matchID),
	))
	defer span.End()

	if err := validateID("match", matchID); err != nil {
		return nil, err
	}
	match, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match %q: %w", matchID, err)
	}
	if match.UserID != session.UserID {
		return nil, fmt.Errorf("get match %q: %w", matchID, domain.ErrMatchNotFound)
	}

	detail := &domain.MatchDetail{Match: *match}
	profile, err := s.profiles.GetProfile(ctx, match.MatchUserID)
	switch {
	case err == nil:
		detail.Profile = profile
	case errors.Is(err, domain.ErrProfileNotFound):
	default:
		return nil, fmt.Errorf("load matched profile %q: %w", match.MatchUserID, err)
	}
	return detail, nil
}

// ComputeMatches asks the external service to (re)compute the session user's matches
func (s *MatchService) ComputeMatches(ctx context.Context, session domain.Session, eventID string) ([]domain.ComputedMatch, error) {
	ctx, span := middleware.StartSpan(ctx, "match.compute", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
		attribute.String("event.id", eventID),
	))
	defer span.End()

	if err := validateID("event", eventID); err != nil {
		return nil, err
	}
	computed, err := s.external.ComputeMatches(ctx, session.UserID, eventID)
	if err != nil {
		externalCallFailures.WithLabelValues("compute_matches").Inc()
		span.RecordError(err)
		return nil, err
	}
	return computed, nil
}

// RecomputeEvent computes matches for every attendee of the event. A failure
// for one attendee is counted and the rest continue.
func (s *MatchService) RecomputeEvent(ctx context.Context, session domain.Session, eventID string) (*domain.RecomputeResult, error) {
	ctx, span := middleware.StartSpan(ctx, "match.recompute_event", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("event.id", eventID),
	))
	defer span.End()

	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	if err := validateID("event", eventID); err != nil {
		return nil, err
	}
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("get event %q: %w", eventID, err)
	}

	attendees, err := s.events.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees of %q: %w", eventID, err)
	}

	result := &domain.RecomputeResult{EventID: eventID, Attendees: len(attendees)}
	for _, a := range attendees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		computed, err := s.external.ComputeMatches(ctx, a.UserID, eventID)
		if err != nil {
			externalCallFailures.WithLabelValues("compute_matches").Inc()
			result.Failures++
			s.logger.Warn("Recompute failed for attendee",
				zap.String("event_id", eventID), zap.String("user_id", a.UserID), zap.Error(err))
			continue
		}
		result.Matches += len(computed)
	}

	span.SetAttributes(
		attribute.Int("recompute.matches", result.Matches),
		attribute.Int("recompute.failures", result.Failures),
	)
	return result, nil
}

// GenerateRecap returns the URL of the session user's recap image for an event they attended
func (s *MatchService) GenerateRecap(ctx context.Context, session domain.Session, eventID string) (string, error) {
	ctx, span := middleware.StartSpan(ctx, "match.recap", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
		attribute.String("event.id", eventID),
	))
	defer span.End()

	if err := validateID("event", eventID); err != nil {
		return "", err
	}
	url, err := s.external.GenerateRecap(ctx, eventID, session.UserID)
	if err != nil {
		externalCallFailures.WithLabelValues("recap").Inc()
		span.RecordError(err)
		return "", err
	}
	return url, nil
}
