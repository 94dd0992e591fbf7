package v1

import (
	"context"
	"errors"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OnboardingResolver decides which onboarding step a user resumes at.
//
// Resolve is a pure read over the profile and the onboarding event answers.
// It never fails: lookup errors degrade to the step that re-collects the data
// that could not be read.
type OnboardingResolver struct {
	profiles domain.ProfileRepository
	answers  domain.EventAnswerRepository
	eventID  string
	logger   *zap.Logger
}

// NewOnboardingResolver creates a resolver that checks answers for eventID
func NewOnboardingResolver(profiles domain.ProfileRepository, answers domain.EventAnswerRepository, eventID string, logger *zap.Logger) *OnboardingResolver {
	return &OnboardingResolver{
		profiles: profiles,
		answers:  answers,
		eventID:  eventID,
		logger:   logger,
	}
}

// Resolve classifies userID into exactly one onboarding status
func (r *OnboardingResolver) Resolve(ctx context.Context, userID string) domain.OnboardingResult {
	ctx, span := middleware.StartSpan(ctx, "onboarding.resolve", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	result := r.resolve(ctx, userID)

	span.SetAttributes(attribute.String("onboarding.status", string(result.Status)))
	onboardingResolutions.WithLabelValues(string(result.Status)).Inc()
	return result
}

func (r *OnboardingResolver) resolve(ctx context.Context, userID string) domain.OnboardingResult {
	profile, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.OnboardingResult{Status: domain.StatusNoProfile, RedirectTo: domain.RouteQuestions}
		}
		middleware.RecordError(ctx, err)
		r.logger.Warn("Profile lookup failed, re-collecting profile",
			zap.String("user_id", userID), zap.Error(err))
		return domain.OnboardingResult{Status: domain.StatusError, RedirectTo: domain.RouteQuestions}
	}

	if missing := profile.MissingRequiredFields(); len(missing) > 0 {
		middleware.AddSpanAttributes(ctx, attribute.StringSlice("onboarding.missing_fields", missing))
		r.logger.Debug("Profile incomplete",
			zap.String("user_id", userID), zap.Strings("missing_fields", missing))
		return domain.OnboardingResult{
			Status:        domain.StatusIncompleteProfile,
			RedirectTo:    domain.RouteQuestions,
			MissingFields: missing,
		}
	}

	answer, err := r.answers.FindEventAnswer(ctx, userID, r.eventID)
	if err != nil {
		middleware.RecordError(ctx, err)
		r.logger.Warn("Event answer lookup failed, re-collecting answers",
			zap.String("user_id", userID), zap.String("event_id", r.eventID), zap.Error(err))
		return domain.OnboardingResult{Status: domain.StatusNoEventAnswers, RedirectTo: domain.RouteWhyJoin}
	}
	if answer == nil {
		return domain.OnboardingResult{Status: domain.StatusNoEventAnswers, RedirectTo: domain.RouteWhyJoin}
	}

	return domain.OnboardingResult{Status: domain.StatusComplete, RedirectTo: domain.RouteEnd}
}
