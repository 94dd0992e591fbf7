package v1

import (
	"context"
	"testing"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const onboardingEventID = "ad73d792-4286-48c5-8cdf-6a9e5c821a0f"

func completeProfile(id string) *domain.Profile {
	return &domain.Profile{
		ID:       id,
		FullName: strPtr("Jane Doe"),
		JobTitle: strPtr("Eng"),
		Company:  strPtr("Acme"),
		Location: strPtr("NYC"),
	}
}

func newTestResolver(profiles *fakeProfiles, answers *fakeAnswers) *OnboardingResolver {
	return NewOnboardingResolver(profiles, answers, onboardingEventID, zap.NewNop())
}

func TestResolve_NoProfile(t *testing.T) {
	r := newTestResolver(newFakeProfiles(), newFakeAnswers())

	got := r.Resolve(context.Background(), "u1")

	assert.Equal(t, domain.StatusNoProfile, got.Status)
	assert.Equal(t, domain.RouteQuestions, got.RedirectTo)
}

func TestResolve_ProfileQueryFailedFailsOpenToQuestions(t *testing.T) {
	profiles := newFakeProfiles(completeProfile("u1"))
	profiles.getErr = errDBDown
	r := newTestResolver(profiles, newFakeAnswers())

	got := r.Resolve(context.Background(), "u1")

	assert.Equal(t, domain.StatusError, got.Status)
	assert.Equal(t, domain.RouteQuestions, got.RedirectTo)
}

func TestResolve_MissingRequiredFieldIsIncompleteRegardlessOfAnswers(t *testing.T) {
	blank := func(p *domain.Profile, field string, v *string) {
		switch field {
		case domain.FieldFullName:
			p.FullName = v
		case domain.FieldJobTitle:
			p.JobTitle = v
		case domain.FieldCompany:
			p.Company = v
		case domain.FieldLocation:
			p.Location = v
		}
	}

	for _, field := range domain.RequiredProfileFields {
		for name, value := range map[string]*string{
			"absent":     nil,
			"empty":      strPtr(""),
			"whitespace": strPtr("   "),
			"tabs":       strPtr("\t\n"),
		} {
			for _, answered := range []bool{false, true} {
				t.Run(field+"/"+name, func(t *testing.T) {
					p := completeProfile("u1")
					blank(p, field, value)
					answers := newFakeAnswers()
					if answered {
						_ = answers.UpsertEventAnswer(context.Background(), &domain.EventAnswer{
							UserID: "u1", EventID: onboardingEventID, Question1: "a", Question2: "b",
						})
					}
					r := newTestResolver(newFakeProfiles(p), answers)

					got := r.Resolve(context.Background(), "u1")

					assert.Equal(t, domain.StatusIncompleteProfile, got.Status)
					assert.Equal(t, domain.RouteQuestions, got.RedirectTo)
					assert.Equal(t, []string{field}, got.MissingFields)
				})
			}
		}
	}
}

func TestResolve_JobTitleEmpty(t *testing.T) {
	p := completeProfile("u1")
	p.JobTitle = strPtr("")
	r := newTestResolver(newFakeProfiles(p), newFakeAnswers())

	got := r.Resolve(context.Background(), "u1")

	assert.Equal(t, domain.StatusIncompleteProfile, got.Status)
	assert.Equal(t, domain.RouteQuestions, got.RedirectTo)
}

func TestResolve_CompleteProfileWithoutAnswers(t *testing.T) {
	r := newTestResolver(newFakeProfiles(completeProfile("u1")), newFakeAnswers())

	got := r.Resolve(context.Background(), "u1")

	assert.Equal(t, domain.StatusNoEventAnswers, got.Status)
	assert.Equal(t, domain.RouteWhyJoin, got.RedirectTo)
}

func TestResolve_AnswersForOtherEventDoNotCount(t *testing.T) {
	answers := newFakeAnswers()
	_ = answers.UpsertEventAnswer(context.Background(), &domain.EventAnswer{
		UserID: "u1", EventID: "another-event", Question1: "a", Question2: "b",
	})
	r := newTestResolver(newFakeProfiles(completeProfile("u1")), answers)

	got := r.Resolve(context.Background(), "u1")

	assert.Equal(t, domain.StatusNoEventAnswers, got.Status)
}

func TestResolve_AnswerQueryFailedFailsOpenToWhyJoin(t *testing.T) {
	answers := newFakeAnswers()
	answers.findErr = errDBDown
	r := newTestResolver(newFakeProfiles(completeProfile("u1")), answers)

	got := r.Resolve(context.Background(), "u1")

	assert.Equal(t, domain.StatusNoEventAnswers, got.Status)
	assert.Equal(t, domain.RouteWhyJoin, got.RedirectTo)
}

func TestResolve_Complete(t *testing.T) {
	answers := newFakeAnswers()
	_ = answers.UpsertEventAnswer(context.Background(), &domain.EventAnswer{
		UserID: "u1", EventID: onboardingEventID, Question1: "...", Question2: "...",
	})
	r := newTestResolver(newFakeProfiles(completeProfile("u1")), answers)

	got := r.Resolve(context.Background(), "u1")

	assert.Equal(t, domain.StatusComplete, got.Status)
	assert.Equal(t, domain.RouteEnd, got.RedirectTo)
	assert.Empty(t, got.MissingFields)
}

func TestResolve_IsIdempotent(t *testing.T) {
	profiles := newFakeProfiles(completeProfile("u1"))
	r := newTestResolver(profiles, newFakeAnswers())

	first := r.Resolve(context.Background(), "u1")
	second := r.Resolve(context.Background(), "u1")

	assert.Equal(t, first, second)
	assert.Zero(t, profiles.upserts)
}
