package v1

import (
	"context"
	"testing"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCombineAnswer(t *testing.T) {
	tests := []struct {
		name    string
		options []string
		other   string
		want    string
	}{
		{"options only", []string{"Find a cofounder", "Hire"}, "", "Find a cofounder, Hire"},
		{"other last", []string{"Hire"}, "Meet investors", "Hire, Meet investors"},
		{"other only", nil, "  Learn  ", "Learn"},
		{"blanks dropped", []string{" ", "Hire", ""}, "   ", "Hire"},
		{"nothing", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, combineAnswer(tt.options, tt.other))
		})
	}
}

func TestAnswerService_SubmitStoresAnswersForOnboardingEvent(t *testing.T) {
	answers := newFakeAnswers()
	publisher := &fakePublisher{}
	invalidator := &fakeInvalidator{}
	svc := NewAnswerService(answers, publisher, invalidator, onboardingEventID, zap.NewNop())
	session := domain.Session{UserID: newID()}

	next, err := svc.SubmitAnswers(context.Background(), session, domain.SubmitAnswersRequest{
		Question1:      []string{"Networking"},
		Question1Other: "Meet founders",
		Question2Other: "Fintech",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RouteEnd, next)

	stored, err := answers.FindEventAnswer(context.Background(), session.UserID, onboardingEventID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Networking, Meet founders", stored.Question1)
	assert.Equal(t, "Fintech", stored.Question2)

	assert.Equal(t, []domain.DomainEventType{domain.EventAnswersSubmitted}, publisher.types())
	assert.Equal(t, []string{session.UserID}, invalidator.users)
}

func TestAnswerService_SubmitRequiresBothQuestions(t *testing.T) {
	answers := newFakeAnswers()
	svc := NewAnswerService(answers, &fakePublisher{}, nil, onboardingEventID, zap.NewNop())
	session := domain.Session{UserID: newID()}

	_, err := svc.SubmitAnswers(context.Background(), session, domain.SubmitAnswersRequest{
		Question1:      []string{"Networking"},
		Question2:      []string{"  "},
		Question2Other: " ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAnswers)

	stored, _ := answers.FindEventAnswer(context.Background(), session.UserID, onboardingEventID)
	assert.Nil(t, stored)
}

func TestAnswerService_SubmitCompletesOnboarding(t *testing.T) {
	userID := newID()
	profiles := newFakeProfiles(completeProfile(userID))
	answers := newFakeAnswers()
	resolver := newTestResolver(profiles, answers)
	svc := NewAnswerService(answers, &fakePublisher{}, nil, onboardingEventID, zap.NewNop())

	assert.Equal(t, domain.StatusNoEventAnswers, resolver.Resolve(context.Background(), userID).Status)

	_, err := svc.SubmitAnswers(context.Background(), domain.Session{UserID: userID}, domain.SubmitAnswersRequest{
		Question1: []string{"a"},
		Question2: []string{"b"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusComplete, resolver.Resolve(context.Background(), userID).Status)
}
