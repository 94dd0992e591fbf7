package v1

import (
	"context"
	"testing"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatchService_GetMatchOwnerOnly(t *testing.T) {
	owner, other := newID(), newID()
	m := &domain.Match{ID: newID(), UserID: owner, MatchUserID: other, EventID: newID(), WhyMeet: "You share interests in chess"}
	svc := NewMatchService(newFakeMatches(m), newFakeProfiles(completeProfile(other)), newFakeEvents(), newFakeExternal(), zap.NewNop())

	detail, err := svc.GetMatch(context.Background(), domain.Session{UserID: owner}, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.WhyMeet, detail.WhyMeet)
	require.NotNil(t, detail.Profile)
	assert.Equal(t, other, detail.Profile.ID)

	_, err = svc.GetMatch(context.Background(), domain.Session{UserID: other}, m.ID)
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)

	_, err = svc.GetMatch(context.Background(), domain.Session{UserID: owner}, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestMatchService_GetMatchWithoutProfile(t *testing.T) {
	owner := newID()
	m := &domain.Match{ID: newID(), UserID: owner, MatchUserID: newID(), EventID: newID()}
	svc := NewMatchService(newFakeMatches(m), newFakeProfiles(), newFakeEvents(), newFakeExternal(), zap.NewNop())

	detail, err := svc.GetMatch(context.Background(), domain.Session{UserID: owner}, m.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Profile)
}

func TestMatchService_ListAndCompute(t *testing.T) {
	user, eventID := newID(), newID()
	m := &domain.Match{ID: newID(), UserID: user, MatchUserID: newID(), EventID: eventID}
	external := newFakeExternal()
	svc := NewMatchService(newFakeMatches(m), newFakeProfiles(), newFakeEvents(), external, zap.NewNop())
	session := domain.Session{UserID: user}

	matches, err := svc.ListMatches(context.Background(), session, eventID)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	computed, err := svc.ComputeMatches(context.Background(), session, eventID)
	require.NoError(t, err)
	require.Len(t, computed, 1)
	assert.Equal(t, "user_b", computed[0].MatchUserID)

	external.computeErrFor[user] = true
	_, err = svc.ComputeMatches(context.Background(), session, eventID)
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestMatchService_RecomputeEventCountsFailures(t *testing.T) {
	events := newFakeEvents()
	event := events.add(&domain.Event{Name: "Launch", Code: "SPARK1", Status: domain.EventActive})
	a, b, c := newID(), newID(), newID()
	for _, u := range []string{a, b, c} {
		_, _ = events.AddAttendee(context.Background(), event.ID, u)
	}
	external := newFakeExternal()
	external.computeErrFor[b] = true
	svc := NewMatchService(newFakeMatches(), newFakeProfiles(), events, external, zap.NewNop())

	res, err := svc.RecomputeEvent(context.Background(), admin, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attendees)
	assert.Equal(t, 2, res.Matches)
	assert.Equal(t, 1, res.Failures)

	_, err = svc.RecomputeEvent(context.Background(), domain.Session{UserID: a}, event.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.RecomputeEvent(context.Background(), admin, newID())
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestMatchService_GenerateRecap(t *testing.T) {
	user, eventID := newID(), newID()
	svc := NewMatchService(newFakeMatches(), newFakeProfiles(), newFakeEvents(), newFakeExternal(), zap.NewNop())

	url, err := svc.GenerateRecap(context.Background(), domain.Session{UserID: user}, eventID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/recaps/"+eventID+"/"+user+".png", url)
}
