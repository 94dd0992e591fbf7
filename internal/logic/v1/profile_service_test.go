package v1

import (
	"context"
	"sync"
	"testing"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProfileService_UpsertCreatesMissingProfile(t *testing.T) {
	profiles := newFakeProfiles()
	external := newFakeExternal()
	publisher := &fakePublisher{}
	invalidator := &fakeInvalidator{}
	svc := NewProfileService(profiles, external, publisher, invalidator, zap.NewNop())
	session := domain.Session{UserID: newID()}

	hobbies := []string{" hiking ", "", "chess", "hiking"}
	got, err := svc.UpsertMyProfile(context.Background(), session, domain.UpdateProfileRequest{
		FullName: strPtr("Jane Doe"),
		Hobbies:  &hobbies,
	})
	require.NoError(t, err)

	assert.Equal(t, session.UserID, got.ID)
	assert.Equal(t, "Jane Doe", *got.FullName)
	assert.Equal(t, []string{"hiking", "chess"}, got.Hobbies)
	assert.False(t, got.IsComplete())

	stored, err := profiles.GetProfile(context.Background(), session.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", *stored.FullName)

	assert.Equal(t, []string{session.UserID}, external.embeddings)
	assert.Equal(t, []domain.DomainEventType{domain.EventProfileUpdated}, publisher.types())
	assert.Equal(t, []string{session.UserID}, invalidator.users)
}

func TestProfileService_UpsertKeepsUntouchedFields(t *testing.T) {
	userID := newID()
	existing := completeProfile(userID)
	existing.Bio = strPtr("old bio")
	profiles := newFakeProfiles(existing)
	svc := NewProfileService(profiles, newFakeExternal(), &fakePublisher{}, nil, zap.NewNop())

	got, err := svc.UpsertMyProfile(context.Background(), domain.Session{UserID: userID}, domain.UpdateProfileRequest{
		Company: strPtr("Globex"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Globex", *got.Company)
	assert.Equal(t, "Jane Doe", *got.FullName)
	assert.Equal(t, "old bio", *got.Bio)
	assert.True(t, got.IsComplete())
}

func TestProfileService_ConcurrentPartialUpdatesKeepEveryField(t *testing.T) {
	userID := newID()
	profiles := newFakeProfiles()
	svc := NewProfileService(profiles, newFakeExternal(), &fakePublisher{}, &fakeInvalidator{}, zap.NewNop())
	session := domain.Session{UserID: userID}
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			_, err := svc.UpsertMyProfile(ctx, session, domain.UpdateProfileRequest{Bio: strPtr("bio")})
			assert.NoError(t, err)
		})
		wg.Go(func() {
			_, err := svc.UpsertMyProfile(ctx, session, domain.UpdateProfileRequest{Company: strPtr("Globex")})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	stored, err := profiles.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, stored.Bio)
	require.NotNil(t, stored.Company)
	assert.Equal(t, "bio", *stored.Bio)
	assert.Equal(t, "Globex", *stored.Company)
	assert.Equal(t, 20, profiles.upserts)
}

func TestProfileService_UpsertSurvivesEmbeddingAndPublishFailures(t *testing.T) {
	external := newFakeExternal()
	external.embeddingErr = domain.ErrExternalService
	publisher := &fakePublisher{err: errDBDown}
	svc := NewProfileService(newFakeProfiles(), external, publisher, nil, zap.NewNop())

	passions := "climbing"
	_, err := svc.UpsertMyProfile(context.Background(), domain.Session{UserID: newID()}, domain.UpdateProfileRequest{
		Passions: &passions,
	})
	assert.NoError(t, err)
}

func TestProfileService_UpsertPropagatesLoadFailure(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.getErr = errDBDown
	svc := NewProfileService(profiles, newFakeExternal(), &fakePublisher{}, nil, zap.NewNop())

	_, err := svc.UpsertMyProfile(context.Background(), domain.Session{UserID: newID()}, domain.UpdateProfileRequest{})
	assert.ErrorIs(t, err, errDBDown)
	assert.Zero(t, profiles.upserts)
}

func TestProfileService_GetMyProfileNotFound(t *testing.T) {
	svc := NewProfileService(newFakeProfiles(), newFakeExternal(), &fakePublisher{}, nil, zap.NewNop())

	_, err := svc.GetMyProfile(context.Background(), domain.Session{UserID: newID()})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileService_GetProfileRejectsInvalidID(t *testing.T) {
	svc := NewProfileService(newFakeProfiles(), newFakeExternal(), &fakePublisher{}, nil, zap.NewNop())

	_, err := svc.GetProfile(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
