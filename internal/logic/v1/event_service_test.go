package v1

import (
	"context"
	"regexp"
	"testing"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type eventFixture struct {
	events    *fakeEvents
	answers   *fakeAnswers
	external  *fakeExternal
	publisher *fakePublisher
	svc       *EventService
}

func newEventFixture() *eventFixture {
	f := &eventFixture{
		events:    newFakeEvents(),
		answers:   newFakeAnswers(),
		external:  newFakeExternal(),
		publisher: &fakePublisher{},
	}
	f.svc = NewEventService(f.events, f.answers, f.external, f.publisher, onboardingEventID, zap.NewNop())
	return f
}

var admin = domain.Session{UserID: "00000000-0000-0000-0000-0000000000ad", Role: domain.RoleAdmin}

func TestGenerateEventCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for range 100 {
		assert.Regexp(t, pattern, generateEventCode())
	}
}

func TestEventService_CreateEventRequiresAdmin(t *testing.T) {
	f := newEventFixture()

	_, err := f.svc.CreateEvent(context.Background(), domain.Session{UserID: newID()}, domain.CreateEventRequest{
		Name: "Launch", Date: "2025-06-01",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEventService_CreateEventGeneratesCodeAndQR(t *testing.T) {
	f := newEventFixture()

	event, err := f.svc.CreateEvent(context.Background(), admin, domain.CreateEventRequest{
		Name: "  Launch Party ", Date: "2025-06-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "Launch Party", event.Name)
	assert.Equal(t, domain.EventActive, event.Status)
	assert.Len(t, event.Code, eventCodeLength)
	assert.Equal(t, admin.UserID, event.CreatedBy)
	require.NotNil(t, event.QRURL)
	assert.Equal(t, "https://example.com/qr/"+event.ID+".png", *event.QRURL)

	stored, err := f.events.GetEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.QRURL, stored.QRURL)
}

func TestEventService_CreateEventNormalizesCustomCode(t *testing.T) {
	f := newEventFixture()

	event, err := f.svc.CreateEvent(context.Background(), admin, domain.CreateEventRequest{
		Name: "Launch", Date: "2025-06-01", Code: " spark1 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "SPARK1", event.Code)
}

func TestEventService_CreateEventCustomCodeTaken(t *testing.T) {
	f := newEventFixture()
	f.events.takenCodes["SPARK1"] = true

	_, err := f.svc.CreateEvent(context.Background(), admin, domain.CreateEventRequest{
		Name: "Launch", Date: "2025-06-01", Code: "SPARK1",
	})
	assert.ErrorIs(t, err, domain.ErrEventCodeTaken)
}

func TestEventService_CreateEventSurvivesQRFailure(t *testing.T) {
	f := newEventFixture()
	f.external.qrErr = domain.ErrExternalService

	event, err := f.svc.CreateEvent(context.Background(), admin, domain.CreateEventRequest{
		Name: "Launch", Date: "2025-06-01",
	})
	require.NoError(t, err)
	assert.Nil(t, event.QRURL)
	assert.NotEmpty(t, event.ID)
}

func TestEventService_JoinEvent(t *testing.T) {
	f := newEventFixture()
	event := f.events.add(&domain.Event{Name: "Launch", Code: "SPARK1", Status: domain.EventActive})
	session := domain.Session{UserID: newID()}

	res, err := f.svc.JoinEvent(context.Background(), session, "  spark1 ")
	require.NoError(t, err)
	assert.Equal(t, event.ID, res.Event.ID)
	assert.False(t, res.AlreadyJoined)
	assert.Equal(t, domain.RouteWhyJoin, res.RedirectTo)
	assert.Equal(t, []computeCall{{session.UserID, event.ID}}, f.external.computeCalls)
	assert.Equal(t, []domain.DomainEventType{domain.EventJoined}, f.publisher.types())

	again, err := f.svc.JoinEvent(context.Background(), session, "SPARK1")
	require.NoError(t, err)
	assert.True(t, again.AlreadyJoined)
	assert.Len(t, f.external.computeCalls, 1)
	assert.Len(t, f.publisher.types(), 1)

	attendees, err := f.svc.ListAttendees(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Len(t, attendees, 1)
}

func TestEventService_JoinEventAfterOnboardingGoesToDashboard(t *testing.T) {
	f := newEventFixture()
	f.events.add(&domain.Event{Name: "Launch", Code: "SPARK1", Status: domain.EventActive})
	session := domain.Session{UserID: newID()}
	_ = f.answers.UpsertEventAnswer(context.Background(), &domain.EventAnswer{
		UserID: session.UserID, EventID: onboardingEventID, Question1: "a", Question2: "b",
	})

	res, err := f.svc.JoinEvent(context.Background(), session, "SPARK1")
	require.NoError(t, err)
	assert.Equal(t, domain.RouteDashboard, res.RedirectTo)
}

func TestEventService_JoinEventOnlyActive(t *testing.T) {
	f := newEventFixture()
	f.events.add(&domain.Event{Name: "Old", Code: "OVER01", Status: domain.EventOver})
	f.events.add(&domain.Event{Name: "Gone", Code: "GONE01", Status: domain.EventDeleted})
	session := domain.Session{UserID: newID()}

	for _, code := range []string{"OVER01", "GONE01", "NOPE99"} {
		_, err := f.svc.JoinEvent(context.Background(), session, code)
		assert.ErrorIs(t, err, domain.ErrEventNotFound, code)
	}
	assert.Empty(t, f.external.computeCalls)
}

func TestEventService_JoinEventSurvivesComputeFailure(t *testing.T) {
	f := newEventFixture()
	f.events.add(&domain.Event{Name: "Launch", Code: "SPARK1", Status: domain.EventActive})
	session := domain.Session{UserID: newID()}
	f.external.computeErrFor[session.UserID] = true

	res, err := f.svc.JoinEvent(context.Background(), session, "SPARK1")
	require.NoError(t, err)
	assert.False(t, res.AlreadyJoined)
}

func TestEventService_EndAndDeleteEvent(t *testing.T) {
	f := newEventFixture()
	event := f.events.add(&domain.Event{Name: "Launch", Code: "SPARK1", Status: domain.EventActive})

	require.NoError(t, f.svc.EndEvent(context.Background(), admin, event.ID))
	got, err := f.svc.GetEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventOver, got.Status)

	require.NoError(t, f.svc.DeleteEvent(context.Background(), admin, event.ID))
	_, err = f.svc.GetEvent(context.Background(), event.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	events, err := f.svc.ListEvents(context.Background(), admin)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventService_StatusChangesRequireAdminAndValidID(t *testing.T) {
	f := newEventFixture()

	assert.ErrorIs(t, f.svc.EndEvent(context.Background(), domain.Session{UserID: newID()}, newID()), domain.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteEvent(context.Background(), admin, "abc"), domain.ErrInvalidID)
	assert.ErrorIs(t, f.svc.EndEvent(context.Background(), admin, newID()), domain.ErrEventNotFound)
}

func TestEventService_ActiveEventsForUser(t *testing.T) {
	f := newEventFixture()
	active := f.events.add(&domain.Event{Name: "Launch", Code: "SPARK1", Status: domain.EventActive})
	over := f.events.add(&domain.Event{Name: "Old", Code: "OVER01", Status: domain.EventActive})
	session := domain.Session{UserID: newID()}

	_, err := f.svc.JoinEvent(context.Background(), session, "SPARK1")
	require.NoError(t, err)
	_, err = f.svc.JoinEvent(context.Background(), session, "OVER01")
	require.NoError(t, err)
	require.NoError(t, f.svc.EndEvent(context.Background(), admin, over.ID))

	events, err := f.svc.ActiveEventsForUser(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, active.ID, events[0].ID)
}
