package v1

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/google/uuid"
)

var errDBDown = errors.New("connection refused")

func strPtr(s string) *string { return &s }

func newID() string { return uuid.NewString() }

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	getErr   error
	upserts  int
}

func newFakeProfiles(profiles ...*domain.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: map[string]*domain.Profile{}}
	for _, p := range profiles {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

// UpdateProfile holds the lock across read, fn and write like the row lock
// taken by the PostgreSQL repository.
func (f *fakeProfiles) UpdateProfile(_ context.Context, userID string, fn func(*domain.Profile)) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p := &domain.Profile{ID: userID, Hobbies: []string{}, CreatedAt: time.Now()}
	if existing, ok := f.profiles[userID]; ok {
		cp := *existing
		p = &cp
	}
	fn(p)
	p.UpdatedAt = time.Now()
	f.upserts++
	stored := *p
	f.profiles[userID] = &stored
	return p, nil
}

type answerKey struct{ user, event string }

type fakeAnswers struct {
	mu      sync.Mutex
	answers map[answerKey]*domain.EventAnswer
	findErr error
}

func newFakeAnswers() *fakeAnswers {
	return &fakeAnswers{answers: map[answerKey]*domain.EventAnswer{}}
}

func (f *fakeAnswers) FindEventAnswer(_ context.Context, userID, eventID string) (*domain.EventAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.answers[answerKey{userID, eventID}], nil
}

func (f *fakeAnswers) UpsertEventAnswer(_ context.Context, a *domain.EventAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.answers[answerKey{a.UserID, a.EventID}] = &cp
	return nil
}

type fakeEvents struct {
	mu        sync.Mutex
	events    map[string]*domain.Event
	attendees map[string][]string
	// takenCodes makes CreateEvent fail with ErrEventCodeTaken for these codes
	takenCodes map[string]bool
	createErr  error
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		events:     map[string]*domain.Event{},
		attendees:  map[string][]string{},
		takenCodes: map[string]bool{},
	}
}

func (f *fakeEvents) add(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	f.events[e.ID] = e
	return e
}

func (f *fakeEvents) CreateEvent(_ context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.takenCodes[e.Code] {
		return fmt.Errorf("insert event %q: %w", e.Code, domain.ErrEventCodeTaken)
	}
	for _, existing := range f.events {
		if existing.Code == e.Code {
			return fmt.Errorf("insert event %q: %w", e.Code, domain.ErrEventCodeTaken)
		}
	}
	e.ID = newID()
	e.CreatedAt = time.Now()
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEvents) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) GetEventByCode(_ context.Context, code string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.Code == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (f *fakeEvents) ListEvents(_ context.Context) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Event{}
	for _, e := range f.events {
		if e.Status != domain.EventDeleted {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEvents) UpdateEventStatus(_ context.Context, id string, status domain.EventStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeEvents) SetEventQRURL(_ context.Context, id, qrURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	e.QRURL = &qrURL
	return nil
}

func (f *fakeEvents) AddAttendee(_ context.Context, eventID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.attendees[eventID] {
		if u == userID {
			return false, nil
		}
	}
	f.attendees[eventID] = append(f.attendees[eventID], userID)
	return true, nil
}

func (f *fakeEvents) ListAttendees(_ context.Context, eventID string) ([]domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Attendee{}
	for _, u := range f.attendees[eventID] {
		out = append(out, domain.Attendee{EventID: eventID, UserID: u})
	}
	return out, nil
}

func (f *fakeEvents) ListActiveEventsForUser(_ context.Context, userID string) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Event{}
	for id, users := range f.attendees {
		for _, u := range users {
			if u == userID && f.events[id] != nil && f.events[id].Status == domain.EventActive {
				out = append(out, *f.events[id])
			}
		}
	}
	return out, nil
}

type fakeConnections struct {
	mu    sync.Mutex
	conns map[string]*domain.Connection
}

func newFakeConnections() *fakeConnections {
	return &fakeConnections{conns: map[string]*domain.Connection{}}
}

// CreateConnection enforces the same unordered-pair uniqueness as
// connections_active_pair_idx.
func (f *fakeConnections) CreateConnection(_ context.Context, c *domain.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.conns {
		if existing.Status != domain.ConnectionRejected &&
			existing.Involves(c.SenderID) && existing.Involves(c.ReceiverID) {
			return fmt.Errorf("insert connection: %w", domain.ErrConnectionExists)
		}
	}
	c.ID = newID()
	c.CreatedAt = time.Now()
	cp := *c
	f.conns[c.ID] = &cp
	return nil
}

func (f *fakeConnections) GetConnection(_ context.Context, id string) (*domain.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conns[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConnections) FindBetween(_ context.Context, a, b string) (*domain.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		if c.Status == domain.ConnectionRejected {
			continue
		}
		if (c.SenderID == a && c.ReceiverID == b) || (c.SenderID == b && c.ReceiverID == a) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeConnections) UpdateConnectionStatus(_ context.Context, id string, status domain.ConnectionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conns[id]
	if !ok {
		return domain.ErrConnectionNotFound
	}
	if c.Status != domain.ConnectionPending {
		return domain.ErrConnectionExists
	}
	c.Status = status
	return nil
}

func (f *fakeConnections) ListConnectionsForUser(_ context.Context, userID string) ([]domain.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Connection{}
	for _, c := range f.conns {
		if c.Involves(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeMatches struct {
	mu      sync.Mutex
	matches map[string]*domain.Match
	listErr error
}

func newFakeMatches(ms ...*domain.Match) *fakeMatches {
	f := &fakeMatches{matches: map[string]*domain.Match{}}
	for _, m := range ms {
		f.matches[m.ID] = m
	}
	return f
}

func (f *fakeMatches) ListMatches(_ context.Context, userID, eventID string) ([]domain.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.Match{}
	for _, m := range f.matches {
		if m.UserID == userID && m.EventID == eventID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMatches) GetMatch(_ context.Context, id string) (*domain.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

type computeCall struct{ user, event string }

type fakeExternal struct {
	mu            sync.Mutex
	embeddings    []string
	computeCalls  []computeCall
	computeErrFor map[string]bool
	qrErr         error
	embeddingErr  error
}

func newFakeExternal() *fakeExternal {
	return &fakeExternal{computeErrFor: map[string]bool{}}
}

func (f *fakeExternal) GenerateEmbedding(_ context.Context, userID, hobbies, about string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeddings = append(f.embeddings, userID)
	if f.embeddingErr != nil {
		return nil, f.embeddingErr
	}
	return []float64{0.001}, nil
}

func (f *fakeExternal) ComputeMatches(_ context.Context, userID, eventID string) ([]domain.ComputedMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.computeCalls = append(f.computeCalls, computeCall{userID, eventID})
	if f.computeErrFor[userID] {
		return nil, fmt.Errorf("%w: 400 - User embedding missing", domain.ErrExternalService)
	}
	return []domain.ComputedMatch{{MatchUserID: "user_b", Similarity: 0.9}}, nil
}

func (f *fakeExternal) GenerateEventQR(_ context.Context, eventID string) (string, error) {
	if f.qrErr != nil {
		return "", f.qrErr
	}
	return "https://example.com/qr/" + eventID + ".png", nil
}

func (f *fakeExternal) GenerateRecap(_ context.Context, eventID, userID string) (string, error) {
	return "https://example.com/recaps/" + eventID + "/" + userID + ".png", nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.DomainEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, e domain.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) types() []domain.DomainEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.DomainEventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
}
