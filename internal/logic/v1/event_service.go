package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	eventCodeLength   = 6
	eventCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// generated codes are retried this many times on collision
	eventCodeAttempts = 3
)

// EventService manages events and attendance
type EventService struct {
	events    domain.EventRepository
	answers   domain.EventAnswerRepository
	external  domain.ExternalAPI
	publisher domain.EventPublisher
	// onboardingEventID decides where a fresh join continues
	onboardingEventID string
	logger            *zap.Logger
}

func NewEventService(events domain.EventRepository, answers domain.EventAnswerRepository, external domain.ExternalAPI, publisher domain.EventPublisher, onboardingEventID string, logger *zap.Logger) *EventService {
	return &EventService{
		events:            events,
		answers:           answers,
		external:          external,
		publisher:         publisher,
		onboardingEventID: onboardingEventID,
		logger:            logger,
	}
}

func requireAdmin(session domain.Session) error {
	if !session.IsAdmin() {
		return fmt.Errorf("user %q is not an admin: %w", session.UserID, domain.ErrForbidden)
	}
	return nil
}

// normalizeEventCode makes codes typed by attendees comparable to stored ones
func normalizeEventCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateEventCode() string {
	id := uuid.New()
	code := make([]byte, eventCodeLength)
	for i := range code {
		code[i] = eventCodeAlphabet[int(id[i])%len(eventCodeAlphabet)]
	}
	return string(code)
}

// CreateEvent creates an active event and attaches its QR code.
// A QR failure is logged and the event is still returned.
func (s *EventService) CreateEvent(ctx context.Context, session domain.Session, req domain.CreateEventRequest) (*domain.Event, error) {
	ctx, span := middleware.StartSpan(ctx, "event.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
	))
	defer span.End()

	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Status:      domain.EventActive,
		CreatedBy:   session.UserID,
	}

	custom := normalizeEventCode(req.Code)
	for attempt := 1; ; attempt++ {
		event.Code = custom
		if event.Code == "" {
			event.Code = generateEventCode()
		}
		err := s.events.CreateEvent(ctx, event)
		if err == nil {
			break
		}
		if custom == "" && errors.Is(err, domain.ErrEventCodeTaken) && attempt < eventCodeAttempts {
			continue
		}
		span.RecordError(err)
		return nil, fmt.Errorf("create event %q: %w", event.Name, err)
	}

	span.SetAttributes(attribute.String("event.id", event.ID), attribute.String("event.code", event.Code))

	qrURL, err := s.external.GenerateEventQR(ctx, event.ID)
	if err != nil {
		externalCallFailures.WithLabelValues("event_qr").Inc()
		s.logger.Warn("QR generation failed, event created without QR code",
			zap.String("event_id", event.ID), zap.Error(err))
		return event, nil
	}
	if err := s.events.SetEventQRURL(ctx, event.ID, qrURL); err != nil {
		s.logger.Warn("Failed to store QR url", zap.String("event_id", event.ID), zap.Error(err))
		return event, nil
	}
	event.QRURL = &qrURL
	return event, nil
}

// ListEvents returns all events that are not deleted
func (s *EventService) ListEvents(ctx context.Context, session domain.Session) ([]domain.Event, error) {
	ctx, span := middleware.StartSpan(ctx, "event.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// EndEvent marks the event as over
func (s *EventService) EndEvent(ctx context.Context, session domain.Session, eventID string) error {
	return s.setStatus(ctx, session, eventID, domain.EventOver)
}

// DeleteEvent soft-deletes the event
func (s *EventService) DeleteEvent(ctx context.Context, session domain.Session, eventID string) error {
	return s.setStatus(ctx, session, eventID, domain.EventDeleted)
}

func (s *EventService) setStatus(ctx context.Context, session domain.Session, eventID string, status domain.EventStatus) error {
	ctx, span := middleware.StartSpan(ctx, "event.set_status", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("event.id", eventID),
		attribute.String("event.status", string(status)),
	))
	defer span.End()

	if err := requireAdmin(session); err != nil {
		return err
	}
	if err := validateID("event", eventID); err != nil {
		return err
	}
	if err := s.events.UpdateEventStatus(ctx, eventID, status); err != nil {
		return fmt.Errorf("set event %q status %s: %w", eventID, status, err)
	}
	return nil
}

// JoinEvent adds the session user to the active event with the given code.
// Joining twice is not an error.
func (s *EventService) JoinEvent(ctx context.Context, session domain.Session, code string) (*domain.JoinResult, error) {
	code = normalizeEventCode(code)
	ctx, span := middleware.StartSpan(ctx, "event.join", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
		attribute.String("event.code", code),
	))
	defer span.End()

	event, err := s.events.GetEventByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find event by code %q: %w", code, err)
	}
	if event.Status != domain.EventActive {
		span.SetAttributes(attribute.String("event.status", string(event.Status)))
		return nil, fmt.Errorf("event %q is %s: %w", event.ID, event.Status, domain.ErrEventNotFound)
	}

	added, err := s.events.AddAttendee(ctx, event.ID, session.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("join event %q: %w", event.ID, err)
	}
	span.SetAttributes(attribute.Bool("event.already_joined", !added))

	if added {
		if _, err := s.external.ComputeMatches(ctx, session.UserID, event.ID); err != nil {
			externalCallFailures.WithLabelValues("compute_matches").Inc()
			s.logger.Warn("Match computation after join failed",
				zap.String("user_id", session.UserID), zap.String("event_id", event.ID), zap.Error(err))
		}

		de := domain.NewDomainEvent(domain.EventJoined, session.UserID)
		de.EventID = event.ID
		if err := s.publisher.Publish(ctx, de); err != nil {
			s.logger.Warn("Failed to publish join event", zap.String("user_id", session.UserID), zap.Error(err))
		}
	}

	return &domain.JoinResult{
		Event:         event,
		AlreadyJoined: !added,
		RedirectTo:    s.nextRouteAfterJoin(ctx, session.UserID),
	}, nil
}

// nextRouteAfterJoin sends users who have not answered the onboarding survey
// to it, and everyone else to the dashboard.
func (s *EventService) nextRouteAfterJoin(ctx context.Context, userID string) string {
	answer, err := s.answers.FindEventAnswer(ctx, userID, s.onboardingEventID)
	if err != nil || answer == nil {
		return domain.RouteWhyJoin
	}
	return domain.RouteDashboard
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, span := middleware.StartSpan(ctx, "event.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("event.id", eventID),
	))
	defer span.End()

	if err := validateID("event", eventID); err != nil {
		return nil, err
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event %q: %w", eventID, err)
	}
	if event.Status == domain.EventDeleted {
		return nil, fmt.Errorf("event %q is deleted: %w", eventID, domain.ErrEventNotFound)
	}
	return event, nil
}

func (s *EventService) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	ctx, span := middleware.StartSpan(ctx, "event.attendees", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("event.id", eventID),
	))
	defer span.End()

	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	attendees, err := s.events.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees of %q: %w", eventID, err)
	}
	span.SetAttributes(attribute.Int("event.attendees", len(attendees)))
	return attendees, nil
}

// ActiveEventsForUser returns the active events the session user joined, most recent first
func (s *EventService) ActiveEventsForUser(ctx context.Context, session domain.Session) ([]domain.Event, error) {
	ctx, span := middleware.StartSpan(ctx, "event.active_for_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
	))
	defer span.End()

	events, err := s.events.ListActiveEventsForUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list active events for %q: %w", session.UserID, err)
	}
	return events, nil
}
