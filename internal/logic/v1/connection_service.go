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

// ConnectionService manages connection requests between attendees
type ConnectionService struct {
	connections domain.ConnectionRepository
	profiles    domain.ProfileRepository
	publisher   domain.EventPublisher
	logger      *zap.Logger
}

func NewConnectionService(connections domain.ConnectionRepository, profiles domain.ProfileRepository, publisher domain.EventPublisher, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		profiles:    profiles,
		publisher:   publisher,
		logger:      logger,
	}
}

// RequestConnection sends a pending request from the session user to receiverID
func (s *ConnectionService) RequestConnection(ctx context.Context, session domain.Session, receiverID string) (*domain.Connection, error) {
	ctx, span := middleware.StartSpan(ctx, "connection.request", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
		attribute.String("receiver.id", receiverID),
	))
	defer span.End()

	if err := validateID("user", receiverID); err != nil {
		return nil, err
	}
	if receiverID == session.UserID {
		return nil, domain.ErrConnectToSelf
	}
	if _, err := s.profiles.GetProfile(ctx, receiverID); err != nil {
		return nil, fmt.Errorf("load receiver %q: %w", receiverID, err)
	}

	existing, err := s.connections.FindBetween(ctx, session.UserID, receiverID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing connection: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("connection %q is %s: %w", existing.ID, existing.Status, domain.ErrConnectionExists)
	}

	conn := &domain.Connection{
		SenderID:   session.UserID,
		ReceiverID: receiverID,
		Status:     domain.ConnectionPending,
	}
	if err := s.connections.CreateConnection(ctx, conn); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create connection: %w", err)
	}

	event := domain.NewDomainEvent(domain.EventConnectionRequested, session.UserID)
	event.Attributes = map[string]string{"connection_id": conn.ID, "receiver_id": receiverID}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish connection event", zap.String("connection_id", conn.ID), zap.Error(err))
	}

	return conn, nil
}

// AcceptConnection accepts a pending request addressed to the session user
func (s *ConnectionService) AcceptConnection(ctx context.Context, session domain.Session, id string) (*domain.Connection, error) {
	return s.answer(ctx, session, id, domain.ConnectionAccepted)
}

// RejectConnection rejects a pending request addressed to the session user
func (s *ConnectionService) RejectConnection(ctx context.Context, session domain.Session, id string) (*domain.Connection, error) {
	return s.answer(ctx, session, id, domain.ConnectionRejected)
}

func (s *ConnectionService) answer(ctx context.Context, session domain.Session, id string, status domain.ConnectionStatus) (*domain.Connection, error) {
	ctx, span := middleware.StartSpan(ctx, "connection.answer", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
		attribute.String("connection.id", id),
		attribute.String("connection.status", string(status)),
	))
	defer span.End()

	if err := validateID("connection", id); err != nil {
		return nil, err
	}

	conn, err := s.connections.GetConnection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get connection %q: %w", id, err)
	}
	if !conn.Involves(session.UserID) {
		// Do not reveal connections between other users.
		return nil, fmt.Errorf("get connection %q: %w", id, domain.ErrConnectionNotFound)
	}
	if conn.ReceiverID != session.UserID {
		return nil, fmt.Errorf("only the receiver may answer connection %q: %w", id, domain.ErrForbidden)
	}
	if conn.Status != domain.ConnectionPending {
		return nil, fmt.Errorf("connection %q is already %s: %w", id, conn.Status, domain.ErrConnectionExists)
	}

	if err := s.connections.UpdateConnectionStatus(ctx, id, status); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update connection %q: %w", id, err)
	}
	conn.Status = status

	event := domain.NewDomainEvent(domain.EventConnectionStatusChange, session.UserID)
	event.Attributes = map[string]string{"connection_id": id, "status": string(status)}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish connection event", zap.String("connection_id", id), zap.Error(err))
	}

	return conn, nil
}

// ListConnections groups the session user's connections into incoming and
// outgoing pending requests and accepted connections. Rejected ones are omitted.
func (s *ConnectionService) ListConnections(ctx context.Context, session domain.Session) (*domain.ConnectionList, error) {
	ctx, span := middleware.StartSpan(ctx, "connection.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
	))
	defer span.End()

	conns, err := s.connections.ListConnectionsForUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list connections for %q: %w", session.UserID, err)
	}
	return groupConnections(session.UserID, conns), nil
}

func groupConnections(userID string, conns []domain.Connection) *domain.ConnectionList {
	list := &domain.ConnectionList{
		Incoming: []domain.Connection{},
		Outgoing: []domain.Connection{},
		Accepted: []domain.Connection{},
	}
	for _, c := range conns {
		switch {
		case c.Status == domain.ConnectionAccepted:
			list.Accepted = append(list.Accepted, c)
		case c.Status != domain.ConnectionPending:
		case c.ReceiverID == userID:
			list.Incoming = append(list.Incoming, c)
		case c.SenderID == userID:
			list.Outgoing = append(list.Outgoing, c)
		}
	}
	return list
}
