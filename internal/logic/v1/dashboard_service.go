package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// dashboardMatchLimit is how many matches the dashboard shows
const dashboardMatchLimit = 3

// DashboardService assembles the signed-in landing view
type DashboardService struct {
	profiles    domain.ProfileRepository
	events      domain.EventRepository
	matches     domain.MatchRepository
	connections domain.ConnectionRepository
}

func NewDashboardService(profiles domain.ProfileRepository, events domain.EventRepository, matches domain.MatchRepository, connections domain.ConnectionRepository) *DashboardService {
	return &DashboardService{
		profiles:    profiles,
		events:      events,
		matches:     matches,
		connections: connections,
	}
}

// Dashboard reads the profile, active events and connections concurrently,
// then the matches of the most recently joined active event.
func (s *DashboardService) Dashboard(ctx context.Context, session domain.Session) (*domain.Dashboard, error) {
	ctx, span := middleware.StartSpan(ctx, "dashboard.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", session.UserID),
	))
	defer span.End()

	var (
		profile *domain.Profile
		events  []domain.Event
		conns   []domain.Connection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.GetProfile(gctx, session.UserID)
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return fmt.Errorf("load profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		var err error
		if events, err = s.events.ListActiveEventsForUser(gctx, session.UserID); err != nil {
			return fmt.Errorf("load active events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if conns, err = s.connections.ListConnectionsForUser(gctx, session.UserID); err != nil {
			return fmt.Errorf("load connections: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dashboard for %q: %w", session.UserID, err)
	}

	dash := &domain.Dashboard{
		Profile:            profile,
		ActiveEvents:       events,
		Matches:            []domain.Match{},
		PendingConnections: groupConnections(session.UserID, conns).Incoming,
	}
	if dash.ActiveEvents == nil {
		dash.ActiveEvents = []domain.Event{}
	}

	if len(events) > 0 {
		current := events[0]
		dash.CurrentEvent = &current
		matches, err := s.matches.ListMatches(ctx, session.UserID, current.ID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("dashboard matches for %q: %w", session.UserID, err)
		}
		if len(matches) > dashboardMatchLimit {
			matches = matches[:dashboardMatchLimit]
		}
		dash.Matches = matches
	}

	return dash, nil
}
