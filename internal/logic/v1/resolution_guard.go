package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/duynhne/connectspark-service/internal/core/domain"
	"github.com/duynhne/connectspark-service/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StatusResolver computes a user's onboarding status
type StatusResolver interface {
	Resolve(ctx context.Context, userID string) domain.OnboardingResult
}

// ResolutionGuard serializes onboarding resolutions per user.
//
// Concurrent requests for the same user share one evaluation. Every request
// takes a new generation from the store; starting a generation releases the
// waiter of the previous one on this replica, and a finished resolution is
// only returned when its generation is still the user's latest. Older
// requests get domain.ErrResolutionSuperseded and must not navigate.
type ResolutionGuard struct {
	resolver StatusResolver
	store    domain.GenerationStore
	timeout  time.Duration
	logger   *zap.Logger

	group singleflight.Group

	mu      sync.Mutex
	waiters map[string]waiter
}

type waiter struct {
	gen    uint64
	cancel context.CancelCauseFunc
}

// NewResolutionGuard creates a guard whose shared evaluations are bounded by timeout
func NewResolutionGuard(resolver StatusResolver, store domain.GenerationStore, timeout time.Duration, logger *zap.Logger) *ResolutionGuard {
	return &ResolutionGuard{
		resolver: resolver,
		store:    store,
		timeout:  timeout,
		logger:   logger,
		waiters:  make(map[string]waiter),
	}
}

// Resolve starts a new generation for userID and waits for its result.
func (g *ResolutionGuard) Resolve(ctx context.Context, userID string) (domain.Resolution, error) {
	gen, err := g.store.Next(ctx, userID)
	tracked := err == nil
	if !tracked {
		// Without a generation the result is returned as-is.
		g.logger.Warn("Generation store unavailable, resolving without ordering",
			zap.String("user_id", userID), zap.Error(err))
	}

	waitCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if tracked {
		g.register(userID, gen, cancel)
		defer g.release(userID, gen)
	}

	ch := g.group.DoChan(g.flightKey(ctx, userID), func() (any, error) {
		evalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()
		return g.resolver.Resolve(evalCtx, userID), nil
	})

	select {
	case <-waitCtx.Done():
		if cause := context.Cause(waitCtx); errors.Is(cause, domain.ErrResolutionSuperseded) {
			return g.superseded(ctx, userID, gen)
		}
		return domain.Resolution{}, fmt.Errorf("resolve onboarding for %q: %w", userID, waitCtx.Err())
	case res := <-ch:
		result, _ := res.Val.(domain.OnboardingResult)
		if tracked {
			latest, err := g.store.Current(ctx, userID)
			switch {
			case err != nil:
				g.logger.Warn("Generation check failed, returning result unchecked",
					zap.String("user_id", userID), zap.Uint64("generation", gen), zap.Error(err))
			case latest != gen:
				return g.superseded(ctx, userID, gen)
			}
		}
		return domain.Resolution{OnboardingResult: result, Generation: gen}, nil
	}
}

// Invalidate makes the next resolution for userID start a fresh evaluation
// instead of joining one that began before a write. The local evaluation is
// forgotten and the shared epoch is bumped for the other replicas.
func (g *ResolutionGuard) Invalidate(ctx context.Context, userID string) {
	g.group.Forget(g.flightKey(ctx, userID))
	if err := g.store.BumpEpoch(ctx, userID); err != nil {
		g.logger.Warn("Epoch bump failed, other replicas may reuse a stale evaluation",
			zap.String("user_id", userID), zap.Error(err))
	}
}

// flightKey scopes shared evaluations to the user's write epoch. Epoch 0 is
// used when the store is unavailable.
func (g *ResolutionGuard) flightKey(ctx context.Context, userID string) string {
	epoch, err := g.store.Epoch(ctx, userID)
	if err != nil {
		g.logger.Warn("Epoch lookup failed", zap.String("user_id", userID), zap.Error(err))
	}
	return userID + "@" + strconv.FormatUint(epoch, 10)
}

// register records gen as the user's current waiter, releasing an older one.
// A waiter that arrives after a newer generation is released immediately.
func (g *ResolutionGuard) register(userID string, gen uint64, cancel context.CancelCauseFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if prev, ok := g.waiters[userID]; ok {
		if prev.gen > gen {
			cancel(domain.ErrResolutionSuperseded)
			return
		}
		prev.cancel(domain.ErrResolutionSuperseded)
	}
	g.waiters[userID] = waiter{gen: gen, cancel: cancel}
}

func (g *ResolutionGuard) release(userID string, gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if w, ok := g.waiters[userID]; ok && w.gen == gen {
		delete(g.waiters, userID)
	}
}

func (g *ResolutionGuard) superseded(ctx context.Context, userID string, gen uint64) (domain.Resolution, error) {
	onboardingSuperseded.Inc()
	middleware.AddSpanEvent(ctx, "onboarding.superseded", attribute.Int64("onboarding.generation", int64(gen)))
	g.logger.Debug("Onboarding resolution superseded",
		zap.String("user_id", userID), zap.Uint64("generation", gen))
	return domain.Resolution{Generation: gen}, fmt.Errorf("resolve onboarding for %q generation %d: %w",
		userID, gen, domain.ErrResolutionSuperseded)
}
