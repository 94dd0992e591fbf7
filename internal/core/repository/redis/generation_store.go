package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	generationKeyPrefix = "onboarding:gen:"
	epochKeyPrefix      = "onboarding:epoch:"
)

// GenerationStore keeps onboarding resolution generations in Redis so that
// "latest request wins" holds across replicas.
type GenerationStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewGenerationStore creates a store whose keys expire ttl after the last
// resolution request or write for the user.
func NewGenerationStore(client *goredis.Client, ttl time.Duration) *GenerationStore {
	return &GenerationStore{client: client, ttl: ttl}
}

func generationKey(userID string) string {
	return generationKeyPrefix + userID
}

func epochKey(userID string) string {
	return epochKeyPrefix + userID
}

// Next increments and returns the user's generation.
func (s *GenerationStore) Next(ctx context.Context, userID string) (uint64, error) {
	gen, err := s.incr(ctx, generationKey(userID))
	if err != nil {
		return 0, fmt.Errorf("incr generation for %q: %w", userID, err)
	}
	return gen, nil
}

// Current returns the user's latest generation, or 0 if none was issued.
func (s *GenerationStore) Current(ctx context.Context, userID string) (uint64, error) {
	gen, err := s.get(ctx, generationKey(userID))
	if err != nil {
		return 0, fmt.Errorf("get generation for %q: %w", userID, err)
	}
	return gen, nil
}

// Epoch returns the user's write epoch, or 0 before the first write.
func (s *GenerationStore) Epoch(ctx context.Context, userID string) (uint64, error) {
	epoch, err := s.get(ctx, epochKey(userID))
	if err != nil {
		return 0, fmt.Errorf("get epoch for %q: %w", userID, err)
	}
	return epoch, nil
}

// BumpEpoch records a write to the user's onboarding inputs.
func (s *GenerationStore) BumpEpoch(ctx context.Context, userID string) error {
	if _, err := s.incr(ctx, epochKey(userID)); err != nil {
		return fmt.Errorf("incr epoch for %q: %w", userID, err)
	}
	return nil
}

func (s *GenerationStore) incr(ctx context.Context, key string) (uint64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

func (s *GenerationStore) get(ctx context.Context, key string) (uint64, error) {
	v, err := s.client.Get(ctx, key).Uint64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}
