package services

import (
	"context"
	"fmt"
	"time"

	"gotransit/internal/models"
	"gotransit/pkg/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JourneyStore keeps planned journeys for the lifetime of a planning session
// so selection and booking can retrieve them by id. Entries expire with the
// session; an expired plan must be re-requested.
type JourneyStore interface {
	SaveJourney(ctx context.Context, journey *models.Journey) error
	GetJourney(ctx context.Context, id primitive.ObjectID) (*models.Journey, error)
}

type redisJourneyStore struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

func NewJourneyStore(redisCache *cache.RedisCache, ttl time.Duration) JourneyStore {
	return &redisJourneyStore{
		cache: redisCache,
		ttl:   ttl,
	}
}

func (s *redisJourneyStore) SaveJourney(ctx context.Context, journey *models.Journey) error {
	if err := s.cache.Set(ctx, journeyKey(journey.ID), journey, s.ttl); err != nil {
		return fmt.Errorf("failed to store journey %s: %w", journey.ID.Hex(), err)
	}
	return nil
}

func (s *redisJourneyStore) GetJourney(ctx context.Context, id primitive.ObjectID) (*models.Journey, error) {
	var journey models.Journey
	err := s.cache.Get(ctx, journeyKey(id), &journey)
	if err != nil {
		if cache.IsMiss(err) {
			return nil, fmt.Errorf("journey %s not found or planning session expired", id.Hex())
		}
		return nil, fmt.Errorf("failed to load journey %s: %w", id.Hex(), err)
	}

	return &journey, nil
}

func journeyKey(id primitive.ObjectID) string {
	return "plan:journey:" + id.Hex()
}
