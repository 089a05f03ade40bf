package services

import (
	"context"
	"fmt"
	"time"

	"gotransit/internal/config"
	"gotransit/internal/models"
	"gotransit/internal/repositories/interfaces"
	"gotransit/pkg/cache"
	"gotransit/pkg/logger"
)

const corridorCacheKey = "transit:corridors:active"
const corridorCacheTTL = 5 * time.Minute

// DecomposerService splits an origin to destination request into first-mile,
// main-transit and last-mile legs when a fixed-route corridor serves both
// ends, or a single direct leg otherwise.
type DecomposerService interface {
	Decompose(ctx context.Context, origin, destination models.Point) ([]models.Leg, error)
}

type decomposerService struct {
	corridorRepo interfaces.CorridorRepository
	cache        *cache.RedisCache
	config       *config.PlannerConfig
	logger       *logger.Logger
}

func NewDecomposerService(
	corridorRepo interfaces.CorridorRepository,
	redisCache *cache.RedisCache,
	cfg *config.PlannerConfig,
	log *logger.Logger,
) DecomposerService {
	return &decomposerService{
		corridorRepo: corridorRepo,
		cache:        redisCache,
		config:       cfg,
		logger:       log,
	}
}

func (s *decomposerService) Decompose(ctx context.Context, origin, destination models.Point) ([]models.Leg, error) {
	if origin.DistanceKM(destination) <= s.config.CoincidenceToleranceKM {
		return nil, &models.NoViableLegError{Origin: origin, Destination: destination}
	}

	corridors, err := s.activeCorridors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transit corridors: %w", err)
	}

	entry, exit, found := s.bestCorridorStops(corridors, origin, destination)
	if !found {
		return []models.Leg{
			{Role: models.LegRoleMain, From: origin, To: destination},
		}, nil
	}

	entryPoint := models.Point{Latitude: entry.Location.Latitude, Longitude: entry.Location.Longitude, Name: entry.Name}
	exitPoint := models.Point{Latitude: exit.Location.Latitude, Longitude: exit.Location.Longitude, Name: exit.Name}

	return []models.Leg{
		{Role: models.LegRoleFirstMile, From: origin, To: entryPoint},
		{Role: models.LegRoleMain, From: entryPoint, To: exitPoint},
		{Role: models.LegRoleLastMile, From: exitPoint, To: destination},
	}, nil
}

// bestCorridorStops scans the active corridors for one whose nearest stops
// lie within walking radius of both endpoints, preferring the corridor with
// the least combined access distance. Entry and exit must be distinct stops.
func (s *decomposerService) bestCorridorStops(corridors []*models.TransitCorridor, origin, destination models.Point) (models.TransitStop, models.TransitStop, bool) {
	var bestEntry, bestExit models.TransitStop
	bestAccess := -1.0

	for _, corridor := range corridors {
		entry, entryDist := corridor.NearestStop(origin)
		exit, exitDist := corridor.NearestStop(destination)

		if entryDist > s.config.WalkingRadiusKM || exitDist > s.config.WalkingRadiusKM {
			continue
		}
		if entry.Code == exit.Code {
			continue
		}

		access := entryDist + exitDist
		if bestAccess < 0 || access < bestAccess {
			bestEntry = entry
			bestExit = exit
			bestAccess = access
		}
	}

	return bestEntry, bestExit, bestAccess >= 0
}

func (s *decomposerService) activeCorridors(ctx context.Context) ([]*models.TransitCorridor, error) {
	if s.cache != nil {
		var cached []*models.TransitCorridor
		if err := s.cache.Get(ctx, corridorCacheKey, &cached); err == nil {
			return cached, nil
		} else if !cache.IsMiss(err) {
			s.logger.WithError(err).Warn("Corridor cache read failed, falling back to database")
		}
	}

	corridors, err := s.corridorRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, corridorCacheKey, corridors, corridorCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Corridor cache write failed")
		}
	}

	return corridors, nil
}
