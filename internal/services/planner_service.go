package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gotransit/internal/config"
	"gotransit/internal/models"
	"gotransit/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlannerService is the planning pipeline: decompose the request into legs,
// aggregate provider quotes, compose candidate itineraries and rank them.
// The first-ranked journey is the default selection.
type PlannerService interface {
	PlanJourney(ctx context.Context, request *models.PlanRequest) (*models.PlanResult, error)
	GetJourney(ctx context.Context, journeyID primitive.ObjectID) (*models.Journey, error)
}

type plannerService struct {
	decomposer DecomposerService
	quotes     QuoteService
	store      JourneyStore
	config     *config.PlannerConfig
	logger     *logger.Logger
}

func NewPlannerService(
	decomposer DecomposerService,
	quotes QuoteService,
	store JourneyStore,
	cfg *config.PlannerConfig,
	log *logger.Logger,
) PlannerService {
	return &plannerService{
		decomposer: decomposer,
		quotes:     quotes,
		store:      store,
		config:     cfg,
		logger:     log,
	}
}

func (s *plannerService) PlanJourney(ctx context.Context, request *models.PlanRequest) (*models.PlanResult, error) {
	legs, err := s.decomposer.Decompose(ctx, request.Origin, request.Destination)
	if err != nil {
		return nil, err
	}

	quotesPerLeg, err := s.quotes.CollectQuotes(ctx, legs, request.Window)
	if err != nil {
		return nil, err
	}

	// Providers must hand back the decomposed leg boundaries exactly; the
	// composer never snaps or interpolates endpoints.
	matched := make([][]models.Segment, len(legs))
	for i, legQuotes := range quotesPerLeg {
		for _, segment := range legQuotes {
			if segment.From.SamePlace(legs[i].From) && segment.To.SamePlace(legs[i].To) {
				matched[i] = append(matched[i], segment)
			}
		}
		if len(matched[i]) == 0 {
			return nil, &models.NoQuotesAvailableError{Leg: legs[i]}
		}
	}

	limited := s.limitQuoteSets(matched)
	candidates := s.compose(limited)
	s.rank(candidates)

	if len(candidates) > s.config.MaxItineraries {
		candidates = candidates[:s.config.MaxItineraries]
	}

	for i := range candidates {
		if err := s.store.SaveJourney(ctx, &candidates[i]); err != nil {
			return nil, fmt.Errorf("failed to persist planning session: %w", err)
		}
	}

	s.logger.LogPlanEvent(candidates[0].ID, "plan_completed", map[string]interface{}{
		"legs":       len(legs),
		"candidates": len(candidates),
	})

	return &models.PlanResult{
		Default: candidates[0],
		Ranked:  candidates,
	}, nil
}

func (s *plannerService) GetJourney(ctx context.Context, journeyID primitive.ObjectID) (*models.Journey, error) {
	return s.store.GetJourney(ctx, journeyID)
}

// limitQuoteSets pre-trims each leg's quote set to its best candidates so the
// cartesian combination stays within the itinerary ceiling. The largest set
// shrinks first, keeping variety across legs as long as possible.
func (s *plannerService) limitQuoteSets(quotesPerLeg [][]models.Segment) [][]models.Segment {
	limited := make([][]models.Segment, len(quotesPerLeg))
	for i, legQuotes := range quotesPerLeg {
		ordered := make([]models.Segment, len(legQuotes))
		copy(ordered, legQuotes)
		sort.SliceStable(ordered, func(a, b int) bool {
			return s.segmentScore(ordered[a]) < s.segmentScore(ordered[b])
		})
		limited[i] = ordered
	}

	for combinations(limited) > s.config.MaxItineraries {
		largest := 0
		for i := range limited {
			if len(limited[i]) > len(limited[largest]) {
				largest = i
			}
		}
		if len(limited[largest]) <= 1 {
			break
		}
		limited[largest] = limited[largest][:len(limited[largest])-1]
	}

	return limited
}

func combinations(quotesPerLeg [][]models.Segment) int {
	product := 1
	for _, legQuotes := range quotesPerLeg {
		product *= len(legQuotes)
	}
	return product
}

// compose builds one candidate journey per combination of one quote per leg.
// Leg boundary matching already guarantees the continuity invariant.
func (s *plannerService) compose(quotesPerLeg [][]models.Segment) []models.Journey {
	var journeys []models.Journey

	indices := make([]int, len(quotesPerLeg))
	for {
		segments := make([]models.Segment, len(quotesPerLeg))
		for i, idx := range indices {
			segments[i] = quotesPerLeg[i][idx]
		}

		journeys = append(journeys, models.Journey{
			ID:        primitive.NewObjectID(),
			Segments:  segments,
			CreatedAt: time.Now(),
		})

		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(quotesPerLeg[pos]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}

	return journeys
}

// rank orders candidates by weighted score, breaking ties by segment count,
// then fare, then stable input order.
func (s *plannerService) rank(candidates []models.Journey) {
	sort.SliceStable(candidates, func(a, b int) bool {
		scoreA := s.journeyScore(candidates[a])
		scoreB := s.journeyScore(candidates[b])
		if scoreA != scoreB {
			return scoreA < scoreB
		}
		if len(candidates[a].Segments) != len(candidates[b].Segments) {
			return len(candidates[a].Segments) < len(candidates[b].Segments)
		}
		if candidates[a].TotalFare() != candidates[b].TotalFare() {
			return candidates[a].TotalFare() < candidates[b].TotalFare()
		}
		return false
	})
}

func (s *plannerService) journeyScore(journey models.Journey) float64 {
	return s.config.DurationWeight*float64(journey.TotalDurationMinutes()) + s.config.FareWeight*journey.TotalFare()
}

func (s *plannerService) segmentScore(segment models.Segment) float64 {
	return s.config.DurationWeight*float64(segment.DurationMinutes) + s.config.FareWeight*segment.Fare
}
