package providers

import (
	"context"
	"fmt"
	"math"
	"time"

	"gotransit/internal/models"
	"gotransit/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalkProvider quotes walking segments locally. Walking is always free and
// needs no external operator; duration comes from the mapping service when
// one is configured and falls back to straight-line distance at the
// configured speed.
type WalkProvider struct {
	mapsProvider  maps.MapsProvider
	speedKMH      float64
	quoteValidity time.Duration
}

func NewWalkProvider(mapsProvider maps.MapsProvider, speedKMH float64, quoteValidity time.Duration) *WalkProvider {
	if speedKMH <= 0 {
		speedKMH = 4.5
	}

	return &WalkProvider{
		mapsProvider:  mapsProvider,
		speedKMH:      speedKMH,
		quoteValidity: quoteValidity,
	}
}

func (w *WalkProvider) Mode() models.TransportMode {
	return models.ModeWalk
}

func (w *WalkProvider) Name() string {
	return "walk"
}

func (w *WalkProvider) Quote(ctx context.Context, leg models.Leg, window *models.TimeWindow) ([]models.Segment, error) {
	distanceKM := leg.From.DistanceKM(leg.To)
	durationMinutes := int(math.Ceil(distanceKM / w.speedKMH * 60))

	if w.mapsProvider != nil {
		estimate, err := w.mapsProvider.WalkingEstimate(ctx,
			maps.Location{Latitude: leg.From.Latitude, Longitude: leg.From.Longitude},
			maps.Location{Latitude: leg.To.Latitude, Longitude: leg.To.Longitude},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate walk: %w", err)
		}
		distanceKM = estimate.DistanceKM
		durationMinutes = estimate.DurationMinutes
	}

	segment := models.Segment{
		ID:              primitive.NewObjectID(),
		Mode:            models.ModeWalk,
		Role:            leg.Role,
		From:            leg.From,
		To:              leg.To,
		DurationMinutes: durationMinutes,
		Fare:            0,
		DistanceKM:      distanceKM,
		Provider:        w.Name(),
		ValidUntil:      time.Now().Add(w.quoteValidity),
	}

	return []models.Segment{segment}, nil
}
