package maps

import "context"

// MapsProvider supplies travel estimates from an external mapping service.
// The planner only needs walking estimates; everything mode-specific comes
// from the mode providers themselves.
type MapsProvider interface {
	WalkingEstimate(ctx context.Context, from, to Location) (*TravelEstimate, error)
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type TravelEstimate struct {
	DistanceKM      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
}
