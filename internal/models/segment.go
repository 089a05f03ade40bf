package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransportMode string

const (
	ModeWalk      TransportMode = "walk"
	ModeShareAuto TransportMode = "share_auto"
	ModeAuto      TransportMode = "auto"
	ModeBus       TransportMode = "bus"
	ModeMetro     TransportMode = "metro"
)

// SegmentDetail carries mode-specific display data attached by a provider.
type SegmentDetail struct {
	RouteNumber      string `json:"route_number,omitempty" bson:"route_number,omitempty"`
	OccupancyPercent int    `json:"occupancy_percent,omitempty" bson:"occupancy_percent,omitempty" validate:"min=0,max=100"`
}

// Segment is one mode's priced, timed realization of a Leg. Segments are
// immutable once issued by a provider and must be re-quoted once their
// validity window lapses.
type Segment struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Mode            TransportMode      `json:"mode" bson:"mode" validate:"required"`
	Role            LegRole            `json:"role" bson:"role"`
	From            Point              `json:"from" bson:"from" validate:"required"`
	To              Point              `json:"to" bson:"to" validate:"required"`
	DurationMinutes int                `json:"duration_minutes" bson:"duration_minutes" validate:"min=0"`
	Fare            float64            `json:"fare" bson:"fare" validate:"min=0"`
	DistanceKM      float64            `json:"distance_km" bson:"distance_km" validate:"min=0"`
	Detail          *SegmentDetail     `json:"detail,omitempty" bson:"detail,omitempty"`
	Provider        string             `json:"provider" bson:"provider"`
	ValidUntil      time.Time          `json:"valid_until" bson:"valid_until"`
}

// Expired reports whether the provider-assigned validity window has lapsed.
func (s Segment) Expired(now time.Time) bool {
	return now.After(s.ValidUntil)
}
