package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransitStop is a fixed boarding point on a bus or metro corridor.
type TransitStop struct {
	Code     string `json:"code" bson:"code" validate:"required"`
	Name     string `json:"name" bson:"name"`
	Location Point  `json:"location" bson:"location" validate:"required"`
}

// TransitCorridor is a fixed-route service (one bus route or metro line)
// with an ordered stop sequence. The leg decomposer uses corridors to decide
// whether a request can be served by main transit.
type TransitCorridor struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required"`
	Mode        TransportMode      `json:"mode" bson:"mode" validate:"required"`
	RouteNumber string             `json:"route_number" bson:"route_number"`
	Stops       []TransitStop      `json:"stops" bson:"stops" validate:"required,min=2"`
	IsActive    bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// NearestStop returns the corridor stop closest to the point and its
// distance in kilometers.
func (c TransitCorridor) NearestStop(p Point) (TransitStop, float64) {
	var nearest TransitStop
	best := -1.0
	for _, stop := range c.Stops {
		d := stop.Location.DistanceKM(p)
		if best < 0 || d < best {
			nearest = stop
			best = d
		}
	}
	return nearest, best
}
