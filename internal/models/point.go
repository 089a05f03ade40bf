package models

import (
	"fmt"
	"math"
)

// Point is an immutable geographic value with a display name.
type Point struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"required"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"required"`
	Name      string  `json:"name" bson:"name"`
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f (%s)", p.Latitude, p.Longitude, p.Name)
}

// SamePlace compares coordinates only; display names may differ between
// a provider's stop record and the rider's label for the same place.
func (p Point) SamePlace(other Point) bool {
	return p.Latitude == other.Latitude && p.Longitude == other.Longitude
}

// DistanceKM returns the haversine distance to another point in kilometers.
func (p Point) DistanceKM(other Point) float64 {
	const earthRadiusKM = 6371.0

	lat1 := p.Latitude * math.Pi / 180
	lon1 := p.Longitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	lon2 := other.Longitude * math.Pi / 180

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}
