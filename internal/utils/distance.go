package utils

import (
	"math"
)

const EarthRadiusKM = 6371.0

func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineDistance(lat1, lon1, lat2, lon2)
}

func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert to radians
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	// Differences
	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	// Haversine formula
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

func IsWithinRadius(centerLat, centerLon, pointLat, pointLon, radiusKM float64) bool {
	distance := CalculateDistance(centerLat, centerLon, pointLat, pointLon)
	return distance <= radiusKM
}

func EstimateETAMinutes(distanceKM float64, averageSpeedKMH float64) int {
	if averageSpeedKMH <= 0 {
		averageSpeedKMH = 30 // Default city speed
	}

	timeHours := distanceKM / averageSpeedKMH
	timeMinutes := timeHours * 60

	return int(math.Ceil(timeMinutes))
}
