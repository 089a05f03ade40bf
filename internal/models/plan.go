package models

import "time"

// TimeWindow optionally narrows a quote request to a departure interval.
type TimeWindow struct {
	EarliestDeparture time.Time `json:"earliest_departure" bson:"earliest_departure"`
	LatestDeparture   time.Time `json:"latest_departure" bson:"latest_departure"`
}

// PlanRequest is a rider's origin to destination planning request.
type PlanRequest struct {
	Origin      Point       `json:"origin" binding:"required"`
	Destination Point       `json:"destination" binding:"required"`
	Window      *TimeWindow `json:"window,omitempty"`
}

// PlanResult carries the ranked candidate journeys for one planning session.
// Default is always the first entry of Ranked.
type PlanResult struct {
	Default Journey   `json:"default"`
	Ranked  []Journey `json:"ranked"`
}
