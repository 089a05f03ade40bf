package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Journey is an ordered, non-empty chain of Segments covering the full rider
// request. Aggregates are always computed from the segments so they can never
// drift from the quotes they summarize.
type Journey struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Segments  []Segment          `json:"segments" bson:"segments" validate:"required,min=1"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

func (j Journey) TotalFare() float64 {
	var total float64
	for _, s := range j.Segments {
		total += s.Fare
	}
	return total
}

func (j Journey) TotalDurationMinutes() int {
	var total int
	for _, s := range j.Segments {
		total += s.DurationMinutes
	}
	return total
}

func (j Journey) TotalDistanceKM() float64 {
	var total float64
	for _, s := range j.Segments {
		total += s.DistanceKM
	}
	return total
}

// PayableFare sums the fares of segments that require payment. Walking is
// always free and excluded from the consolidated payment.
func (j Journey) PayableFare() float64 {
	var total float64
	for _, s := range j.Segments {
		if s.Mode != ModeWalk {
			total += s.Fare
		}
	}
	return total
}

// Validate enforces the journey invariants: at least one segment, and the
// endpoint of every segment chains exactly onto the start of the next.
func (j Journey) Validate() error {
	if len(j.Segments) == 0 {
		return fmt.Errorf("journey %s has no segments", j.ID.Hex())
	}
	for i := 1; i < len(j.Segments); i++ {
		prev, next := j.Segments[i-1], j.Segments[i]
		if !prev.To.SamePlace(next.From) {
			return fmt.Errorf("journey %s breaks continuity between segment %d and %d", j.ID.Hex(), i-1, i)
		}
	}
	return nil
}

// ExpiredSegments returns the ids of segments whose validity window has
// lapsed at the given instant.
func (j Journey) ExpiredSegments(now time.Time) []primitive.ObjectID {
	var expired []primitive.ObjectID
	for _, s := range j.Segments {
		if s.Expired(now) {
			expired = append(expired, s.ID)
		}
	}
	return expired
}

// SegmentByID looks a segment up by id.
func (j Journey) SegmentByID(id primitive.ObjectID) (Segment, bool) {
	for _, s := range j.Segments {
		if s.ID == id {
			return s, true
		}
	}
	return Segment{}, false
}
