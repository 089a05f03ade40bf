package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func point(lat, lon float64, name string) Point {
	return Point{Latitude: lat, Longitude: lon, Name: name}
}

func segment(mode TransportMode, from, to Point, minutes int, fare float64) Segment {
	return Segment{
		ID:              primitive.NewObjectID(),
		Mode:            mode,
		From:            from,
		To:              to,
		DurationMinutes: minutes,
		Fare:            fare,
		ValidUntil:      time.Now().Add(10 * time.Minute),
	}
}

func TestJourneyAggregates(t *testing.T) {
	home := point(12.9716, 77.5946, "home")
	stop := point(12.9750, 77.6000, "stop")
	exit := point(12.9900, 77.6500, "exit")
	office := point(12.9950, 77.6550, "office")

	journey := Journey{
		ID: primitive.NewObjectID(),
		Segments: []Segment{
			segment(ModeWalk, home, stop, 8, 0),
			segment(ModeBus, stop, exit, 25, 30),
			segment(ModeAuto, exit, office, 6, 45),
		},
	}

	if err := journey.Validate(); err != nil {
		t.Fatalf("valid journey rejected: %v", err)
	}
	if got := journey.TotalFare(); got != 75 {
		t.Errorf("TotalFare = %v, want 75", got)
	}
	if got := journey.TotalDurationMinutes(); got != 39 {
		t.Errorf("TotalDurationMinutes = %v, want 39", got)
	}
	if got := journey.PayableFare(); got != 75 {
		t.Errorf("PayableFare = %v, want 75", got)
	}
}

func TestJourneyPayableFareExcludesWalk(t *testing.T) {
	a := point(1, 1, "a")
	b := point(2, 2, "b")

	journey := Journey{
		ID: primitive.NewObjectID(),
		Segments: []Segment{
			segment(ModeWalk, a, b, 10, 0),
		},
	}

	if got := journey.PayableFare(); got != 0 {
		t.Errorf("PayableFare = %v, want 0 for walk-only journey", got)
	}
}

func TestJourneyValidateRejectsEmpty(t *testing.T) {
	journey := Journey{ID: primitive.NewObjectID()}
	if err := journey.Validate(); err == nil {
		t.Fatal("empty journey passed validation")
	}
}

func TestJourneyValidateRejectsBrokenChain(t *testing.T) {
	a := point(1, 1, "a")
	b := point(2, 2, "b")
	c := point(3, 3, "c")
	d := point(4, 4, "d")

	journey := Journey{
		ID: primitive.NewObjectID(),
		Segments: []Segment{
			segment(ModeWalk, a, b, 5, 0),
			segment(ModeBus, c, d, 20, 25),
		},
	}

	if err := journey.Validate(); err == nil {
		t.Fatal("discontinuous journey passed validation")
	}
}

func TestJourneyContinuityIgnoresNames(t *testing.T) {
	// Same coordinates, different display names: still continuous.
	stopAsQuoted := point(12.9750, 77.6000, "Majestic Stop 4")
	stopAsLabeled := point(12.9750, 77.6000, "Majestic")

	journey := Journey{
		ID: primitive.NewObjectID(),
		Segments: []Segment{
			segment(ModeWalk, point(1, 1, "home"), stopAsQuoted, 5, 0),
			segment(ModeBus, stopAsLabeled, point(2, 2, "office"), 20, 25),
		},
	}

	if err := journey.Validate(); err != nil {
		t.Fatalf("name mismatch broke continuity: %v", err)
	}
}

func TestExpiredSegments(t *testing.T) {
	a := point(1, 1, "a")
	b := point(2, 2, "b")

	fresh := segment(ModeBus, a, b, 20, 25)
	stale := segment(ModeAuto, b, a, 10, 40)
	stale.ValidUntil = time.Now().Add(-time.Minute)

	journey := Journey{
		ID:       primitive.NewObjectID(),
		Segments: []Segment{fresh, stale},
	}

	expired := journey.ExpiredSegments(time.Now())
	if len(expired) != 1 {
		t.Fatalf("ExpiredSegments returned %d ids, want 1", len(expired))
	}
	if expired[0] != stale.ID {
		t.Errorf("ExpiredSegments returned %s, want %s", expired[0].Hex(), stale.ID.Hex())
	}
}
