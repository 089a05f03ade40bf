package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gotransit/internal/models"
	"gotransit/pkg/providers"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeQuoter struct {
	mode     models.TransportMode
	name     string
	segments []models.Segment
	err      error
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeQuoter) Mode() models.TransportMode { return f.mode }
func (f *fakeQuoter) Name() string               { return f.name }

func (f *fakeQuoter) Quote(ctx context.Context, leg models.Leg, window *models.TimeWindow) ([]models.Segment, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	out := make([]models.Segment, len(f.segments))
	for i, s := range f.segments {
		s.ID = primitive.NewObjectID()
		s.Mode = f.mode
		s.Role = leg.Role
		s.From = leg.From
		s.To = leg.To
		s.Provider = f.name
		s.ValidUntil = time.Now().Add(10 * time.Minute)
		out[i] = s
	}
	return out, nil
}

func quoterWith(mode models.TransportMode, name string, minutes int, fare float64) *fakeQuoter {
	return &fakeQuoter{
		mode:     mode,
		name:     name,
		segments: []models.Segment{{DurationMinutes: minutes, Fare: fare}},
	}
}

func directLeg() []models.Leg {
	return []models.Leg{{
		Role: models.LegRoleMain,
		From: models.Point{Latitude: 12.9716, Longitude: 77.5946, Name: "home"},
		To:   models.Point{Latitude: 12.9950, Longitude: 77.6550, Name: "office"},
	}}
}

func TestCollectQuotesMergesProviders(t *testing.T) {
	registry := providers.NewRegistry()
	registry.RegisterQuoter(quoterWith(models.ModeShareAuto, "share-auto", 30, 25))
	registry.RegisterQuoter(quoterWith(models.ModeAuto, "auto", 20, 60))

	svc := NewQuoteService(registry, testPlannerConfig(), testLogger(t))

	quotes, err := svc.CollectQuotes(context.Background(), directLeg(), nil)
	if err != nil {
		t.Fatalf("CollectQuotes failed: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("got quotes for %d legs, want 1", len(quotes))
	}
	if len(quotes[0]) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes[0]))
	}
}

func TestCollectQuotesToleratesPartialFailure(t *testing.T) {
	failing := &fakeQuoter{mode: models.ModeAuto, name: "auto", err: errors.New("provider down")}

	registry := providers.NewRegistry()
	registry.RegisterQuoter(quoterWith(models.ModeShareAuto, "share-auto", 30, 25))
	registry.RegisterQuoter(failing)

	svc := NewQuoteService(registry, testPlannerConfig(), testLogger(t))

	quotes, err := svc.CollectQuotes(context.Background(), directLeg(), nil)
	if err != nil {
		t.Fatalf("CollectQuotes failed despite a healthy provider: %v", err)
	}
	if len(quotes[0]) != 1 {
		t.Fatalf("got %d quotes, want 1 from the healthy provider", len(quotes[0]))
	}
	if quotes[0][0].Provider != "share-auto" {
		t.Errorf("quote came from %s, want share-auto", quotes[0][0].Provider)
	}
}

func TestCollectQuotesFailsWhenLegHasNoQuotes(t *testing.T) {
	registry := providers.NewRegistry()
	registry.RegisterQuoter(&fakeQuoter{mode: models.ModeShareAuto, name: "share-auto", err: errors.New("down")})
	registry.RegisterQuoter(&fakeQuoter{mode: models.ModeAuto, name: "auto", err: errors.New("down")})

	svc := NewQuoteService(registry, testPlannerConfig(), testLogger(t))

	_, err := svc.CollectQuotes(context.Background(), directLeg(), nil)
	var noQuotes *models.NoQuotesAvailableError
	if !errors.As(err, &noQuotes) {
		t.Fatalf("got %v, want NoQuotesAvailableError", err)
	}
}

func TestCollectQuotesCutsOffSlowProviders(t *testing.T) {
	cfg := testPlannerConfig()
	cfg.ProviderTimeout = 20 * time.Millisecond

	slow := &fakeQuoter{
		mode:     models.ModeAuto,
		name:     "auto",
		delay:    200 * time.Millisecond,
		segments: []models.Segment{{DurationMinutes: 10, Fare: 50}},
	}

	registry := providers.NewRegistry()
	registry.RegisterQuoter(quoterWith(models.ModeShareAuto, "share-auto", 30, 25))
	registry.RegisterQuoter(slow)

	svc := NewQuoteService(registry, cfg, testLogger(t))

	start := time.Now()
	quotes, err := svc.CollectQuotes(context.Background(), directLeg(), nil)
	if err != nil {
		t.Fatalf("CollectQuotes failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("aggregation took %v, slow provider was not cut off", elapsed)
	}
	if len(quotes[0]) != 1 {
		t.Fatalf("got %d quotes, want 1", len(quotes[0]))
	}
}

func TestEligibleModesPerRole(t *testing.T) {
	registry := providers.NewRegistry()
	bus := quoterWith(models.ModeBus, "city-bus", 25, 30)
	auto := quoterWith(models.ModeAuto, "auto", 10, 40)
	walk := quoterWith(models.ModeWalk, "walk", 12, 0)
	registry.RegisterQuoter(bus)
	registry.RegisterQuoter(auto)
	registry.RegisterQuoter(walk)

	svc := NewQuoteService(registry, testPlannerConfig(), testLogger(t))

	entry := models.Point{Latitude: 12.9720, Longitude: 77.5950, Name: "entry"}
	exit := models.Point{Latitude: 12.9960, Longitude: 77.6500, Name: "exit"}
	legs := []models.Leg{
		{Role: models.LegRoleFirstMile, From: models.Point{Latitude: 12.9716, Longitude: 77.5946}, To: entry},
		{Role: models.LegRoleMain, From: entry, To: exit},
		{Role: models.LegRoleLastMile, From: exit, To: models.Point{Latitude: 12.9955, Longitude: 77.6505}},
	}

	quotes, err := svc.CollectQuotes(context.Background(), legs, nil)
	if err != nil {
		t.Fatalf("CollectQuotes failed: %v", err)
	}

	for _, q := range quotes[1] {
		if q.Mode != models.ModeBus && q.Mode != models.ModeMetro {
			t.Errorf("main transit leg quoted by %s", q.Mode)
		}
	}
	for _, i := range []int{0, 2} {
		for _, q := range quotes[i] {
			if q.Mode == models.ModeBus || q.Mode == models.ModeMetro {
				t.Errorf("access leg %d quoted by fixed-route mode %s", i, q.Mode)
			}
		}
	}
	if got := bus.calls.Load(); got != 1 {
		t.Errorf("bus provider called %d times, want 1 (main leg only)", got)
	}
}
