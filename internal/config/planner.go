package config

import (
	"time"

	"gotransit/internal/models"
)

// Eligibility keys. MAIN legs quote against different mode sets depending on
// whether the request decomposed into three legs (fixed-route transit found)
// or stayed a single direct leg.
const (
	EligibilityFirstMile   = "first_mile"
	EligibilityLastMile    = "last_mile"
	EligibilityMainTransit = "main_transit"
	EligibilityMainDirect  = "main_direct"
)

type PlannerConfig struct {
	// Leg decomposition
	WalkingRadiusKM        float64 `yaml:"walking_radius_km"`
	CoincidenceToleranceKM float64 `yaml:"coincidence_tolerance_km"`

	// Quote aggregation
	ProviderTimeout       time.Duration `yaml:"provider_timeout"`
	MaxConcurrentRequests int           `yaml:"max_concurrent_requests"`

	// Composition and ranking
	MaxItineraries int     `yaml:"max_itineraries"`
	DurationWeight float64 `yaml:"duration_weight"`
	FareWeight     float64 `yaml:"fare_weight"`

	// Planning session
	PlanSessionTTL time.Duration `yaml:"plan_session_ttl"`

	// Eligible modes per leg role, data-driven so new modes slot in without
	// touching the composer.
	Eligibility map[string][]models.TransportMode `yaml:"eligibility"`
}

func loadPlannerConfig() *PlannerConfig {
	return &PlannerConfig{
		WalkingRadiusKM:        getEnvAsFloat("PLANNER_WALKING_RADIUS_KM", 1.0),
		CoincidenceToleranceKM: getEnvAsFloat("PLANNER_COINCIDENCE_TOLERANCE_KM", 0.05),
		ProviderTimeout:        getEnvAsDuration("PLANNER_PROVIDER_TIMEOUT", 4*time.Second),
		MaxConcurrentRequests:  getEnvAsInt("PLANNER_MAX_CONCURRENT_REQUESTS", 10),
		MaxItineraries:         getEnvAsInt("PLANNER_MAX_ITINERARIES", 5),
		DurationWeight:         getEnvAsFloat("PLANNER_DURATION_WEIGHT", 1.0),
		FareWeight:             getEnvAsFloat("PLANNER_FARE_WEIGHT", 1.0),
		PlanSessionTTL:         getEnvAsDuration("PLANNER_PLAN_SESSION_TTL", 15*time.Minute),
		Eligibility: map[string][]models.TransportMode{
			EligibilityFirstMile:   {models.ModeWalk, models.ModeShareAuto, models.ModeAuto},
			EligibilityLastMile:    {models.ModeWalk, models.ModeShareAuto, models.ModeAuto},
			EligibilityMainTransit: {models.ModeBus, models.ModeMetro},
			EligibilityMainDirect:  {models.ModeWalk, models.ModeShareAuto, models.ModeAuto},
		},
	}
}
