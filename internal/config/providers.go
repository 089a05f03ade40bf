package config

import (
	"time"

	"gotransit/internal/models"
)

// ModeEndpoint configures one remote mode provider.
type ModeEndpoint struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type ProvidersConfig struct {
	// Remote quote/booking providers keyed by transport mode. Walking is
	// served locally and has no endpoint.
	Endpoints map[models.TransportMode]ModeEndpoint `yaml:"endpoints"`

	WalkSpeedKMH     float64       `yaml:"walk_speed_kmh"`
	QuoteValidity    time.Duration `yaml:"quote_validity"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	CancelMaxRetries uint64        `yaml:"cancel_max_retries"`
}

func loadProvidersConfig() *ProvidersConfig {
	return &ProvidersConfig{
		Endpoints: map[models.TransportMode]ModeEndpoint{
			models.ModeShareAuto: {
				Name:    getEnv("SHARE_AUTO_PROVIDER_NAME", "share-auto"),
				BaseURL: getEnv("SHARE_AUTO_PROVIDER_URL", "http://localhost:9001"),
				APIKey:  getEnv("SHARE_AUTO_PROVIDER_API_KEY", ""),
			},
			models.ModeAuto: {
				Name:    getEnv("AUTO_PROVIDER_NAME", "auto"),
				BaseURL: getEnv("AUTO_PROVIDER_URL", "http://localhost:9002"),
				APIKey:  getEnv("AUTO_PROVIDER_API_KEY", ""),
			},
			models.ModeBus: {
				Name:    getEnv("BUS_PROVIDER_NAME", "city-bus"),
				BaseURL: getEnv("BUS_PROVIDER_URL", "http://localhost:9003"),
				APIKey:  getEnv("BUS_PROVIDER_API_KEY", ""),
			},
			models.ModeMetro: {
				Name:    getEnv("METRO_PROVIDER_NAME", "metro"),
				BaseURL: getEnv("METRO_PROVIDER_URL", "http://localhost:9004"),
				APIKey:  getEnv("METRO_PROVIDER_API_KEY", ""),
			},
		},
		WalkSpeedKMH:     getEnvAsFloat("WALK_SPEED_KMH", 4.5),
		QuoteValidity:    getEnvAsDuration("QUOTE_VALIDITY", 10*time.Minute),
		RequestTimeout:   getEnvAsDuration("PROVIDER_REQUEST_TIMEOUT", 5*time.Second),
		CancelMaxRetries: uint64(getEnvAsInt("CANCEL_MAX_RETRIES", 3)),
	}
}
