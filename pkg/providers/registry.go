package providers

import (
	"fmt"

	"gotransit/internal/models"
)

// Registry holds the configured providers per transport mode. Built once at
// startup and read-only afterwards, so no locking.
type Registry struct {
	quoters map[models.TransportMode][]QuoteProvider
	bookers map[models.TransportMode]BookingProvider
}

func NewRegistry() *Registry {
	return &Registry{
		quoters: make(map[models.TransportMode][]QuoteProvider),
		bookers: make(map[models.TransportMode]BookingProvider),
	}
}

func (r *Registry) RegisterQuoter(provider QuoteProvider) {
	r.quoters[provider.Mode()] = append(r.quoters[provider.Mode()], provider)
}

func (r *Registry) RegisterBooker(provider BookingProvider) {
	r.bookers[provider.Mode()] = provider
}

// Quoters returns every quote provider registered for the given modes.
func (r *Registry) Quoters(modes []models.TransportMode) []QuoteProvider {
	var result []QuoteProvider
	for _, mode := range modes {
		result = append(result, r.quoters[mode]...)
	}
	return result
}

func (r *Registry) Booker(mode models.TransportMode) (BookingProvider, error) {
	provider, ok := r.bookers[mode]
	if !ok {
		return nil, fmt.Errorf("no booking provider registered for mode %s", mode)
	}
	return provider, nil
}
