package services

import (
	"context"

	"gotransit/internal/config"
	"gotransit/internal/models"
	"gotransit/pkg/logger"
	"gotransit/pkg/providers"

	"github.com/sourcegraph/conc/pool"
)

// QuoteService fans a set of legs out to every eligible mode provider and
// collects the returned segment quotes. Provider errors and timeouts are
// absorbed; a leg only fails when no provider at all responded for it.
type QuoteService interface {
	CollectQuotes(ctx context.Context, legs []models.Leg, window *models.TimeWindow) ([][]models.Segment, error)
}

type quoteService struct {
	registry *providers.Registry
	config   *config.PlannerConfig
	logger   *logger.Logger
}

func NewQuoteService(registry *providers.Registry, cfg *config.PlannerConfig, log *logger.Logger) QuoteService {
	return &quoteService{
		registry: registry,
		config:   cfg,
		logger:   log,
	}
}

type quoteCall struct {
	legIndex int
	leg      models.Leg
	provider providers.QuoteProvider
}

func (s *quoteService) CollectQuotes(ctx context.Context, legs []models.Leg, window *models.TimeWindow) ([][]models.Segment, error) {
	var calls []quoteCall
	for i, leg := range legs {
		modes := s.eligibleModes(leg.Role, len(legs))
		for _, provider := range s.registry.Quoters(modes) {
			calls = append(calls, quoteCall{legIndex: i, leg: leg, provider: provider})
		}
	}

	// Each call writes into its own slot; slots are merged only after the
	// pool drains, so the fan-out needs no locking.
	slots := make([][]models.Segment, len(calls))

	p := pool.New().WithMaxGoroutines(s.config.MaxConcurrentRequests)
	for i, call := range calls {
		i, call := i, call
		p.Go(func() {
			callCtx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
			defer cancel()

			segments, err := call.provider.Quote(callCtx, call.leg, window)
			if err != nil {
				s.logger.WithFields(map[string]interface{}{
					"provider": call.provider.Name(),
					"mode":     string(call.provider.Mode()),
					"leg_role": string(call.leg.Role),
				}).WithError(err).Warn("Quote provider excluded from leg")
				return
			}

			slots[i] = segments
		})
	}
	p.Wait()

	quotes := make([][]models.Segment, len(legs))
	for i, call := range calls {
		quotes[call.legIndex] = append(quotes[call.legIndex], slots[i]...)
	}

	for i, legQuotes := range quotes {
		if len(legQuotes) == 0 {
			return nil, &models.NoQuotesAvailableError{Leg: legs[i]}
		}
	}

	return quotes, nil
}

// eligibleModes resolves a leg to its quotable modes. Fixed-route modes only
// serve MAIN legs produced by a three-way decomposition; a direct MAIN leg is
// served door to door.
func (s *quoteService) eligibleModes(role models.LegRole, legCount int) []models.TransportMode {
	switch role {
	case models.LegRoleFirstMile:
		return s.config.Eligibility[config.EligibilityFirstMile]
	case models.LegRoleLastMile:
		return s.config.Eligibility[config.EligibilityLastMile]
	case models.LegRoleMain:
		if legCount == 3 {
			return s.config.Eligibility[config.EligibilityMainTransit]
		}
		return s.config.Eligibility[config.EligibilityMainDirect]
	}
	return nil
}
