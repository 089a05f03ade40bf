package providers

import (
	"context"

	"gotransit/internal/models"
)

// QuoteProvider is one transport mode's quoting collaborator. A provider may
// return zero segments for a leg it cannot serve; errors and timeouts are
// absorbed by the aggregator.
type QuoteProvider interface {
	Mode() models.TransportMode
	Name() string
	Quote(ctx context.Context, leg models.Leg, window *models.TimeWindow) ([]models.Segment, error)
}

// BookingAck is a booking provider's response to a book request.
type BookingAck struct {
	Accepted          bool   `json:"accepted"`
	ProviderReference string `json:"provider_reference,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

// BookingProvider commits and cancels segments with one mode's operator.
type BookingProvider interface {
	Mode() models.TransportMode
	Book(ctx context.Context, segment models.Segment) (*BookingAck, error)
	Cancel(ctx context.Context, providerReference string) error
}
