package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoViableLegError signals that origin and destination coincide within the
// configured tolerance, i.e. the rider is already at the destination.
type NoViableLegError struct {
	Origin      Point
	Destination Point
}

func (e *NoViableLegError) Error() string {
	return fmt.Sprintf("no viable leg: origin %s and destination %s coincide", e.Origin, e.Destination)
}

// NoQuotesAvailableError is returned when a required leg received zero
// provider responses. The whole plan request fails, never partially.
type NoQuotesAvailableError struct {
	Leg Leg
}

func (e *NoQuotesAvailableError) Error() string {
	return fmt.Sprintf("no quotes available for %s leg %s -> %s", e.Leg.Role, e.Leg.From, e.Leg.To)
}

// QuoteExpiredError names the segments whose validity window lapsed before
// booking. The caller must re-plan.
type QuoteExpiredError struct {
	JourneyID  primitive.ObjectID
	SegmentIDs []primitive.ObjectID
}

func (e *QuoteExpiredError) Error() string {
	ids := make([]string, len(e.SegmentIDs))
	for i, id := range e.SegmentIDs {
		ids[i] = id.Hex()
	}
	return fmt.Sprintf("quotes expired for journey %s: segments %s", e.JourneyID.Hex(), strings.Join(ids, ", "))
}

// ProviderRejectedError reports that a booking provider declined a segment.
type ProviderRejectedError struct {
	BookingID primitive.ObjectID
	SegmentID primitive.ObjectID
	Reason    string
}

func (e *ProviderRejectedError) Error() string {
	return fmt.Sprintf("provider rejected booking %s (segment %s): %s", e.BookingID.Hex(), e.SegmentID.Hex(), e.Reason)
}

// PaymentFailedError reports a failed consolidated payment.
type PaymentFailedError struct {
	PaymentID primitive.ObjectID
	Reason    string
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment %s failed: %s", e.PaymentID.Hex(), e.Reason)
}
