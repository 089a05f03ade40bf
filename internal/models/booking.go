package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingStatusUnbooked  BookingStatus = "unbooked"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusFailed    BookingStatus = "failed"
)

// BookingRecord tracks one segment of a committed journey through the
// provider booking lifecycle. Owned exclusively by the booking orchestrator;
// everything handed outward is a copy.
type BookingRecord struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	JourneyID         primitive.ObjectID `json:"journey_id" bson:"journey_id" validate:"required"`
	SegmentID         primitive.ObjectID `json:"segment_id" bson:"segment_id" validate:"required"`
	Segment           Segment            `json:"segment" bson:"segment"`
	Status            BookingStatus      `json:"status" bson:"status" default:"pending"`
	ProviderReference string             `json:"provider_reference,omitempty" bson:"provider_reference,omitempty"`
	FailureReason     string             `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CancelledAt       *time.Time         `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancellationError string             `json:"cancellation_error,omitempty" bson:"cancellation_error,omitempty"`
	ConfirmedAt       *time.Time         `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	FailedAt          *time.Time         `json:"failed_at,omitempty" bson:"failed_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// Terminal reports whether the record has reached a final state.
func (b BookingRecord) Terminal() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusFailed
}

// BookingSet is the immutable snapshot of a journey's booking state handed to
// readers. It never aliases orchestrator-owned records.
type BookingSet struct {
	JourneyID primitive.ObjectID   `json:"journey_id"`
	Records   []BookingRecord      `json:"records"`
	Payment   *ConsolidatedPayment `json:"payment,omitempty"`
}
