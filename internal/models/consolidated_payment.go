package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusSettled PaymentStatus = "settled"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ConsolidatedPayment is the single payment instrument covering all paid
// segments of one committed journey. Walk segments never contribute to the
// amount. Created only by the booking orchestrator once the rider commits.
type ConsolidatedPayment struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	JourneyID     primitive.ObjectID `json:"journey_id" bson:"journey_id" validate:"required"`
	Amount        float64            `json:"amount" bson:"amount" validate:"min=0"`
	Currency      string             `json:"currency" bson:"currency" default:"INR"`
	Status        PaymentStatus      `json:"status" bson:"status" default:"pending"`
	TransactionID string             `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	FailureReason string             `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	PaidAt        *time.Time         `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	SettledAt     *time.Time         `json:"settled_at,omitempty" bson:"settled_at,omitempty"`
	FailedAt      *time.Time         `json:"failed_at,omitempty" bson:"failed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
