package payment

import (
	"context"
)

type ChargeStatus string

const (
	ChargeStatusPaid    ChargeStatus = "paid"
	ChargeStatusFailed  ChargeStatus = "failed"
	ChargeStatusPending ChargeStatus = "pending"
)

// PaymentProvider settles consolidated journey payments through an external
// gateway. One charge covers every paid segment of a committed journey.
type PaymentProvider interface {
	Charge(ctx context.Context, request *ChargeRequest) (*ChargeResponse, error)
	Refund(ctx context.Context, request *RefundRequest) (*RefundResponse, error)
}

type ChargeRequest struct {
	PaymentID       string            `json:"payment_id"`
	PaymentMethodID string            `json:"payment_method_id"`
	CustomerID      string            `json:"customer_id"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	Description     string            `json:"description"`
	Metadata        map[string]string `json:"metadata"`
}

type ChargeResponse struct {
	TransactionID string       `json:"transaction_id"`
	Status        ChargeStatus `json:"status"`
	Amount        float64      `json:"amount"`
	Currency      string       `json:"currency"`
	FailureReason string       `json:"failure_reason,omitempty"`
	CreatedAt     int64        `json:"created_at"`
}

type RefundRequest struct {
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason"`
}

type RefundResponse struct {
	RefundID  string  `json:"refund_id"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	CreatedAt int64   `json:"created_at"`
}
