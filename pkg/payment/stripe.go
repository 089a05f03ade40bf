package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeProvider struct {
	client *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{
		client: sc,
	}
}

func (s *StripeProvider) Charge(ctx context.Context, request *ChargeRequest) (*ChargeResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(int64(request.Amount * 100)), // smallest currency unit
		Currency:           stripe.String(request.Currency),
		Description:        stripe.String(request.Description),
		ConfirmationMethod: stripe.String("manual"),
		Confirm:            stripe.Bool(true),
	}

	if request.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(request.PaymentMethodID)
	}
	if request.CustomerID != "" {
		params.Customer = stripe.String(request.CustomerID)
	}

	params.AddMetadata("payment_id", request.PaymentID)
	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	status := ChargeStatusFailed
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status = ChargeStatusPaid
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresAction:
		status = ChargeStatusPending
	}

	return &ChargeResponse{
		TransactionID: pi.ID,
		Status:        status,
		Amount:        float64(pi.Amount) / 100,
		Currency:      string(pi.Currency),
		CreatedAt:     pi.Created,
	}, nil
}

func (s *StripeProvider) Refund(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(request.TransactionID),
		Reason:        stripe.String(request.Reason),
	}

	if request.Amount > 0 {
		params.Amount = stripe.Int64(int64(request.Amount * 100))
	}

	refund, err := s.client.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}

	return &RefundResponse{
		RefundID:  refund.ID,
		Status:    string(refund.Status),
		Amount:    float64(refund.Amount) / 100,
		Currency:  string(refund.Currency),
		CreatedAt: refund.Created,
	}, nil
}
