package payment

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

type RazorpayProvider struct {
	client *razorpay.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	client := razorpay.NewClient(keyID, keySecret)

	return &RazorpayProvider{
		client: client,
	}
}

func (r *RazorpayProvider) Charge(ctx context.Context, request *ChargeRequest) (*ChargeResponse, error) {
	orderData := map[string]interface{}{
		"amount":   int(request.Amount * 100), // Amount in paise
		"currency": request.Currency,
		"receipt":  request.PaymentID,
		"notes": map[string]interface{}{
			"description": request.Description,
		},
	}

	order, err := r.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected order response: missing id")
	}

	// Razorpay authorizes on the client and captures here.
	captureData := map[string]interface{}{
		"currency": request.Currency,
	}
	capture, err := r.client.Payment.Capture(orderID, int(request.Amount*100), captureData, map[string]string{})
	if err != nil {
		return &ChargeResponse{
			TransactionID: orderID,
			Status:        ChargeStatusFailed,
			Amount:        request.Amount,
			Currency:      request.Currency,
			FailureReason: err.Error(),
		}, nil
	}

	status := ChargeStatusFailed
	if captured, ok := capture["status"].(string); ok && captured == "captured" {
		status = ChargeStatusPaid
	}

	return &ChargeResponse{
		TransactionID: orderID,
		Status:        status,
		Amount:        request.Amount,
		Currency:      request.Currency,
		CreatedAt:     asInt64(capture["created_at"]),
	}, nil
}

func (r *RazorpayProvider) Refund(ctx context.Context, request *RefundRequest) (*RefundResponse, error) {
	refundData := map[string]interface{}{
		"notes": map[string]interface{}{
			"reason": request.Reason,
		},
	}

	amount := int(request.Amount * 100)
	refund, err := r.client.Payment.Refund(request.TransactionID, amount, refundData, map[string]string{})
	if err != nil {
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}

	return &RefundResponse{
		RefundID:  refund["id"].(string),
		Status:    refund["status"].(string),
		Amount:    float64(amount) / 100,
		CreatedAt: asInt64(refund["created_at"]),
	}, nil
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
