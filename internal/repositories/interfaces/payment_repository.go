package interfaces

import (
	"context"

	"gotransit/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.ConsolidatedPayment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ConsolidatedPayment, error)
	GetByJourneyID(ctx context.Context, journeyID primitive.ObjectID) (*models.ConsolidatedPayment, error)
	Update(ctx context.Context, payment *models.ConsolidatedPayment) error
}
