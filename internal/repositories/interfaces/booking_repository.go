package interfaces

import (
	"context"

	"gotransit/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	Create(ctx context.Context, record *models.BookingRecord) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.BookingRecord, error)
	GetByJourneyID(ctx context.Context, journeyID primitive.ObjectID) ([]*models.BookingRecord, error)
	Update(ctx context.Context, record *models.BookingRecord) error
}
