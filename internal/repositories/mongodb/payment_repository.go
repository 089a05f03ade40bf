package mongodb

import (
	"context"
	"fmt"
	"time"

	"gotransit/internal/models"
	"gotransit/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection("payments"),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.ConsolidatedPayment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ConsolidatedPayment, error) {
	var payment models.ConsolidatedPayment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) GetByJourneyID(ctx context.Context, journeyID primitive.ObjectID) (*models.ConsolidatedPayment, error) {
	var payment models.ConsolidatedPayment
	err := r.collection.FindOne(ctx, bson.M{"journey_id": journeyID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.ConsolidatedPayment) error {
	payment.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": payment.ID}, payment)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("payment not found")
	}

	return nil
}
