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

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection("bookings"),
	}
}

func (r *bookingRepository) Create(ctx context.Context, record *models.BookingRecord) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to create booking record: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.BookingRecord, error) {
	var record models.BookingRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("booking record not found")
		}
		return nil, fmt.Errorf("failed to get booking record: %w", err)
	}

	return &record, nil
}

func (r *bookingRepository) GetByJourneyID(ctx context.Context, journeyID primitive.ObjectID) ([]*models.BookingRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"journey_id": journeyID})
	if err != nil {
		return nil, fmt.Errorf("failed to list booking records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.BookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode booking records: %w", err)
	}

	return records, nil
}

func (r *bookingRepository) Update(ctx context.Context, record *models.BookingRecord) error {
	record.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	if err != nil {
		return fmt.Errorf("failed to update booking record: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("booking record not found")
	}

	return nil
}
