package mongodb

import (
	"context"
	"fmt"

	"gotransit/internal/models"
	"gotransit/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type corridorRepository struct {
	collection *mongo.Collection
}

func NewCorridorRepository(db *mongo.Database) interfaces.CorridorRepository {
	return &corridorRepository{
		collection: db.Collection("corridors"),
	}
}

func (r *corridorRepository) GetActive(ctx context.Context) ([]*models.TransitCorridor, error) {
	return r.find(ctx, bson.M{"is_active": true})
}

func (r *corridorRepository) GetByModes(ctx context.Context, modes []models.TransportMode) ([]*models.TransitCorridor, error) {
	return r.find(ctx, bson.M{"is_active": true, "mode": bson.M{"$in": modes}})
}

func (r *corridorRepository) find(ctx context.Context, filter bson.M) ([]*models.TransitCorridor, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list corridors: %w", err)
	}
	defer cursor.Close(ctx)

	var corridors []*models.TransitCorridor
	if err := cursor.All(ctx, &corridors); err != nil {
		return nil, fmt.Errorf("failed to decode corridors: %w", err)
	}

	return corridors, nil
}
