package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. Safe to run on
// every startup; Mongo treats existing identical indexes as a no-op.
func (m *MongoDB) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"bookings": {
			{Keys: bson.D{{Key: "journey_id", Value: 1}}},
			{Keys: bson.D{{Key: "segment_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"payments": {
			{Keys: bson.D{{Key: "journey_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"corridors": {
			{Keys: bson.D{{Key: "mode", Value: 1}}},
			{Keys: bson.D{{Key: "is_active", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := m.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	return nil
}
