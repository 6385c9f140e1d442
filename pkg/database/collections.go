package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Every flattened record carries at least one of these keys.
var indexedKeys = []string{"trip_id", "route_id", "route_short_name"}

func (m *MongoInstance) createIndexes(ctx context.Context, collections []string) {
	for _, collectionName := range collections {
		collection := m.GetCollection(collectionName)

		_, err := collection.Indexes().CreateMany(ctx, indexModels(), options.CreateIndexes())
		if err != nil {
			log.Error().Err(err).Str("collection", collectionName).Msg("Creating Index")
		}
	}
}

func indexModels() []mongo.IndexModel {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "ingestedat", Value: 1}},
		},
	}

	for _, key := range indexedKeys {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}, {Key: "ingestedat", Value: -1}},
			Options: options.Index().SetSparse(true),
		})
	}

	return models
}
