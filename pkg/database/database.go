package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/stmfeed/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect opens the MongoDB connection described by cfg and makes sure the
// feed collections are indexed.
func Connect(ctx context.Context, cfg config.MongoDBConfig, collections []string) (*MongoInstance, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, err
	}

	instance := &MongoInstance{
		Client:   client,
		Database: client.Database(cfg.Database),
	}

	err = client.Ping(connectCtx, nil)
	if err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	log.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")

	instance.createIndexes(ctx, collections)

	return instance, nil
}

func (m *MongoInstance) GetCollection(collectionName string) *mongo.Collection {
	return m.Database.Collection(collectionName)
}

func (m *MongoInstance) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
