package sink

import (
	"context"
	"time"

	"github.com/travigo/stmfeed/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSink inserts records as documents, stamping each with its ingestion time.
type MongoSink struct {
	Instance *database.MongoInstance
	Now      func() time.Time
}

func NewMongoSink(instance *database.MongoInstance) *MongoSink {
	return &MongoSink{Instance: instance, Now: time.Now}
}

func (m *MongoSink) InsertOne(ctx context.Context, collection string, record any) error {
	document, err := stampBSON(record, m.Now())
	if err != nil {
		return err
	}

	_, err = m.Instance.GetCollection(collection).InsertOne(ctx, document)

	return err
}

func (m *MongoSink) InsertMany(ctx context.Context, collection string, records []any) error {
	ingestedAt := m.Now()

	documents := make([]any, 0, len(records))
	for _, record := range records {
		document, err := stampBSON(record, ingestedAt)
		if err != nil {
			return err
		}
		documents = append(documents, document)
	}

	_, err := m.Instance.GetCollection(collection).InsertMany(ctx, documents, options.InsertMany().SetOrdered(false))

	return err
}

func stampBSON(record any, ingestedAt time.Time) (bson.D, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return nil, err
	}

	var document bson.D
	if err := bson.Unmarshal(raw, &document); err != nil {
		return nil, err
	}

	return append(document, bson.E{Key: "ingestedat", Value: ingestedAt}), nil
}
