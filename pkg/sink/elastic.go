package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
)

// ElasticSink indexes records into <prefix>-<collection>.
type ElasticSink struct {
	Client      *elasticsearch.Client
	IndexPrefix string
	Now         func() time.Time
}

func NewElasticSink(client *elasticsearch.Client, indexPrefix string) *ElasticSink {
	return &ElasticSink{Client: client, IndexPrefix: indexPrefix, Now: time.Now}
}

func (e *ElasticSink) indexName(collection string) string {
	if e.IndexPrefix == "" {
		return collection
	}

	return fmt.Sprintf("%s-%s", e.IndexPrefix, collection)
}

func (e *ElasticSink) InsertOne(ctx context.Context, collection string, record any) error {
	document, err := stampJSON(record, e.Now())
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index: e.indexName(collection),
		Body:  bytes.NewReader(document),
	}

	res, err := req.Do(ctx, e.Client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("[%s] error indexing document into %s", res.Status(), req.Index)
	}

	return nil
}

func (e *ElasticSink) InsertMany(ctx context.Context, collection string, records []any) error {
	indexName := e.indexName(collection)

	bulkIndexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client: e.Client,
		Index:  indexName,
	})
	if err != nil {
		return err
	}

	var failuresMutex sync.Mutex
	var failures []error

	ingestedAt := e.Now()
	for _, record := range records {
		document, err := stampJSON(record, ingestedAt)
		if err != nil {
			bulkIndexer.Close(ctx)
			return err
		}

		err = bulkIndexer.Add(ctx, esutil.BulkIndexerItem{
			Action: "index",
			Body:   bytes.NewReader(document),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failuresMutex.Lock()
				defer failuresMutex.Unlock()

				if err != nil {
					failures = append(failures, err)
				} else {
					failures = append(failures, fmt.Errorf("%s: %s", res.Error.Type, res.Error.Reason))
				}
			},
		})
		if err != nil {
			bulkIndexer.Close(ctx)
			return err
		}
	}

	if err := bulkIndexer.Close(ctx); err != nil {
		return err
	}

	stats := bulkIndexer.Stats()
	if stats.NumFailed > 0 {
		log.Error().Uint64("failed", stats.NumFailed).Str("index", indexName).Msg("Failed to index documents")
		return fmt.Errorf("indexing into %s: %w", indexName, errors.Join(failures...))
	}

	return nil
}

func stampJSON(record any, ingestedAt time.Time) ([]byte, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, err
	}
	document["ingestedat"] = ingestedAt.UTC().Format(time.RFC3339)

	return json.Marshal(document)
}
