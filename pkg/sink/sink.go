package sink

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Sink persists flattened records into a named collection.
type Sink interface {
	InsertOne(ctx context.Context, collection string, record any) error
	InsertMany(ctx context.Context, collection string, records []any) error
}

// Writer picks single or batch inserts and retries failed writes.
//
// Sink is the primary store and decides whether a write failed. Secondary
// sinks are written after the primary succeeds, each with its own retries;
// their failures are logged and never cause the primary to be written again.
type Writer struct {
	Sink      Sink
	Secondary []Sink
	Attempts  int

	NewBackOff func() backoff.BackOff
}

func NewWriter(sink Sink, attempts int, secondary ...Sink) *Writer {
	return &Writer{
		Sink:      sink,
		Secondary: secondary,
		Attempts:  attempts,
		NewBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Write stores records; nothing is written for an empty slice.
func (w *Writer) Write(ctx context.Context, collection string, records []any) error {
	if len(records) == 0 {
		return nil
	}

	if err := w.write(ctx, w.Sink, collection, records); err != nil {
		return fmt.Errorf("writing %d records to %s: %w", len(records), collection, err)
	}

	for _, secondary := range w.Secondary {
		if err := w.write(ctx, secondary, collection, records); err != nil {
			log.Error().Err(err).Str("collection", collection).Int("records", len(records)).Msg("Secondary write failed")
		}
	}

	return nil
}

func (w *Writer) write(ctx context.Context, sink Sink, collection string, records []any) error {
	retries := 0
	if w.Attempts > 1 {
		retries = w.Attempts - 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(w.NewBackOff(), uint64(retries)), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++

		var err error
		if len(records) == 1 {
			err = sink.InsertOne(ctx, collection, records[0])
		} else {
			err = sink.InsertMany(ctx, collection, records)
		}

		if err != nil {
			log.Warn().Err(err).Str("collection", collection).Int("attempt", attempt).Msg("Write failed")
		}

		return err
	}, policy)
}

// ToRecords converts a typed record slice into the form sinks accept.
func ToRecords[T any](records []T) []any {
	converted := make([]any, 0, len(records))
	for _, record := range records {
		converted = append(converted, record)
	}

	return converted
}
