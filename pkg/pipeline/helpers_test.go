package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/stretchr/testify/require"
	"github.com/travigo/stmfeed/pkg/config"
	"google.golang.org/protobuf/proto"
)

const statusDocument = `{
	"header": {"timestamp": 1704067200},
	"alerts": [{
		"informed_entities": [{"route_short_name": "24", "direction_id": "1"}],
		"description_texts": [{"language": "fr", "text": "Détour"}]
	}]
}`

func marshalFeed(t *testing.T, entities ...*gtfs.FeedEntity) []byte {
	t.Helper()

	data, err := proto.Marshal(&gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(1704067200),
		},
		Entity: entities,
	})
	require.NoError(t, err)

	return data
}

func vehiclesPayload(t *testing.T) []byte {
	return marshalFeed(t,
		&gtfs.FeedEntity{
			Id: proto.String("v1"),
			Vehicle: &gtfs.VehiclePosition{
				Trip:     &gtfs.TripDescriptor{TripId: proto.String("t1"), RouteId: proto.String("10")},
				Position: &gtfs.Position{Longitude: proto.Float32(-73.5), Latitude: proto.Float32(45.5)},
			},
		},
		&gtfs.FeedEntity{
			Id: proto.String("v2"),
			Vehicle: &gtfs.VehiclePosition{
				Trip:     &gtfs.TripDescriptor{TripId: proto.String("t2"), RouteId: proto.String("51")},
				Position: &gtfs.Position{Longitude: proto.Float32(-73.6), Latitude: proto.Float32(45.4)},
			},
		},
	)
}

func tripsPayload(t *testing.T) []byte {
	return marshalFeed(t, &gtfs.FeedEntity{
		Id: proto.String("tu1"),
		TripUpdate: &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{TripId: proto.String("t1"), RouteId: proto.String("10")},
			StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
				{StopSequence: proto.Uint32(1), StopId: proto.String("s1")},
				{StopSequence: proto.Uint32(2), StopId: proto.String("s2")},
				{StopSequence: proto.Uint32(3), StopId: proto.String("s3")},
			},
		},
	})
}

type response struct {
	payload []byte
	err     error
}

type fakeFetcher struct {
	mutex        sync.Mutex
	responses    map[string]response
	contentTypes map[string]string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses:    map[string]response{},
		contentTypes: map[string]string{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, source string, contentType string) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.contentTypes[source] = contentType

	r, ok := f.responses[source]
	if !ok {
		return nil, errors.New("unexpected source " + source)
	}

	return r.payload, r.err
}

type fakeWriter struct {
	writes map[string][]any
	err    error
}

func (w *fakeWriter) Write(ctx context.Context, collection string, records []any) error {
	if w.err != nil {
		return w.err
	}
	if w.writes == nil {
		w.writes = map[string][]any{}
	}
	w.writes[collection] = append(w.writes[collection], records...)
	return nil
}

// memoryStore is an in-process gocache store.
type memoryStore struct {
	mutex  sync.Mutex
	values map[any]any
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[any]any{}}
}

func (m *memoryStore) Get(ctx context.Context, key any) (any, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	value, ok := m.values[key]
	if !ok {
		return nil, errors.New("value not found")
	}
	return value, nil
}

func (m *memoryStore) GetWithTTL(ctx context.Context, key any) (any, time.Duration, error) {
	value, err := m.Get(ctx, key)
	return value, 0, err
}

func (m *memoryStore) Set(ctx context.Context, key any, value any, options ...store.Option) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.values[key] = value
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key any) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.values, key)
	return nil
}

func (m *memoryStore) Invalidate(ctx context.Context, options ...store.InvalidateOption) error {
	return nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.values = map[any]any{}
	return nil
}

func (m *memoryStore) GetType() string {
	return "memory"
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.FeedEndpoints = map[config.FeedKind]string{
		config.FeedVehicles: "https://feeds.test/vehicles",
		config.FeedTrips:    "https://feeds.test/trips",
		config.FeedAlerts:   "https://feeds.test/alerts",
	}
	return cfg
}
