package sink

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/stmfeed/pkg/feeds"
)

type fakeCluster struct {
	mutex    sync.Mutex
	paths    []string
	bodies   []string
	failBulk bool
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	var lines []string
	scanner := bufio.NewScanner(r.Body)
	for scanner.Scan() {
		if scanner.Text() != "" {
			lines = append(lines, scanner.Text())
		}
	}

	f.mutex.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.bodies = append(f.bodies, strings.Join(lines, "\n"))
	f.mutex.Unlock()

	if !strings.HasSuffix(r.URL.Path, "/_bulk") {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"result": "created"}`)
		return
	}

	status := 201
	if f.failBulk {
		status = 400
	}

	items := make([]string, 0, len(lines)/2)
	for range len(lines) / 2 {
		if status == 201 {
			items = append(items, `{"index": {"status": 201}}`)
		} else {
			items = append(items, `{"index": {"status": 400, "error": {"type": "mapper_parsing_exception", "reason": "bad"}}}`)
		}
	}
	fmt.Fprintf(w, `{"took": 1, "errors": %t, "items": [%s]}`, f.failBulk, strings.Join(items, ","))
}

func newElasticSink(t *testing.T, cluster *fakeCluster) *ElasticSink {
	t.Helper()

	server := httptest.NewServer(cluster)
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	return NewElasticSink(client, "stmfeed")
}

func TestElasticSinkInsertOne(t *testing.T) {
	cluster := &fakeCluster{}

	err := newElasticSink(t, cluster).InsertOne(context.Background(), "etat_service", feeds.AlertRecord{RouteShortName: "10", Text: "Retard"})
	require.NoError(t, err)

	require.Len(t, cluster.paths, 1)
	assert.Equal(t, "/stmfeed-etat_service/_doc", cluster.paths[0])
	assert.Contains(t, cluster.bodies[0], `"route_short_name":"10"`)
	assert.Contains(t, cluster.bodies[0], `"ingestedat"`)
}

func TestElasticSinkInsertMany(t *testing.T) {
	cluster := &fakeCluster{}

	records := ToRecords([]feeds.TripStopRecord{{TripID: "T1", StopSequence: 1}, {TripID: "T1", StopSequence: 2}})
	err := newElasticSink(t, cluster).InsertMany(context.Background(), "trip_updates", records)
	require.NoError(t, err)

	require.Len(t, cluster.paths, 1)
	assert.Equal(t, "/stmfeed-trip_updates/_bulk", cluster.paths[0])
	assert.Equal(t, 2, strings.Count(cluster.bodies[0], `"trip_id":"T1"`))
}

func TestElasticSinkInsertManyFailures(t *testing.T) {
	cluster := &fakeCluster{failBulk: true}

	records := ToRecords([]feeds.TripStopRecord{{TripID: "T1"}, {TripID: "T2"}})
	err := newElasticSink(t, cluster).InsertMany(context.Background(), "trip_updates", records)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}
