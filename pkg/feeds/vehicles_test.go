package feeds

import (
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestFlattenVehicles(t *testing.T) {
	feed := decodeFeed(t, vehicleEntity("V1", "T1", "R1"))

	records, err := FlattenVehicles(feed)
	require.NoError(t, err)

	assert.Equal(t, []VehicleRecord{
		{
			ID:                  "V1",
			Longitude:           -73.5,
			Latitude:            45.5,
			TripID:              "T1",
			RouteID:             "R1",
			StartDate:           "20240101",
			CurrentStopSequence: 3,
			CurrentStatus:       "IN_TRANSIT_TO",
			OccupancyStatus:     "MANY_SEATS_AVAILABLE",
		},
	}, records)
}

func TestFlattenVehiclesCountsOnlyVehicles(t *testing.T) {
	feed := decodeFeed(t,
		vehicleEntity("V1", "T1", "R1"),
		tripUpdateEntity("E1", "T1", "R1", stopTimeUpdate(1, "S1", 100)),
		vehicleEntity("V2", "T2", "R1"),
		&gtfs.FeedEntity{Id: proto.String("X1")},
		vehicleEntity("V3", "T3", "R2"),
	)

	records, err := FlattenVehicles(feed)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "V1", records[0].ID)
	assert.Equal(t, "V2", records[1].ID)
	assert.Equal(t, "V3", records[2].ID)
}

func TestFlattenVehiclesEmptyFeed(t *testing.T) {
	records, err := FlattenVehicles(decodeFeed(t))

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFlattenVehiclesMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		vehicle *VehicleEntity
		field   string
	}{
		{
			name:    "no position",
			vehicle: &VehicleEntity{Trip: &TripReference{TripID: "T1"}},
			field:   "vehicle.position",
		},
		{
			name:    "no trip",
			vehicle: &VehicleEntity{Position: &Position{Longitude: -73.5, Latitude: 45.5}},
			field:   "vehicle.trip",
		},
		{
			name:  "no payload",
			field: "vehicle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &FeedMessage{Entities: []Entity{
				{ID: "V1", Kind: EntityKindVehicle, Vehicle: &VehicleEntity{
					Position: &Position{},
					Trip:     &TripReference{},
				}},
				{ID: "V2", Kind: EntityKindVehicle, Vehicle: tt.vehicle},
			}}

			records, err := FlattenVehicles(feed)
			assert.Nil(t, records)
			require.ErrorIs(t, err, ErrMissingField)

			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, "V2", missing.EntityID)
			assert.Equal(t, tt.field, missing.Field)
		})
	}
}

func TestFlattenVehiclesFromDecodedFeedWithoutPosition(t *testing.T) {
	feed := decodeFeed(t, &gtfs.FeedEntity{
		Id: proto.String("V1"),
		Vehicle: &gtfs.VehiclePosition{
			Trip: &gtfs.TripDescriptor{TripId: proto.String("T1")},
		},
	})

	_, err := FlattenVehicles(feed)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestFlattenVehiclesIsRepeatable(t *testing.T) {
	feed := decodeFeed(t, vehicleEntity("V1", "T1", "R1"), vehicleEntity("V2", "T2", "R2"))

	first, err := FlattenVehicles(feed)
	require.NoError(t, err)
	second, err := FlattenVehicles(feed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
