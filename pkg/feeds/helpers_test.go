package feeds

import (
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

func marshalFeed(t *testing.T, entities ...*gtfs.FeedEntity) []byte {
	t.Helper()

	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(1704067200),
		},
		Entity: entities,
	}

	data, err := proto.Marshal(feed)
	require.NoError(t, err)

	return data
}

func decodeFeed(t *testing.T, entities ...*gtfs.FeedEntity) *FeedMessage {
	t.Helper()

	feed, err := Decode(marshalFeed(t, entities...))
	require.NoError(t, err)

	return feed
}

func vehicleEntity(id, tripID, routeID string) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String(id),
		Vehicle: &gtfs.VehiclePosition{
			Trip: &gtfs.TripDescriptor{
				TripId:    proto.String(tripID),
				RouteId:   proto.String(routeID),
				StartDate: proto.String("20240101"),
			},
			Position: &gtfs.Position{
				Longitude: proto.Float32(-73.5),
				Latitude:  proto.Float32(45.5),
			},
			CurrentStopSequence: proto.Uint32(3),
			CurrentStatus:       gtfs.VehiclePosition_IN_TRANSIT_TO.Enum(),
			OccupancyStatus:     gtfs.VehiclePosition_MANY_SEATS_AVAILABLE.Enum(),
		},
	}
}

func stopTimeUpdate(sequence uint32, stopID string, arrival int64) *gtfs.TripUpdate_StopTimeUpdate {
	return &gtfs.TripUpdate_StopTimeUpdate{
		StopSequence: proto.Uint32(sequence),
		StopId:       proto.String(stopID),
		Arrival:      &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(arrival)},
		Departure:    &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(arrival + 30)},
	}
}

func tripUpdateEntity(id, tripID, routeID string, updates ...*gtfs.TripUpdate_StopTimeUpdate) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String(id),
		TripUpdate: &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{
				TripId:      proto.String(tripID),
				RouteId:     proto.String(routeID),
				DirectionId: proto.Uint32(0),
			},
			StopTimeUpdate: updates,
		},
	}
}

// withDepartureOccupancy puts departure_occupancy_status (field 7) on the wire
// for a stop time update.
func withDepartureOccupancy(update *gtfs.TripUpdate_StopTimeUpdate, value uint64) *gtfs.TripUpdate_StopTimeUpdate {
	field := protowire.AppendTag(nil, 7, protowire.VarintType)
	field = protowire.AppendVarint(field, value)

	message := update.ProtoReflect()
	message.SetUnknown(append(message.GetUnknown(), field...))

	return update
}
