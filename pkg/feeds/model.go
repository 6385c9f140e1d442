package feeds

import (
	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

type EntityKind string

const (
	EntityKindVehicle    EntityKind = "vehicle"
	EntityKindTripUpdate EntityKind = "trip_update"
	EntityKindAlert      EntityKind = "alert"
	EntityKindUnknown    EntityKind = "unknown"
)

// The GTFS-RT enums are closed proto2 enums, so values outside the published
// set never reach these fields.
type (
	VehicleStopStatus = gtfs.VehiclePosition_VehicleStopStatus
	OccupancyStatus   = gtfs.VehiclePosition_OccupancyStatus
)

// FeedMessage is the decoded form of one GTFS-RT snapshot.
type FeedMessage struct {
	Header   FeedHeader
	Entities []Entity
}

type FeedHeader struct {
	GtfsRealtimeVersion string
	Timestamp           uint64
}

// Entity owns exactly one payload, the one matching Kind.
type Entity struct {
	ID   string
	Kind EntityKind

	Vehicle    *VehicleEntity
	TripUpdate *TripUpdateEntity
	Alert      *AlertEntity
}

type VehicleEntity struct {
	Position *Position
	Trip     *TripReference

	CurrentStopSequence uint32
	CurrentStatus       VehicleStopStatus
	OccupancyStatus     OccupancyStatus
}

type Position struct {
	Longitude float64
	Latitude  float64
}

type TripReference struct {
	TripID      string
	RouteID     string
	DirectionID uint32
	StartDate   string
}

type TripUpdateEntity struct {
	Trip            *TripReference
	StopTimeUpdates []StopTimeUpdate
}

type StopTimeUpdate struct {
	StopSequence             uint32
	StopID                   string
	ArrivalTime              int64
	DepartureTime            int64
	DepartureOccupancyStatus OccupancyStatus
}
