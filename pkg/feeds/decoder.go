package feeds

import (
	"errors"
	"math"
	"strconv"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

var errEmptyPayload = errors.New("empty payload")

// StopTimeUpdate.departure_occupancy_status is newer than the published
// bindings, so it arrives in the message's unknown fields.
const departureOccupancyStatusField protowire.Number = 7

// Decode parses a serialized GTFS-RT FeedMessage.
//
// Scalar fields without presence take the schema default through the generated
// getters, so an unset current_status reads as IN_TRANSIT_TO and an unset
// occupancy_status as EMPTY. Sub-messages keep their presence: a vehicle with no
// position decodes with a nil Position.
//
// A feed entity carrying more than one payload yields one Entity per payload, in
// the order trip_update, vehicle, alert.
func Decode(data []byte) (*FeedMessage, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Feed: "gtfs-rt", Err: errEmptyPayload}
	}

	feed := gtfs.FeedMessage{}
	if err := proto.Unmarshal(data, &feed); err != nil {
		return nil, &DecodeError{Feed: "gtfs-rt", Err: err}
	}

	message := &FeedMessage{
		Header: FeedHeader{
			GtfsRealtimeVersion: feed.GetHeader().GetGtfsRealtimeVersion(),
			Timestamp:           feed.GetHeader().GetTimestamp(),
		},
		Entities: make([]Entity, 0, len(feed.GetEntity())),
	}

	for _, feedEntity := range feed.GetEntity() {
		message.Entities = append(message.Entities, decodeEntity(feedEntity)...)
	}

	return message, nil
}

func decodeEntity(feedEntity *gtfs.FeedEntity) []Entity {
	id := feedEntity.GetId()

	var entities []Entity

	if tripUpdate := feedEntity.GetTripUpdate(); tripUpdate != nil {
		entities = append(entities, Entity{
			ID:         id,
			Kind:       EntityKindTripUpdate,
			TripUpdate: decodeTripUpdate(tripUpdate),
		})
	}

	if vehicle := feedEntity.GetVehicle(); vehicle != nil {
		entities = append(entities, Entity{
			ID:      id,
			Kind:    EntityKindVehicle,
			Vehicle: decodeVehicle(vehicle),
		})
	}

	if alert := feedEntity.GetAlert(); alert != nil {
		entities = append(entities, Entity{
			ID:    id,
			Kind:  EntityKindAlert,
			Alert: decodeAlert(alert),
		})
	}

	if len(entities) == 0 {
		entities = append(entities, Entity{ID: id, Kind: EntityKindUnknown})
	}

	return entities
}

func decodeTrip(trip *gtfs.TripDescriptor) *TripReference {
	if trip == nil {
		return nil
	}

	return &TripReference{
		TripID:      trip.GetTripId(),
		RouteID:     trip.GetRouteId(),
		DirectionID: trip.GetDirectionId(),
		StartDate:   trip.GetStartDate(),
	}
}

func decodeVehicle(vehicle *gtfs.VehiclePosition) *VehicleEntity {
	decoded := &VehicleEntity{
		Trip:                decodeTrip(vehicle.GetTrip()),
		CurrentStopSequence: vehicle.GetCurrentStopSequence(),
		CurrentStatus:       vehicle.GetCurrentStatus(),
		OccupancyStatus:     vehicle.GetOccupancyStatus(),
	}

	if position := vehicle.GetPosition(); position != nil {
		decoded.Position = &Position{
			Longitude: float64(position.GetLongitude()),
			Latitude:  float64(position.GetLatitude()),
		}
	}

	return decoded
}

func decodeTripUpdate(tripUpdate *gtfs.TripUpdate) *TripUpdateEntity {
	decoded := &TripUpdateEntity{
		Trip:            decodeTrip(tripUpdate.GetTrip()),
		StopTimeUpdates: make([]StopTimeUpdate, 0, len(tripUpdate.GetStopTimeUpdate())),
	}

	for _, stopTimeUpdate := range tripUpdate.GetStopTimeUpdate() {
		decoded.StopTimeUpdates = append(decoded.StopTimeUpdates, StopTimeUpdate{
			StopSequence:             stopTimeUpdate.GetStopSequence(),
			StopID:                   stopTimeUpdate.GetStopId(),
			ArrivalTime:              stopTimeUpdate.GetArrival().GetTime(),
			DepartureTime:            stopTimeUpdate.GetDeparture().GetTime(),
			DepartureOccupancyStatus: departureOccupancyStatus(stopTimeUpdate),
		})
	}

	return decoded
}

func decodeAlert(alert *gtfs.Alert) *AlertEntity {
	decoded := &AlertEntity{
		Cause:  AlertCause(alert.GetCause()),
		Effect: AlertEffect(alert.GetEffect()),
	}

	// Only the first active period is kept, matching the service status feed.
	if periods := alert.GetActivePeriod(); len(periods) > 0 {
		if periods[0].Start != nil {
			start := int64(periods[0].GetStart())
			decoded.ActivePeriod.Start = &start
		}
		if periods[0].End != nil {
			end := int64(periods[0].GetEnd())
			decoded.ActivePeriod.End = &end
		}
	}

	for _, selector := range alert.GetInformedEntity() {
		informed := InformedEntity{RouteShortName: selector.GetRouteId()}
		if trip := selector.GetTrip(); trip != nil && trip.DirectionId != nil {
			informed.DirectionID = DirectionID(strconv.FormatUint(uint64(trip.GetDirectionId()), 10))
		}

		decoded.InformedEntities = append(decoded.InformedEntities, informed)
	}

	for _, translation := range alert.GetDescriptionText().GetTranslation() {
		decoded.DescriptionTexts = append(decoded.DescriptionTexts, DescriptionText{
			Language: translation.GetLanguage(),
			Text:     translation.GetText(),
		})
	}

	return decoded
}

// departureOccupancyStatus reads field 7 of a StopTimeUpdate, defaulting to
// EMPTY when it is absent or holds a value outside the enum. The last
// occurrence wins, as for any repeated scalar on the wire.
func departureOccupancyStatus(stopTimeUpdate *gtfs.TripUpdate_StopTimeUpdate) OccupancyStatus {
	status := gtfs.VehiclePosition_EMPTY

	unknown := stopTimeUpdate.ProtoReflect().GetUnknown()
	for len(unknown) > 0 {
		number, wireType, n := protowire.ConsumeTag(unknown)
		if n < 0 {
			break
		}
		unknown = unknown[n:]

		if number == departureOccupancyStatusField && wireType == protowire.VarintType {
			value, m := protowire.ConsumeVarint(unknown)
			if m < 0 {
				break
			}
			unknown = unknown[m:]

			if _, known := gtfs.VehiclePosition_OccupancyStatus_name[int32(value)]; known && value <= math.MaxInt32 {
				status = gtfs.VehiclePosition_OccupancyStatus(value)
			}
			continue
		}

		m := protowire.ConsumeFieldValue(number, wireType, unknown)
		if m < 0 {
			break
		}
		unknown = unknown[m:]
	}

	return status
}
