package feeds

import (
	"cmp"
	"slices"
)

type tripParent struct {
	TripID      string
	RouteID     string
	DirectionID uint32
}

// FlattenTripUpdates returns one TripStopRecord per stop time update.
//
// Parents are joined on the entity id rather than the trip id: two entities
// may reference the same trip and must not be merged. Rows follow entity order,
// then stop sequence within the entity.
func FlattenTripUpdates(feed *FeedMessage) ([]TripStopRecord, error) {
	parents := map[string]tripParent{}

	for _, entity := range feed.Entities {
		if entity.Kind != EntityKindTripUpdate {
			continue
		}

		if entity.TripUpdate == nil {
			return nil, &MissingFieldError{EntityID: entity.ID, Field: "trip_update"}
		}
		if entity.TripUpdate.Trip == nil {
			return nil, &MissingFieldError{EntityID: entity.ID, Field: "trip_update.trip"}
		}
		if _, exists := parents[entity.ID]; exists {
			return nil, &DuplicateEntityError{EntityID: entity.ID}
		}

		parents[entity.ID] = tripParent{
			TripID:      entity.TripUpdate.Trip.TripID,
			RouteID:     entity.TripUpdate.Trip.RouteID,
			DirectionID: entity.TripUpdate.Trip.DirectionID,
		}
	}

	records := []TripStopRecord{}

	for _, entity := range feed.Entities {
		if entity.Kind != EntityKindTripUpdate {
			continue
		}

		parent := parents[entity.ID]

		stopTimeUpdates := slices.Clone(entity.TripUpdate.StopTimeUpdates)
		slices.SortStableFunc(stopTimeUpdates, func(a, b StopTimeUpdate) int {
			return cmp.Compare(a.StopSequence, b.StopSequence)
		})

		for _, stopTimeUpdate := range stopTimeUpdates {
			records = append(records, TripStopRecord{
				TripID:                   parent.TripID,
				RouteID:                  parent.RouteID,
				StopSequence:             stopTimeUpdate.StopSequence,
				ArrivalTime:              stopTimeUpdate.ArrivalTime,
				DepartureTime:            stopTimeUpdate.DepartureTime,
				StopID:                   stopTimeUpdate.StopID,
				DepartureOccupancyStatus: stopTimeUpdate.DepartureOccupancyStatus.String(),
			})
		}
	}

	return records, nil
}
