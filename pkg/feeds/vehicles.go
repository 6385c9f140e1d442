package feeds

// FlattenVehicles returns one VehicleRecord per vehicle entity, in feed order.
// A vehicle without a position or trip reference fails the whole feed.
func FlattenVehicles(feed *FeedMessage) ([]VehicleRecord, error) {
	records := []VehicleRecord{}

	for _, entity := range feed.Entities {
		if entity.Kind != EntityKindVehicle {
			continue
		}

		vehicle := entity.Vehicle
		if vehicle == nil {
			return nil, &MissingFieldError{EntityID: entity.ID, Field: "vehicle"}
		}
		if vehicle.Position == nil {
			return nil, &MissingFieldError{EntityID: entity.ID, Field: "vehicle.position"}
		}
		if vehicle.Trip == nil {
			return nil, &MissingFieldError{EntityID: entity.ID, Field: "vehicle.trip"}
		}

		records = append(records, VehicleRecord{
			ID:                  entity.ID,
			Longitude:           vehicle.Position.Longitude,
			Latitude:            vehicle.Position.Latitude,
			TripID:              vehicle.Trip.TripID,
			RouteID:             vehicle.Trip.RouteID,
			StartDate:           vehicle.Trip.StartDate,
			CurrentStopSequence: vehicle.CurrentStopSequence,
			CurrentStatus:       vehicle.CurrentStatus.String(),
			OccupancyStatus:     vehicle.OccupancyStatus.String(),
		})
	}

	return records, nil
}
