package feeds

// VehicleRecord is one row of the vehicle_positions collection.
type VehicleRecord struct {
	ID                  string  `bson:"id" json:"id" csv:"id"`
	Longitude           float64 `bson:"longitude" json:"longitude" csv:"longitude"`
	Latitude            float64 `bson:"latitude" json:"latitude" csv:"latitude"`
	TripID              string  `bson:"trip_id" json:"trip_id" csv:"trip_id"`
	RouteID             string  `bson:"route_id" json:"route_id" csv:"route_id"`
	StartDate           string  `bson:"start_date" json:"start_date" csv:"start_date"`
	CurrentStopSequence uint32  `bson:"current_stop_sequence" json:"current_stop_sequence" csv:"current_stop_sequence"`
	CurrentStatus       string  `bson:"current_status" json:"current_status" csv:"current_status"`
	OccupancyStatus     string  `bson:"occupancy_status" json:"occupancy_status" csv:"occupancy_status"`
}

// TripStopRecord is one stop event of a trip update, carrying its parent trip's identifiers.
type TripStopRecord struct {
	TripID                   string `bson:"trip_id" json:"trip_id" csv:"trip_id"`
	RouteID                  string `bson:"route_id" json:"route_id" csv:"route_id"`
	StopSequence             uint32 `bson:"stop_sequence" json:"stop_sequence" csv:"stop_sequence"`
	ArrivalTime              int64  `bson:"arrival_time" json:"arrival_time" csv:"arrival_time"`
	DepartureTime            int64  `bson:"departure_time" json:"departure_time" csv:"departure_time"`
	StopID                   string `bson:"stop_id" json:"stop_id" csv:"stop_id"`
	DepartureOccupancyStatus string `bson:"departure_occupancy_status" json:"departure_occupancy_status" csv:"departure_occupancy_status"`
}

// AlertRecord pairs one informed entity of an alert with one of its descriptions.
// The context fields are only filled when AlertOptions.RetainContext is set.
type AlertRecord struct {
	RouteShortName string `bson:"route_short_name" json:"route_short_name" csv:"route_short_name"`
	DirectionID    string `bson:"direction_id" json:"direction_id" csv:"direction_id"`
	Text           string `bson:"text" json:"text" csv:"text"`

	Cause       string `bson:"cause,omitempty" json:"cause,omitempty" csv:"cause"`
	Effect      string `bson:"effect,omitempty" json:"effect,omitempty" csv:"effect"`
	ActiveStart *int64 `bson:"active_start,omitempty" json:"active_start,omitempty" csv:"active_start"`
	ActiveEnd   *int64 `bson:"active_end,omitempty" json:"active_end,omitempty" csv:"active_end"`
}
