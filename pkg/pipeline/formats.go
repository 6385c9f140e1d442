package pipeline

import (
	"github.com/travigo/stmfeed/pkg/config"
	"github.com/travigo/stmfeed/pkg/feeds"
	"github.com/travigo/stmfeed/pkg/fetch"
	"github.com/travigo/stmfeed/pkg/sink"
)

// Format turns one raw payload into the records stored for its feed.
type Format interface {
	ContentType() string
	Flatten(payload []byte) ([]any, error)
}

type VehiclePositions struct{}

func (VehiclePositions) ContentType() string { return fetch.ContentTypeProtobuf }

func (VehiclePositions) Flatten(payload []byte) ([]any, error) {
	feed, err := feeds.Decode(payload)
	if err != nil {
		return nil, err
	}

	records, err := feeds.FlattenVehicles(feed)
	if err != nil {
		return nil, err
	}

	return sink.ToRecords(records), nil
}

type TripUpdates struct{}

func (TripUpdates) ContentType() string { return fetch.ContentTypeProtobuf }

func (TripUpdates) Flatten(payload []byte) ([]any, error) {
	feed, err := feeds.Decode(payload)
	if err != nil {
		return nil, err
	}

	records, err := feeds.FlattenTripUpdates(feed)
	if err != nil {
		return nil, err
	}

	return sink.ToRecords(records), nil
}

type ServiceStatus struct {
	Options feeds.AlertOptions
}

func (ServiceStatus) ContentType() string { return fetch.ContentTypeJSON }

func (s ServiceStatus) Flatten(payload []byte) ([]any, error) {
	status, err := feeds.DecodeServiceStatus(payload)
	if err != nil {
		return nil, err
	}

	records, err := feeds.FlattenAlerts(status, s.Options)
	if err != nil {
		return nil, err
	}

	return sink.ToRecords(records), nil
}

// Formats maps every feed kind to its format for the given configuration.
func Formats(cfg config.Config) map[config.FeedKind]Format {
	return map[config.FeedKind]Format{
		config.FeedVehicles: VehiclePositions{},
		config.FeedTrips:    TripUpdates{},
		config.FeedAlerts: ServiceStatus{
			Options: feeds.AlertOptions{
				TargetLanguage: cfg.TargetLanguage,
				RetainContext:  cfg.RetainAlertContext,
			},
		},
	}
}
