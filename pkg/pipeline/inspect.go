package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/kr/pretty"
	"github.com/travigo/stmfeed/pkg/feeds"
	"github.com/urfave/cli/v2"
)

const (
	InspectVehicles   = "vehicles"
	InspectTrips      = "trips"
	InspectAlerts     = "alerts"
	InspectFeedAlerts = "feed-alerts"
)

func RegisterInspectCLI() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Flatten a saved feed payload and print the records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to a saved payload",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "kind",
				Usage:    "Payload kind: vehicles, trips, alerts or feed-alerts",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: pretty or csv",
				Value: "pretty",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Description language kept for alerts",
				Value: feeds.DefaultLanguage,
			},
			&cli.BoolFlag{
				Name:  "context",
				Usage: "Keep cause, effect and active period on alert records",
			},
		},
		Action: func(c *cli.Context) error {
			payload, err := os.ReadFile(c.String("file"))
			if err != nil {
				return err
			}

			records, err := flattenPayload(c.String("kind"), payload, feeds.AlertOptions{
				TargetLanguage: c.String("language"),
				RetainContext:  c.Bool("context"),
			})
			if err != nil {
				return err
			}

			return render(c.App.Writer, records, c.String("format"))
		},
	}
}

// flattenPayload returns a typed record slice so the CSV output gets its header.
func flattenPayload(kind string, payload []byte, opts feeds.AlertOptions) (any, error) {
	switch kind {
	case InspectVehicles, InspectTrips, InspectFeedAlerts:
		feed, err := feeds.Decode(payload)
		if err != nil {
			return nil, err
		}

		switch kind {
		case InspectVehicles:
			return feeds.FlattenVehicles(feed)
		case InspectTrips:
			return feeds.FlattenTripUpdates(feed)
		default:
			return feeds.FlattenFeedAlerts(feed, opts)
		}
	case InspectAlerts:
		status, err := feeds.DecodeServiceStatus(payload)
		if err != nil {
			return nil, err
		}

		return feeds.FlattenAlerts(status, opts)
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
}

func render(w io.Writer, records any, format string) error {
	switch format {
	case "pretty":
		_, err := pretty.Fprintf(w, "%# v\n", records)
		return err
	case "csv":
		return gocsv.Marshal(records, w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
