package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/stmfeed/pkg/pipeline"
	"github.com/travigo/stmfeed/pkg/util"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if util.GetEnvironmentVariable("STMFEED_LOG_FORMAT", "CONSOLE") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if util.GetEnvironmentVariable("STMFEED_DEBUG", "NO") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "stmfeed",
		Description: "Fetches the STM realtime and service status feeds and stores them as flat records",

		Commands: []*cli.Command{
			pipeline.RegisterCLI(),
			pipeline.RegisterInspectCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
