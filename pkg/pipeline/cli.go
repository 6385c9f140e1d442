package pipeline

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/stmfeed/pkg/config"
	"github.com/travigo/stmfeed/pkg/database"
	"github.com/travigo/stmfeed/pkg/elastic_client"
	"github.com/travigo/stmfeed/pkg/fetch"
	"github.com/travigo/stmfeed/pkg/redis_client"
	"github.com/travigo/stmfeed/pkg/sink"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Fetch the STM feeds and store the flattened records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a YAML configuration file",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single pass over the feeds and exit",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			pipeline, cleanup, err := build(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if c.Bool("once") {
				return pipeline.RunOnce(ctx)
			}

			return pipeline.Run(ctx)
		},
	}
}

func build(ctx context.Context, cfg config.Config) (*Pipeline, func(), error) {
	collections := make([]string, 0, len(config.FeedKinds))
	for _, kind := range config.FeedKinds {
		collections = append(collections, cfg.Collection(kind))
	}

	mongoInstance, err := database.Connect(ctx, cfg.MongoDB, collections)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := mongoInstance.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}

	var secondary []sink.Sink

	elasticClient, err := elastic_client.Connect(cfg.Elasticsearch)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if elasticClient != nil {
		secondary = append(secondary, sink.NewElasticSink(elasticClient, cfg.Elasticsearch.IndexPrefix))
	}

	pipeline := New(cfg, fetch.NewClient(cfg.APIKey, cfg.FetchRetries), sink.NewWriter(sink.NewMongoSink(mongoInstance), cfg.SinkAttempts, secondary...))

	redisClient, err := redis_client.Connect(ctx, cfg.Redis)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if redisClient != nil {
		pipeline.Status = NewRedisStatusRecorder(redisClient, cfg.Redis.StatusTTL)

		mongoCleanup := cleanup
		cleanup = func() {
			mongoCleanup()
			redisClient.Close()
		}
	}

	return pipeline, cleanup, nil
}
