package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/stmfeed/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	defaultVehiclesURL = "https://api.stm.info/pub/od/gtfs-rt/ic/v2/vehiclePositions"
	defaultTripsURL    = "https://api.stm.info/pub/od/gtfs-rt/ic/v2/tripUpdates"
	defaultAlertsURL   = "https://api.stm.info/pub/od/i3/v2/messages/etatservice"

	defaultMongoConnectionString = "mongodb://localhost:27017/"
	defaultMongoDatabase         = "gtfs"
)

var defaultCollections = map[FeedKind]string{
	FeedVehicles: "vehicle_positions",
	FeedTrips:    "trip_updates",
	FeedAlerts:   "etat_service",
}

// Default returns the configuration used when neither a file nor the environment overrides it.
func Default() Config {
	collections := map[FeedKind]string{}
	for kind, name := range defaultCollections {
		collections[kind] = name
	}

	return Config{
		FeedEndpoints: map[FeedKind]string{
			FeedVehicles: defaultVehiclesURL,
			FeedTrips:    defaultTripsURL,
			FeedAlerts:   defaultAlertsURL,
		},
		TargetLanguage: "fr",
		Interval:       5 * time.Minute,
		FetchRetries:   2,
		SinkAttempts:   2,
		MongoDB: MongoDBConfig{
			Connection:  defaultMongoConnectionString,
			Database:    defaultMongoDatabase,
			Collections: collections,
		},
		Elasticsearch: ElasticsearchConfig{
			IndexPrefix: "stmfeed",
		},
		Redis: RedisConfig{
			StatusTTL: 24 * time.Hour,
		},
	}
}

// Load builds the configuration from the defaults, the optional YAML file at
// path and then the STMFEED_* environment variables, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := applyEnvironment(&cfg, util.GetEnvironmentVariables()); err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func Validate(cfg Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, kind := range FeedKinds {
		if cfg.FeedEndpoints[kind] == "" {
			return fmt.Errorf("invalid config: no endpoint for %s feed", kind)
		}
	}

	return nil
}

func applyEnvironment(cfg *Config, env map[string]string) error {
	overrides := map[string]*string{
		"STMFEED_API_KEY":                &cfg.APIKey,
		"STMFEED_TARGET_LANGUAGE":        &cfg.TargetLanguage,
		"STMFEED_MONGODB_CONNECTION":     &cfg.MongoDB.Connection,
		"STMFEED_MONGODB_DATABASE":       &cfg.MongoDB.Database,
		"STMFEED_ELASTICSEARCH_ADDRESS":  &cfg.Elasticsearch.Address,
		"STMFEED_ELASTICSEARCH_USERNAME": &cfg.Elasticsearch.Username,
		"STMFEED_ELASTICSEARCH_PASSWORD": &cfg.Elasticsearch.Password,
		"STMFEED_REDIS_ADDRESS":          &cfg.Redis.Address,
		"STMFEED_REDIS_PASSWORD":         &cfg.Redis.Password,
	}

	for key, target := range overrides {
		if env[key] != "" {
			*target = env[key]
		}
	}

	endpoints := map[string]FeedKind{
		"STMFEED_VEHICLES_URL": FeedVehicles,
		"STMFEED_TRIPS_URL":    FeedTrips,
		"STMFEED_ALERTS_URL":   FeedAlerts,
	}

	for key, kind := range endpoints {
		if env[key] != "" {
			if cfg.FeedEndpoints == nil {
				cfg.FeedEndpoints = map[FeedKind]string{}
			}
			cfg.FeedEndpoints[kind] = env[key]
		}
	}

	if env["STMFEED_REDIS_DATABASE"] != "" {
		n, err := strconv.Atoi(env["STMFEED_REDIS_DATABASE"])
		if err != nil {
			return fmt.Errorf("STMFEED_REDIS_DATABASE: %w", err)
		}
		cfg.Redis.Database = n
	}

	if env["STMFEED_INTERVAL"] != "" {
		interval, err := time.ParseDuration(env["STMFEED_INTERVAL"])
		if err != nil {
			return fmt.Errorf("STMFEED_INTERVAL: %w", err)
		}
		cfg.Interval = interval
	}

	return nil
}
