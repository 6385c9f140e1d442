package config

import "time"

type FeedKind string

const (
	FeedVehicles FeedKind = "vehicles"
	FeedTrips    FeedKind = "trips"
	FeedAlerts   FeedKind = "alerts"
)

// FeedKinds lists the feeds in the order a run processes them.
var FeedKinds = []FeedKind{FeedVehicles, FeedTrips, FeedAlerts}

// Config is built once at start up and handed to every component that needs it.
type Config struct {
	FeedEndpoints map[FeedKind]string `yaml:"feedEndpoints" validate:"required,dive,keys,oneof=vehicles trips alerts,endkeys,url"`
	APIKey        string              `yaml:"apiKey"`

	TargetLanguage     string `yaml:"targetLanguage" validate:"required"`
	RetainAlertContext bool   `yaml:"retainAlertContext"`

	Interval     time.Duration `yaml:"interval" validate:"gt=0"`
	FetchRetries int           `yaml:"fetchRetries" validate:"gte=0"`
	SinkAttempts int           `yaml:"sinkAttempts" validate:"gte=1"`

	MongoDB       MongoDBConfig       `yaml:"mongodb"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Redis         RedisConfig         `yaml:"redis"`
}

type MongoDBConfig struct {
	Connection  string              `yaml:"connection" validate:"required"`
	Database    string              `yaml:"database" validate:"required"`
	Collections map[FeedKind]string `yaml:"collections" validate:"dive,required"`
}

// ElasticsearchConfig is optional; an empty address disables the index sink.
type ElasticsearchConfig struct {
	Address     string `yaml:"address" validate:"omitempty,url"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	IndexPrefix string `yaml:"indexPrefix"`
}

// RedisConfig is optional; an empty address disables run status recording.
type RedisConfig struct {
	Address   string        `yaml:"address"`
	Password  string        `yaml:"password"`
	Database  int           `yaml:"database" validate:"gte=0"`
	StatusTTL time.Duration `yaml:"statusTTL" validate:"gte=0"`
}

// Collection returns the collection records of the given feed are written to.
func (c *Config) Collection(kind FeedKind) string {
	if name := c.MongoDB.Collections[kind]; name != "" {
		return name
	}

	return defaultCollections[kind]
}
