package elastic_client

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
	"github.com/travigo/stmfeed/pkg/config"
)

// Connect returns a client for the configured cluster, or nil when no address is set.
func Connect(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	if cfg.Address == "" {
		log.Info().Msg("Skipping Elasticsearch setup")
		return nil, nil
	}

	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Address},
		Username:  cfg.Username,
		Password:  cfg.Password,

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return nil, err
	}

	res, err := es.Info()
	if err != nil {
		return nil, err
	}
	res.Body.Close()

	log.Info().Msgf("Elasticsearch client setup for %s", cfg.Address)

	return es, nil
}
