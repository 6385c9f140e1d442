package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const (
	ContentTypeProtobuf = "application/x-protobuf"
	ContentTypeJSON     = "application/json"
)

// Client downloads feed payloads, retrying failed attempts with exponential backoff.
type Client struct {
	HTTPClient *http.Client
	APIKey     string
	Retries    int

	// NewBackOff builds the retry policy of one Fetch call.
	NewBackOff func() backoff.BackOff
}

func NewClient(apiKey string, retries int) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		Retries:    retries,
		NewBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Fetch returns the body of a successful GET on source. The API key is sent
// in the apiKey header as the STM endpoints expect. An empty body is returned
// as is; rejecting it is the decoder's job.
func (c *Client) Fetch(ctx context.Context, source string, contentType string) ([]byte, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(c.NewBackOff(), uint64(c.Retries)), ctx)

	attempt := 0
	var body []byte

	err := backoff.Retry(func() error {
		attempt++

		var err error
		body, err = c.get(ctx, source, contentType)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}

			log.Warn().Err(err).Str("source", source).Int("attempt", attempt).Msg("Feed download failed")
			return err
		}

		return nil
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, source string, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	if c.APIKey != "" {
		req.Header.Set("apiKey", c.APIKey)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", contentType)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, source)
	}

	return io.ReadAll(resp.Body)
}
