package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/stmfeed/pkg/config"
)

type Fetcher interface {
	Fetch(ctx context.Context, source string, contentType string) ([]byte, error)
}

type Writer interface {
	Write(ctx context.Context, collection string, records []any) error
}

// Pipeline runs fetch, flatten and write for every configured feed.
type Pipeline struct {
	Config  config.Config
	Fetcher Fetcher
	Writer  Writer
	Formats map[config.FeedKind]Format

	// Status is optional.
	Status StatusRecorder
}

func New(cfg config.Config, fetcher Fetcher, writer Writer) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Fetcher: fetcher,
		Writer:  writer,
		Formats: Formats(cfg),
	}
}

type fetchResult struct {
	feed    config.FeedKind
	payload []byte
	err     error
}

// RunOnce fetches every feed concurrently, then processes each one on its own.
// A failing feed writes nothing and does not stop the others; the failures are
// returned joined.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	startedAt := time.Now()

	fetches := pool.NewWithResults[fetchResult]()
	for _, feed := range config.FeedKinds {
		format, ok := p.Formats[feed]
		if !ok {
			continue
		}

		fetches.Go(func() fetchResult {
			payload, err := p.Fetcher.Fetch(ctx, p.Config.FeedEndpoints[feed], format.ContentType())
			return fetchResult{feed: feed, payload: payload, err: err}
		})
	}

	payloads := map[config.FeedKind]fetchResult{}
	for _, result := range fetches.Wait() {
		payloads[result.feed] = result
	}

	var errs []error
	for _, feed := range config.FeedKinds {
		result, ok := payloads[feed]
		if !ok {
			continue
		}

		records, err := p.process(ctx, result)

		summary := RunSummary{
			Feed:      feed,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Records:   records,
		}

		if err != nil {
			summary.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s feed: %w", feed, err))

			log.Error().Err(err).Str("feed", string(feed)).Msg("Feed run failed")
		} else {
			log.Info().Str("feed", string(feed)).Int("records", records).Str("duration", summary.Duration.String()).Msg("Feed run complete")
		}

		if p.Status != nil {
			if err := p.Status.Record(ctx, summary); err != nil {
				log.Warn().Err(err).Str("feed", string(feed)).Msg("Failed to record run status")
			}
		}
	}

	return errors.Join(errs...)
}

func (p *Pipeline) process(ctx context.Context, result fetchResult) (int, error) {
	if result.err != nil {
		return 0, result.err
	}

	records, err := p.Formats[result.feed].Flatten(result.payload)
	if err != nil {
		return 0, err
	}

	if err := p.Writer.Write(ctx, p.Config.Collection(result.feed), records); err != nil {
		return 0, err
	}

	return len(records), nil
}

// Run calls RunOnce straight away and then every Interval until ctx is done.
// Failed runs are logged and the schedule carries on.
func (p *Pipeline) Run(ctx context.Context) error {
	log.Info().Str("interval", p.Config.Interval.String()).Msg("Starting feed pipeline")

	ticker := time.NewTicker(p.Config.Interval)
	defer ticker.Stop()

	for {
		startTime := time.Now()

		if err := p.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Run finished with failures")
		}

		log.Info().Msgf("Operation took %s", time.Since(startTime).String())

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
