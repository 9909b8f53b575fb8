package cli

import (
	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/config"
	"github.com/pfrederiksen/rugby-fixtures/internal/schedule"
	"github.com/pfrederiksen/rugby-fixtures/internal/scraper"
)

// NewAggregator wires the fetch pipeline described by cfg. A nil start means
// the current month in the source region.
func NewAggregator(cfg *config.Config, start *civiltime.Month) (*schedule.Aggregator, error) {
	resolver, err := civiltime.NewResolver(cfg.Source.Region)
	if err != nil {
		return nil, errors.Wrap(err, "source region")
	}

	var fetcher scraper.Fetcher
	if cfg.Source.UseBrowser {
		fetcher = scraper.NewBrowserFetcher(cfg.Source.Timeout)
	} else {
		fetcher = scraper.NewHTTPFetcher(cfg.Source.UserAgent, cfg.Source.Timeout)
	}

	sc, err := scraper.New(scraper.Options{
		URLTemplate:          cfg.Source.URLTemplate,
		Fetcher:              fetcher,
		Extractor:            scraper.NewBBCExtractor(cfg.Source.AnchorID, cfg.Source.TeamNameClass),
		Resolver:             resolver,
		MissingAnchorIsEmpty: cfg.Source.MissingAnchorIsEmpty,
	})
	if err != nil {
		return nil, err
	}

	loop := schedule.NewLoop(sc, cfg.Source.MaxMonths)
	return schedule.NewAggregator(loop, schedule.AggregatorOptions{
		Resolver:    resolver,
		Concurrency: cfg.Concurrency,
		Start:       start,
	}), nil
}
