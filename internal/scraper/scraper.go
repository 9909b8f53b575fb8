package scraper

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
	"github.com/pfrederiksen/rugby-fixtures/internal/logger"
)

const (
	FixturesURLTemplate = "https://www.bbc.com/sport/rugby-union/teams/PLACEHOLDER/scores-fixtures/"
	TeamPlaceholder     = "PLACEHOLDER"
	UserAgent           = "rugby-fixtures/1.0 (github.com/pfrederiksen/rugby-fixtures)"
	Timeout             = 30 * time.Second
)

// Fetcher returns the body of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages with a plain HTTP GET
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher. Zero values select UserAgent and Timeout.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	if userAgent == "" {
		userAgent = UserAgent
	}
	if timeout <= 0 {
		timeout = Timeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Fetch performs one GET request. Failures are marked fixture.ErrNetwork and
// are never retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "creating request"), fixture.ErrNetwork)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "fetching page"), fixture.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Mark(errors.Newf("unexpected status code: %d", resp.StatusCode), fixture.ErrNetwork)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "reading page"), fixture.ErrNetwork)
	}
	return string(body), nil
}

// Options configures a Scraper
type Options struct {
	// URLTemplate contains TeamPlaceholder; the month is appended as YYYY-MM.
	URLTemplate string
	Fetcher     Fetcher
	Extractor   Extractor
	Resolver    *civiltime.Resolver
	// MissingAnchorIsEmpty treats a page without the fixture anchor as a
	// month with no fixtures instead of an error.
	MissingAnchorIsEmpty bool
}

// Scraper fetches and extracts one team's fixtures for one month at a time
type Scraper struct {
	urlTemplate          string
	fetcher              Fetcher
	extractor            Extractor
	resolver             *civiltime.Resolver
	missingAnchorIsEmpty bool
}

// New creates a Scraper. Missing options fall back to the BBC defaults.
func New(opts Options) (*Scraper, error) {
	s := &Scraper{
		urlTemplate:          opts.URLTemplate,
		fetcher:              opts.Fetcher,
		extractor:            opts.Extractor,
		resolver:             opts.Resolver,
		missingAnchorIsEmpty: opts.MissingAnchorIsEmpty,
	}
	if s.urlTemplate == "" {
		s.urlTemplate = FixturesURLTemplate
	}
	if !strings.Contains(s.urlTemplate, TeamPlaceholder) {
		return nil, errors.Newf("url template %q has no %s", s.urlTemplate, TeamPlaceholder)
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher("", 0)
	}
	if s.extractor == nil {
		s.extractor = NewBBCExtractor("", "")
	}
	if s.resolver == nil {
		r, err := civiltime.NewResolver(civiltime.DefaultRegion)
		if err != nil {
			return nil, err
		}
		s.resolver = r
	}
	return s, nil
}

// PageURL builds the fixture page URL for a team and month
func PageURL(template, team string, month civiltime.Month) string {
	return strings.ReplaceAll(template, TeamPlaceholder, team) + month.String()
}

// FetchMonth fetches one month's page for team and returns its fixtures.
// Errors are returned as *fixture.FetchError.
func (s *Scraper) FetchMonth(ctx context.Context, team string, month civiltime.Month) (*fixture.List, error) {
	url := PageURL(s.urlTemplate, team, month)
	fail := func(err error) error {
		return &fixture.FetchError{Team: team, Month: month.String(), URL: url, Err: err}
	}

	start := time.Now()
	body, err := s.fetcher.Fetch(ctx, url)
	logger.RecordTiming("page.fetch", time.Since(start))
	if err != nil {
		return nil, fail(err)
	}
	logger.IncrCounter("pages.fetched")

	list, err := s.parseFixtures(strings.NewReader(body), month.Year)
	if err != nil {
		if s.missingAnchorIsEmpty && errors.Is(err, fixture.ErrStructureNotFound) {
			logger.Warn("fixture anchor missing, treating month as empty", logger.Fields{
				"team":  team,
				"month": month.String(),
				"url":   url,
			})
			return fixture.NewList(0), nil
		}
		return nil, fail(err)
	}

	logger.AddCounter("fixtures.extracted", int64(list.Len()))
	logger.Debug("fetched fixture page", logger.Fields{
		"team":     team,
		"month":    month.String(),
		"url":      url,
		"fixtures": list.Len(),
	})
	return list, nil
}

// parseFixtures extracts fixtures from a page body, resolving kickoffs in year
func (s *Scraper) parseFixtures(r io.Reader, year int) (*fixture.List, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML")
	}

	batch, err := s.extractor.Extract(doc)
	if err != nil {
		return nil, err
	}
	return batch.Fixtures(s.resolver, year)
}
