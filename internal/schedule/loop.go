package schedule

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
	"github.com/pfrederiksen/rugby-fixtures/internal/logger"
)

// DefaultMaxMonths bounds how far ahead a team's fixtures are searched
const DefaultMaxMonths = 12

// MonthFetcher returns one team's fixtures for one calendar month
type MonthFetcher interface {
	FetchMonth(ctx context.Context, team string, month civiltime.Month) (*fixture.List, error)
}

// Loop pages through a team's fixtures a month at a time
type Loop struct {
	source    MonthFetcher
	maxMonths int
}

// NewLoop creates a Loop. maxMonths <= 0 selects DefaultMaxMonths.
func NewLoop(source MonthFetcher, maxMonths int) *Loop {
	if maxMonths <= 0 {
		maxMonths = DefaultMaxMonths
	}
	return &Loop{source: source, maxMonths: maxMonths}
}

// FetchForTeam collects at least quota fixtures for team, starting at start
// and moving forward one month per fetch. The result is not truncated and may
// exceed quota. It fails with fixture.ErrQuotaUnreachable when maxMonths
// pages have been fetched without reaching quota. Errors are returned as
// *fixture.FetchError.
func (l *Loop) FetchForTeam(ctx context.Context, team string, quota int, start civiltime.Month) (*fixture.List, error) {
	collected := fixture.NewList(quota)
	if quota <= 0 {
		return collected, nil
	}

	month := start
	for fetched := 0; ; fetched++ {
		if fetched == l.maxMonths {
			return nil, &fixture.FetchError{
				Team:  team,
				Month: month.String(),
				Err: errors.Mark(
					errors.Newf("collected %d of %d fixtures in %d months from %s",
						collected.Len(), quota, fetched, start),
					fixture.ErrQuotaUnreachable),
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, asFetchError(team, month, err)
		}

		page, err := l.source.FetchMonth(ctx, team, month)
		if err != nil {
			return nil, asFetchError(team, month, err)
		}
		collected.Append(page)

		logger.Debug("collected month", logger.Fields{
			"team":      team,
			"month":     month.String(),
			"page":      page.Len(),
			"collected": collected.Len(),
			"quota":     quota,
		})

		if collected.Len() >= quota {
			return collected, nil
		}
		month = month.Next()
	}
}

// asFetchError attaches team and month context unless err already carries it
func asFetchError(team string, month civiltime.Month, err error) error {
	var fe *fixture.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &fixture.FetchError{Team: team, Month: month.String(), Err: err}
}
