package schedule

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
	"github.com/pfrederiksen/rugby-fixtures/internal/logger"
)

// AggregatorOptions configures an Aggregator
type AggregatorOptions struct {
	// Resolver supplies the source region; each team starts at the current
	// month there. Defaults to UTC.
	Resolver *civiltime.Resolver
	// Concurrency is how many team loops run at once. Values below 1 mean 1.
	Concurrency int
	// Now overrides the clock.
	Now func() time.Time
	// Start overrides the first month fetched for every team.
	Start *civiltime.Month
}

// Aggregator merges several teams' fixtures into one list
type Aggregator struct {
	loop        *Loop
	resolver    *civiltime.Resolver
	concurrency int
	now         func() time.Time
	start       *civiltime.Month
}

// NewAggregator creates an Aggregator around loop
func NewAggregator(loop *Loop, opts AggregatorOptions) *Aggregator {
	a := &Aggregator{
		loop:        loop,
		resolver:    opts.Resolver,
		concurrency: opts.Concurrency,
		now:         opts.Now,
		start:       opts.Start,
	}
	if a.resolver == nil {
		// UTC is always available
		a.resolver, _ = civiltime.NewResolver("UTC")
	}
	if a.concurrency < 1 {
		a.concurrency = 1
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// PerTeamQuota over-fetches so the nearest fixtures overall are not biased
// towards teams with fewer fixtures early on.
func PerTeamQuota(total, teams int) int {
	if teams <= 0 {
		return total
	}
	return max(total*2/teams, total)
}

// StartMonth returns the month every team loop starts from
func (a *Aggregator) StartMonth() civiltime.Month {
	if a.start != nil {
		return *a.start
	}
	return a.resolver.CurrentMonth(a.now())
}

// Aggregate fetches fixtures for every team, sorts them by kickoff and keeps
// the first total. The first team failure aborts the run and cancels the
// other teams.
func (a *Aggregator) Aggregate(ctx context.Context, teams []string, total int) (*fixture.List, error) {
	if len(teams) == 0 {
		return nil, errors.WithStack(fixture.ErrNoTeams)
	}
	merged := fixture.NewList(total)
	if total <= 0 {
		return merged, nil
	}

	quota := PerTeamQuota(total, len(teams))
	start := a.StartMonth()

	logger.Info("fetching fixtures", logger.Fields{
		"teams":       teams,
		"count":       total,
		"per_team":    quota,
		"start":       start.String(),
		"concurrency": a.concurrency,
	})

	results := make([]*fixture.List, len(teams))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, team := range teams {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			list, err := a.loop.FetchForTeam(gctx, team, quota, start)
			if err != nil {
				return err
			}
			results[i] = list
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, list := range results {
		merged.Append(list)
	}
	merged.SortByTime()
	merged.Truncate(total)

	logger.SetGauge("fixtures.returned", float64(merged.Len()))
	return merged, nil
}
