package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

// stubSource serves canned pages keyed by team and month
type stubSource struct {
	mu     sync.Mutex
	pages  map[string]map[civiltime.Month][]fixture.Fixture
	fail   map[string]error
	calls  []string
	active atomic.Int32
	peak   atomic.Int32
	delay  time.Duration
}

func newStubSource() *stubSource {
	return &stubSource{
		pages: make(map[string]map[civiltime.Month][]fixture.Fixture),
		fail:  make(map[string]error),
	}
}

func (s *stubSource) add(team string, month civiltime.Month, fixtures ...fixture.Fixture) {
	if s.pages[team] == nil {
		s.pages[team] = make(map[civiltime.Month][]fixture.Fixture)
	}
	s.pages[team][month] = append(s.pages[team][month], fixtures...)
}

func (s *stubSource) FetchMonth(ctx context.Context, team string, month civiltime.Month) (*fixture.List, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, team+"/"+month.String())
	page := s.pages[team][month]
	err := s.fail[team]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	list := fixture.NewList(len(page))
	for _, f := range page {
		list.Push(f)
	}
	return list, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func fx(t *testing.T, home, away string, when time.Time) fixture.Fixture {
	t.Helper()
	f, err := fixture.New(home, away, when, "United Rugby Championship")
	require.NoError(t, err)
	return f
}

func at(month civiltime.Month, day, hour int) time.Time {
	return time.Date(month.Year, month.Month, day, hour, 0, 0, 0, time.UTC)
}

var september = civiltime.Month{Year: 2024, Month: time.September}

func TestFetchForTeam_StopsOnceQuotaReached(t *testing.T) {
	src := newStubSource()
	m0, m1, m2 := september, september.Next(), september.Next().Next()
	src.add("leinster", m0, fx(t, "Leinster", "Munster", at(m0, 14, 15)), fx(t, "Ulster", "Leinster", at(m0, 21, 17)))
	src.add("leinster", m1, fx(t, "Leinster", "Glasgow", at(m1, 5, 19)))
	src.add("leinster", m2,
		fx(t, "Leinster", "Ospreys", at(m2, 2, 19)),
		fx(t, "Scarlets", "Leinster", at(m2, 9, 19)),
		fx(t, "Leinster", "Edinburgh", at(m2, 16, 19)),
		fx(t, "Zebre", "Leinster", at(m2, 23, 14)),
	)
	// data past the quota must never be requested
	src.add("leinster", m2.Next(), fx(t, "Leinster", "Benetton", at(m2.Next(), 1, 19)))

	loop := NewLoop(src, 0)
	list, err := loop.FetchForTeam(context.Background(), "leinster", 5, m0)
	require.NoError(t, err)

	assert.Equal(t, 3, src.callCount())
	assert.Equal(t, 7, list.Len(), "loop must not truncate")
	assert.Equal(t, []string{"leinster/2024-09", "leinster/2024-10", "leinster/2024-11"}, src.calls)
}

func TestFetchForTeam_ExactQuotaStopsImmediately(t *testing.T) {
	src := newStubSource()
	src.add("munster", september,
		fx(t, "Munster", "Connacht", at(september, 7, 15)),
		fx(t, "Munster", "Ulster", at(september, 14, 15)),
	)

	list, err := NewLoop(src, 0).FetchForTeam(context.Background(), "munster", 2, september)
	require.NoError(t, err)
	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, 2, list.Len())
}

func TestFetchForTeam_NonPositiveQuota(t *testing.T) {
	src := newStubSource()
	for _, quota := range []int{0, -3} {
		list, err := NewLoop(src, 0).FetchForTeam(context.Background(), "ulster", quota, september)
		require.NoError(t, err)
		assert.Equal(t, 0, list.Len())
	}
	assert.Equal(t, 0, src.callCount())
}

func TestFetchForTeam_EmptyMonthsAdvance(t *testing.T) {
	src := newStubSource()
	december := civiltime.Month{Year: 2024, Month: time.December}
	february := civiltime.Month{Year: 2025, Month: time.February}
	src.add("connacht", february, fx(t, "Connacht", "Dragons", at(february, 8, 15)))

	list, err := NewLoop(src, 0).FetchForTeam(context.Background(), "connacht", 1, december)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
	assert.Equal(t, []string{"connacht/2024-12", "connacht/2025-01", "connacht/2025-02"}, src.calls)
}

func TestFetchForTeam_MonthCap(t *testing.T) {
	src := newStubSource()
	src.add("zebre", september, fx(t, "Zebre", "Benetton", at(september, 21, 14)))

	_, err := NewLoop(src, 3).FetchForTeam(context.Background(), "zebre", 10, september)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fixture.ErrQuotaUnreachable))
	assert.Equal(t, 3, src.callCount())

	var fe *fixture.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "zebre", fe.Team)
	assert.Equal(t, "2024-12", fe.Month)
}

func TestFetchForTeam_SourceErrorIsAnnotated(t *testing.T) {
	src := newStubSource()
	src.fail["ospreys"] = errors.Mark(errors.New("connection refused"), fixture.ErrNetwork)

	_, err := NewLoop(src, 0).FetchForTeam(context.Background(), "ospreys", 1, september)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fixture.ErrNetwork))

	var fe *fixture.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "ospreys", fe.Team)
	assert.Equal(t, "2024-09", fe.Month)
}

func TestFetchForTeam_KeepsExistingFetchError(t *testing.T) {
	src := newStubSource()
	orig := &fixture.FetchError{Team: "ospreys", Month: "2024-09", URL: "https://example.test/ospreys", Err: fixture.ErrStructureNotFound}
	src.fail["ospreys"] = orig

	_, err := NewLoop(src, 0).FetchForTeam(context.Background(), "ospreys", 1, september)
	assert.Same(t, orig, err)
}

func TestFetchForTeam_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := newStubSource()
	_, err := NewLoop(src, 0).FetchForTeam(ctx, "leinster", 1, september)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, src.callCount())
}

func TestPerTeamQuota(t *testing.T) {
	tests := []struct {
		total, teams, want int
	}{
		{total: 5, teams: 1, want: 10},
		{total: 5, teams: 2, want: 5},
		{total: 6, teams: 3, want: 6},
		{total: 10, teams: 3, want: 10},
		{total: 3, teams: 10, want: 3},
		{total: 4, teams: 0, want: 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PerTeamQuota(tt.total, tt.teams), "total=%d teams=%d", tt.total, tt.teams)
	}
}

func TestAggregate_MergesSortsAndTruncates(t *testing.T) {
	src := newStubSource()
	src.add("leinster", september,
		fx(t, "Leinster", "Stade Toulousain", at(september, 28, 19)),
		fx(t, "Leinster", "Munster", at(september, 14, 15)),
		fx(t, "Ulster", "Leinster", at(september, 21, 17)),
	)
	src.add("munster", september,
		fx(t, "Munster", "Connacht", at(september, 7, 15)),
		fx(t, "Munster", "Edinburgh", at(september, 20, 19)),
		fx(t, "Glasgow", "Munster", at(september, 27, 19)),
	)

	agg := NewAggregator(NewLoop(src, 0), AggregatorOptions{Start: &september})
	list, err := agg.Aggregate(context.Background(), []string{"leinster", "munster"}, 3)
	require.NoError(t, err)

	require.Equal(t, 3, list.Len())
	assert.True(t, list.Sorted())

	var days []int
	for f := range list.All() {
		days = append(days, f.When.Day())
	}
	assert.Equal(t, []int{7, 14, 20}, days)
}

func TestAggregate_SortsAcrossMonthPages(t *testing.T) {
	october, november := september.Next(), september.Next().Next()
	src := newStubSource()
	src.add("leinster", september,
		fx(t, "Leinster", "Stade Toulousain", at(september, 28, 19)),
		fx(t, "Leinster", "Munster", at(september, 14, 15)),
	)
	src.add("leinster", october,
		fx(t, "Leinster", "Bath", at(october, 19, 15)),
		fx(t, "Cardiff", "Leinster", at(october, 5, 17)),
	)
	// munster needs three pages; its October page lists kickoffs out of order
	src.add("munster", september, fx(t, "Munster", "Connacht", at(september, 30, 19)))
	src.add("munster", october,
		fx(t, "Munster", "Glasgow", at(october, 12, 15)),
		fx(t, "Benetton", "Munster", at(october, 2, 19)),
	)
	src.add("munster", november, fx(t, "Munster", "Sharks", at(november, 2, 15)))

	agg := NewAggregator(NewLoop(src, 0), AggregatorOptions{Start: &september})
	list, err := agg.Aggregate(context.Background(), []string{"leinster", "munster"}, 4)
	require.NoError(t, err)

	var got []string
	for f := range list.All() {
		got = append(got, f.When.Format("01-02"))
	}
	assert.Equal(t, []string{"09-14", "09-28", "09-30", "10-02"}, got)
	assert.Equal(t, 5, src.callCount())
}

func TestAggregate_HugeTotalDoesNotPreallocate(t *testing.T) {
	src := newStubSource()
	src.add("leinster", september, fx(t, "Leinster", "Munster", at(september, 14, 15)))

	agg := NewAggregator(NewLoop(src, 2), AggregatorOptions{Start: &september})
	var err error
	assert.NotPanics(t, func() {
		_, err = agg.Aggregate(context.Background(), []string{"leinster"}, 1<<40)
	})
	assert.True(t, errors.Is(err, fixture.ErrQuotaUnreachable))
	assert.Equal(t, 2, src.callCount())
}

func TestAggregate_TruncatesToTotal(t *testing.T) {
	src := newStubSource()
	src.add("ulster", september,
		fx(t, "Ulster", "Dragons", at(september, 6, 19)),
		fx(t, "Ulster", "Lions", at(september, 13, 19)),
	)

	agg := NewAggregator(NewLoop(src, 1), AggregatorOptions{Start: &september})
	list, err := agg.Aggregate(context.Background(), []string{"ulster"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
}

func TestAggregate_StartsAtCurrentMonthInRegion(t *testing.T) {
	london, err := civiltime.NewResolver(civiltime.DefaultRegion)
	require.NoError(t, err)

	// 23:30 UTC on 31 August is already September in London
	now := time.Date(2024, time.August, 31, 23, 30, 0, 0, time.UTC)
	agg := NewAggregator(NewLoop(newStubSource(), 0), AggregatorOptions{
		Resolver: london,
		Now:      func() time.Time { return now },
	})
	assert.Equal(t, september, agg.StartMonth())
}

func TestAggregate_NoTeams(t *testing.T) {
	agg := NewAggregator(NewLoop(newStubSource(), 0), AggregatorOptions{})
	_, err := agg.Aggregate(context.Background(), nil, 5)
	assert.True(t, errors.Is(err, fixture.ErrNoTeams))
}

func TestAggregate_ZeroTotal(t *testing.T) {
	src := newStubSource()
	agg := NewAggregator(NewLoop(src, 0), AggregatorOptions{Start: &september})
	list, err := agg.Aggregate(context.Background(), []string{"leinster"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
	assert.Equal(t, 0, src.callCount())
}

func TestAggregate_FailsFast(t *testing.T) {
	src := newStubSource()
	src.fail["leinster"] = errors.Mark(errors.New("timeout"), fixture.ErrNetwork)
	src.add("munster", september, fx(t, "Munster", "Connacht", at(september, 7, 15)))

	agg := NewAggregator(NewLoop(src, 0), AggregatorOptions{Start: &september})
	list, err := agg.Aggregate(context.Background(), []string{"leinster", "munster"}, 1)
	require.Error(t, err)
	assert.Nil(t, list)
	assert.True(t, errors.Is(err, fixture.ErrNetwork))

	var fe *fixture.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "leinster", fe.Team)
	assert.Equal(t, []string{"leinster/2024-09"}, src.calls, "later teams must not be fetched after a failure")
}

func TestAggregate_Concurrency(t *testing.T) {
	teams := []string{"leinster", "munster", "ulster", "connacht"}
	src := newStubSource()
	src.delay = 20 * time.Millisecond
	for i, team := range teams {
		src.add(team, september, fx(t, team, "Opposition", at(september, 1+i, 15)))
	}

	agg := NewAggregator(NewLoop(src, 0), AggregatorOptions{Start: &september, Concurrency: 2})
	list, err := agg.Aggregate(context.Background(), teams, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, list.Len())
	assert.Equal(t, "leinster", list.Fixtures()[0].Teams.Home)
	assert.LessOrEqual(t, src.peak.Load(), int32(2))
	assert.Equal(t, 4, src.callCount())
}

func TestAggregate_SequentialByDefault(t *testing.T) {
	teams := []string{"leinster", "munster", "ulster"}
	src := newStubSource()
	src.delay = 5 * time.Millisecond
	for _, team := range teams {
		src.add(team, september, fx(t, team, "Opposition", at(september, 1, 15)))
	}

	agg := NewAggregator(NewLoop(src, 0), AggregatorOptions{Start: &september})
	_, err := agg.Aggregate(context.Background(), teams, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.peak.Load())
	assert.Equal(t, []string{"leinster/2024-09", "munster/2024-09", "ulster/2024-09"}, src.calls)
}
