package civiltime

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // embedded zone database for hosts without one

	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

// DefaultRegion is the zone the BBC publishes UK fixture kickoffs in
const DefaultRegion = "Europe/London"

var (
	dayPattern = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?$`)

	dateLayouts = []string{"2 January 2006", "2 Jan 2006"}
)

// Resolver turns source-region civil date and time text into UTC instants
type Resolver struct {
	loc *time.Location
}

// NewResolver creates a Resolver for an IANA zone name such as "Europe/London"
func NewResolver(region string) (*Resolver, error) {
	if strings.TrimSpace(region) == "" {
		region = DefaultRegion
	}
	loc, err := time.LoadLocation(region)
	if err != nil {
		return nil, errors.Wrapf(err, "loading source region %q", region)
	}
	return &Resolver{loc: loc}, nil
}

// Location returns the source region
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// CurrentMonth returns the month now falls in, as seen in the source region
func (r *Resolver) CurrentMonth(now time.Time) Month {
	return MonthOf(now.In(r.loc))
}

// Resolve converts a kickoff time ("15:30") and a fixture date
// ("Saturday 14th September") in reference year into a UTC instant.
func (r *Resolver) Resolve(timeText, dateText string, year int) (time.Time, error) {
	date, err := parseDate(dateText, year)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := parseClock(timeText)
	if err != nil {
		return time.Time{}, err
	}

	return r.instant(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute())
}

// ResolveBatch resolves times[i] with dates[i] for every i. Any failure
// aborts the whole batch and no timestamps are returned.
func (r *Resolver) ResolveBatch(times, dates []string, year int) ([]time.Time, error) {
	if len(times) != len(dates) {
		return nil, errors.Mark(
			errors.Newf("batch has %d times but %d dates", len(times), len(dates)),
			fixture.ErrParse)
	}

	out := make([]time.Time, 0, len(times))
	for i := range times {
		when, err := r.Resolve(times[i], dates[i], year)
		if err != nil {
			return nil, errors.Wrapf(err, "fixture %d", i)
		}
		out = append(out, when)
	}
	return out, nil
}

// instant maps a wall clock reading in the source region to the single
// instant that shows it. Readings skipped or repeated by a daylight-saving
// transition have zero or two such instants and are rejected.
func (r *Resolver) instant(year int, month time.Month, day, hour, minute int) (time.Time, error) {
	wall := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	probe := time.Date(year, month, day, hour, minute, 0, 0, r.loc)

	offsets := make([]int, 0, 2)
	for _, t := range []time.Time{probe.Add(-12 * time.Hour), probe.Add(12 * time.Hour)} {
		_, off := t.Zone()
		if len(offsets) == 0 || offsets[0] != off {
			offsets = append(offsets, off)
		}
	}

	var matches []time.Time
	for _, off := range offsets {
		candidate := wall.Add(-time.Duration(off) * time.Second)
		local := candidate.In(r.loc)
		if local.Year() == year && local.Month() == month && local.Day() == day &&
			local.Hour() == hour && local.Minute() == minute {
			matches = append(matches, candidate.UTC())
		}
	}

	reading := fmt.Sprintf("%04d-%02d-%02d %02d:%02d", year, month, day, hour, minute)
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return time.Time{}, errors.Mark(
			errors.Newf("%s does not exist in %s", reading, r.loc),
			fixture.ErrAmbiguousLocalTime)
	default:
		return time.Time{}, errors.Mark(
			errors.Newf("%s occurs twice in %s", reading, r.loc),
			fixture.ErrAmbiguousLocalTime)
	}
}

// parseDate strips the weekday and the ordinal suffix from text such as
// "Saturday 14th September" and parses the remainder with year.
func parseDate(text string, year int) (time.Time, error) {
	fields := strings.Fields(text)
	if len(fields) == 3 {
		fields = fields[1:]
	}
	if len(fields) != 2 {
		return time.Time{}, errors.Mark(
			errors.Newf("date %q is not \"<weekday> <day> <month>\"", text),
			fixture.ErrParse)
	}

	m := dayPattern.FindStringSubmatch(fields[0])
	if m == nil {
		return time.Time{}, errors.Mark(
			errors.Newf("date %q has no day of month", text),
			fixture.ErrParse)
	}

	value := fmt.Sprintf("%s %s %d", m[1], fields[1], year)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, errors.Mark(errors.Wrapf(lastErr, "parsing date %q", text), fixture.ErrParse)
}

// parseClock parses a 24-hour "HH:MM" kickoff time
func parseClock(text string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, errors.Mark(errors.Wrapf(err, "parsing time %q", text), fixture.ErrParse)
	}
	return t, nil
}
