package civiltime

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

const monthLayout = "2006-01"

// Month is a calendar year and month. It always denotes the 1st of the month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t, using t's own location
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY-MM"
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, errors.Mark(errors.Wrapf(err, "parsing month %q", s), fixture.ErrParse)
	}
	return MonthOf(t), nil
}

// First returns midnight UTC on the 1st of the month
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// String formats the month as "YYYY-MM", the suffix used in fixture page URLs
func (m Month) String() string {
	return m.First().Format(monthLayout)
}
