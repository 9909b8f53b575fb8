package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const monthPattern = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)`

var (
	sameMonthRe  = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossMonthRe = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	wholeMonthRe = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ParseDateRange parses a date range string into start and end times in loc.
//
// Supported formats:
//   - "Sep 1-15" or "September 1-15" - Same month, different days
//   - "Dec 20 - Jan 5" - Different months
//   - "October" - Entire month
//
// Years are inferred from now: a month earlier than now's month is taken to
// be next year, and a range whose end month precedes its start month ends
// next year. Start is at 00:00:00 and end at 23:59:59.
func ParseDateRange(input string, now time.Time, loc *time.Location) (*time.Time, *time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, errors.New("date range cannot be empty")
	}

	if m := sameMonthRe.FindStringSubmatch(input); m != nil {
		month := months[strings.ToLower(m[1])]
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[3])
		if err != nil {
			return nil, nil, err
		}

		year := yearFor(month, now)
		if err := checkDay(year, month, day1); err != nil {
			return nil, nil, err
		}
		if err := checkDay(year, month, day2); err != nil {
			return nil, nil, err
		}
		from := time.Date(year, month, day1, 0, 0, 0, 0, loc)
		to := time.Date(year, month, day2, 23, 59, 59, 0, loc)
		if from.After(to) {
			return nil, nil, errors.New("start date must be before end date")
		}
		return &from, &to, nil
	}

	if m := crossMonthRe.FindStringSubmatch(input); m != nil {
		month1 := months[strings.ToLower(m[1])]
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		month2 := months[strings.ToLower(m[3])]
		day2, err := parseDay(m[4])
		if err != nil {
			return nil, nil, err
		}

		year1 := yearFor(month1, now)
		year2 := year1
		if month2 < month1 {
			year2++
		}
		if err := checkDay(year1, month1, day1); err != nil {
			return nil, nil, err
		}
		if err := checkDay(year2, month2, day2); err != nil {
			return nil, nil, err
		}

		from := time.Date(year1, month1, day1, 0, 0, 0, 0, loc)
		to := time.Date(year2, month2, day2, 23, 59, 59, 0, loc)
		if from.After(to) {
			return nil, nil, errors.New("start date must be before end date")
		}
		return &from, &to, nil
	}

	if m := wholeMonthRe.FindStringSubmatch(input); m != nil {
		month := months[strings.ToLower(m[1])]
		year := yearFor(month, now)
		from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		// day 0 of the next month is the last day of this one
		to := time.Date(year, month+1, 0, 23, 59, 59, 0, loc)
		return &from, &to, nil
	}

	return nil, nil, errors.Newf("invalid date range %q. Use 'Sep 1-15', 'Dec 20 - Jan 5', or 'October'", input)
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, errors.Newf("invalid day: %s", s)
	}
	return day, nil
}

// checkDay rejects days past the end of the month, which time.Date would
// otherwise roll into the next one
func checkDay(year int, month time.Month, day int) error {
	if last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		return errors.Newf("invalid day: %s has %d days", month, last)
	}
	return nil
}

// yearFor returns now's year, or the next one if month has already passed
func yearFor(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}
