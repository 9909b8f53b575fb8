package fixture

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the fixture pipeline. Detailed errors are marked with
// one of these so callers can classify them with errors.Is.
var (
	// ErrParse means date or time text did not have the expected shape.
	ErrParse = errors.New("malformed date or time text")
	// ErrAmbiguousLocalTime means a wall clock time does not exist or exists
	// twice in the source region because of a daylight-saving transition.
	ErrAmbiguousLocalTime = errors.New("ambiguous or invalid local time")
	// ErrStructureNotFound means the page lacks the fixture anchor element.
	ErrStructureNotFound = errors.New("fixture structure not found")
	// ErrSchemaMismatch means the extracted parallel lists disagree in length.
	ErrSchemaMismatch = errors.New("fixture page schema mismatch")
	// ErrNetwork means the page could not be fetched.
	ErrNetwork = errors.New("network error")
	// ErrQuotaUnreachable means the month lookahead ran out before the quota was met.
	ErrQuotaUnreachable = errors.New("fixture quota unreachable")
	// ErrNoTeams means aggregation was requested without any team.
	ErrNoTeams = errors.New("no teams requested")
	// ErrInvalidFixture means a fixture record could not be constructed.
	ErrInvalidFixture = errors.New("invalid fixture")
)

// FetchError reports a failure inside one team's fetch loop
type FetchError struct {
	Team  string
	Month string
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("fetching fixtures for %s (%s): %v", e.Team, e.Month, e.Err)
	}
	return fmt.Sprintf("fetching fixtures for %s (%s) from %s: %v", e.Team, e.Month, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
