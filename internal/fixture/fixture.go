package fixture

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ncruces/go-strftime"
)

// DefaultDateFormat is the strftime pattern used when none is configured.
const DefaultDateFormat = "%Y-%m-%d %H:%M"

// Teams holds the two sides of a fixture
type Teams struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// Fixture represents one scheduled match
type Fixture struct {
	Teams       Teams     `json:"teams"`
	When        time.Time `json:"when"`
	Competition string    `json:"competition"`
}

// New creates a Fixture, rejecting blank team names and a zero kickoff.
// The kickoff is normalized to UTC.
func New(home, away string, when time.Time, competition string) (Fixture, error) {
	home = strings.TrimSpace(home)
	away = strings.TrimSpace(away)
	if home == "" || away == "" {
		return Fixture{}, errors.Mark(
			errors.Newf("fixture needs two team names, got home=%q away=%q", home, away),
			ErrInvalidFixture)
	}
	if when.IsZero() {
		return Fixture{}, errors.Mark(
			errors.Newf("fixture %s vs %s has no kickoff time", home, away),
			ErrInvalidFixture)
	}

	return Fixture{
		Teams:       Teams{Home: home, Away: away},
		When:        when.UTC(),
		Competition: strings.TrimSpace(competition),
	}, nil
}

// Format renders the fixture as "{home} vs {away}, {kickoff}" with the kickoff
// shown in loc using a strftime pattern. A nil loc means time.Local.
func (f Fixture) Format(pattern string, loc *time.Location) string {
	return fmt.Sprintf("%s vs %s, %s", f.Teams.Home, f.Teams.Away, f.Kickoff(pattern, loc))
}

// Kickoff renders only the kickoff time, as Format does
func (f Fixture) Kickoff(pattern string, loc *time.Location) string {
	if pattern == "" {
		pattern = DefaultDateFormat
	}
	if loc == nil {
		loc = time.Local
	}
	return strftime.Format(pattern, f.When.In(loc))
}

// Involves reports whether either side's name contains team (case-insensitive).
func (f Fixture) Involves(team string) bool {
	team = strings.ToLower(strings.TrimSpace(team))
	if team == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Teams.Home), team) ||
		strings.Contains(strings.ToLower(f.Teams.Away), team)
}
