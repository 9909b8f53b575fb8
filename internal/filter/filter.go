// Package filter narrows fixture lists before they are posted.
//
// A fixture passes a filter when it satisfies every active criterion:
//   - Date range: kickoff within DateFrom and DateTo (inclusive)
//   - Teams: either side's name contains one of the teams (case-insensitive)
//   - Competitions: the competition contains one of the names (case-insensitive)
//   - WeekendsOnly: kickoff falls on a Saturday or Sunday
//
// Dates and weekdays are judged in the filter's Location.
//
// Example usage:
//
//	f := filter.NewFilter(london)
//	f.WeekendsOnly = true
//	f.Teams = []string{"Leinster"}
//	upcoming := f.Apply(fixtures)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

// Filter represents fixture filtering criteria
type Filter struct {
	DateFrom *time.Time
	DateTo   *time.Time

	Teams        []string
	Competitions []string

	WeekendsOnly bool

	// Location decides the calendar day of a kickoff; nil means UTC
	Location *time.Location
}

// NewFilter creates a new empty filter that judges days in loc
func NewFilter(loc *time.Location) *Filter {
	return &Filter{Location: loc}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Teams) == 0 &&
		len(f.Competitions) == 0 &&
		!f.WeekendsOnly
}

func (f *Filter) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// Matches checks if a fixture matches all active filter criteria.
// An empty filter matches every fixture.
func (f *Filter) Matches(fx fixture.Fixture) bool {
	if f.IsEmpty() {
		return true
	}

	kickoff := fx.When.In(f.location())

	if f.DateFrom != nil && kickoff.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && kickoff.After(*f.DateTo) {
		return false
	}

	if f.WeekendsOnly {
		weekday := kickoff.Weekday()
		if weekday != time.Saturday && weekday != time.Sunday {
			return false
		}
	}

	if len(f.Teams) > 0 {
		matched := false
		for _, team := range f.Teams {
			if fx.Involves(team) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Competitions) > 0 && !containsAny(fx.Competition, f.Competitions) {
		return false
	}

	return true
}

func containsAny(s string, needles []string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Apply returns the fixtures that match, preserving order
func (f *Filter) Apply(fixtures []fixture.Fixture) []fixture.Fixture {
	if f.IsEmpty() {
		return fixtures
	}

	filtered := make([]fixture.Fixture, 0, len(fixtures))
	for _, fx := range fixtures {
		if f.Matches(fx) {
			filtered = append(filtered, fx)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Sep 1, 2024 | To: Sep 15, 2024 | Teams: Leinster | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if len(f.Teams) > 0 {
		parts = append(parts, fmt.Sprintf("Teams: %s", strings.Join(f.Teams, ", ")))
	}
	if len(f.Competitions) > 0 {
		parts = append(parts, fmt.Sprintf("Competitions: %s", strings.Join(f.Competitions, ", ")))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}
