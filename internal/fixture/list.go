package fixture

import (
	"iter"
	"sort"
)

// List is an ordered collection of fixtures.
// Order is insignificant until SortByTime is called; after that the list is
// ordered by kickoff until the next Push or Append.
type List struct {
	fixtures []Fixture
	sorted   bool
}

// maxPrealloc bounds the capacity NewList reserves up front. Sizes come from
// user input, so anything larger grows on demand.
const maxPrealloc = 64

// NewList creates an empty list with room for n fixtures, up to maxPrealloc
func NewList(n int) *List {
	n = min(max(n, 0), maxPrealloc)
	return &List{fixtures: make([]Fixture, 0, n)}
}

// Push appends a fixture
func (l *List) Push(f Fixture) {
	l.fixtures = append(l.fixtures, f)
	l.sorted = false
}

// Append moves every fixture of other onto the end of l
func (l *List) Append(other *List) {
	if other == nil || len(other.fixtures) == 0 {
		return
	}
	l.fixtures = append(l.fixtures, other.fixtures...)
	l.sorted = false
}

// Len returns the number of fixtures
func (l *List) Len() int {
	return len(l.fixtures)
}

// SortByTime orders fixtures by kickoff, keeping the insertion order of
// fixtures that kick off at the same instant.
func (l *List) SortByTime() {
	sort.SliceStable(l.fixtures, func(i, j int) bool {
		return l.fixtures[i].When.Before(l.fixtures[j].When)
	})
	l.sorted = true
}

// Sorted reports whether the list is currently ordered by kickoff
func (l *List) Sorted() bool {
	return l.sorted
}

// Truncate keeps the first n fixtures. It is a no-op when n >= Len.
func (l *List) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(l.fixtures) {
		return
	}
	l.fixtures = l.fixtures[:n]
}

// All iterates the fixtures in list order. The list can be traversed again.
func (l *List) All() iter.Seq[Fixture] {
	return func(yield func(Fixture) bool) {
		for _, f := range l.fixtures {
			if !yield(f) {
				return
			}
		}
	}
}

// Fixtures returns a copy of the fixtures in list order
func (l *List) Fixtures() []Fixture {
	out := make([]Fixture, len(l.fixtures))
	copy(out, l.fixtures)
	return out
}
