package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

const (
	DefaultAnchorID      = "main-data"
	DefaultTeamNameClass = "emlpoi30"
)

// Batch holds the raw text lists extracted from one page. TeamNames holds
// home and away names alternately, two per fixture.
type Batch struct {
	Dates        []string
	Times        []string
	Competitions []string
	TeamNames    []string
}

// Extractor pulls a Batch out of a parsed page. One implementation exists per
// source page schema.
type Extractor interface {
	Extract(doc *goquery.Document) (Batch, error)
}

// Validate checks that the lists describe the same number of fixtures
func (b Batch) Validate() error {
	n := len(b.Dates)
	if len(b.Times) != n || len(b.Competitions) != n || len(b.TeamNames) != 2*n {
		return errors.Mark(
			errors.Newf("found %d dates, %d times, %d competitions and %d team names",
				len(b.Dates), len(b.Times), len(b.Competitions), len(b.TeamNames)),
			fixture.ErrSchemaMismatch)
	}
	return nil
}

// Fixtures validates the batch, resolves every kickoff in year and builds the
// fixture list. Any failure discards the whole batch.
func (b Batch) Fixtures(resolver *civiltime.Resolver, year int) (*fixture.List, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	kickoffs, err := resolver.ResolveBatch(b.Times, b.Dates, year)
	if err != nil {
		return nil, err
	}

	list := fixture.NewList(len(b.Dates))
	for i := range b.Dates {
		fx, err := fixture.New(b.TeamNames[2*i], b.TeamNames[2*i+1], kickoffs[i], b.Competitions[i])
		if err != nil {
			return nil, errors.Wrapf(err, "fixture %d", i)
		}
		list.Push(fx)
	}
	return list, nil
}

// BBCExtractor reads the BBC Sport scores-and-fixtures layout: everything
// lives in the first div under div#<AnchorID>, with h2 dates, h3
// competitions, time elements for kickoffs and team names in spans whose
// first class is TeamNameClass.
type BBCExtractor struct {
	AnchorID      string
	TeamNameClass string
}

// NewBBCExtractor creates a BBCExtractor; empty arguments select the defaults
func NewBBCExtractor(anchorID, teamNameClass string) *BBCExtractor {
	if anchorID == "" {
		anchorID = DefaultAnchorID
	}
	if teamNameClass == "" {
		teamNameClass = DefaultTeamNameClass
	}
	return &BBCExtractor{AnchorID: anchorID, TeamNameClass: teamNameClass}
}

// Extract collects the four lists in document order
func (e *BBCExtractor) Extract(doc *goquery.Document) (Batch, error) {
	anchor := doc.Find("div#" + e.AnchorID).First()
	if anchor.Length() == 0 {
		return Batch{}, errors.Mark(
			errors.Newf("no div#%s on page", e.AnchorID),
			fixture.ErrStructureNotFound)
	}

	scope := anchor.Find("div").First()
	if scope.Length() == 0 {
		return Batch{}, errors.Mark(
			errors.Newf("div#%s has no nested div", e.AnchorID),
			fixture.ErrStructureNotFound)
	}

	batch := Batch{
		Dates:        texts(scope.Find("h2")),
		Competitions: texts(scope.Find("h3")),
		Times:        texts(scope.Find("time")),
	}

	scope.Find("span").Each(func(_ int, sel *goquery.Selection) {
		if firstClass(sel) == e.TeamNameClass {
			batch.TeamNames = append(batch.TeamNames, firstText(sel))
		}
	})

	return batch, nil
}

// texts returns the first text of every element in the selection
func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, firstText(s))
	})
	return out
}

// firstText returns the first non-blank text node under sel, trimmed. Nested
// decorations such as abbreviation spans after the name are ignored.
func firstText(sel *goquery.Selection) string {
	var text string
	sel.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if goquery.NodeName(c) == "#text" {
			text = strings.TrimSpace(c.Text())
		} else {
			text = firstText(c)
		}
		return text == ""
	})
	return text
}

// firstClass returns the first token of the element's class attribute
func firstClass(sel *goquery.Selection) string {
	class, ok := sel.Attr("class")
	if !ok {
		return ""
	}
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
