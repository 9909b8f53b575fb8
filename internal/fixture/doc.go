// Package fixture provides the in-memory model for scheduled rugby fixtures.
//
// A Fixture pairs two team names with an absolute kickoff instant and a
// competition name. A List collects fixtures from any number of pages and
// teams, and is sorted by kickoff and truncated once before being handed to
// a presentation layer. The package also defines the error taxonomy shared by
// the scraping pipeline so callers can classify failures with errors.Is.
package fixture
