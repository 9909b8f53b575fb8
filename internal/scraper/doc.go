// Package scraper fetches BBC Sport team fixture pages and extracts fixtures.
//
// Each page covers one team and one calendar month. A Fetcher retrieves the
// page body (plain HTTP, or a headless browser for pages that need
// JavaScript), goquery parses it, and an Extractor pulls four parallel lists
// (dates, kickoff times, competitions, team names) out of a fixed structural
// region. The lists are checked for schema drift before they are zipped into
// fixtures with kickoffs resolved in the source region's civil time.
package scraper
