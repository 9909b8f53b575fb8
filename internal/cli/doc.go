// Package cli implements the rugby-fixtures command.
//
// The command loads configuration, fetches the next fixtures for the
// configured teams and prints them as text, JSON or an iCalendar feed.
//
// Exit codes:
//   - 0: success
//   - 1: error (configuration, network, page structure or time resolution)
package cli
