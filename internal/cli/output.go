package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/rugby-fixtures/internal/calendar"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// Valid reports whether f is a known format
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatText, FormatJSON, FormatICS:
		return true
	}
	return false
}

// OutputResult contains data to be output
type OutputResult struct {
	RunID        string            `json:"run_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Teams        []string          `json:"teams"`
	FixtureCount int               `json:"fixture_count"`
	Fixtures     []fixture.Fixture `json:"fixtures"`
}

// RenderOptions controls text and calendar rendering
type RenderOptions struct {
	DateFormat string
	Location   *time.Location
	IconStyle  string
}

// icons maps icon_style values to the glyph shown before the header
var icons = map[string]string{
	"rugby":  "🏉",
	"ball":   "🏉",
	"trophy": "🏆",
	"none":   "",
}

// Icon returns the header glyph for style; unknown styles are used verbatim
func Icon(style string) string {
	if glyph, ok := icons[strings.ToLower(style)]; ok {
		return glyph
	}
	return style
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, opts RenderOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, opts)
	case FormatICS:
		return writeICS(w, result)
	default:
		return errors.Newf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	data, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding json")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, opts RenderOptions) error {
	if result.FixtureCount == 0 {
		_, err := fmt.Fprintln(w, "No upcoming fixtures found.")
		return err
	}

	header := fmt.Sprintf("Next %d fixtures for %s", result.FixtureCount, strings.Join(result.Teams, ", "))
	if result.FixtureCount == 1 {
		header = fmt.Sprintf("Next fixture for %s", strings.Join(result.Teams, ", "))
	}
	if icon := Icon(opts.IconStyle); icon != "" {
		header = icon + " " + header
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, f := range result.Fixtures {
		if _, err := fmt.Fprintln(w, f.Format(opts.DateFormat, opts.Location)); err != nil {
			return err
		}
	}
	return nil
}

// writeICS outputs results as an iCalendar feed
func writeICS(w io.Writer, result *OutputResult) error {
	list := fixture.NewList(len(result.Fixtures))
	for _, f := range result.Fixtures {
		list.Push(f)
	}
	return calendar.WriteICS(w, list, calendar.Options{
		Name: "Rugby fixtures: " + strings.Join(result.Teams, ", "),
		Now:  func() time.Time { return result.GeneratedAt },
	})
}
