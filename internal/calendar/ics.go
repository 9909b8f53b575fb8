package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"

	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

// MatchDuration is how long a fixture is blocked out for
const MatchDuration = 2 * time.Hour

const prodID = "-//rugby-fixtures//rugby-fixtures//EN"

// uidNamespace keeps fixture UIDs stable across runs
var uidNamespace = uuid.MustParse("5f0f4a54-8c1e-4b8e-9d55-2b7c0f3a9e61")

// Options controls calendar output
type Options struct {
	// Name is shown as the calendar title by most clients
	Name string
	// Now stamps DTSTAMP; defaults to time.Now
	Now func() time.Time
}

// WriteICS writes one VCALENDAR holding a VEVENT per fixture
func WriteICS(w io.Writer, fixtures *fixture.List, opts Options) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	render(buf, fixtures, opts)
	_, err := w.Write(buf.B)
	return err
}

// GenerateICS generates an iCalendar (.ics) document for a fixture list
func GenerateICS(fixtures *fixture.List, opts Options) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	render(buf, fixtures, opts)
	return buf.String()
}

func render(ics *bytebufferpool.ByteBuffer, fixtures *fixture.List, opts Options) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	stamp := formatICSTime(now())

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if opts.Name != "" {
		writeLine(ics, "X-WR-CALNAME:"+escapeICS(opts.Name))
	}

	if fixtures != nil {
		for f := range fixtures.All() {
			writeEvent(ics, f, stamp)
		}
	}

	ics.WriteString("END:VCALENDAR\r\n")
}

func writeEvent(ics *bytebufferpool.ByteBuffer, f fixture.Fixture, stamp string) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	writeLine(ics, "UID:"+EventUID(f))
	writeLine(ics, "DTSTAMP:"+stamp)
	writeLine(ics, "DTSTART:"+formatICSTime(f.When))
	writeLine(ics, "DTEND:"+formatICSTime(f.When.Add(MatchDuration)))
	writeLine(ics, "SUMMARY:"+escapeICS(fmt.Sprintf("%s vs %s", f.Teams.Home, f.Teams.Away)))
	if f.Competition != "" {
		writeLine(ics, "DESCRIPTION:"+escapeICS(f.Competition))
		writeLine(ics, "CATEGORIES:"+escapeICS(f.Competition))
	}
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// EventUID identifies a fixture by its teams and kickoff
func EventUID(f fixture.Fixture) string {
	key := strings.Join([]string{
		strings.ToLower(f.Teams.Home),
		strings.ToLower(f.Teams.Away),
		f.When.UTC().Format(time.RFC3339),
	}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@rugby-fixtures"
}

// writeLine folds content lines longer than 75 octets (RFC 5545 3.1)
func writeLine(ics *bytebufferpool.ByteBuffer, line string) {
	limit := 75
	for len(line) > limit {
		cut := limit
		// don't split a UTF-8 sequence
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		// the leading space counts towards the limit
		limit = 74
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
