package notifier

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

// MaxPostLength is the character limit of a single post
const MaxPostLength = 280

// Notifier defines the interface for posting fixture notifications
type Notifier interface {
	// Notify posts one notification per fixture
	Notify(fixtures []fixture.Fixture) error
}

// Formatter renders fixtures as post text
type Formatter struct {
	// DateFormat is a strftime pattern; defaults to fixture.DefaultDateFormat
	DateFormat string
	// Location is the zone kickoff times are shown in; defaults to Local
	Location *time.Location
}

// Post formats a fixture as a post
func (fm Formatter) Post(f fixture.Fixture) string {
	pattern := fm.DateFormat
	if pattern == "" {
		pattern = fixture.DefaultDateFormat
	}

	var b strings.Builder
	b.WriteString("🏉 Upcoming fixture\n\n")
	fmt.Fprintf(&b, "%s vs %s\n", f.Teams.Home, f.Teams.Away)
	fmt.Fprintf(&b, "📅 %s\n", f.Kickoff(pattern, fm.Location))
	if f.Competition != "" {
		fmt.Fprintf(&b, "🏆 %s\n", f.Competition)
	}

	var tags []string
	for _, team := range []string{f.Teams.Home, f.Teams.Away} {
		if tag := hashtag(team); tag != "" {
			tags = append(tags, tag)
		}
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(tags, " "))

	return truncate(strings.TrimRight(b.String(), " \n"), MaxPostLength)
}

// hashtag turns a team name into a tag, e.g. "Stade Toulousain" -> "#StadeToulousain"
func hashtag(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}

// truncate shortens s to at most n characters, ending with an ellipsis
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}
