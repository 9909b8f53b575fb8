package notifier

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
)

// DryRunNotifier prints what would be posted without actually posting
type DryRunNotifier struct {
	formatter Formatter
	out       io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout when nil)
func NewDryRunNotifier(formatter Formatter, out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{formatter: formatter, out: out}
}

// Notify prints the posts that would be made
func (n *DryRunNotifier) Notify(fixtures []fixture.Fixture) error {
	for i, f := range fixtures {
		post := n.formatter.Post(f)
		if _, err := fmt.Fprintf(n.out, "--- Post %d/%d ---\n%s\n\n(Length: %d characters)\n\n",
			i+1, len(fixtures), post, utf8.RuneCountInString(post)); err != nil {
			return err
		}
	}
	return nil
}
