package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/pfrederiksen/rugby-fixtures/internal/filter"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
	"github.com/pfrederiksen/rugby-fixtures/internal/notifier"
)

var version = "dev"

// fixturesInput is the part of rugby-fixtures --format json that is posted
type fixturesInput struct {
	Fixtures []fixture.Fixture `json:"fixtures"`
}

// newNotifier is replaced in tests
var newNotifier = func(fm notifier.Formatter) (notifier.Notifier, error) {
	return notifier.NewTwitterNotifier(fm)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("rugby-fixtures-notify", flag.ContinueOnError)
	flags.SetOutput(stderr)
	fixturesFile := flags.String("fixtures-file", "", "Path to fixtures JSON file (or read from stdin)")
	dryRun := flags.Bool("dry-run", false, "Print posts without posting")
	maxPosts := flags.Int("max-posts", 10, "Maximum number of posts")
	teamFilter := flags.String("team", "", "Only post fixtures involving these teams (comma-separated)")
	competitionFilter := flags.String("competition", "", "Only post fixtures in these competitions (comma-separated)")
	dateRange := flags.String("dates", "", "Only post fixtures in this date range, e.g. 'Sep 1-15' or 'October'")
	weekendsOnly := flags.Bool("weekends-only", false, "Only post weekend fixtures")
	dateFormat := flags.String("date-format", fixture.DefaultDateFormat, "strftime pattern for kickoff times")
	zone := flags.String("zone", "Europe/London", "Time zone kickoff times are shown in")
	showVersion := flags.Bool("version", false, "Print version and exit")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}

	loc, err := time.LoadLocation(*zone)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading time zone: %v\n", err)
		return 1
	}

	// Read fixtures from file or stdin
	reader := stdin
	if *fixturesFile != "" {
		f, err := os.Open(*fixturesFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening fixtures file: %v\n", err)
			return 1
		}
		defer f.Close()
		reader = f
	}

	var input fixturesInput
	if err := sonic.ConfigStd.NewDecoder(reader).Decode(&input); err != nil {
		fmt.Fprintf(stderr, "Error parsing JSON: %v\n", err)
		return 1
	}

	flt := filter.NewFilter(loc)
	flt.Teams = splitList(*teamFilter)
	flt.Competitions = splitList(*competitionFilter)
	flt.WeekendsOnly = *weekendsOnly
	if *dateRange != "" {
		from, to, err := filter.ParseDateRange(*dateRange, time.Now(), loc)
		if err != nil {
			fmt.Fprintf(stderr, "Error parsing --dates: %v\n", err)
			return 1
		}
		flt.DateFrom, flt.DateTo = from, to
	}

	fixtures := flt.Apply(input.Fixtures)
	if !flt.IsEmpty() {
		fmt.Fprintf(stderr, "Filter: %s (%d of %d fixtures)\n", flt, len(fixtures), len(input.Fixtures))
	}

	if *maxPosts >= 0 && len(fixtures) > *maxPosts {
		fixtures = fixtures[:*maxPosts]
	}

	if len(fixtures) == 0 {
		fmt.Fprintln(stdout, "No fixtures to post")
		return 0
	}

	fm := notifier.Formatter{DateFormat: *dateFormat, Location: loc}

	var n notifier.Notifier
	if *dryRun {
		n = notifier.NewDryRunNotifier(fm, stdout)
		fmt.Fprintf(stdout, "DRY RUN MODE - Would post %d fixtures:\n\n", len(fixtures))
	} else {
		client, err := newNotifier(fm)
		if err != nil {
			fmt.Fprintf(stderr, "Error initializing Twitter client: %v\n", err)
			return 1
		}
		n = client
	}

	if err := n.Notify(fixtures); err != nil {
		fmt.Fprintf(stderr, "Error posting fixtures: %v\n", err)
		return 1
	}

	if !*dryRun {
		fmt.Fprintf(stdout, "Successfully posted %d fixtures\n", len(fixtures))
	}
	return 0
}
