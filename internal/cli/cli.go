package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/config"
	"github.com/pfrederiksen/rugby-fixtures/internal/logger"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// DefaultRunTimeout bounds a whole run
const DefaultRunTimeout = 2 * time.Minute

var (
	flagTeams          []string
	flagNFix           int
	flagConfig         string
	flagFormat         string
	flagDateFormat     string
	flagConcurrency    int
	flagMaxMonths      int
	flagBrowser        bool
	flagTimeout        time.Duration
	flagRequestTimeout time.Duration
	flagVerbose        bool
	flagLogLevel       string
	flagStart          string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rugby-fixtures",
		Short: "Show upcoming rugby fixtures for your teams",
		Long: `A CLI tool that fetches upcoming rugby union fixtures for one or more
teams from BBC Sport, converts UK kickoff times to your time zone and prints
the next N fixtures across all teams in kickoff order.`,
		Example: `  rugby-fixtures -t leinster -n 5
  rugby-fixtures -t leinster -t munster -n 10 --format json
  rugby-fixtures --config ~/rugby.yaml --format ics > fixtures.ics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runFixtures,
	}

	cmd.Flags().StringArrayVarP(&flagTeams, "team", "t", nil, "Team identifier as used in BBC Sport URLs, e.g. leinster (repeatable)")
	cmd.Flags().IntVarP(&flagNFix, "nfix", "n", 0, "Number of fixtures to show")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to config.yaml")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or ics")
	cmd.Flags().StringVar(&flagDateFormat, "date-format", "", "strftime pattern for kickoff times")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Number of teams fetched at once")
	cmd.Flags().IntVar(&flagMaxMonths, "max-months", 0, "Months to search ahead before giving up")
	cmd.Flags().BoolVar(&flagBrowser, "browser", false, "Render pages with headless Chrome")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", DefaultRunTimeout, "Deadline for the whole run")
	cmd.Flags().DurationVar(&flagRequestTimeout, "request-timeout", 0, "Timeout for each page request")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging (same as --log-level debug)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&flagStart, "start", "", "First month to fetch as YYYY-MM (default: current month in the source region)")

	return cmd
}

// overrides collects the flags the user actually set
func overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("team") {
		o.Teams = flagTeams
	}
	if flags.Changed("nfix") {
		o.NFix = &flagNFix
	}
	if flags.Changed("date-format") {
		o.DateFormat = &flagDateFormat
	}
	if flags.Changed("concurrency") {
		o.Concurrency = &flagConcurrency
	}
	if flags.Changed("max-months") {
		o.MaxMonths = &flagMaxMonths
	}
	if flags.Changed("browser") {
		o.UseBrowser = &flagBrowser
	}
	if flags.Changed("request-timeout") {
		o.Timeout = &flagRequestTimeout
	}
	return o
}

// runFixtures is the main command logic
func runFixtures(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if !format.Valid() {
		return errors.Newf("invalid format: %s (must be 'text', 'json' or 'ics')", flagFormat)
	}

	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}

	var start *civiltime.Month
	if flagStart != "" {
		m, err := civiltime.ParseMonth(flagStart)
		if err != nil {
			return errors.Wrap(err, "--start")
		}
		start = &m
	}

	runID := uuid.NewString()
	log := logger.New(level, cmd.ErrOrStderr()).With(logger.Fields{"run_id": runID})
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	cfg.Apply(overrides(cmd))
	if err := cfg.Validate(); err != nil {
		return err
	}

	loc, err := cfg.DisplayLocation()
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded", logger.Fields{
		"path":        cfg.Path,
		"teams":       cfg.Preferences.Teams,
		"nfix":        cfg.Preferences.NFix,
		"browser":     cfg.Source.UseBrowser,
		"concurrency": cfg.Concurrency,
	})

	agg, err := NewAggregator(cfg, start)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if flagTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}

	began := time.Now()
	fixtures, err := agg.Aggregate(ctx, cfg.Preferences.Teams, cfg.Preferences.NFix)
	if err != nil {
		logger.Error("fetching fixtures failed", logger.Fields{"teams": cfg.Preferences.Teams}, err)
		return errors.Wrap(err, "fetching fixtures")
	}
	logger.RecordTiming("run", time.Since(began))
	logger.Debug("run complete", logger.Fields{"metrics": logger.GetMetricsSnapshot()})

	result := &OutputResult{
		RunID:        runID,
		GeneratedAt:  time.Now().UTC(),
		Teams:        cfg.Preferences.Teams,
		FixtureCount: fixtures.Len(),
		Fixtures:     fixtures.Fixtures(),
	}

	opts := RenderOptions{
		DateFormat: cfg.Formatting.DateFormat,
		Location:   loc,
		IconStyle:  cfg.Formatting.IconStyle,
	}
	if err := WriteOutput(cmd.OutOrStdout(), result, format, opts); err != nil {
		return errors.Wrap(err, "writing output")
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
