package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/rugby-fixtures/internal/civiltime"
	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
	"github.com/pfrederiksen/rugby-fixtures/internal/schedule"
	"github.com/pfrederiksen/rugby-fixtures/internal/scraper"
)

// FileName is the config file looked for in the working directory
const FileName = "config.yaml"

// UserConfigPath is the per-user config location
const UserConfigPath = "~/.config/rugby-fixtures/" + FileName

// Environment variables that override the file
const (
	EnvTeams      = "RUGBY_FIXTURES_TEAMS"
	EnvCount      = "RUGBY_FIXTURES_COUNT"
	EnvDateFormat = "RUGBY_FIXTURES_DATE_FORMAT"
)

// DefaultIconStyle names the icon shown ahead of the fixture list
const DefaultIconStyle = "rugby"

// Config is the full set of settings for a run
type Config struct {
	Preferences Preferences `yaml:"preferences"`
	Formatting  Formatting  `yaml:"formatting"`
	Source      Source      `yaml:"source"`
	Concurrency int         `yaml:"concurrency" validate:"gte=1"`

	// Path is the file the config was read from, empty for defaults only
	Path string `yaml:"-"`
}

// Preferences selects what to fetch
type Preferences struct {
	Teams []string `yaml:"teams" validate:"required,min=1,dive,teamslug"`
	NFix  int      `yaml:"nfix" validate:"gte=1,lte=1000"`
}

// Formatting controls presentation
type Formatting struct {
	IconStyle   string `yaml:"icon_style"`
	DateFormat  string `yaml:"date_format" validate:"required"`
	DisplayZone string `yaml:"display_zone" validate:"omitempty,timezone"`
}

// Source describes where fixture pages come from and how they are laid out
type Source struct {
	URLTemplate          string        `yaml:"url_template" validate:"required,contains=PLACEHOLDER"`
	Region               string        `yaml:"region" validate:"required,timezone"`
	AnchorID             string        `yaml:"anchor_id" validate:"required"`
	TeamNameClass        string        `yaml:"team_name_class" validate:"required"`
	MissingAnchorIsEmpty bool          `yaml:"missing_anchor_is_empty"`
	MaxMonths            int           `yaml:"max_months" validate:"gte=1"`
	UserAgent            string        `yaml:"user_agent" validate:"required"`
	Timeout              time.Duration `yaml:"timeout" validate:"gt=0"`
	UseBrowser           bool          `yaml:"use_browser"`
}

// Default returns the built-in settings. Teams is left empty.
func Default() *Config {
	return &Config{
		Preferences: Preferences{
			NFix: 5,
		},
		Formatting: Formatting{
			IconStyle:  DefaultIconStyle,
			DateFormat: fixture.DefaultDateFormat,
		},
		Source: Source{
			URLTemplate:   scraper.FixturesURLTemplate,
			Region:        civiltime.DefaultRegion,
			AnchorID:      scraper.DefaultAnchorID,
			TeamNameClass: scraper.DefaultTeamNameClass,
			MaxMonths:     schedule.DefaultMaxMonths,
			UserAgent:     scraper.UserAgent,
			Timeout:       scraper.Timeout,
		},
		Concurrency: 1,
	}
}

// Load builds a Config from defaults, the config file and the environment.
// An explicit path must exist; otherwise the first file found on the search
// path is used, and none at all is not an error.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	file, err := locate(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		if err := cfg.readFile(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv copies variables from .env files into the environment without
// replacing ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "loading %s", p)
		}
	}
	return nil
}

// locate picks the config file to read
func locate(explicit string) (string, error) {
	if explicit != "" {
		path, err := ExpandHome(explicit)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, "config file %s", explicit)
		}
		return path, nil
	}

	candidates := []string{FileName}
	if user, err := ExpandHome(UserConfigPath); err == nil {
		candidates = append(candidates, user)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}

// ExpandHome replaces a leading ~/ with the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "getting home directory")
	}
	return filepath.Join(home, path[2:]), nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	if strings.TrimSpace(string(data)) == "" {
		return errors.Newf("config file %s is empty", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parsing config %s", path)
	}
	c.Path = path
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTeams); ok && strings.TrimSpace(v) != "" {
		c.Preferences.Teams = SplitTeams(v)
	}
	if v, ok := lookup(EnvCount); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s", EnvCount)
		}
		c.Preferences.NFix = n
	}
	if v, ok := lookup(EnvDateFormat); ok && v != "" {
		c.Formatting.DateFormat = v
	}
	return nil
}

// SplitTeams parses a comma-separated team list, dropping blanks
func SplitTeams(s string) []string {
	var teams []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.ToLower(strings.TrimSpace(part)); t != "" {
			teams = append(teams, t)
		}
	}
	return teams
}

// Overrides holds command-line values; nil or empty fields leave the
// config untouched.
type Overrides struct {
	Teams       []string
	NFix        *int
	DateFormat  *string
	Concurrency *int
	MaxMonths   *int
	UseBrowser  *bool
	Timeout     *time.Duration
}

// Apply layers command-line values over the config
func (c *Config) Apply(o Overrides) {
	if len(o.Teams) > 0 {
		var teams []string
		for _, t := range o.Teams {
			teams = append(teams, SplitTeams(t)...)
		}
		c.Preferences.Teams = teams
	}
	if o.NFix != nil {
		c.Preferences.NFix = *o.NFix
	}
	if o.DateFormat != nil {
		c.Formatting.DateFormat = *o.DateFormat
	}
	if o.Concurrency != nil {
		c.Concurrency = *o.Concurrency
	}
	if o.MaxMonths != nil {
		c.Source.MaxMonths = *o.MaxMonths
	}
	if o.UseBrowser != nil {
		c.Source.UseBrowser = *o.UseBrowser
	}
	if o.Timeout != nil {
		c.Source.Timeout = *o.Timeout
	}
}

// DisplayLocation is the zone fixtures are shown in; Local when unset
func (c *Config) DisplayLocation() (*time.Location, error) {
	if c.Formatting.DisplayZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Formatting.DisplayZone)
	if err != nil {
		return nil, errors.Wrapf(err, "display zone %q", c.Formatting.DisplayZone)
	}
	return loc, nil
}
