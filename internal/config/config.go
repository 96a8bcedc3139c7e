// Package config loads the process configuration once at start-up. Handlers
// receive what they need from it and never read the environment themselves.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kelseyhightower/envconfig"

	"github.com/tyler180/bonus-ball-backends/internal/draws"
	"github.com/tyler180/bonus-ball-backends/internal/feed"
	"github.com/tyler180/bonus-ball-backends/internal/logging"
	"github.com/tyler180/bonus-ball-backends/internal/store"
)

type Config struct {
	// Feed
	FeedURL           string        `envconfig:"FEED_URL" default:"https://www.national-lottery.co.uk/results/lotto/draw-history/csv"`
	FeedFormat        string        `envconfig:"FEED_FORMAT" default:"csv"`
	FeedUserAgent     string        `envconfig:"FEED_USER_AGENT"`
	FeedTimeout       time.Duration `envconfig:"FEED_TIMEOUT" default:"15s"`
	FeedDefaultLimit  int           `envconfig:"FEED_DEFAULT_LIMIT" default:"20"`
	FeedTargetWeekday string        `envconfig:"FEED_TARGET_WEEKDAY" default:"saturday"`
	FeedHeaderMarker  string        `envconfig:"FEED_HEADER_MARKER" default:"bonus"`
	FeedDelimiter     string        `envconfig:"FEED_DELIMITER" default:","`
	FeedDateColumn    string        `envconfig:"FEED_DATE_COLUMN"`
	FeedDateIndex     int           `envconfig:"FEED_DATE_INDEX" default:"0"`
	FeedBonusColumn   string        `envconfig:"FEED_BONUS_COLUMN"`
	FeedBonusIndex    int           `envconfig:"FEED_BONUS_INDEX" default:"7"`

	FallbackEnabled bool          `envconfig:"FALLBACK_ENABLED" default:"true"`
	CacheMaxAge     time.Duration `envconfig:"CACHE_MAX_AGE" default:"1h"`
	FallbackMaxAge  time.Duration `envconfig:"FALLBACK_MAX_AGE" default:"5m"`

	// Document store
	StoreBackend  string `envconfig:"STORE_BACKEND" default:"dynamodb"`
	StoreName     string `envconfig:"STORE_NAME" default:"bonus-ball"`
	StoreKey      string `envconfig:"STORE_KEY" default:"gameData.json"`
	StoreSiteID   string `envconfig:"BLOBS_SITE_ID"`
	StoreToken    string `envconfig:"BLOBS_TOKEN"`
	StoreRegion   string `envconfig:"STORE_REGION"`
	StoreEndpoint string `envconfig:"STORE_ENDPOINT"`

	AdminKey string `envconfig:"ADMIN_KEY"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Local server only
	Port string `envconfig:"PORT" default:"8888"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.FeedURL) == "" {
		errs = append(errs, errors.New("FEED_URL is empty"))
	}
	if _, err := feed.ParseFormat(c.FeedFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseWeekday(c.FeedTargetWeekday); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDelimiter(c.FeedDelimiter); err != nil {
		errs = append(errs, err)
	}
	if c.FeedTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FEED_TIMEOUT must be positive, got %s", c.FeedTimeout))
	}
	if c.FeedDateIndex < -1 || c.FeedBonusIndex < -1 {
		errs = append(errs, errors.New("column indexes must be >= -1"))
	}
	if c.StoreKey == "" {
		errs = append(errs, errors.New("STORE_KEY is empty"))
	}
	return errors.Join(errs...)
}

// ParseWeekday accepts an English day name, its three-letter abbreviation or
// a number 0-6 with 0 as Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday %d out of range 0-6", n)
		}
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("FEED_DELIMITER must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("FEED_DELIMITER %q is not allowed", s)
	}
	return r, nil
}

func (c *Config) Format() feed.Format {
	f, _ := feed.ParseFormat(c.FeedFormat)
	return f
}

// Columns is the default draw-history mapping with any configured overrides.
// A configured column name is tried before the built-in aliases.
func (c *Config) Columns() draws.ColumnMapping {
	m := draws.DefaultColumns()
	if c.FeedDateColumn != "" {
		m.Date.Names = append([]string{c.FeedDateColumn}, m.Date.Names...)
	}
	m.Date.Index = c.FeedDateIndex
	if c.FeedBonusColumn != "" {
		m.Bonus.Names = append([]string{c.FeedBonusColumn}, m.Bonus.Names...)
	}
	m.Bonus.Index = c.FeedBonusIndex
	return m
}

func (c *Config) Normalizer() *draws.Normalizer {
	target, _ := ParseWeekday(c.FeedTargetWeekday)
	delim, _ := parseDelimiter(c.FeedDelimiter)
	return &draws.Normalizer{
		Target:    target,
		Columns:   c.Columns(),
		Marker:    c.FeedHeaderMarker,
		Delimiter: delim,
	}
}

func (c *Config) Store() store.Config {
	return store.Config{
		Backend:  c.StoreBackend,
		Name:     c.StoreName,
		SiteID:   c.StoreSiteID,
		Token:    c.StoreToken,
		Region:   c.StoreRegion,
		Endpoint: c.StoreEndpoint,
	}
}

func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Encoding: c.LogEncoding}
}
