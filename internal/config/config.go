// Package config loads recordview settings from defaults, a YAML file, the
// environment, and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/recordview/internal/logging"
	"github.com/rshade/recordview/internal/query"
)

// Default configuration values.
const (
	DefaultBaseURL         = "http://localhost:8080"
	DefaultTimeout         = 10 * time.Second
	DefaultRateLimit       = 10.0
	DefaultBurst           = 5
	DefaultPageSize        = 10
	DefaultMaxVisiblePages = 5
	DefaultSearchField     = "search"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = logging.FormatConsole
	DefaultServerAddr      = ":8080"
	DefaultServerDatabase  = ":memory:"

	// EnvPrefix prefixes every environment override. A double underscore
	// separates sections: RECORDVIEW_SOURCE__BASE_URL sets source.base_url.
	EnvPrefix = "RECORDVIEW_"

	// DefaultConfigName is the file looked up in the working directory.
	DefaultConfigName = "recordview.yaml"
)

// Validation errors.
var (
	ErrInvalidPageSize   = errors.New("view.page_size must be at least 1")
	ErrInvalidMaxVisible = errors.New("view.max_visible_pages must be at least 1")
	ErrEmptyBaseURL      = errors.New("source.base_url cannot be empty")
	ErrInvalidBaseURL    = errors.New("source.base_url must be an absolute http(s) URL")
	ErrInvalidLogFormat  = errors.New("logging.format must be 'console' or 'json'")
	ErrInvalidLogLevel   = errors.New("invalid logging.level")
	ErrInvalidTimeout    = errors.New("source.timeout must not be negative")
)

// Config is the complete recordview configuration.
type Config struct {
	Source  SourceConfig  `koanf:"source"  yaml:"source"`
	View    ViewConfig    `koanf:"view"    yaml:"view"`
	Logging LoggingConfig `koanf:"logging" yaml:"logging"`
	Server  ServerConfig  `koanf:"server"  yaml:"server"`

	configPath string
}

// SourceConfig describes the remote records API.
type SourceConfig struct {
	BaseURL   string        `koanf:"base_url"   yaml:"base_url"`
	Timeout   time.Duration `koanf:"timeout"    yaml:"timeout"`
	RateLimit float64       `koanf:"rate_limit" yaml:"rate_limit"`
	Burst     int           `koanf:"burst"      yaml:"burst"`
}

// ViewConfig describes the viewer form and pager.
type ViewConfig struct {
	PageSize        int      `koanf:"page_size"         yaml:"page_size"`
	MaxVisiblePages int      `koanf:"max_visible_pages" yaml:"max_visible_pages"`
	Columns         []string `koanf:"columns"           yaml:"columns"`
	Filters         []string `koanf:"filters"           yaml:"filters"`
	SearchField     string   `koanf:"search_field"      yaml:"search_field"`
	InitialSort     string   `koanf:"initial_sort"      yaml:"initial_sort,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"  yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
	File   string `koanf:"file"   yaml:"file,omitempty"`
}

// ServerConfig configures the demo records server.
type ServerConfig struct {
	Addr     string `koanf:"addr"     yaml:"addr"`
	Database string `koanf:"database" yaml:"database"`
}

// DefaultColumns are the sortable columns.
func DefaultColumns() []string {
	return []string{"date", "total"}
}

// DefaultFilters are the filter form fields, in query order.
func DefaultFilters() []string {
	return []string{"date", "customer", "seller", "totalFrom", "totalTo"}
}

// New returns a Config holding only defaults.
func New() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   DefaultTimeout,
			RateLimit: DefaultRateLimit,
			Burst:     DefaultBurst,
		},
		View: ViewConfig{
			PageSize:        DefaultPageSize,
			MaxVisiblePages: DefaultMaxVisiblePages,
			Columns:         DefaultColumns(),
			Filters:         DefaultFilters(),
			SearchField:     DefaultSearchField,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerConfig{
			Addr:     DefaultServerAddr,
			Database: DefaultServerDatabase,
		},
	}
}

// ConfigPath returns the file the config was loaded from, or "" for defaults only.
//
//nolint:revive // ConfigPath reads better than Path at call sites.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath sets the path used by Save.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Validate checks semantic correctness.
func (c *Config) Validate() error {
	var errs []error

	if c.View.PageSize < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.View.PageSize))
	}
	if c.View.MaxVisiblePages < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidMaxVisible, c.View.MaxVisiblePages))
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, ErrInvalidTimeout)
	}

	base := strings.TrimSpace(c.Source.BaseURL)
	if base == "" {
		errs = append(errs, ErrEmptyBaseURL)
	} else if u, err := url.Parse(base); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBaseURL, base))
	}

	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format))
	}
	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level))
		}
	}

	if c.View.InitialSort != "" {
		field, _, err := query.ParseSort(c.View.InitialSort)
		if err != nil {
			errs = append(errs, fmt.Errorf("view.initial_sort: %w", err))
		} else if !contains(c.View.Columns, field) {
			errs = append(errs, fmt.Errorf("view.initial_sort: %w: %q", query.ErrUnknownSortColumn, field))
		}
	}

	return errors.Join(errs...)
}

// Save writes the configuration as YAML to ConfigPath.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if writeErr := os.WriteFile(c.configPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing config file: %w", writeErr)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
