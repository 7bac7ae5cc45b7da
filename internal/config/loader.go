package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps command-line flag names to config keys. Flags not listed here
// never reach the config.
//
//nolint:gochecknoglobals // Lookup table.
var flagKeys = map[string]string{
	"base-url":          "source.base_url",
	"timeout":           "source.timeout",
	"rate-limit":        "source.rate_limit",
	"page-size":         "view.page_size",
	"max-visible-pages": "view.max_visible_pages",
	"log-level":         "logging.level",
	"log-format":        "logging.format",
	"log-file":          "logging.file",
	"addr":              "server.addr",
	"database":          "server.database",
}

func defaults() map[string]interface{} {
	d := New()
	return map[string]interface{}{
		"source.base_url":        d.Source.BaseURL,
		"source.timeout":         d.Source.Timeout.String(),
		"source.rate_limit":      d.Source.RateLimit,
		"source.burst":           d.Source.Burst,
		"view.page_size":         d.View.PageSize,
		"view.max_visible_pages": d.View.MaxVisiblePages,
		"view.columns":           d.View.Columns,
		"view.filters":           d.View.Filters,
		"view.search_field":      d.View.SearchField,
		"view.initial_sort":      d.View.InitialSort,
		"logging.level":          d.Logging.Level,
		"logging.format":         d.Logging.Format,
		"logging.file":           d.Logging.File,
		"server.addr":            d.Server.Addr,
		"server.database":        d.Server.Database,
	}
}

// findConfigFile returns the explicit path, or DefaultConfigName when it
// exists in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultConfigName); err == nil {
		return DefaultConfigName
	}
	return ""
}

// envKey maps RECORDVIEW_SOURCE__BASE_URL to source.base_url.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Load builds the configuration. Precedence, highest first: changed flags,
// environment, config file, defaults. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.configPath = path

	return cfg, nil
}
