package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DAIRY_API_BASE_URL.
const EnvPrefix = "DAIRY"

// Config holds all client configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Routing  RoutingConfig  `mapstructure:"routing"`
	Session  SessionConfig  `mapstructure:"session"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig points at the dispatch backend.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"` // e.g. http://127.0.0.1:8000/core/api
}

// RoutingConfig configures the external street-routing service and the depot.
type RoutingConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Profile  string        `mapstructure:"profile"`
	Timeout  time.Duration `mapstructure:"timeout"`
	DepotLat float64       `mapstructure:"depot_lat"`
	DepotLng float64       `mapstructure:"depot_lng"`
}

// SessionConfig locates the local session store.
type SessionConfig struct {
	Path string `mapstructure:"path"` // SQLite file
}

// DispatchConfig holds assignment policy.
type DispatchConfig struct {
	RequireCoordinates bool `mapstructure:"require_coordinates"`
}

// MonitorConfig configures the live map feed server.
type MonitorConfig struct {
	Listen   string        `mapstructure:"listen"`
	Interval time.Duration `mapstructure:"interval"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("api.base_url", "http://127.0.0.1:8000/core/api")
	v.SetDefault("routing.base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.profile", "driving")
	v.SetDefault("routing.timeout", 5*time.Second)
	v.SetDefault("routing.depot_lat", -17.393879)
	v.SetDefault("routing.depot_lng", -66.156944)
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("dispatch.require_coordinates", true)
	v.SetDefault("monitor.listen", ":8090")
	v.SetDefault("monitor.interval", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".dairyctl", "session.db")
	}
	return filepath.Join(home, ".dairyctl", "session.db")
}

// Load reads cfgFile (or $HOME/.dairyctl.yaml when cfgFile is empty and the
// file exists) on top of the defaults held by v, applies environment
// overrides and validates the result.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".dairyctl")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but never reads a file and never fails on
// validation. Intended for tests and for commands that work offline.
func LoadWithDefaults() (*Config, error) {
	return decode(New())
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	opt := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&cfg, opt); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the client cannot work without.
func (c *Config) Validate() error {
	if err := validateHTTPURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("routing.base_url", c.Routing.BaseURL); err != nil {
		return err
	}
	if c.Routing.Timeout <= 0 {
		return fmt.Errorf("routing.timeout must be positive, got %s", c.Routing.Timeout)
	}
	if strings.TrimSpace(c.Routing.Profile) == "" {
		return errors.New("routing.profile is required")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %s", c.Monitor.Interval)
	}
	if strings.TrimSpace(c.Session.Path) == "" {
		return errors.New("session.path is required")
	}
	return nil
}

func validateHTTPURL(key, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}

// String returns a one-line summary of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Config{API: %s, Routing: %s/%s (%s), Session: %s, Monitor: %s}",
		c.API.BaseURL, c.Routing.BaseURL, c.Routing.Profile, c.Routing.Timeout, c.Session.Path, c.Monitor.Listen)
}
