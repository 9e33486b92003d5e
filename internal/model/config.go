package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// TEAMFLOW_API_URL or TEAMFLOW_LOG_LEVEL.
const EnvPrefix = "TEAMFLOW"

// APIConfig holds the REST backend connection settings.
type APIConfig struct {
	// BaseURL is the backend root; requests go to BaseURL + "/api/...".
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// RequestTimeoutSec bounds every single request.
	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`

	// EnumCase is "lower" for backends that spell statuses todo/in_progress
	// and priorities low/high. Anything else sends TODO/DOING and LOW/HIGH.
	EnumCase string `mapstructure:"enum_case" yaml:"enum_case"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// LogConfig controls the zap logger. The terminal UI owns stdout, so logs
// always go to a file.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// MetricsConfig enables the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address (e.g. "127.0.0.1:9464"); empty disables it.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// CredentialConfig selects where tokens are stored.
type CredentialConfig struct {
	// Backend forces a single keyring backend ("keychain", "secret-service",
	// "wincred", "pass", "file"). Empty tries them in the default order.
	Backend string `mapstructure:"backend" yaml:"backend"`
	FileDir string `mapstructure:"file_dir" yaml:"file_dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API         APIConfig        `mapstructure:"api" yaml:"api"`
	Display     DisplayConfig    `mapstructure:"display" yaml:"display"`
	Log         LogConfig        `mapstructure:"log" yaml:"log"`
	Metrics     MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
	Credentials CredentialConfig `mapstructure:"credentials" yaml:"credentials"`
}

// PollInterval returns the list refresh interval.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Display.PollIntervalSec) * time.Second
}

// RequestTimeout returns the per-request timeout.
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutSec) * time.Second
}

// configDir returns ~/.config/teamflow, or "." when there is no home.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "teamflow")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/teamflow/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// setDefaults registers every default so missing keys resolve sensibly.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8180")
	v.SetDefault("api.request_timeout_sec", 30)
	v.SetDefault("api.enum_case", "upper")
	v.SetDefault("display.poll_interval_sec", 5)
	v.SetDefault("log.file", filepath.Join(configDir(), "teamflow.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("credentials.backend", "")
	v.SetDefault("credentials.file_dir", filepath.Join(configDir(), "credentials"))
}

// flagKeys maps command line flag names onto config keys.
var flagKeys = map[string]string{
	"api-url":       "api.base_url",
	"log-file":      "log.file",
	"log-level":     "log.level",
	"metrics-addr":  "metrics.addr",
	"poll-interval": "display.poll_interval_sec",
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// then applies TEAMFLOW_* environment overrides and any changed flags.
// A missing file is not an error. flags may be nil.
func LoadConfig(path string, flags *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// TEAMFLOW_API_URL is the documented name for the base URL.
	if err := v.BindEnv("api.base_url", EnvPrefix+"_API_URL", EnvPrefix+"_API_BASE_URL"); err != nil {
		return nil, fmt.Errorf("binding api url env: %w", err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url must not be empty")
	}
	if cfg.Display.PollIntervalSec <= 0 {
		cfg.Display.PollIntervalSec = 5
	}
	if cfg.API.RequestTimeoutSec <= 0 {
		cfg.API.RequestTimeoutSec = 30
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("metrics", cfg.Metrics)
	v.Set("credentials", cfg.Credentials)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
