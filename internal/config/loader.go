package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TODUS_API_TOKEN
const EnvPrefix = "TODUS"

// HomeDir returns ~/.todus, or TODUS_HOME when set
func HomeDir() string {
	if dir := os.Getenv(EnvPrefix + "_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".todus"
	}
	return filepath.Join(home, ".todus")
}

// DefaultPath returns the path of the configuration file
func DefaultPath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(HomeDir(), "config.yaml")
}

// Load reads the configuration at path (DefaultPath when empty) on top of
// the defaults. A missing file is not an error. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.DBPath = expandHome(cfg.DBPath)
	cfg.API.TokenFile = expandHome(cfg.API.TokenFile)
	cfg.Calendar.CredentialsFile = expandHome(cfg.Calendar.CredentialsFile)
	cfg.Calendar.TokenFile = expandHome(cfg.Calendar.TokenFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so env overrides apply to keys missing
// from the file
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("api.token_file", d.API.TokenFile)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("apply.concurrency", d.Apply.Concurrency)
	v.SetDefault("notify.sink", d.Notify.Sink)
	v.SetDefault("calendar.id", d.Calendar.ID)
	v.SetDefault("calendar.credentials_file", d.Calendar.CredentialsFile)
	v.SetDefault("calendar.token_file", d.Calendar.TokenFile)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate rejects settings no component can work with
func (c *Config) Validate() error {
	switch c.Notify.Sink {
	case SinkTerminal, SinkCalendar, SinkNone:
	default:
		return fmt.Errorf("notify.sink must be %s, %s or %s, got %q", SinkTerminal, SinkCalendar, SinkNone, c.Notify.Sink)
	}
	if c.Apply.Concurrency < 1 {
		return fmt.Errorf("apply.concurrency must be at least 1, got %d", c.Apply.Concurrency)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout)
	}
	if c.API.BaseURL != "" && !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with http:// or https://, got %q", c.API.BaseURL)
	}
	return nil
}

// Remote reports whether tasks live in the remote task service
func (c *Config) Remote() bool {
	return c.API.BaseURL != ""
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
