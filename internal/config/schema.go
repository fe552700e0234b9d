// Package config loads the todus client configuration.
package config

import "time"

// Config is the client configuration. Task lifecycle preferences (rules,
// retention, notifications) live in the preference store, not here.
type Config struct {
	DBPath   string         `yaml:"db_path" mapstructure:"db_path"`
	API      APIConfig      `yaml:"api" mapstructure:"api"`
	Apply    ApplyConfig    `yaml:"apply" mapstructure:"apply"`
	Notify   NotifyConfig   `yaml:"notify" mapstructure:"notify"`
	Calendar CalendarConfig `yaml:"calendar" mapstructure:"calendar"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// APIConfig points at the remote task service. An empty BaseURL means the
// local database is the task store. Token wins over a session saved in
// TokenFile by `todus login`.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Token     string        `yaml:"token" mapstructure:"token"`
	TokenFile string        `yaml:"token_file" mapstructure:"token_file"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyConfig tunes how reconciliation writes are issued
type ApplyConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// Notification sinks
const (
	SinkTerminal = "terminal"
	SinkCalendar = "calendar"
	SinkNone     = "none"
)

// NotifyConfig selects where alerts go
type NotifyConfig struct {
	Sink string `yaml:"sink" mapstructure:"sink"`
}

// CalendarConfig configures the Google Calendar sink
type CalendarConfig struct {
	ID              string `yaml:"id" mapstructure:"id"`
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	TokenFile       string `yaml:"token_file" mapstructure:"token_file"`
}

// LogConfig sets the log level: debug, info, warn or error
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}
