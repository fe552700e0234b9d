package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := HomeDir()
	return &Config{
		DBPath: filepath.Join(dir, "todus.db"),
		API: APIConfig{
			TokenFile: filepath.Join(dir, "session.token"),
			Timeout:   15 * time.Second,
		},
		Apply: ApplyConfig{
			Concurrency: 4,
		},
		Notify: NotifyConfig{
			Sink: SinkTerminal,
		},
		Calendar: CalendarConfig{
			ID:              "primary",
			CredentialsFile: filepath.Join(dir, "credentials.json"),
			TokenFile:       filepath.Join(dir, "token.json"),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// WriteDefault writes the default configuration to path. An existing file
// is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	header := []byte("# todus configuration\n# Leave api.base_url empty to keep tasks in the local database.\n")
	return os.WriteFile(path, append(header, data...), 0600)
}

// fileConfig mirrors Config with durations spelled out, e.g. "15s"
type fileConfig struct {
	DBPath string `yaml:"db_path"`
	API    struct {
		BaseURL   string `yaml:"base_url"`
		Token     string `yaml:"token"`
		TokenFile string `yaml:"token_file"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"api"`
	Apply    ApplyConfig    `yaml:"apply"`
	Notify   NotifyConfig   `yaml:"notify"`
	Calendar CalendarConfig `yaml:"calendar"`
	Log      LogConfig      `yaml:"log"`
}

// Marshal renders cfg as YAML
func Marshal(cfg *Config) ([]byte, error) {
	out := fileConfig{
		DBPath:   cfg.DBPath,
		Apply:    cfg.Apply,
		Notify:   cfg.Notify,
		Calendar: cfg.Calendar,
		Log:      cfg.Log,
	}
	out.API.BaseURL = cfg.API.BaseURL
	out.API.Token = cfg.API.Token
	out.API.TokenFile = cfg.API.TokenFile
	out.API.Timeout = cfg.API.Timeout.String()

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
