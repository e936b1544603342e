// Package config loads the client configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Reconnect configures the realtime channel's backoff.
type Reconnect struct {
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay"`
}

// Config is the client configuration.
type Config struct {
	APIBaseURL   string    `yaml:"api_base_url"`
	RealtimeAddr string    `yaml:"realtime_addr"`
	TokenTTL     Duration  `yaml:"token_ttl"`
	Reconnect    Reconnect `yaml:"reconnect"`
	DataPath     string    `yaml:"data_path"`
	LogLevel     string    `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		APIBaseURL:   "http://localhost:8080/api",
		RealtimeAddr: "localhost:9400",
		TokenTTL:     Duration(2 * time.Hour),
		Reconnect: Reconnect{
			MaxAttempts: 5,
			BaseDelay:   Duration(time.Second),
		},
		DataPath: defaultDataPath(),
		LogLevel: "info",
	}
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nexo.db"
	}
	return home + "/.nexo/client.db"
}

// Load reads path and overlays it on the defaults. A missing file is not an
// error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}
	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("reconnect.max_attempts must be >= 0")
	}
	if c.Reconnect.BaseDelay < 0 {
		return fmt.Errorf("reconnect.base_delay must be >= 0")
	}
	return nil
}
