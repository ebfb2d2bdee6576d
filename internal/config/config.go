// Package config loads formsubmit settings from an optional YAML or TOML file
// and overlays FORMSUBMIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of one submission session.
type Config struct {
	URL        string   `yaml:"url" toml:"url" env:"URL"`
	SubmitPath string   `yaml:"submit_path" toml:"submit_path" env:"SUBMIT_PATH"`
	FormID     string   `yaml:"form_id" toml:"form_id" env:"FORM_ID"`
	SpinnerID  string   `yaml:"spinner_id" toml:"spinner_id" env:"SPINNER_ID"`
	ResultID   string   `yaml:"result_id" toml:"result_id" env:"RESULT_ID"`
	Timeout    Duration `yaml:"timeout" toml:"timeout" env:"TIMEOUT"`
	Sanitize   bool     `yaml:"sanitize" toml:"sanitize" env:"SANITIZE"`
	Contract   string   `yaml:"contract" toml:"contract" env:"CONTRACT"`
	LogLevel   string   `yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogFormat  string   `yaml:"log_format" toml:"log_format" env:"LOG_FORMAT"`
}

// Duration is a time.Duration read from text such as "30s" or "1m30s" in
// every config source.
type Duration time.Duration

// UnmarshalText parses a time.ParseDuration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration the way UnmarshalText reads it.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FORMSUBMIT_"

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		SubmitPath: "/",
		FormID:     "voiceForm",
		SpinnerID:  "loadingSpinner",
		ResultID:   "resultMessage",
		Sanitize:   true,
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// Load starts from Default, applies the file at path when path is not empty,
// then applies the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv overlays FORMSUBMIT_* variables onto cfg.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.FormID) == "" {
		errs = append(errs, errors.New("form_id is required"))
	}
	if strings.TrimSpace(c.SpinnerID) == "" {
		errs = append(errs, errors.New("spinner_id is required"))
	}
	if strings.TrimSpace(c.ResultID) == "" {
		errs = append(errs, errors.New("result_id is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q is not console or json", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("config: unsupported file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}
