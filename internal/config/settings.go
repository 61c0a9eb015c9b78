package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides (CODEPAIR_ADDR -> addr).
const EnvPrefix = "CODEPAIR_"

// LegacyAPIKeyEnv is read when no CODEPAIR_API_KEY is set.
const LegacyAPIKeyEnv = "TOGETHER_API_KEY"

// Settings holds the server process configuration.
type Settings struct {
	Addr            string        `koanf:"addr"`
	Environment     string        `koanf:"environment"`
	APIKey          string        `koanf:"api_key"`
	APIBaseURL      string        `koanf:"api_base_url"`
	Model           string        `koanf:"model"`
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`
	AppConfigPath   string        `koanf:"app_config_path"`
	// RateLimit is requests per minute per client on the generation routes; 0 disables it.
	RateLimit int `koanf:"rate_limit"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Addr:            ":5001",
		Environment:     "development",
		APIBaseURL:      "https://api.together.xyz/v1",
		Model:           "mistralai/Mixtral-8x7B-Instruct-v0.1",
		UpstreamTimeout: 45 * time.Second,
		AppConfigPath:   "config/app_config.json",
		RateLimit:       30,
	}
}

// LoadSettings reads settings from the given YAML file (if it exists), then
// overlays CODEPAIR_* environment variables.
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")
	cfg := DefaultSettings()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading settings %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing settings %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshalling settings: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(LegacyAPIKeyEnv)
	}

	return cfg, nil
}

// Validate checks that the settings contain usable values. A missing API key
// is not an error here: the generation routes report it per request.
func (s *Settings) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if s.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if s.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream_timeout must be positive")
	}
	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (s *Settings) IsProduction() bool {
	return s.Environment == "production"
}
