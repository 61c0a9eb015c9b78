package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv("CODEPAIR_API_KEY", "")
	t.Setenv(LegacyAPIKeyEnv, "")

	cfg, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultSettings(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadSettings_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codepair.yml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\nmodel: file-model\nupstream_timeout: 30s\nrate_limit: 5\n"), 0o644))

	t.Setenv("CODEPAIR_MODEL", "env-model")
	t.Setenv("CODEPAIR_API_KEY", "")
	t.Setenv(LegacyAPIKeyEnv, "")

	cfg, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "env-model", cfg.Model)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 5, cfg.RateLimit)
}

func TestLoadSettings_APIKeyPrecedence(t *testing.T) {
	t.Run("legacy variable used when prefixed one is unset", func(t *testing.T) {
		t.Setenv("CODEPAIR_API_KEY", "")
		t.Setenv(LegacyAPIKeyEnv, "together-key")

		cfg, err := LoadSettings("")
		require.NoError(t, err)
		assert.Equal(t, "together-key", cfg.APIKey)
	})

	t.Run("prefixed variable wins", func(t *testing.T) {
		t.Setenv("CODEPAIR_API_KEY", "codepair-key")
		t.Setenv(LegacyAPIKeyEnv, "together-key")

		cfg, err := LoadSettings("")
		require.NoError(t, err)
		assert.Equal(t, "codepair-key", cfg.APIKey)
	})
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"empty addr", func(s *Settings) { s.Addr = "" }},
		{"empty base url", func(s *Settings) { s.APIBaseURL = "" }},
		{"empty model", func(s *Settings) { s.Model = "" }},
		{"zero timeout", func(s *Settings) { s.UpstreamTimeout = 0 }},
		{"negative rate limit", func(s *Settings) { s.RateLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}
