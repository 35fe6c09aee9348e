package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orgpulse.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileGetsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Days)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimitDelay)
	assert.Equal(t, "orgpulse.db", cfg.DBPath)
	assert.Equal(t, "orgpulse.log", cfg.Log.File)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
organization: acme
days: 30
include_private: true
rate_limit_delay: 2s
ignored_user_patterns:
  - "^ci-"
repo_pattern: "api-*"
db_path: /tmp/acme.db
log:
  level: debug
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Organization)
	assert.Equal(t, 30, cfg.Days)
	assert.True(t, cfg.IncludePrivate)
	assert.Equal(t, 2*time.Second, cfg.RateLimitDelay)
	assert.Equal(t, []string{"^ci-"}, cfg.IgnoredUserPatterns)
	assert.Equal(t, "api-*", cfg.RepoPattern)
	assert.Equal(t, "/tmp/acme.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "orgpulse.log", cfg.Log.File, "unset fields still get defaults")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative days", "days: -1"},
		{"negative max_repos", "max_repos: -5"},
		{"unparseable delay", "rate_limit_delay: fast"},
		{"invalid yaml", "organization: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
