package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SETTINGS_UPDATE_MODE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8001", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "data", cfg.Storage.DataPath)
	assert.Equal(t, "replace", cfg.Settings.UpdateMode)
	assert.Equal(t, 10*time.Second, cfg.Discord.OAuthTimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
discord:
  client_id: "from-file"
  client_secret: "file-secret"
  oauth_timeout: 5s
server:
  port: "9000"
  dashboard_url: "https://dash.example.com/"
storage:
  driver: sqlite
  sqlite_path: /var/lib/toothless.db
settings:
  update_mode: merge
`)
	t.Setenv("CLIENT_ID", "from-env")
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SETTINGS_UPDATE_MODE", "")
	t.Setenv("DASHBOARD_URL", "")
	t.Setenv("OAUTH_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Discord.ClientID)
	assert.Equal(t, "file-secret", cfg.Discord.ClientSecret)
	assert.Equal(t, 5*time.Second, cfg.Discord.OAuthTimeout)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/toothless.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "merge", cfg.Settings.UpdateMode)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, "https://dash.example.com/callback", cfg.RedirectURI())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":     {"STORAGE_DRIVER": "redis"},
		"postgres needs url": {"STORAGE_DRIVER": "postgres", "DATABASE_URL": ""},
		"unknown mode":       {"SETTINGS_UPDATE_MODE": "patch"},
		"bad timeout":        {"OAUTH_TIMEOUT": "soon"},
		"bad burst":          {"RATE_LIMIT_BURST": "many"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}
