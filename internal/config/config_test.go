package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"leadintake/internal/config"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_DefaultsAndYAML(t *testing.T) {
	path := writeConfig(t, `
environment: production
database:
  elevated:
    username: service
    password: secret
  session:
    username: api
    host: db.internal
notification:
  operatorEmail: ops@institute.test
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "service", cfg.Database.Elevated.Username)
	require.Equal(t, "localhost", cfg.Database.Elevated.Host)
	require.Equal(t, 5432, cfg.Database.Elevated.Port)
	require.Equal(t, "db.internal", cfg.Database.Session.Host)
	require.Equal(t, 3*time.Minute, cfg.Database.Session.ConnMaxLifetime)
	require.Equal(t, "authenticated", cfg.Database.SessionRole)
	require.Equal(t, "website-lead-form", cfg.Leads.Source)
	require.Equal(t, "ops@institute.test", cfg.Notification.OperatorEmail)
	require.Equal(t, 1, cfg.Notification.MaxAttempts)
	require.Equal(t, 10, cfg.RateLimit.Requests)
	require.Equal(t, time.Minute, cfg.RateLimit.Window)
	require.Empty(t, cfg.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LEADS_SOURCE", "spring-campaign")
	t.Setenv("NOTIFICATION_DRIVER", "smtp")
	t.Setenv("DATABASE_ELEVATED_PORT", "6432")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.test,https://b.test")

	cfg, err := config.Load(writeConfig(t, "environment: development\n"))
	require.NoError(t, err)

	require.Equal(t, "spring-campaign", cfg.Leads.Source)
	require.Equal(t, "smtp", cfg.Notification.Driver)
	require.Equal(t, 6432, cfg.Database.Elevated.Port)
	require.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("NOTIFICATION_DRIVER", "pigeon")

	_, err := config.Load(writeConfig(t, "environment: development\n"))
	require.ErrorContains(t, err, "pigeon")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}
