package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data/invoicer.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.DevSecret)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadServer_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TOKEN_TTL", "")
	// godotenv never overrides variables that are already set, so the
	// ones under test must be absent rather than empty.
	require.NoError(t, os.Unsetenv("PORT"))
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	require.NoError(t, os.Unsetenv("TOKEN_TTL"))

	env := "PORT=9090\nJWT_SECRET=from-file\nTOKEN_TTL=2h\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0600))

	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.False(t, cfg.DevSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
}

func TestLoadClient(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INVOICER_SERVER", "http://billing.internal/api")
	t.Setenv("INVOICER_SESSION_DB", "/tmp/s.db")
	t.Setenv("INVOICER_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://billing.internal/api", cfg.ServerURL)
	assert.Equal(t, "/tmp/s.db", cfg.SessionDB)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	t.Setenv("INVOICER_TIMEOUT", "soon")
	_, err = LoadClient()
	assert.Error(t, err)
}
