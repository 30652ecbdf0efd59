package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/interlinker/internal/config"
	"github.com/jonesrussell/north-cloud/interlinker/internal/injector"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultServiceName, cfg.Service.Name)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, injector.DefaultOptions(), cfg.Injection)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yml", `
service:
  name: linker
server:
  port: 9000
  read_timeout: 5s
logging:
  level: debug
  format: console
injection:
  max_links: 10
  min_relevance: 0.6
`)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("INJECT_MAX_PER_SECTION", "3")
	t.Setenv("SERVER_WRITE_TIMEOUT", "45s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "linker", cfg.Service.Name)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10, cfg.Injection.MaxLinks)
	assert.InDelta(t, 0.6, cfg.Injection.MinRelevance, 1e-9)
	assert.Equal(t, 3, cfg.Injection.MaxPerSection)
	assert.Equal(t, injector.DefaultMinLinks, cfg.Injection.MinLinks)
	assert.True(t, cfg.Logging.Logger().Development)
	assert.Equal(t, ":9100", cfg.Server.Address())
}

func TestLoad_EnvFile(t *testing.T) {
	envPath := writeFile(t, "test.env", "SERVICE_VERSION=1.2.3\n")
	t.Setenv("ENV_FILE", envPath)
	t.Setenv("SERVICE_VERSION", "placeholder")
	require.NoError(t, os.Unsetenv("SERVICE_VERSION"))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", cfg.Service.Version)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "bad.yml", "server: [unclosed"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "port.yml", "server:\n  port: 70000\n"))
	var vErr *config.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "server.port", vErr.Field)

	_, err = config.Load(writeFile(t, "level.yml", "logging:\n  level: loud\n"))
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "logging.level", vErr.Field)

	_, err = config.Load(writeFile(t, "inject.yml", "injection:\n  min_relevance: 2\n"))
	assert.ErrorIs(t, err, injector.ErrInvalidOptions)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")
	assert.Equal(t, "fallback.yml", config.ResolvePath("fallback.yml"))

	t.Setenv(config.EnvConfigPath, "/etc/interlinker.yml")
	assert.Equal(t, "/etc/interlinker.yml", config.ResolvePath("fallback.yml"))
}

func TestLoad_ExampleFile(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	cfg, err := config.Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, int64(config.DefaultMaxBodyBytes), cfg.Server.MaxBodyBytes)
	assert.Equal(t, injector.DefaultMinRelevance, cfg.Injection.MinRelevance)
	assert.Equal(t, injector.DefaultMaxLinks, cfg.Injection.MaxLinks)
}
