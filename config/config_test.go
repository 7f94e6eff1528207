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

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
app:
  port: 8080
auth:
  secret_key: from-file
  token_ttl: 15m
pagination:
  per_page: 10
database:
  driver: sqlite
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.App.Port)
	assert.Equal(t, "from-file", c.Auth.SecretKey)
	assert.Equal(t, 15*time.Minute, c.Auth.TokenTTL)
	assert.Equal(t, 10, c.Pagination.PerPage)
	assert.Equal(t, 100, c.Pagination.MaxPerPage)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, "/api/v1", c.APIPrefix())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "auth:\n  secret_key: from-file\n")
	t.Setenv("RESTLAB_AUTH_SECRET_KEY", "from-env")
	t.Setenv("RESTLAB_PAGINATION_PER_PAGE", "7")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Auth.SecretKey)
	assert.Equal(t, 7, c.Pagination.PerPage)
}

func TestLoadRequiresSecretOutsideTesting(t *testing.T) {
	path := writeConfig(t, "app:\n  env: production\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_key")

	path = writeConfig(t, "app:\n  env: testing\n")
	_, err = Load(path)
	assert.NoError(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, "auth:\n  secret_key: x\ndatabase:\n  driver: oracle\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "oracle")
}

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, 5, c.Pagination.PerPage)
	assert.Equal(t, 30*time.Minute, c.Auth.TokenTTL)
	assert.Equal(t, []string{"jpg", "jpeg", "png", "gif"}, c.Upload.AllowedExtensions)
	assert.Contains(t, c.PostgresDSN(), "dbname=restlab")
}
