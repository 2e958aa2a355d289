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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: eventhub
  frontend_url: http://localhost:3000
http:
  port: 9000
database:
  path: data/app.db
auth:
  jwt_secret: s3cret
  token_ttl: 720h
rate_limit:
  rps: 10
  burst: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eventhub", cfg.App.Name)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "data/app.db", cfg.Database.Path)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: data/app.db
auth:
  jwt_secret: s3cret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadHeaderTimeout)
	assert.Equal(t, "http://localhost:3000", cfg.App.FrontendURL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5*24*time.Hour, cfg.Auth.ShortTokenTTL)
	assert.Equal(t, "x-auth-token", cfg.Auth.AuthHeader)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLen)
	assert.Equal(t, 10*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "from-env")

	path := writeConfig(t, `
database:
  path: data/app.db
auth:
  jwt_secret: ${TEST_JWT_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoad_ValidationErrors(t *testing.T) {
	_, err := Load(writeConfig(t, `
auth:
  jwt_secret: s3cret
`))
	assert.ErrorContains(t, err, "database path")

	_, err = Load(writeConfig(t, `
database:
  path: data/app.db
`))
	assert.ErrorContains(t, err, "jwt secret")

	_, err = Load(writeConfig(t, `
database:
  path: data/app.db
auth:
  jwt_secret: s3cret
google:
  client_id: some-client
`))
	assert.ErrorContains(t, err, "redirect_url")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
