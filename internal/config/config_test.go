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

func TestLoadYAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  shutdown_timeout: 5s
storage:
  driver: memory
auth:
  provider: jwt
  jwt_secret: from-file
scoring:
  distance_weight: 7
log:
  level: debug
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset fields keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 7.0, cfg.Scoring.DistanceWeight)
	assert.Equal(t, 60.0, cfg.Scoring.DefaultMaxDistanceKm)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "jwt provider needs a secret")

	cfg.Auth.JWTSecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Push.Provider = "apns"
	assert.Error(t, cfg.Validate())

	cfg.Push.Provider = "pigeon"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	db := Default().Database
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=playdate sslmode=disable", db.DSN())

	db.URL = "postgres://u:p@db/playdate"
	assert.Equal(t, "postgres://u:p@db/playdate", db.DSN())
}
