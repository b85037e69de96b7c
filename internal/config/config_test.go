package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TASKFLOW_CONFIG", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Backend)
	assert.Equal(t, 30*time.Second, cfg.Notifications.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Notifications.Window)
	assert.Equal(t, "taskflow.events", cfg.Kafka.EventsTopic)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_port: "7000"
storage:
  backend: file
  file_path: /tmp/flows.json
redis:
  enabled: true
  urls: ["localhost:6379", "localhost:6380"]
  ttl: 45s
notifications:
  interval: 1m
`), 0o644))

	t.Setenv("TASKFLOW_CONFIG", path)
	t.Setenv("HTTP_PORT", "7100")
	t.Setenv("REDIS_TTL", "90")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7100", cfg.Server.HTTPPort)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/flows.json", cfg.Storage.FilePath)
	assert.Equal(t, []string{"localhost:6379", "localhost:6380"}, cfg.Redis.URLs)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.Equal(t, time.Minute, cfg.Notifications.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Notifications.Window)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TASKFLOW_CONFIG", "")

	t.Setenv("STORAGE_BACKEND", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DURATION", "2m")
	assert.Equal(t, 2*time.Minute, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "15")
	assert.Equal(t, 15*time.Second, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("X_DURATION", time.Second))
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, Name: "n", User: "u", Password: "p"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", db.DSN())
}
