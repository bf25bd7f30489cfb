package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: development
  port: 5000
mongo:
  uri: mongodb://db:27017
  database: roomies
redis:
  addr: cache:6379
kafka:
  brokers:
    - broker:9092
jwt:
  secret: sekrit
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Development())
	assert.Equal(t, 5000, cfg.App.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "roomies", cfg.Mongo.Database)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"broker:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "sekrit", cfg.JWT.Secret)
	// untouched keys keep their defaults
	assert.Equal(t, "chat.events", cfg.Redis.Channel)
	assert.Equal(t, 9100, cfg.App.MetricsPort)
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.App.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Empty(t, cfg.Redis.Addr, "backplane stays off unless configured")
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("APP_MONGO_URI", "mongodb://elsewhere:27017")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mongodb://elsewhere:27017", cfg.Mongo.URI)
}
