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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 300, c.Universe.Size)
	assert.Equal(t, 730, c.Analysis.BetaLookbackDays)
	assert.Equal(t, 16, c.Analysis.MaxWorkers)
	assert.Equal(t, 60, c.Analysis.MinBetaSamples)
	assert.Equal(t, 45*time.Second, c.Analysis.FetchTimeout)
	assert.Equal(t, "file", c.Cache.Backend)
	assert.Equal(t, "^GSPC", c.MarketData.BenchmarkTicker)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
environment: production
universe:
  size: 50
analysis:
  fetch_timeout: 3s
cache:
  backend: redis
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, c.Universe.Size)
	assert.Equal(t, 3*time.Second, c.Analysis.FetchTimeout)
	assert.Equal(t, "redis", c.Cache.Backend)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "environment: test\ncache:\n  backend: floppy\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestKafkaRequiresBrokersWhenEnabled(t *testing.T) {
	path := writeConfig(t, "environment: test\nkafka:\n  enabled: true\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("UNIVERSE_SIZE", "25")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("CACHE_BACKEND", "memory")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, 25, c.Universe.Size)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "memory", c.Cache.Backend)
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.NoError(t, c.Validate())
}
