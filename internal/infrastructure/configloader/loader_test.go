package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, DefaultRemoteRPCURL, cfg.RPCResolver.RemoteURL)
	assert.Equal(t, 100, cfg.Gateway.HealthFactorBatchSize)
	assert.Equal(t, 2, cfg.Gateway.MaxRetries)
	assert.Equal(t, "GHO", cfg.Positions.PromotedSymbol)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	body := `
server:
  port: ":9000"
chains:
  - name: ETHEREUM
    primaryRpcUrl: https://eth.example
    fallbackRpcUrls: [https://eth2.example]
gateway:
  maxRetries: -1
  callTimeoutMillis: 2500
positions:
  promotedSymbol: AAVE
`
	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Port)
	require.Len(t, cfg.Chains, 1)
	assert.Equal(t, "https://eth.example", cfg.Chains[0].PrimaryRPCURL)
	assert.Equal(t, []string{"https://eth2.example"}, cfg.Chains[0].FallbackRPCURLs)
	assert.Equal(t, 0, cfg.Gateway.MaxRetries)
	assert.Equal(t, int64(2500), cfg.Gateway.CallTimeoutMillis)
	assert.Equal(t, "AAVE", cfg.Positions.PromotedSymbol)
}

func TestLoadRejectsInvalidBackends(t *testing.T) {
	_, err := Load(writeConfig(t, "database:\n  driver: postgres\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "cache:\n  backend: memcached\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config/config.yaml", PathFromEnv("config/config.yaml"))
	t.Setenv("CONFIG_PATH", "/etc/aave.yaml")
	assert.Equal(t, "/etc/aave.yaml", PathFromEnv("config/config.yaml"))
}
