package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "governance.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serviceName: gov-test
httpAddr: "9090"
store:
  backend: badger
  dataDir: /tmp/gov
bootstrap:
  owner: root
  admins: [alice, bob]
outbox:
  pollInterval: 500ms
  batchSize: 25
`), 0o600))
	t.Setenv("GOVERNANCE_STORE_BACKEND", "LevelDB")
	t.Setenv("GOVERNANCE_OUTBOX_BATCH_SIZE", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "gov-test", cfg.ServiceName)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.Equal(t, BackendLevelDB, cfg.Store.Backend)
	require.Equal(t, "/tmp/gov", cfg.Store.DataDir)
	require.Equal(t, "root", cfg.Bootstrap.Owner)
	require.Equal(t, []string{"alice", "bob"}, cfg.Bootstrap.Admins)
	require.Equal(t, 500*time.Millisecond, cfg.Outbox.PollInterval)
	require.Equal(t, 50, cfg.Outbox.BatchSize)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("GOVERNANCE_STORE_BACKEND", "cassandra")
	_, err := Load("")
	require.ErrorContains(t, err, "invalid config")
}

func TestPostgresRequiresDSN(t *testing.T) {
	t.Setenv("GOVERNANCE_STORE_BACKEND", "postgres")
	_, err := Load("")
	require.Error(t, err)

	t.Setenv("GOVERNANCE_STORE_DSN", "postgres://localhost/governance")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/governance", cfg.Store.DSN)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "error reading config file")
}
