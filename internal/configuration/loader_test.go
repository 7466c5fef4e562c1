package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_BaseConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "application.yml", `
app:
  log-level: debug
transport:
  address: 127.0.0.1
  peer-port: "7420"
  client-port: "7421"
cluster:
  node-id: 1
  w: 2
  primaries:
    1: 127.0.0.1:7420
    2: 127.0.0.1:7430
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.App.LogLevel)
	require.Equal(t, uint64(1), cfg.Cluster.NodeID)
	require.Equal(t, 2, cfg.Cluster.W)
	require.Equal(t, "127.0.0.1:7420", cfg.Cluster.Primaries[1])

	// Unset tunables fall back to the protocol defaults.
	require.Equal(t, int64(2000), cfg.Cluster.DefaultLeaseMS)
	require.Equal(t, int64(1000), cfg.Cluster.LockTTLMS)
	require.Equal(t, int64(1000), cfg.Cluster.LockSweepMS)
	require.Equal(t, int64(10000), cfg.Cluster.LeaseSweepMS)
	require.Equal(t, int64(1000), cfg.Transport.TimeoutMS)
}

func TestLoad_ProfileOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "application.yml", `
app:
  profile: test
  log-level: info
cluster:
  node-id: 1
`)
	writeConfig(t, dir, "application-test.yml", `
app:
  log-level: debug
cluster:
  w: 3
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.App.LogLevel)
	require.Equal(t, 3, cfg.Cluster.W)
	require.Equal(t, uint64(1), cfg.Cluster.NodeID)
}

func TestLoad_StrictEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "application.yml", `
transport:
  address: ${LOCKER_TEST_ADDR}
`)

	_, err := Load(dir)
	require.Error(t, err)

	t.Setenv("LOCKER_TEST_ADDR", "10.0.0.7")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.7", cfg.Transport.Address)
}

func TestLoad_MissingBaseFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}
