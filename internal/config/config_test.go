package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTemp(t, "listen_port: 30000\nmotd: \"Hello\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 30000, cfg.ListenPort)
	require.Equal(t, "Hello", cfg.MOTD)
	require.Equal(t, 20, cfg.MaxPlayers)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestShutdownTimeoutConvertsMillisecondsToDuration(t *testing.T) {
	cfg := Config{ShutdownTimeoutMS: 2500}
	require.Equal(t, 2500_000_000, int(cfg.ShutdownTimeout()))
}

func TestApplyFlagsOverridesOnlyNonZero(t *testing.T) {
	cfg := Config{ListenPort: 25565, ShutdownTimeoutMS: 5000}
	port, shutdownMS := 30000, 0

	out := ApplyFlags(cfg, &port, &shutdownMS)
	require.Equal(t, 30000, out.ListenPort)
	require.Equal(t, 5000, out.ShutdownTimeoutMS)
}
