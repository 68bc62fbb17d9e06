package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	tunnelconfig "github.com/kfsoftware/ssh-ip-tunnel/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "ssh-ip-tunnel"}
	root.PersistentFlags().String("config", "", "")
	root.AddCommand(NewConfigCmd())
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPrintDefaults(t *testing.T) {
	out, err := execute(t, "config", "--defaults")
	require.NoError(t, err)
	cfg, err := tunnelconfig.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, tunnelconfig.Default(), cfg)
}

func TestPrintLoadedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_port = 2022\n"), 0o600))

	out, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "default_port = 2022")
}

func TestWriteConfig(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	_, err := execute(t, "config", "--defaults", "--output", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	cfg, err := tunnelconfig.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, tunnelconfig.Default(), cfg)

	_, err = execute(t, "config", "--defaults", "--output", target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = execute(t, "config", "--defaults", "--output", target, "--force")
	require.NoError(t, err)
}

func TestDefaultsConflictsWithConfig(t *testing.T) {
	_, err := execute(t, "config", "--defaults", "--config", "/tmp/x.toml")
	require.Error(t, err)
}
