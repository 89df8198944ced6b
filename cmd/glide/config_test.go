package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConfCmd builds a command with an explicit config file so the test
// never picks up a real glide.toml from the host.
func newConfCmd(t *testing.T, configBody string) *cobra.Command {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "glide.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(configBody), 0o644))

	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().Int("max-items", 50, "")
	addConfigFlag(cmd)
	require.NoError(t, cmd.Flags().Set("config", cfg))
	return cmd
}

func TestBindViperReadsConfigFile(t *testing.T) {
	cmd := newConfCmd(t, "max-items = 75\n")

	v := viper.New()
	require.NoError(t, bindViper(cmd, v))

	assert.Equal(t, 75, v.GetInt("max-items"))
}

func TestBindViperEnvOverridesDashedFlag(t *testing.T) {
	t.Setenv("GLIDE_MAX_ITEMS", "80")
	cmd := newConfCmd(t, "max-items = 75\n")

	v := viper.New()
	require.NoError(t, bindViper(cmd, v))

	assert.Equal(t, 80, v.GetInt("max-items"), "dashed flag name maps to GLIDE_MAX_ITEMS")
}

func TestBindViperFlagBeatsEnv(t *testing.T) {
	t.Setenv("GLIDE_MAX_ITEMS", "80")
	cmd := newConfCmd(t, "")
	require.NoError(t, cmd.Flags().Set("max-items", "10"))

	v := viper.New()
	require.NoError(t, bindViper(cmd, v))

	assert.Equal(t, 10, v.GetInt("max-items"))
}
