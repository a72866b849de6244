package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/commitpilot/commitpilot/internal/pkg/errors"
)

func TestConfigCmd_InitSetGet(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	cfg := filepath.Join(t.TempDir(), "config.ini")

	out, _, err := execute(t, "--config", cfg, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, cfg)

	info, err := os.Stat(cfg)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out, _, err = execute(t, "--config", cfg, "config", "set", "branch", "main")
	require.NoError(t, err)
	assert.Equal(t, "Set branch = main\n", out)

	out, _, err = execute(t, "--config", cfg, "config", "get", "branch")
	require.NoError(t, err)
	assert.Equal(t, "main\n", out)
}

func TestConfigCmd_ListMalformedConfig(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	cfg := testConfig(t, "[DEFAULT\nbranch = main\n")

	out, _, err := execute(t, "--config", cfg, "config", "list")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidConfig))
	assert.Empty(t, out)
}

func TestConfigCmd_InitTwice(t *testing.T) {
	clearEnv(t)
	cfg := filepath.Join(t.TempDir(), "config.ini")

	_, _, err := execute(t, "--config", cfg, "config", "init")
	require.NoError(t, err)
	_, _, err = execute(t, "--config", cfg, "config", "init")
	assert.Error(t, err)
}

func TestConfigCmd_SetMasksToken(t *testing.T) {
	clearEnv(t)
	cfg := filepath.Join(t.TempDir(), "config.ini")

	out, _, err := execute(t, "--config", cfg, "config", "set", "openai_token", "sk-abcdefghijklmnopqrstuvwx")
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-abcdefghijklmnopqrstuvwx")
	assert.Contains(t, out, "uvwx")

	out, _, err = execute(t, "--config", cfg, "config", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-abcdefghijklmnopqrstuvwx")
	assert.Contains(t, out, "openai_token = ")
	assert.Contains(t, out, "api_provider = aitunnel")
}

func TestConfigCmd_SetRejectsUnknown(t *testing.T) {
	clearEnv(t)
	cfg := filepath.Join(t.TempDir(), "config.ini")

	_, _, err := execute(t, "--config", cfg, "config", "set", "no_such_key", "x")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidArguments))

	_, _, err = execute(t, "--config", cfg, "config", "set", "api_provider", "nope")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidConfig))
}

func TestConfigCmd_Path(t *testing.T) {
	clearEnv(t)
	cfg := filepath.Join(t.TempDir(), "config.ini")

	out, _, err := execute(t, "--config", cfg, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfg+"\n", out)
}

func TestConfigCmd_PathFromEnv(t *testing.T) {
	clearEnv(t)
	cfg := filepath.Join(t.TempDir(), "custom.ini")
	t.Setenv("COMMITPILOT_CONFIG", cfg)

	out, _, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfg+"\n", out)
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "main", displayValue("branch", "main"))
	assert.Equal(t, "", displayValue("openai_token", ""))
	assert.Equal(t, "********5678", displayValue("AITUNNEL_TOKEN", "sk-abcd-5678"))
}
