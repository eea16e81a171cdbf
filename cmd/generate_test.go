package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func resetGenerateFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		generateFlags.configFile = ""
		generateFlags.outputDir = ""
		generateFlags.seed = 0
		generateFlags.days = 0
		generateFlags.startDate = ""
		generateFlags.noProgress = false
	})
}

func TestLoadGenerateConfigAppliesOverrides(t *testing.T) {
	resetGenerateFlags(t)

	generateFlags.configFile = writeConfig(t, "generation:\n  seed: 7\n  days: 365\n")
	generateFlags.seed = 99
	generateFlags.days = 14
	generateFlags.outputDir = "alt-output"
	generateFlags.startDate = "2025-06-01"

	cfg, err := loadGenerateConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Generation.Seed)
	assert.Equal(t, 14, cfg.Generation.Days)
	assert.Equal(t, "2025-06-01", cfg.Generation.StartDate)
	assert.Equal(t, "alt-output", cfg.Output.Directory)
}

func TestLoadGenerateConfigAppliesEnvOverrides(t *testing.T) {
	resetGenerateFlags(t)
	t.Setenv("FUNNELFORGE_GENERATION_SEED", "123")
	t.Setenv("FUNNELFORGE_OUTPUT_DIRECTORY", "env-output")
	initViper()

	generateFlags.configFile = writeConfig(t, "generation:\n  seed: 7\n")

	cfg, err := loadGenerateConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(123), cfg.Generation.Seed)
	assert.Equal(t, "env-output", cfg.Output.Directory)
}

func TestGenerateFlagsBeatEnvOverrides(t *testing.T) {
	resetGenerateFlags(t)
	t.Setenv("FUNNELFORGE_GENERATION_SEED", "123")
	initViper()

	generateFlags.configFile = writeConfig(t, "generation:\n  seed: 7\n")
	generateFlags.seed = 99

	cfg, err := loadGenerateConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Generation.Seed)
}

func TestValidateConfigAppliesEnvOverrides(t *testing.T) {
	t.Setenv("FUNNELFORGE_WAREHOUSE_USERNAME", "env-loader")
	initViper()

	validateConfigFile = writeConfig(t, "generation:\n  seed: 7\n")
	t.Cleanup(func() { validateConfigFile = "" })

	cfg, err := loadValidateConfig()
	require.NoError(t, err)

	assert.Equal(t, "env-loader", cfg.Warehouse.Username)
}

func TestLoadGenerateConfigRejectsInvalidOverride(t *testing.T) {
	resetGenerateFlags(t)

	generateFlags.configFile = writeConfig(t, "generation:\n  seed: 7\n")
	generateFlags.startDate = "not-a-date"

	_, err := loadGenerateConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start_date")
}

func TestLoadGenerateConfigMissingFile(t *testing.T) {
	resetGenerateFlags(t)

	generateFlags.configFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := loadGenerateConfig()
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	path := writeConfig(t, "generation:\n  seed: 7\n  days: 30\n")
	t.Cleanup(func() { validateConfigFile = "" })

	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs([]string{"validate", "--config", path})

	err := rootCmd.Execute()
	assert.NoError(t, err)
}

func TestValidateCommandRejectsBrokenConfig(t *testing.T) {
	path := writeConfig(t, "generation:\n  days: -5\n")
	t.Cleanup(func() { validateConfigFile = "" })

	b := bytes.NewBufferString("")
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	rootCmd.SetArgs([]string{"validate", "--config", path})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "days must be positive")
}
