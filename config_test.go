package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tsbasic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
zone_width: 10
max_stack_depth: 50
summaries: false
log_level: debug
breakpoints: [20, 10]
`)

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.ZoneWidth)
	assert.Equal(t, 50, cfg.MaxStackDepth)
	assert.False(t, cfg.Summaries)
	assert.False(t, cfg.Stats)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []int{20, 10}, cfg.Breakpoints)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, "stats: true\n"), true)
	require.NoError(t, err)

	want := defaultConfig()
	want.Stats = true
	assert.Equal(t, want, cfg)
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := loadConfig(missing, false)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	_, err = loadConfig(missing, true)
	assert.Error(t, err)

	cfg, err = loadConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "max_stack_depth: 0\n"), true)
	assert.ErrorContains(t, err, "max_stack_depth")

	_, err = loadConfig(writeConfig(t, "zone_width: [\n"), true)
	assert.Error(t, err)
}
