package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarspots/internal/apperr"
)

// TestDefaultConfig verifies the documented pipeline constants
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5.0, cfg.Limb.BlurSigma)
	assert.Equal(t, 256, cfg.Limb.OtsuBins)
	assert.Equal(t, 0.5, cfg.Limb.ContourLevel)
	assert.Equal(t, Footprint{Kind: FootprintCross, Size: 3}, cfg.Limb.Footprint)
	assert.Equal(t, 0.95, cfg.Disk.ShrinkFactor)
	assert.Equal(t, 25, cfg.Spots.BackgroundWindow)
	assert.Equal(t, 2.0, cfg.Spots.SigmaMultiplier)
	assert.Equal(t, Footprint{Kind: FootprintCross, Size: 3}, cfg.Spots.Footprint)
	assert.False(t, cfg.Output.SaveIntermediaryResults)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sunspots.yaml")

	cfg := DefaultConfig()
	cfg.Limb.BlurSigma = 3.5
	cfg.Spots.BackgroundWindow = 31
	cfg.Spots.Footprint = Footprint{Kind: FootprintSquare, Size: 5}
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("disk:\n  shrinkFactor: 0.9\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Disk.ShrinkFactor)
	assert.Equal(t, 25, cfg.Spots.BackgroundWindow)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limb: [unterminated"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConfig))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SUNSPOTS_BLUR_SIGMA", "2.5")
	t.Setenv("SUNSPOTS_BACKGROUND_WINDOW", "15")
	t.Setenv("SUNSPOTS_SAVE_INTERMEDIARY", "true")
	t.Setenv("SUNSPOTS_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 2.5, cfg.Limb.BlurSigma)
	assert.Equal(t, 15, cfg.Spots.BackgroundWindow)
	assert.True(t, cfg.Output.SaveIntermediaryResults)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv("SUNSPOTS_SIGMA_MULTIPLIER", "two")

	err := DefaultConfig().ApplyEnv()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConfig))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SUNSPOTS_SHRINK_FACTOR=0.8\n"), 0644))
	t.Setenv("SUNSPOTS_SHRINK_FACTOR", "")
	os.Unsetenv("SUNSPOTS_SHRINK_FACTOR")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, 0.8, cfg.Disk.ShrinkFactor)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative sigma", func(c *Config) { c.Limb.BlurSigma = -1 }},
		{"single bin", func(c *Config) { c.Limb.OtsuBins = 1 }},
		{"contour level out of range", func(c *Config) { c.Limb.ContourLevel = 1 }},
		{"shrink above one", func(c *Config) { c.Disk.ShrinkFactor = 1.2 }},
		{"zero window", func(c *Config) { c.Spots.BackgroundWindow = 0 }},
		{"even footprint", func(c *Config) { c.Limb.Footprint.Size = 4 }},
		{"unknown footprint", func(c *Config) { c.Spots.Footprint.Kind = "diamond" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrConfig))
		})
	}
}
