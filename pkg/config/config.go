// Package config provides configuration loading and management for solarspots.
// It handles loading configuration from YAML files, environment overrides and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"solarspots/internal/apperr"
)

// Footprint kinds understood by the morphology stages
const (
	FootprintCross  = "cross"
	FootprintSquare = "square"
)

// EnvPrefix is the prefix of environment variables that override config values
const EnvPrefix = "SUNSPOTS_"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Limb detection parameters
	Limb struct {
		// BlurSigma is the Gaussian spread applied before thresholding, in pixels
		BlurSigma float64 `yaml:"blurSigma"`

		// OtsuBins is the number of histogram bins used by Otsu's method
		OtsuBins int `yaml:"otsuBins"`

		// ContourLevel is the isovalue traced on the cleaned limb mask
		ContourLevel float64 `yaml:"contourLevel"`

		// Footprint is the structuring element used for closing/opening
		Footprint Footprint `yaml:"footprint"`
	} `yaml:"limb"`

	// Disk masking parameters
	Disk struct {
		// ShrinkFactor scales the fitted radius to keep limb pixels out of
		// spot detection
		ShrinkFactor float64 `yaml:"shrinkFactor"`
	} `yaml:"disk"`

	// Spot detection parameters
	Spots struct {
		// BackgroundWindow is the side of the median filter window
		BackgroundWindow int `yaml:"backgroundWindow"`

		// SigmaMultiplier is the number of residual standard deviations
		// above the mean a pixel needs to count as a spot
		SigmaMultiplier float64 `yaml:"sigmaMultiplier"`

		// Footprint is the structuring element used for opening/closing
		Footprint Footprint `yaml:"footprint"`
	} `yaml:"spots"`

	// Output parameters
	Output struct {
		// SaveIntermediaryResults writes every pipeline stage as PNG
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where stage images are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// RenderPath is the three-panel figure output; empty disables rendering
		RenderPath string `yaml:"renderPath"`
	} `yaml:"output"`

	// Logging parameters
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Footprint describes a square-bounded structuring element
type Footprint struct {
	// Kind is "cross" or "square"
	Kind string `yaml:"kind"`

	// Size is the odd side length of the bounding square
	Size int `yaml:"size"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Limb.BlurSigma = 5
	cfg.Limb.OtsuBins = 256
	cfg.Limb.ContourLevel = 0.5
	cfg.Limb.Footprint = Footprint{Kind: FootprintCross, Size: 3}

	cfg.Disk.ShrinkFactor = 0.95

	cfg.Spots.BackgroundWindow = 25
	cfg.Spots.SigmaMultiplier = 2
	cfg.Spots.Footprint = Footprint{Kind: FootprintCross, Size: 3}

	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
// An empty path also yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, apperr.New(apperr.KindConfig, "error reading config file "+configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperr.New(apperr.KindConfig, "error parsing config file "+configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("error loading env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from SUNSPOTS_* environment variables.
func (c *Config) ApplyEnv() error {
	floats := map[string]*float64{
		"BLUR_SIGMA":       &c.Limb.BlurSigma,
		"CONTOUR_LEVEL":    &c.Limb.ContourLevel,
		"SHRINK_FACTOR":    &c.Disk.ShrinkFactor,
		"SIGMA_MULTIPLIER": &c.Spots.SigmaMultiplier,
	}
	for name, dst := range floats {
		raw, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return apperr.New(apperr.KindConfig, fmt.Sprintf("invalid %s%s", EnvPrefix, name), err)
		}
		*dst = v
	}

	ints := map[string]*int{
		"OTSU_BINS":         &c.Limb.OtsuBins,
		"BACKGROUND_WINDOW": &c.Spots.BackgroundWindow,
	}
	for name, dst := range ints {
		raw, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return apperr.New(apperr.KindConfig, fmt.Sprintf("invalid %s%s", EnvPrefix, name), err)
		}
		*dst = v
	}

	if v, ok := os.LookupEnv(EnvPrefix + "SAVE_INTERMEDIARY"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return apperr.New(apperr.KindConfig, "invalid "+EnvPrefix+"SAVE_INTERMEDIARY", err)
		}
		c.Output.SaveIntermediaryResults = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "INTERMEDIARY_DIR"); ok {
		c.Output.IntermediaryDir = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "RENDER_PATH"); ok {
		c.Output.RenderPath = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_FORMAT"); ok {
		c.Logging.Format = v
	}

	return nil
}

// Validate checks that every value is usable by the pipeline
func (c *Config) Validate() error {
	switch {
	case c.Limb.BlurSigma < 0:
		return apperr.Newf(apperr.KindConfig, "limb.blurSigma must be >= 0, got %g", c.Limb.BlurSigma)
	case c.Limb.OtsuBins < 2:
		return apperr.Newf(apperr.KindConfig, "limb.otsuBins must be >= 2, got %d", c.Limb.OtsuBins)
	case c.Limb.ContourLevel <= 0 || c.Limb.ContourLevel >= 1:
		return apperr.Newf(apperr.KindConfig, "limb.contourLevel must be in (0, 1), got %g", c.Limb.ContourLevel)
	case c.Disk.ShrinkFactor <= 0 || c.Disk.ShrinkFactor > 1:
		return apperr.Newf(apperr.KindConfig, "disk.shrinkFactor must be in (0, 1], got %g", c.Disk.ShrinkFactor)
	case c.Spots.BackgroundWindow < 1:
		return apperr.Newf(apperr.KindConfig, "spots.backgroundWindow must be >= 1, got %d", c.Spots.BackgroundWindow)
	case c.Spots.SigmaMultiplier < 0:
		return apperr.Newf(apperr.KindConfig, "spots.sigmaMultiplier must be >= 0, got %g", c.Spots.SigmaMultiplier)
	}

	if err := c.Limb.Footprint.validate("limb.footprint"); err != nil {
		return err
	}
	return c.Spots.Footprint.validate("spots.footprint")
}

func (f Footprint) validate(field string) error {
	if f.Kind != FootprintCross && f.Kind != FootprintSquare {
		return apperr.Newf(apperr.KindConfig, "%s.kind must be %q or %q, got %q", field, FootprintCross, FootprintSquare, f.Kind)
	}
	if f.Size < 1 || f.Size%2 == 0 {
		return apperr.Newf(apperr.KindConfig, "%s.size must be a positive odd number, got %d", field, f.Size)
	}
	return nil
}
