// Package config loads handfuse settings from HANDFUSE_* environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.uber.org/multierr"

	"github.com/ayusman/handfuse/internal/capture"
	"github.com/ayusman/handfuse/internal/detector"
	"github.com/ayusman/handfuse/internal/export"
	"github.com/ayusman/handfuse/internal/hand"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Config is the full process configuration.
type Config struct {
	// Sensor selection. Serial wins over DeviceIndex.
	Serial       string `env:"HANDFUSE_SERIAL"`
	DeviceIndex  int    `env:"HANDFUSE_DEVICE_INDEX" envDefault:"0"`
	Width        int    `env:"HANDFUSE_WIDTH" envDefault:"640"`
	Height       int    `env:"HANDFUSE_HEIGHT" envDefault:"480"`
	FPS          int    `env:"HANDFUSE_FPS" envDefault:"30"`
	BridgeScript string `env:"HANDFUSE_BRIDGE_SCRIPT"`
	Python       string `env:"HANDFUSE_PYTHON"`

	// Mirrored says the detector sees a mirrored image, so its "Right" is the
	// user's left hand.
	Mirrored bool `env:"HANDFUSE_MIRRORED" envDefault:"true"`

	MaxHands               int     `env:"HANDFUSE_MAX_HANDS" envDefault:"2"`
	MinDetectionConfidence float64 `env:"HANDFUSE_MIN_DETECTION_CONFIDENCE" envDefault:"0.5"`
	MinTrackingConfidence  float64 `env:"HANDFUSE_MIN_TRACKING_CONFIDENCE" envDefault:"0.5"`

	// UDPAddr is where hand datagrams go; empty disables the UDP bridge.
	UDPAddr      string   `env:"HANDFUSE_UDP_ADDR"`
	HandFields   []string `env:"HANDFUSE_HAND_FIELDS" envSeparator:"," envDefault:"label,anchor,landmarks"`
	StatusName   string   `env:"HANDFUSE_STATUS_NAME" envDefault:"status"`
	StatusFields []string `env:"HANDFUSE_STATUS_FIELDS" envSeparator:"," envDefault:"result,seq"`

	// HTTPAddr serves health, the hand stream and sessions; empty disables it.
	HTTPAddr  string `env:"HANDFUSE_HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	StaticDir string `env:"HANDFUSE_STATIC_DIR"`
	// DBPath enables session recording when set.
	DBPath string `env:"HANDFUSE_DB_PATH"`

	LogDebug bool `env:"HANDFUSE_LOG_DEBUG"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and field selections.
func (c Config) Validate() error {
	var errs error
	if c.Width <= 0 || c.Height <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("stream size %dx%d must be positive", c.Width, c.Height))
	}
	if c.FPS <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("fps %d must be positive", c.FPS))
	}
	if c.DeviceIndex < 0 {
		errs = multierr.Append(errs, fmt.Errorf("device index %d must not be negative", c.DeviceIndex))
	}
	if c.MaxHands < 1 || c.MaxHands > hand.MaxHands {
		errs = multierr.Append(errs, fmt.Errorf("max hands %d must be between 1 and %d", c.MaxHands, hand.MaxHands))
	}
	if !unit(c.MinDetectionConfidence) {
		errs = multierr.Append(errs, fmt.Errorf("min detection confidence %g must be within [0, 1]", c.MinDetectionConfidence))
	}
	if !unit(c.MinTrackingConfidence) {
		errs = multierr.Append(errs, fmt.Errorf("min tracking confidence %g must be within [0, 1]", c.MinTrackingConfidence))
	}
	if err := c.Selection().Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return fmt.Errorf("invalid config: %w", errs)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// Mirror returns the mirror policy for the driver.
func (c Config) Mirror() hand.MirrorPolicy {
	return hand.MirrorPolicy(c.Mirrored)
}

// Device returns the sensor selection.
func (c Config) Device() capture.DeviceConfig {
	return capture.DeviceConfig{
		Serial: c.Serial,
		Index:  c.DeviceIndex,
		Width:  c.Width,
		Height: c.Height,
		FPS:    c.FPS,
		Script: c.BridgeScript,
		Python: c.Python,
	}
}

// Detector returns the hand detector settings.
func (c Config) Detector() detector.Config {
	return detector.Config{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinDetectionConfidence,
		MinTrackingConf: c.MinTrackingConfidence,
	}
}

// Selection returns the exported field selection.
func (c Config) Selection() export.Selection {
	return export.Selection{
		HandFields:   c.HandFields,
		StatusName:   c.StatusName,
		StatusFields: c.StatusFields,
	}
}
