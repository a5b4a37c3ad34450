package main

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rayge/engine/renderer/gfx"
)

// Environment keys read by LoadConfig.
const (
	EnvFile          = "RAYGE_ENV_FILE"
	EnvTitle         = "RAYGE_TITLE"
	EnvWidth         = "RAYGE_WIDTH"
	EnvHeight        = "RAYGE_HEIGHT"
	EnvUpdateRate    = "RAYGE_UPDATE_HZ"
	EnvFrameCap      = "RAYGE_FRAME_CAP_HZ"
	EnvMaxFrameDelta = "RAYGE_MAX_FRAME_DELTA"
	EnvLogLevel      = "RAYGE_LOG_LEVEL"
	EnvValidation    = "RAYGE_VALIDATION"
	EnvExactFormat   = "RAYGE_EXACT_FORMAT"
	EnvImageCount    = "RAYGE_IMAGE_COUNT"
)

// Config is the engine shell configuration.
type Config struct {
	Title  string
	Width  int
	Height int

	// UpdateRate is the fixed simulation rate in hertz.
	UpdateRate int
	// FrameCap limits presentation to this many frames per second.
	// To unlimit, set to 0.
	FrameCap int
	// MaxFrameDelta bounds the wall-clock time fed to the steppers per
	// loop iteration, so a stall does not turn into a burst of updates.
	MaxFrameDelta time.Duration

	LogLevel    logrus.Level
	Validation  bool
	ExactFormat bool
	ImageCount  uint32
}

func DefaultConfig() Config {
	return Config{
		Title:         "Engine",
		Width:         640,
		Height:        480,
		UpdateRate:    100,
		FrameCap:      0,
		MaxFrameDelta: 250 * time.Millisecond,
		LogLevel:      logrus.InfoLevel,
		ImageCount:    gfx.DefaultImageCount,
	}
}

// LoadConfig reads the configuration from the environment. When RAYGE_ENV_FILE
// names a dotenv file its values are used for keys the environment does not
// already set.
func LoadConfig() (Config, error) {
	if file := envy.Get(EnvFile, ""); file != "" {
		values, err := godotenv.Read(file)
		if err != nil {
			return Config{}, errors.Wrapf(err, "reading %s", file)
		}
		for key, value := range values {
			if _, err := envy.MustGet(key); err != nil {
				envy.Set(key, value)
			}
		}
	}

	cfg := DefaultConfig()
	cfg.Title = envy.Get(EnvTitle, cfg.Title)

	var err error
	if cfg.Width, err = intEnv(EnvWidth, cfg.Width); err != nil {
		return Config{}, err
	}
	if cfg.Height, err = intEnv(EnvHeight, cfg.Height); err != nil {
		return Config{}, err
	}
	if cfg.UpdateRate, err = intEnv(EnvUpdateRate, cfg.UpdateRate); err != nil {
		return Config{}, err
	}
	if cfg.FrameCap, err = intEnv(EnvFrameCap, cfg.FrameCap); err != nil {
		return Config{}, err
	}
	imageCount, err := intEnv(EnvImageCount, int(cfg.ImageCount))
	if err != nil {
		return Config{}, err
	}
	cfg.ImageCount = uint32(imageCount)

	if cfg.Validation, err = boolEnv(EnvValidation, cfg.Validation); err != nil {
		return Config{}, err
	}
	if cfg.ExactFormat, err = boolEnv(EnvExactFormat, cfg.ExactFormat); err != nil {
		return Config{}, err
	}

	if v := envy.Get(EnvMaxFrameDelta, ""); v != "" {
		if cfg.MaxFrameDelta, err = time.ParseDuration(v); err != nil {
			return Config{}, errors.Wrap(err, EnvMaxFrameDelta)
		}
	}
	if v := envy.Get(EnvLogLevel, ""); v != "" {
		if cfg.LogLevel, err = logrus.ParseLevel(v); err != nil {
			return Config{}, errors.Wrap(err, EnvLogLevel)
		}
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Newf("window size %dx%d must be positive", c.Width, c.Height)
	case c.UpdateRate <= 0:
		return errors.Newf("%s must be positive, got %d", EnvUpdateRate, c.UpdateRate)
	case c.FrameCap < 0:
		return errors.Newf("%s must not be negative, got %d", EnvFrameCap, c.FrameCap)
	case c.MaxFrameDelta <= 0:
		return errors.Newf("%s must be positive, got %s", EnvMaxFrameDelta, c.MaxFrameDelta)
	case c.ImageCount == 0:
		return errors.Newf("%s must be positive", EnvImageCount)
	}
	return nil
}

func intEnv(key string, fallback int) (int, error) {
	v := envy.Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := envy.Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrap(err, key)
	}
	return b, nil
}
