// Package config reads the keyboard settings from viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dasdy/tapboard/gesture"
	"github.com/dasdy/tapboard/keyboard"
	"github.com/dasdy/tapboard/layout"
	"github.com/dasdy/tapboard/mode"
	"github.com/dasdy/tapboard/touchlog/ports"
	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid config")

// Keys as they appear in the config file. Flags use the same names with hyphens.
const (
	KeyTouchTolerance      = "touchtolerance"
	KeyToleranceFraction   = "tolerancefraction"
	KeyPressTimeout        = "presstimeout"
	KeyLongLongPressFactor = "longlongpressfactor"
	KeyCycle               = "cycle"
	KeyVibrateDuration     = "vibrateduration"
	KeyLayoutFile          = "layout"
	KeyWidth               = "width"
	KeyHeight              = "height"
	KeyBaudRate            = "baudrate"
	KeyStoragePath         = "out"
)

const (
	DefaultPressTimeout    = 400 * time.Millisecond
	DefaultVibrateDuration = 20 * time.Millisecond
	DefaultWidth           = 1080
	DefaultHeight          = 660
	DefaultStoragePath     = "./keypresses.sqlite"
)

type Config struct {
	// TouchTolerance of 0 derives the tolerance from the key pitch and ToleranceFraction.
	TouchTolerance      float64
	ToleranceFraction   float64
	PressTimeout        time.Duration
	LongLongPressFactor int
	Cycle               mode.Cycle
	VibrateDuration     time.Duration
	// LayoutFile is empty for the built-in keyboards.
	LayoutFile string
	// Width and Height are the keyboard size in touch coordinates.
	Width, Height float64
	BaudRate      int
	StoragePath   string
}

func Default() Config {
	return Config{
		ToleranceFraction:   keyboard.DefaultToleranceFraction,
		PressTimeout:        DefaultPressTimeout,
		LongLongPressFactor: gesture.DefaultLongLongPressFactor,
		Cycle:               mode.CycleForward,
		VibrateDuration:     DefaultVibrateDuration,
		Width:               DefaultWidth,
		Height:              DefaultHeight,
		BaudRate:            ports.DefaultBaudRate,
		StoragePath:         DefaultStoragePath,
	}
}

// SetDefaults registers Default() with v so unset keys fall back to it.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault(KeyTouchTolerance, d.TouchTolerance)
	v.SetDefault(KeyToleranceFraction, d.ToleranceFraction)
	v.SetDefault(KeyPressTimeout, d.PressTimeout)
	v.SetDefault(KeyLongLongPressFactor, d.LongLongPressFactor)
	v.SetDefault(KeyCycle, d.Cycle.String())
	v.SetDefault(KeyVibrateDuration, d.VibrateDuration)
	v.SetDefault(KeyLayoutFile, d.LayoutFile)
	v.SetDefault(KeyWidth, d.Width)
	v.SetDefault(KeyHeight, d.Height)
	v.SetDefault(KeyBaudRate, d.BaudRate)
	v.SetDefault(KeyStoragePath, d.StoragePath)
}

func FromViper(v *viper.Viper) (Config, error) {
	cycle, err := mode.ParseCycle(v.GetString(KeyCycle))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	cfg := Config{
		TouchTolerance:      v.GetFloat64(KeyTouchTolerance),
		ToleranceFraction:   v.GetFloat64(KeyToleranceFraction),
		PressTimeout:        v.GetDuration(KeyPressTimeout),
		LongLongPressFactor: v.GetInt(KeyLongLongPressFactor),
		Cycle:               cycle,
		VibrateDuration:     v.GetDuration(KeyVibrateDuration),
		LayoutFile:          v.GetString(KeyLayoutFile),
		Width:               v.GetFloat64(KeyWidth),
		Height:              v.GetFloat64(KeyHeight),
		BaudRate:            v.GetInt(KeyBaudRate),
		StoragePath:         v.GetString(KeyStoragePath),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if err := c.Keyboard().Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("keyboard size must be positive, got %vx%v", c.Width, c.Height))
	}

	if c.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("baud rate must be positive, got %d", c.BaudRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return nil
}

// Keyboard is the part of the config the keyboard core needs.
func (c Config) Keyboard() keyboard.Config {
	return keyboard.Config{
		Gesture: gesture.Config{
			TouchTolerance:      c.TouchTolerance,
			PressTimeout:        c.PressTimeout,
			LongLongPressFactor: c.LongLongPressFactor,
		},
		ToleranceFraction: c.ToleranceFraction,
		Cycle:             c.Cycle,
		VibrateDuration:   c.VibrateDuration,
	}
}

// Keyboards loads LayoutFile, or returns the built-in keyboards when there is none.
func (c Config) Keyboards() (layout.Keyboards, error) {
	if c.LayoutFile == "" {
		return layout.Default(), nil
	}

	keyboards, err := layout.LoadFile(c.LayoutFile)
	if err != nil {
		return layout.Keyboards{}, fmt.Errorf("could not load layout %s: %w", c.LayoutFile, err)
	}

	return keyboards, nil
}
