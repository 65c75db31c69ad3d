// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/GermanBionicSystems/spotwelder/debounce"
	"github.com/GermanBionicSystems/spotwelder/nxp74hc595"
	"github.com/GermanBionicSystems/spotwelder/welder"
)

// Config is the content of the configuration file.
type Config struct {
	Pins    Pins    `yaml:"pins"`
	Display Display `yaml:"display"`
	Timing  Timing  `yaml:"timing"`
	Storage Storage `yaml:"storage"`
	Serial  Serial  `yaml:"serial"`
}

// Pins are periph pin names, see gpioreg.ByName.
type Pins struct {
	Increment string `yaml:"increment"`
	Decrement string `yaml:"decrement"`
	Fire      string `yaml:"fire"`
	Output    string `yaml:"output"`
	Data      string `yaml:"data"`
	Clock     string `yaml:"clock"`
	Latch     string `yaml:"latch"`
}

// Display selects how the shift register is driven. When SPI is set the
// data, clock and latch pins are ignored.
type Display struct {
	SPI      string `yaml:"spi"`
	MSBFirst bool   `yaml:"msb_first"`
}

type Timing struct {
	Hold     time.Duration `yaml:"hold"`
	Repeat   time.Duration `yaml:"repeat"`
	Rest     time.Duration `yaml:"rest"`
	Debounce time.Duration `yaml:"debounce"`
	// Period paces the poll loop. Zero polls as fast as possible.
	Period time.Duration `yaml:"period"`
}

// Storage is the EEPROM image. An empty path keeps the value in memory only.
type Storage struct {
	Path     string `yaml:"path"`
	Capacity int    `yaml:"capacity"`
}

// Serial mirrors the log to a serial port when Port is set.
type Serial struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// DefaultConfig matches the reference board on a Raspberry Pi header.
func DefaultConfig() Config {
	return Config{
		Pins: Pins{
			Increment: "GPIO17",
			Decrement: "GPIO27",
			Fire:      "GPIO22",
			Output:    "GPIO23",
			Data:      "GPIO5",
			Clock:     "GPIO6",
			Latch:     "GPIO13",
		},
		Timing: Timing{
			Hold:     welder.DefaultOpts.Hold,
			Repeat:   welder.DefaultOpts.Repeat,
			Rest:     welder.DefaultOpts.Rest,
			Debounce: debounce.DefaultInterval,
		},
		Storage: Storage{Capacity: 1024},
		Serial:  Serial{Baud: 115200},
	}
}

// LoadConfig reads path over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	t := c.Timing
	if t.Hold < 0 || t.Rest < 0 || t.Debounce < 0 || t.Period < 0 {
		return errors.New("config: timing values must not be negative")
	}
	if t.Repeat <= 0 {
		return errors.New("config: timing.repeat must be positive")
	}
	if c.Storage.Capacity <= 0 || c.Storage.Capacity > 1<<20 {
		return fmt.Errorf("config: invalid storage.capacity %d", c.Storage.Capacity)
	}
	if c.Serial.Port != "" && c.Serial.Baud <= 0 {
		return fmt.Errorf("config: invalid serial.baud %d", c.Serial.Baud)
	}
	return nil
}

// WelderOpts returns the controller timing.
func (c *Config) WelderOpts() *welder.Opts {
	return &welder.Opts{
		Hold:    c.Timing.Hold,
		Repeat:  c.Timing.Repeat,
		Rest:    c.Timing.Rest,
		Default: welder.DefaultOpts.Default,
	}
}

// RegisterOpts returns the shift register options.
func (c *Config) RegisterOpts() *nxp74hc595.Opts {
	if c.Display.MSBFirst {
		return &nxp74hc595.Opts{Order: nxp74hc595.MSBFirst}
	}
	return &nxp74hc595.DefaultOpts
}
