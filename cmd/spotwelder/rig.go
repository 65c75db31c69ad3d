// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/spotwelder/debounce"
	"github.com/GermanBionicSystems/spotwelder/nxp74hc595"
	"github.com/GermanBionicSystems/spotwelder/screen7seg"
	"github.com/GermanBionicSystems/spotwelder/welder"
)

// rig is the I/O the controller is wired to.
type rig struct {
	buttons *welder.Buttons
	out     gpio.PinOut
	reg     io.ByteWriter
	closers []io.Closer
}

func (r *rig) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newButtons(inc, dec, fire gpio.PinIn, interval time.Duration) (*welder.Buttons, error) {
	var b [3]*debounce.Button
	for i, p := range []gpio.PinIn{inc, dec, fire} {
		btn, err := debounce.New(p, interval)
		if err != nil {
			return nil, err
		}
		b[i] = btn
	}
	return &welder.Buttons{Inc: b[0], Dec: b[1], Fire: b[2]}, nil
}

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}

// openHardware wires the controller to the host pins.
func openHardware(cfg *Config) (*rig, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	pins := map[string]gpio.PinIO{}
	for _, name := range []string{cfg.Pins.Increment, cfg.Pins.Decrement, cfg.Pins.Fire, cfg.Pins.Output} {
		p, err := pinByName(name)
		if err != nil {
			return nil, err
		}
		pins[name] = p
	}
	buttons, err := newButtons(pins[cfg.Pins.Increment], pins[cfg.Pins.Decrement], pins[cfg.Pins.Fire], cfg.Timing.Debounce)
	if err != nil {
		return nil, err
	}
	r := &rig{buttons: buttons, out: pins[cfg.Pins.Output]}

	var reg *nxp74hc595.Dev
	if cfg.Display.SPI != "" {
		port, err := spireg.Open(cfg.Display.SPI)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, port)
		conn, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
		if err != nil {
			r.Close()
			return nil, err
		}
		if reg, err = nxp74hc595.New(conn, cfg.RegisterOpts()); err != nil {
			r.Close()
			return nil, err
		}
	} else {
		var lines [3]gpio.PinOut
		for i, name := range []string{cfg.Pins.Data, cfg.Pins.Clock, cfg.Pins.Latch} {
			p, err := pinByName(name)
			if err != nil {
				return nil, err
			}
			lines[i] = p
		}
		if reg, err = nxp74hc595.NewGPIO(lines[0], lines[1], lines[2], cfg.RegisterOpts()); err != nil {
			return nil, err
		}
	}
	r.reg = reg
	return r, nil
}

// simPins are the fake buttons driven by the console.
type simPins struct {
	inc, dec, fire *gpiotest.Pin
	out            *gpiotest.Pin
}

// openSim wires the controller to fake pins and draws the display on w.
func openSim(cfg *Config, w io.Writer) (*rig, *simPins, error) {
	sp := &simPins{
		inc:  &gpiotest.Pin{N: "INC", L: gpio.High},
		dec:  &gpiotest.Pin{N: "DEC", L: gpio.High},
		fire: &gpiotest.Pin{N: "FIRE", L: gpio.High},
		out:  &gpiotest.Pin{N: "OUT"},
	}
	buttons, err := newButtons(sp.inc, sp.dec, sp.fire, cfg.Timing.Debounce)
	if err != nil {
		return nil, nil, err
	}
	opts := screen7seg.DefaultOpts
	opts.W = w
	return &rig{buttons: buttons, out: sp.out, reg: screen7seg.New(&opts)}, sp, nil
}
