// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package welder is the controller of a precise single pulse spot welder.
//
// The operator sets the pulse length from 10ms to 990ms with an increment and
// a decrement button, and fires one pulse with the fire button. A short press
// moves the length by one step; holding the button for longer than Opts.Hold
// repeats the step every Opts.Repeat. The length is saved on every fire and
// restored on boot, and is shown on a two digit display.
//
// The controller is polled: Poll must be called in a tight loop and never
// blocks. All timing is done by comparing clock readings, so the pulse
// length is accurate to the duration of one poll.
package welder

import (
	"errors"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/spotwelder/debounce"
)

// Edges are the debounced button edges seen in one poll.
type Edges struct {
	Inc  debounce.Edge
	Dec  debounce.Edge
	Fire debounce.Edge
}

// released reports whether either adjust button was let go.
func (e Edges) released() bool {
	return e.Inc == debounce.Rose || e.Dec == debounce.Rose
}

// Input samples the buttons once per poll.
type Input interface {
	Poll(now time.Time) Edges
}

// Display shows the pulse length. Display is called once per poll and
// renders one multiplexed frame.
type Display interface {
	SetValue(v uint8)
	Display() error
}

// Store persists the pulse length, see eeprom.Ring.
type Store interface {
	Load() (v byte, ok bool, err error)
	Save(v byte) error
}

// Clock returns monotonic time readings.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock of the host.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Buttons is the Input made of three debounced buttons.
type Buttons struct {
	Inc  *debounce.Button
	Dec  *debounce.Button
	Fire *debounce.Button
}

// Poll implements Input.
func (b *Buttons) Poll(now time.Time) Edges {
	return Edges{Inc: b.Inc.Update(now), Dec: b.Dec.Update(now), Fire: b.Fire.Update(now)}
}

// Opts holds the timing of the controller.
type Opts struct {
	// Hold is how long an adjust button is held before steps repeat.
	Hold time.Duration
	// Repeat is the time between repeated steps.
	Repeat time.Duration
	// Rest is the time after a pulse during which the buttons are ignored.
	Rest time.Duration
	// Default is the pulse length when nothing is stored.
	Default Duration
}

// DefaultOpts is the recommended timing.
var DefaultOpts = Opts{
	Hold:    500 * time.Millisecond,
	Repeat:  100 * time.Millisecond,
	Rest:    500 * time.Millisecond,
	Default: MinDuration,
}

// Dev is the welder controller. It owns the pulse length and the mode; the
// display and the store only ever get a copy.
type Dev struct {
	in    Input
	disp  Display
	store Store
	fire  gpio.PinOut
	clock Clock
	opts  Opts

	duration Duration
	state    state
}

// New drives the fire output low, restores the saved pulse length and shows
// it on the display.
func New(in Input, disp Display, store Store, fire gpio.PinOut, clock Clock, opts *Opts) (*Dev, error) {
	if in == nil || disp == nil || store == nil || fire == nil {
		return nil, errors.New("welder: input, display, store and fire output are required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Hold < 0 || opts.Repeat <= 0 || opts.Rest < 0 {
		return nil, fmt.Errorf("welder: invalid timing %+v", *opts)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if err := fire.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("welder: fire output: %w", err)
	}
	d := &Dev{in: in, disp: disp, store: store, fire: fire, clock: clock, opts: *opts, state: idle{}}
	d.duration = opts.Default.Clamp()
	v, ok, err := store.Load()
	if err != nil {
		log.Printf("welder: loading pulse length: %v", err)
	} else if ok {
		d.duration = Duration(v).Clamp()
	}
	disp.SetValue(uint8(d.duration))
	return d, nil
}

// Poll runs one cycle: sample the buttons, advance the controller and render
// one display frame.
func (d *Dev) Poll() error {
	now := d.clock.Now()
	d.Step(now, d.in.Poll(now))
	return d.disp.Display()
}

// Step advances the controller with the edges seen at now. It is Poll
// without the I/O on the buttons and the display.
func (d *Dev) Step(now time.Time, e Edges) {
	d.state = d.state.next(d, e, now)
}

// step moves the pulse length one step and shows it.
func (d *Dev) step(dir direction) {
	if dir == increment {
		d.duration = d.duration.Inc()
	} else {
		d.duration = d.duration.Dec()
	}
	d.disp.SetValue(uint8(d.duration))
}

// Duration returns the pulse length.
func (d *Dev) Duration() Duration {
	return d.duration
}

// Mode returns the current mode.
func (d *Dev) Mode() Mode {
	return d.state.mode()
}

// Halt drives the fire output low and returns to Idle. The state is left
// unchanged when the output cannot be driven low.
func (d *Dev) Halt() error {
	if err := d.fire.Out(gpio.Low); err != nil {
		return err
	}
	d.state = idle{}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("welder{%s, %s}", d.duration, d.state.mode())
}
