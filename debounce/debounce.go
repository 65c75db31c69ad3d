// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package debounce turns the noisy level of a mechanical push button into
// clean press and release edges.
//
// Buttons are wired active low: the pin is pulled up and the switch shorts it
// to ground. A level change is accepted once it has been stable for the
// debounce interval. The button is polled, it never waits.
package debounce

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DefaultInterval is the time a level must be stable to be accepted.
const DefaultInterval = 10 * time.Millisecond

// Edge is the debounced transition seen by one call to Update.
type Edge uint8

const (
	None Edge = iota
	// Fell is a press: the line went from High to Low.
	Fell
	// Rose is a release: the line went from Low to High.
	Rose
)

func (e Edge) String() string {
	switch e {
	case None:
		return "None"
	case Fell:
		return "Fell"
	case Rose:
		return "Rose"
	default:
		return fmt.Sprintf("Edge(%d)", e)
	}
}

// Button is a debounced active low push button.
type Button struct {
	p        gpio.PinIn
	interval time.Duration
	stable   gpio.Level
	raw      gpio.Level
	changed  time.Time
}

// New configures p as a pulled up input and samples its initial level.
//
// A zero interval accepts every level change on the poll that sees it.
func New(p gpio.PinIn, interval time.Duration) (*Button, error) {
	if p == nil {
		return nil, errors.New("debounce: nil pin")
	}
	if interval < 0 {
		return nil, errors.New("debounce: negative interval")
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("debounce: %s: %w", p, err)
	}
	l := p.Read()
	return &Button{p: p, interval: interval, stable: l, raw: l}, nil
}

// Update samples the pin and returns the debounced edge, if any.
func (b *Button) Update(now time.Time) Edge {
	if l := b.p.Read(); l != b.raw {
		b.raw = l
		b.changed = now
	}
	if b.raw == b.stable || now.Sub(b.changed) < b.interval {
		return None
	}
	b.stable = b.raw
	if b.stable == gpio.Low {
		return Fell
	}
	return Rose
}

// Pressed reports the debounced state of the button.
func (b *Button) Pressed() bool {
	return b.stable == gpio.Low
}

func (b *Button) String() string {
	return fmt.Sprintf("debounce.Button{%s, %s}", b.p, b.interval)
}
