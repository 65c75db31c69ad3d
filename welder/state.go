// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package welder

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/spotwelder/debounce"
)

// Mode is the operating mode of the controller.
type Mode uint8

const (
	Idle Mode = iota
	// PrepareRapidChange is entered on an adjust press, after one step.
	PrepareRapidChange
	// RapidChange repeats steps while the adjust button is held.
	RapidChange
	// Firing holds the fire output high.
	Firing
	// Resting ignores the buttons after a pulse.
	Resting
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "Idle"
	case PrepareRapidChange:
		return "PrepareRapidChange"
	case RapidChange:
		return "RapidChange"
	case Firing:
		return "Firing"
	case Resting:
		return "Resting"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// direction of an adjustment. It only exists inside the two adjusting
// states.
type direction bool

const (
	decrement direction = false
	increment direction = true
)

func (dir direction) String() string {
	if dir == increment {
		return "inc"
	}
	return "dec"
}

// state is one mode together with the data only that mode needs.
type state interface {
	mode() Mode
	// next is called once per poll and returns the state for the next poll.
	next(d *Dev, e Edges, now time.Time) state
}

type idle struct{}

type prepare struct {
	dir   direction
	since time.Time
}

type rapid struct {
	dir  direction
	last time.Time
}

type firing struct {
	start time.Time
	pulse time.Duration
}

type resting struct {
	start time.Time
	pulse time.Duration
}

func (idle) mode() Mode { return Idle }
func (prepare) mode() Mode { return PrepareRapidChange }
func (rapid) mode() Mode { return RapidChange }
func (firing) mode() Mode { return Firing }
func (resting) mode() Mode { return Resting }

func (s idle) next(d *Dev, e Edges, now time.Time) state {
	switch {
	case e.Inc == debounce.Fell:
		d.step(increment)
		return prepare{dir: increment, since: now}
	case e.Dec == debounce.Fell:
		d.step(decrement)
		return prepare{dir: decrement, since: now}
	case e.Fire == debounce.Fell:
		if err := d.fire.Out(gpio.High); err != nil {
			log.Printf("welder: fire output: %v", err)
			return s
		}
		if err := d.store.Save(byte(d.duration)); err != nil {
			log.Printf("welder: saving %s: %v", d.duration, err)
		}
		return firing{start: now, pulse: d.duration.Pulse()}
	}
	return s
}

func (s prepare) next(d *Dev, e Edges, now time.Time) state {
	if e.released() {
		return idle{}
	}
	if now.Sub(s.since) >= d.opts.Hold {
		// The first repeat is due right away: the interval runs from the
		// initial step.
		return rapid{dir: s.dir, last: s.since}
	}
	return s
}

func (s rapid) next(d *Dev, e Edges, now time.Time) state {
	if e.released() {
		return idle{}
	}
	if now.Sub(s.last) >= d.opts.Repeat {
		d.step(s.dir)
		s.last = now
	}
	return s
}

func (s firing) next(d *Dev, e Edges, now time.Time) state {
	if now.Sub(s.start) < s.pulse {
		return s
	}
	if err := d.fire.Out(gpio.Low); err != nil {
		log.Printf("welder: fire output: %v", err)
		return s
	}
	return resting(s)
}

func (s resting) next(d *Dev, e Edges, now time.Time) state {
	if now.Sub(s.start) < s.pulse+d.opts.Rest {
		return s
	}
	return idle{}
}
