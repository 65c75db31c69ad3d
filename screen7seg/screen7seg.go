// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen7seg emulates the two digit 7-segment display on the
// terminal using ANSI color codes.
//
// It accepts the same frames as the shift register behind the real display,
// so it can stand in for it while the hardware is on the bench.
package screen7seg

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/GermanBionicSystems/spotwelder/sevenseg"
)

const (
	cols = 3
	rows = 5
)

// cells lists the segments covering each cell of a digit.
var cells = [rows][cols][]sevenseg.Segment{
	{{sevenseg.A, sevenseg.F}, {sevenseg.A}, {sevenseg.A, sevenseg.B}},
	{{sevenseg.F}, nil, {sevenseg.B}},
	{{sevenseg.F, sevenseg.E, sevenseg.G}, {sevenseg.G}, {sevenseg.B, sevenseg.C, sevenseg.G}},
	{{sevenseg.E}, nil, {sevenseg.C}},
	{{sevenseg.E, sevenseg.D}, {sevenseg.D}, {sevenseg.C, sevenseg.D}},
}

// Opts represents the options available for this display.
type Opts struct {
	// W receives the drawing. Defaults to the colorable stdout.
	W       io.Writer
	Palette *ansi256.Palette
	Lit     color.NRGBA
	Unlit   color.NRGBA

	_ struct{}
}

// DefaultOpts draws red segments.
var DefaultOpts = Opts{
	Lit:   color.NRGBA{R: 255, A: 255},
	Unlit: color.NRGBA{R: 48, A: 255},
}

// Dev is a 7-segment display emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	palette ansi256.Palette
	lit     color.NRGBA
	unlit   color.NRGBA

	frames [2]byte
	shown  [2]byte
	drawn  bool
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{w: w, palette: *p, lit: opts.Lit, unlit: opts.Unlit, frames: [2]byte{0xff, 0xff}}
}

func (d *Dev) String() string {
	return "Screen7Seg"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// WriteByte accepts one multiplexed frame. The display is redrawn after the
// tens digit when the pair differs from what is shown.
func (d *Dev) WriteByte(frame byte) error {
	pos := 0
	if frame&sevenseg.Marker != 0 {
		pos = 1
	}
	d.frames[pos] = frame
	if pos == 0 || (d.drawn && d.frames == d.shown) {
		return nil
	}
	d.shown = d.frames
	d.drawn = true
	return d.refresh()
}

// Shown returns the digits last drawn, tens first. ok is false until a pair
// of decimal digits was drawn.
func (d *Dev) Shown() (tens, ones int, ok bool) {
	if !d.drawn {
		return 0, 0, false
	}
	ones, _, ok1 := sevenseg.Decode(d.shown[0])
	tens, _, ok2 := sevenseg.Decode(d.shown[1])
	return tens, ones, ok1 && ok2
}

func (d *Dev) refresh() error {
	d.buf.Reset()
	for r := range rows {
		_, _ = d.buf.WriteString("\r\033[0m")
		// Tens on the left.
		for _, frame := range []byte{d.shown[1], d.shown[0]} {
			for c := range cols {
				_, _ = io.WriteString(&d.buf, d.palette.Block(d.cell(frame, r, c)))
			}
			_, _ = d.buf.WriteString("\033[0m  ")
		}
		_, _ = d.buf.WriteString("\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

func (d *Dev) cell(frame byte, r, c int) color.NRGBA {
	for _, s := range cells[r][c] {
		if s.Lit(frame) {
			return d.lit
		}
	}
	return d.unlit
}

var _ io.ByteWriter = &Dev{}
var _ fmt.Stringer = &Dev{}
