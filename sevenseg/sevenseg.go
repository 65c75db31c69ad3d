// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sevenseg drives a two digit, common anode 7-segment LED display
// that sits behind a single shift register.
//
// Only one digit is lit at a time. Each call to Display renders the next
// digit, so the caller must invoke it at least ~60 times a second for both
// digits to appear lit together.
//
// The lowest bit of a frame selects the digit position: 0 for the ones
// digit, 1 for the tens digit.
package sevenseg

import (
	"fmt"
	"io"
)

// Segment identifies one bar of a digit.
type Segment uint8

const (
	A Segment = iota // top
	B                // top right
	C                // bottom right
	D                // bottom
	E                // bottom left
	F                // top left
	G                // middle
)

// Marker is set in the frame of the second (tens) digit.
const Marker byte = 0x01

// Bit returns the frame bit driving the segment. Segment A is bit 7.
func (s Segment) Bit() byte {
	return 0x80 >> s
}

// Lit reports whether the segment is on in frame. The display is common
// anode, so a cleared bit lights the segment.
func (s Segment) Lit(frame byte) bool {
	return frame&s.Bit() == 0
}

func (s Segment) String() string {
	if s > G {
		return fmt.Sprintf("Segment(%d)", s)
	}
	return string(rune('a' + s))
}

// Digits maps a decimal digit to its segment pattern.
//
// Bits 7 to 1 are segments a to g, bit 0 is the position marker.
var Digits = [10]byte{
	0b00000010,
	0b10011110,
	0b00100100,
	0b00001100,
	0b10011000,
	0b01001000,
	0b01000000,
	0b00011110,
	0b00000000,
	0b00001000,
}

// Encode returns the frames for the ones and the tens digit of v.
func Encode(v uint8) [2]byte {
	return [2]byte{Digits[v%10], Digits[(v/10)%10] | Marker}
}

// Decode returns the digit shown by frame and whether it is the tens digit.
// ok is false when the segments do not form a decimal digit.
func Decode(frame byte) (digit int, second bool, ok bool) {
	second = frame&Marker != 0
	for i, bits := range Digits {
		if bits == frame&^Marker {
			return i, second, true
		}
	}
	return 0, second, false
}

// Dev holds the value shown on the display.
type Dev struct {
	w        io.ByteWriter
	value    uint8
	position uint8 // of the digit to display on the next call
}

// New returns a display writing its frames to w, usually a
// *nxp74hc595.Dev.
func New(w io.ByteWriter) *Dev {
	return &Dev{w: w}
}

// SetValue replaces the value to show. Nothing is rendered until the next
// call to Display.
func (d *Dev) SetValue(v uint8) {
	d.value = v
}

// Value returns the value being shown.
func (d *Dev) Value() uint8 {
	return d.value
}

// Display renders one digit and moves on to the other one.
func (d *Dev) Display() error {
	frame := Encode(d.value)[d.position]
	d.position ^= 1
	return d.w.WriteByte(frame)
}

func (d *Dev) String() string {
	return fmt.Sprintf("sevenseg{%02d}", d.value)
}
