// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package segimage draws the two digit 7-segment display as an image, for
// documentation and for checking what the display is fed without looking at
// the hardware.
package segimage

import (
	"errors"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/spotwelder/sevenseg"
)

// Opts controls the drawing.
type Opts struct {
	// Scale is the length of a segment in pixels.
	Scale float64
	// Label is drawn under the digits when not empty.
	Label      string
	Lit        color.Color
	Unlit      color.Color
	Background color.Color
}

// DefaultOpts draws red digits on black, 40px segments.
var DefaultOpts = Opts{
	Scale:      40,
	Lit:        color.NRGBA{R: 255, A: 255},
	Unlit:      color.NRGBA{R: 40, A: 255},
	Background: color.Black,
}

// rect is a segment as a fraction of Scale, relative to the digit origin.
type rect struct{ x, y, w, h float64 }

const thick = 0.2

var segments = [7]rect{
	sevenseg.A: {thick, 0, 1, thick},
	sevenseg.B: {1 + thick, thick, thick, 1},
	sevenseg.C: {1 + thick, 1 + 2*thick, thick, 1},
	sevenseg.D: {thick, 2 + 2*thick, 1, thick},
	sevenseg.E: {0, 1 + 2*thick, thick, 1},
	sevenseg.F: {0, thick, thick, 1},
	sevenseg.G: {thick, 1 + thick, 1, thick},
}

// Size of a digit and of the space around it, in Scale units.
const (
	digitW = 1 + 2*thick
	digitH = 2 + 3*thick
	margin = 0.5
	label  = 0.8
)

// Center returns the pixel in the middle of segment s of digit pos, 0 being
// the tens digit on the left.
func Center(pos int, s sevenseg.Segment, opts *Opts) image.Point {
	if opts == nil {
		opts = &DefaultOpts
	}
	r := segments[s]
	x0 := margin + float64(pos)*(digitW+margin)
	return image.Pt(int((x0+r.x+r.w/2)*opts.Scale), int((margin+r.y+r.h/2)*opts.Scale))
}

// Render draws v as the display shows it.
func Render(v uint8, opts *Opts) (image.Image, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Scale <= 0 {
		return nil, errors.New("segimage: scale must be positive")
	}
	s := opts.Scale
	h := digitH + 2*margin
	if opts.Label != "" {
		h += label
	}
	dc := gg.NewContext(int(s*(2*digitW+3*margin)), int(s*h))
	dc.SetColor(opts.Background)
	dc.Clear()

	frames := sevenseg.Encode(v)
	// Tens on the left.
	for pos, frame := range []byte{frames[1], frames[0]} {
		x0 := margin + float64(pos)*(digitW+margin)
		for seg := sevenseg.A; seg <= sevenseg.G; seg++ {
			r := segments[seg]
			dc.DrawRectangle((x0+r.x)*s, (margin+r.y)*s, r.w*s, r.h*s)
			if seg.Lit(frame) {
				dc.SetColor(opts.Lit)
			} else {
				dc.SetColor(opts.Unlit)
			}
			dc.Fill()
		}
	}

	if opts.Label != "" {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: s * label * 0.6}))
		dc.SetColor(opts.Lit)
		dc.DrawStringAnchored(opts.Label, float64(dc.Width())/2, s*(2*margin+digitH+label/2), 0.5, 0.5)
	}
	return dc.Image(), nil
}

// SavePNG renders v to a PNG file.
func SavePNG(path string, v uint8, opts *Opts) error {
	img, err := Render(v, opts)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}
