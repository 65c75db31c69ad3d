// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The 74HC595 is a serial shift register. It converts a serial stream to a
// parallel output. It can be driven from an SPI port, where chip select acts
// as the storage (latch) clock, or bit-banged over three GPIO lines.
//
// # Datasheet
//
// https://www.nexperia.com/product/74HC595D
//
// There's a nice tutorial on the device here:
//
// https://docs.arduino.cc/tutorials/communication/guide-to-shift-out/
package nxp74hc595

import (
	"errors"
	"math/bits"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

const devName = "74HC595"

var (
	ErrHalted = errors.New("nxp74hc595: device halted")
)

// BitOrder is the order bits of a frame are shifted in.
type BitOrder bool

const (
	// MSBFirst puts bit 7 of a frame on output Q7.
	MSBFirst BitOrder = false
	// LSBFirst puts bit 0 of a frame on output Q7.
	LSBFirst BitOrder = true
)

func (o BitOrder) String() string {
	if o == LSBFirst {
		return "LSBFirst"
	}
	return "MSBFirst"
}

// Opts holds the transport options.
type Opts struct {
	Order BitOrder
}

// DefaultOpts matches the Arduino shiftOut(LSBFIRST) wiring.
var DefaultOpts = Opts{Order: LSBFirst}

// Dev represents a 74hc595 device.
type Dev struct {
	mu    sync.Mutex
	order BitOrder
	conn  spi.Conn
	data  gpio.PinOut
	clock gpio.PinOut
	latch gpio.PinOut
	value byte
}

// New accepts an spi.Conn and returns a new HC74595 device.
//
// The SPI port always shifts most significant bit first, so an LSBFirst frame
// is reversed before the transaction.
func New(conn spi.Conn, opts *Opts) (*Dev, error) {
	if conn == nil {
		return nil, errors.New("nxp74hc595: nil spi.Conn")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	return &Dev{conn: conn, order: opts.Order}, nil
}

// NewGPIO returns a device that bit-bangs frames over the data, clock and
// latch lines.
func NewGPIO(data, clock, latch gpio.PinOut, opts *Opts) (*Dev, error) {
	if data == nil || clock == nil || latch == nil {
		return nil, errors.New("nxp74hc595: data, clock and latch pins are required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	dev := &Dev{data: data, clock: clock, latch: latch, order: opts.Order}
	for _, p := range []gpio.PinOut{data, clock, latch} {
		if err := p.Out(gpio.Low); err != nil {
			return nil, err
		}
	}
	return dev, nil
}

// WriteByte shifts one frame into the register and latches it to the
// outputs. It implements io.ByteWriter.
func (dev *Dev) WriteByte(b byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	var err error
	switch {
	case dev.conn != nil:
		w := b
		if dev.order == LSBFirst {
			w = bits.Reverse8(b)
		}
		err = dev.conn.Tx([]byte{w}, nil)
	case dev.data != nil:
		err = dev.shiftOut(b)
	default:
		return ErrHalted
	}
	if err == nil {
		dev.value = b
	}
	return err
}

// shiftOut does the low-level bit-banged write to the device.
func (dev *Dev) shiftOut(b byte) error {
	if err := dev.latch.Out(gpio.Low); err != nil {
		return err
	}
	for i := range 8 {
		var bit byte
		if dev.order == LSBFirst {
			bit = (b >> i) & 1
		} else {
			bit = (b >> (7 - i)) & 1
		}
		if err := dev.data.Out(gpio.Level(bit == 1)); err != nil {
			return err
		}
		if err := dev.clock.Out(gpio.High); err != nil {
			return err
		}
		if err := dev.clock.Out(gpio.Low); err != nil {
			return err
		}
	}
	return dev.latch.Out(gpio.High)
}

// Value returns the last frame latched to the outputs.
func (dev *Dev) Value() byte {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.value
}

// Halt disables the device
func (dev *Dev) Halt() (err error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.conn = nil
	dev.data = nil
	dev.clock = nil
	dev.latch = nil
	return
}

func (dev *Dev) String() string {
	return devName
}
