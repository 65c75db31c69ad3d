// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nxp74hc595

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

// wire records every level written to it in a log shared by all wires.
type wire struct {
	gpiotest.Pin
	log *[]string
}

func (w *wire) Out(l gpio.Level) error {
	*w.log = append(*w.log, w.N+"="+l.String())
	return w.Pin.Out(l)
}

func newWires() (data, clock, latch *wire, log *[]string) {
	log = &[]string{}
	data = &wire{Pin: gpiotest.Pin{N: "DS"}, log: log}
	clock = &wire{Pin: gpiotest.Pin{N: "SHCP"}, log: log}
	latch = &wire{Pin: gpiotest.Pin{N: "STCP"}, log: log}
	return
}

// shifted decodes the data level sampled at every rising clock edge.
func shifted(log []string) []gpio.Level {
	var data gpio.Level
	var out []gpio.Level
	for _, e := range log {
		switch e {
		case "DS=High":
			data = gpio.High
		case "DS=Low":
			data = gpio.Low
		case "SHCP=High":
			out = append(out, data)
		}
	}
	return out
}

func TestGPIOLSBFirst(t *testing.T) {
	data, clock, latch, log := newWires()
	dev, err := NewGPIO(data, clock, latch, nil)
	if err != nil {
		t.Fatal(err)
	}
	*log = (*log)[:0]
	if err := dev.WriteByte(0x9e); err != nil {
		t.Fatal(err)
	}
	if (*log)[0] != "STCP=Low" {
		t.Errorf("first write = %s, want STCP=Low", (*log)[0])
	}
	if last := (*log)[len(*log)-1]; last != "STCP=High" {
		t.Errorf("last write = %s, want STCP=High", last)
	}
	// 0x9e = 0b10011110, least significant bit first.
	want := []gpio.Level{gpio.Low, gpio.High, gpio.High, gpio.High, gpio.High, gpio.Low, gpio.Low, gpio.High}
	if diff := cmp.Diff(shifted(*log), want); diff != "" {
		t.Errorf("shifted bits difference (-got +want):\n%s", diff)
	}
	if dev.Value() != 0x9e {
		t.Errorf("Value() = 0x%x, want 0x9e", dev.Value())
	}
}

func TestGPIOMSBFirst(t *testing.T) {
	data, clock, latch, log := newWires()
	dev, err := NewGPIO(data, clock, latch, &Opts{Order: MSBFirst})
	if err != nil {
		t.Fatal(err)
	}
	*log = (*log)[:0]
	if err := dev.WriteByte(0x81 | 0x02); err != nil {
		t.Fatal(err)
	}
	want := []gpio.Level{gpio.High, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.Low, gpio.High, gpio.High}
	if diff := cmp.Diff(shifted(*log), want); diff != "" {
		t.Errorf("shifted bits difference (-got +want):\n%s", diff)
	}
}

func TestGPIOMissingPin(t *testing.T) {
	data, clock, _, _ := newWires()
	if _, err := NewGPIO(data, clock, nil, nil); err == nil {
		t.Error("expected error for missing latch pin")
	}
}

func TestSPI(t *testing.T) {
	for _, tc := range []struct {
		name  string
		order BitOrder
		in    byte
		want  byte
	}{
		{name: "lsb", order: LSBFirst, in: 0x01, want: 0x80},
		{name: "lsb pattern", order: LSBFirst, in: 0x9e, want: 0x79},
		{name: "msb", order: MSBFirst, in: 0x9e, want: 0x9e},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pb := &spitest.Record{Ops: make([]conntest.IO, 0)}
			defer pb.Close()
			conn, err := pb.Connect(physic.MegaHertz, spi.Mode0, 8)
			if err != nil {
				t.Fatal(err)
			}
			dev, err := New(conn, &Opts{Order: tc.order})
			if err != nil {
				t.Fatal(err)
			}
			if err := dev.WriteByte(tc.in); err != nil {
				t.Fatal(err)
			}
			if len(pb.Ops) != 1 {
				t.Fatalf("got %d transactions, want 1", len(pb.Ops))
			}
			if diff := cmp.Diff(pb.Ops[0].W, []byte{tc.want}); diff != "" {
				t.Errorf("Tx difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestHalt(t *testing.T) {
	data, clock, latch, _ := newWires()
	dev, err := NewGPIO(data, clock, latch, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteByte(1); err != ErrHalted {
		t.Errorf("WriteByte after Halt = %v, want %v", err, ErrHalted)
	}
	if dev.String() != "74HC595" {
		t.Errorf("String() = %q", dev.String())
	}
}
