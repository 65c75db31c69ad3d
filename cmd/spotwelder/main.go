// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// spotwelder runs the precise single pulse generator of a spot welder.
//
// Usage:
//
//	spotwelder -config /etc/spotwelder.yaml
//	spotwelder -sim
//	spotwelder -snapshot display.png
//
// With -sim the buttons are typed on a console and the display is drawn on
// the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/pkg/profile"
	"github.com/tarm/serial"

	"github.com/GermanBionicSystems/spotwelder/eeprom"
	"github.com/GermanBionicSystems/spotwelder/segimage"
	"github.com/GermanBionicSystems/spotwelder/sevenseg"
	"github.com/GermanBionicSystems/spotwelder/welder"
)

// Version is the firmware version shown at boot.
const Version = "0.1"

func openMedium(cfg *Config) (eeprom.Medium, io.Closer, error) {
	if cfg.Storage.Path == "" {
		return eeprom.NewMem(cfg.Storage.Capacity), nil, nil
	}
	f, err := eeprom.OpenFile(cfg.Storage.Path, cfg.Storage.Capacity)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// snapshot renders the stored pulse length to path.
func snapshot(m eeprom.Medium, path string) error {
	d := welder.DefaultOpts.Default
	v, ok, err := eeprom.NewRing(m).Load()
	if err != nil {
		return err
	}
	if ok {
		d = welder.Duration(v).Clamp()
	}
	opts := segimage.DefaultOpts
	opts.Label = d.String()
	return segimage.SavePNG(path, uint8(d), &opts)
}

// setLogOutput sends the log to w, and to mirror too when it is not nil.
func setLogOutput(w, mirror io.Writer) {
	if mirror != nil {
		w = io.MultiWriter(w, mirror)
	}
	log.SetOutput(w)
}

// loop polls dev until ctx is done, then drives the output low.
func loop(ctx context.Context, dev *welder.Dev, mu sync.Locker, period time.Duration) error {
	for ctx.Err() == nil {
		mu.Lock()
		err := dev.Poll()
		mu.Unlock()
		if err != nil {
			log.Printf("display: %v", err)
		}
		if period > 0 {
			time.Sleep(period)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	return dev.Halt()
}

func mainImpl() error {
	configPath := flag.String("config", "", "YAML configuration file")
	sim := flag.Bool("sim", false, "simulate the buttons and the display on the terminal")
	serialPort := flag.String("serial", "", "mirror the log to this serial port")
	storage := flag.String("storage", "", "EEPROM image file, overrides storage.path")
	profileDir := flag.String("profile", "", "write a CPU profile of the poll loop to this directory")
	snapshotPath := flag.String("snapshot", "", "render the stored pulse length to a PNG file and exit")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *serialPort != "" {
		cfg.Serial.Port = *serialPort
	}
	if *storage != "" {
		cfg.Storage.Path = *storage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var mirror io.Writer
	if cfg.Serial.Port != "" {
		port, err := serial.OpenPort(&serial.Config{Name: cfg.Serial.Port, Baud: cfg.Serial.Baud})
		if err != nil {
			return fmt.Errorf("serial: %w", err)
		}
		defer port.Close()
		mirror = port
	}
	setLogOutput(os.Stderr, mirror)
	log.Printf("Precise single pulse generator. Firmware version: %s", Version)

	medium, closer, err := openMedium(&cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	if *snapshotPath != "" {
		return snapshot(medium, *snapshotPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var r *rig
	var pins *simPins
	var rl *readline.Instance
	if *sim {
		rl, err = readline.NewEx(&readline.Config{
			Prompt:          "welder> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("failed to create readline: %w", err)
		}
		defer rl.Close()
		setLogOutput(rl.Stderr(), mirror)
		r, pins, err = openSim(&cfg, rl.Stdout())
		if cfg.Timing.Period == 0 {
			cfg.Timing.Period = 200 * time.Microsecond
		}
	} else {
		r, err = openHardware(&cfg)
	}
	if err != nil {
		return err
	}
	defer r.Close()

	ring := eeprom.NewRing(medium)
	dev, err := welder.New(r.buttons, sevenseg.New(r.reg), ring, r.out, welder.SystemClock{}, cfg.WelderOpts())
	if err != nil {
		return err
	}
	log.Printf("pulse length %s, storage %s", dev.Duration(), ring)

	mu := &sync.Mutex{}
	if rl != nil {
		go newConsole(pins, mu, dev, rl.Stdout()).run(ctx, cancel, rl)
	}
	if *profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook).Stop()
	}
	return loop(ctx, dev, mu, cfg.Timing.Period)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "spotwelder: %s.\n", err)
		os.Exit(1)
	}
}
