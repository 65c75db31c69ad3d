// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/GermanBionicSystems/spotwelder/segimage"
	"github.com/GermanBionicSystems/spotwelder/welder"
)

const defaultTap = 50 * time.Millisecond

var errQuit = errors.New("quit")

// console presses the simulated buttons from typed commands.
type console struct {
	pins *simPins
	// mu guards dev, which the poll loop drives.
	mu  sync.Locker
	dev *welder.Dev
	w   io.Writer
	// after runs f once d elapsed.
	after func(d time.Duration, f func())
}

func newConsole(pins *simPins, mu sync.Locker, dev *welder.Dev, w io.Writer) *console {
	return &console{
		pins: pins,
		mu:   mu,
		dev:  dev,
		w:    w,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

func (c *console) printHelp() {
	fmt.Fprint(c.w, `Commands:
  tap <inc|dec|fire> [duration]  press and release, default 50ms
  hold <inc|dec|fire> <duration> same as tap
  press <inc|dec|fire>           press and keep pressed
  release <inc|dec|fire>         release
  status                         show the pulse length and the mode
  snapshot <file.png>            save the display as an image
  help                           this text
  quit                           exit, as do ^C and ^D
`)
}

func (c *console) button(name string) (*gpiotest.Pin, error) {
	switch strings.ToLower(name) {
	case "inc", "+":
		return c.pins.inc, nil
	case "dec", "-":
		return c.pins.dec, nil
	case "fire", "f":
		return c.pins.fire, nil
	}
	return nil, fmt.Errorf("unknown button %q", name)
}

// exec runs one command line. It returns errQuit on quit.
func (c *console) exec(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]
	switch cmd {
	case "help", "?":
		c.printHelp()
	case "quit", "exit", "q":
		return errQuit
	case "status", "s":
		c.mu.Lock()
		s := c.dev.String()
		c.mu.Unlock()
		fmt.Fprintf(c.w, "%s, output %s\n", s, c.pins.out.Read())
	case "press", "release":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <inc|dec|fire>", cmd)
		}
		p, err := c.button(args[0])
		if err != nil {
			return err
		}
		return p.Out(gpio.Level(cmd == "release"))
	case "tap", "hold":
		if len(args) < 1 || len(args) > 2 || (cmd == "hold" && len(args) != 2) {
			return fmt.Errorf("usage: %s <inc|dec|fire> [duration]", cmd)
		}
		p, err := c.button(args[0])
		if err != nil {
			return err
		}
		d := defaultTap
		if len(args) == 2 {
			if d, err = time.ParseDuration(args[1]); err != nil {
				return err
			}
		}
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
		c.after(d, func() { _ = p.Out(gpio.High) })
	case "snapshot":
		if len(args) != 1 {
			return errors.New("usage: snapshot <file.png>")
		}
		c.mu.Lock()
		d := c.dev.Duration()
		c.mu.Unlock()
		opts := segimage.DefaultOpts
		opts.Label = d.String()
		return segimage.SavePNG(args[0], uint8(d), &opts)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

// lineReader is implemented by *readline.Instance.
type lineReader interface {
	Readline() (string, error)
}

var _ lineReader = (*readline.Instance)(nil)

// run reads commands until ^C, EOF or quit, then calls cancel.
func (c *console) run(ctx context.Context, cancel context.CancelFunc, rl lineReader) {
	defer cancel()
	c.printHelp()
	for ctx.Err() == nil {
		line, err := rl.Readline()
		if err != nil {
			// ^C or EOF.
			return
		}
		if err := c.exec(line); err == errQuit {
			return
		} else if err != nil {
			fmt.Fprintf(c.w, "error: %v\n", err)
		}
	}
}
