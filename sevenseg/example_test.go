// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevenseg_test

import (
	"log"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/spotwelder/nxp74hc595"
	"github.com/GermanBionicSystems/spotwelder/sevenseg"
)

func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	reg, err := nxp74hc595.NewGPIO(gpioreg.ByName("GPIO5"), gpioreg.ByName("GPIO6"), gpioreg.ByName("GPIO13"), nil)
	if err != nil {
		log.Fatal(err)
	}
	d := sevenseg.New(reg)
	for v := range 100 {
		d.SetValue(uint8(v))
		// Each digit is lit for 5ms, 100 frames per value.
		for range 100 {
			if err := d.Display(); err != nil {
				log.Fatal(err)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}
