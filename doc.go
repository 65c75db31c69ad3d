// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spotwelder is a container for the packages of a precise single
// pulse generator for resistive spot welders.
//
// The controller lives in package welder. It is wired to a two digit
// display (sevenseg over nxp74hc595), debounced buttons (debounce) and an
// EEPROM wear-levelling ring (eeprom). cmd/spotwelder runs it on a periph
// host or simulated on the terminal (screen7seg).
package spotwelder
