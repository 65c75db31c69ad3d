// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package eeprom keeps a single byte value on a medium with limited write
// endurance.
//
// Every save moves the value to the next cell and erases the previous one,
// so writes are spread over the whole medium. At steady state exactly one
// cell holds a value; all others read as Erased.
package eeprom

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCapacity is returned by Save on a medium without cells.
	ErrNoCapacity = errors.New("eeprom: medium has no cells")
	// ErrInvalidValue is returned when saving the Erased marker.
	ErrInvalidValue = errors.New("eeprom: cannot save the erased marker")
)

// Ring rotates a value over the cells of a Medium.
type Ring struct {
	m      Medium
	active int
}

// NewRing returns a Ring over m. Call Load before Save to pick up the
// previously saved cell.
func NewRing(m Medium) *Ring {
	return &Ring{m: m, active: -1}
}

// Load scans the medium for the cell holding the value, which becomes the
// active cell. ok is false when every cell is erased.
//
// A save interrupted between its write and its erase leaves values in two
// consecutive cells. The first of the pair is kept, including when the pair
// wraps from the last cell to cell 0, and every other value is erased.
func (r *Ring) Load() (v byte, ok bool, err error) {
	r.active = -1
	n := r.m.Len()
	var used []int
	for i := range n {
		b, err := r.m.ReadByteAt(i)
		if err != nil {
			return 0, false, err
		}
		if b != Erased {
			used = append(used, i)
		}
	}
	if len(used) == 0 {
		return 0, false, nil
	}
	keep := used[0]
	if keep == 0 && len(used) > 1 && used[len(used)-1] == n-1 {
		keep = n - 1
	}
	for _, i := range used {
		if i == keep {
			continue
		}
		if err := r.m.WriteByteAt(i, Erased); err != nil {
			return 0, false, err
		}
	}
	if v, err = r.m.ReadByteAt(keep); err != nil {
		return 0, false, err
	}
	r.active = keep
	return v, true, nil
}

// Save writes v to the cell after the active one, then erases the
// previously active cell. The rotation advances even when v did not change.
func (r *Ring) Save(v byte) error {
	if v == Erased {
		return ErrInvalidValue
	}
	n := r.m.Len()
	if n == 0 {
		return ErrNoCapacity
	}
	next := (r.active + 1) % n
	if err := r.m.WriteByteAt(next, v); err != nil {
		return err
	}
	if r.active >= 0 && r.active != next {
		if err := r.m.WriteByteAt(r.active, Erased); err != nil {
			return err
		}
	}
	r.active = next
	return nil
}

// Active returns the cell holding the value, or -1.
func (r *Ring) Active() int {
	return r.active
}

func (r *Ring) String() string {
	return fmt.Sprintf("eeprom.Ring{%d/%d}", r.active, r.m.Len())
}
