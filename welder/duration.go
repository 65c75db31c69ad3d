// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package welder

import (
	"fmt"
	"time"
)

// Duration is the weld pulse length in units of 10ms.
type Duration uint8

const (
	MinDuration Duration = 1
	MaxDuration Duration = 99
	// Unit is the length of one Duration step.
	Unit = 10 * time.Millisecond
)

// Inc returns d one step longer, saturated at MaxDuration.
func (d Duration) Inc() Duration {
	if d < MaxDuration {
		return d + 1
	}
	return MaxDuration
}

// Dec returns d one step shorter, saturated at MinDuration.
func (d Duration) Dec() Duration {
	if d > MinDuration {
		return d - 1
	}
	return MinDuration
}

// Clamp returns d limited to [MinDuration, MaxDuration].
func (d Duration) Clamp() Duration {
	switch {
	case d < MinDuration:
		return MinDuration
	case d > MaxDuration:
		return MaxDuration
	default:
		return d
	}
}

// Pulse returns the length of the weld pulse.
func (d Duration) Pulse() time.Duration {
	return time.Duration(d) * Unit
}

func (d Duration) String() string {
	return fmt.Sprintf("%dms", int(d)*10)
}
