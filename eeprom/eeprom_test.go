// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package eeprom

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type write struct {
	Cell  int
	Value byte
}

// journal records the writes done to a Medium.
type journal struct {
	Medium
	writes []write
}

func (j *journal) WriteByteAt(i int, b byte) error {
	j.writes = append(j.writes, write{i, b})
	return j.Medium.WriteByteAt(i, b)
}

func TestLoadEmpty(t *testing.T) {
	r := NewRing(NewMem(16))
	v, ok, err := r.Load()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Errorf("Load() = %d, true on an erased medium", v)
	}
	if r.Active() != -1 {
		t.Errorf("Active() = %d, want -1", r.Active())
	}
}

func TestRoundTrip(t *testing.T) {
	const capacity = 8
	m := NewMem(capacity)
	for x := 1; x <= 99; x++ {
		// Each iteration is a reboot: a fresh Ring over the same cells.
		r := NewRing(m)
		if _, _, err := r.Load(); err != nil {
			t.Fatal(err)
		}
		if err := r.Save(byte(x)); err != nil {
			t.Fatal(err)
		}
		got, ok, err := NewRing(m).Load()
		if err != nil {
			t.Fatal(err)
		}
		if !ok || got != byte(x) {
			t.Fatalf("Load() after Save(%d) = %d, %t", x, got, ok)
		}
	}
	// 99 saves spread over 8 cells: each cell is written (value + erase)
	// at most twice per lap.
	for i := range capacity {
		if w := m.Writes(i); w > 2*(99/capacity+1) {
			t.Errorf("cell %d written %d times", i, w)
		}
	}
}

func TestRotation(t *testing.T) {
	const capacity = 4
	j := &journal{Medium: NewMem(capacity)}
	r := NewRing(j)
	if _, _, err := r.Load(); err != nil {
		t.Fatal(err)
	}
	if err := r.Save(7); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(j.writes, []write{{0, 7}}); diff != "" {
		t.Errorf("first save difference (-got +want):\n%s", diff)
	}
	for n := range 2 * capacity {
		j.writes = nil
		prev := r.Active()
		if err := r.Save(7); err != nil {
			t.Fatal(err)
		}
		next := (prev + 1) % capacity
		want := []write{{next, 7}, {prev, Erased}}
		if diff := cmp.Diff(j.writes, want); diff != "" {
			t.Errorf("save %d difference (-got +want):\n%s", n, diff)
		}
		if r.Active() != next {
			t.Errorf("Active() = %d, want %d", r.Active(), next)
		}
	}
}

func TestSingleCell(t *testing.T) {
	m := NewMem(1)
	r := NewRing(m)
	for _, v := range []byte{3, 4, 5} {
		if err := r.Save(v); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(m.Bytes(), []byte{5}); diff != "" {
		t.Errorf("cells difference (-got +want):\n%s", diff)
	}
}

func TestLoadRepairsInterruptedSave(t *testing.T) {
	m := NewMem(6)
	_ = m.WriteByteAt(2, 10)
	_ = m.WriteByteAt(3, 11)
	r := NewRing(m)
	v, ok, err := r.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || v != 10 || r.Active() != 2 {
		t.Errorf("Load() = %d, %t, active %d; want 10, true, active 2", v, ok, r.Active())
	}
	want := []byte{Erased, Erased, 10, Erased, Erased, Erased}
	if diff := cmp.Diff(m.Bytes(), want); diff != "" {
		t.Errorf("cells difference (-got +want):\n%s", diff)
	}
}

func TestLoadRepairsWrappedSave(t *testing.T) {
	m := NewMem(4)
	_ = m.WriteByteAt(3, 10)
	_ = m.WriteByteAt(0, 11)
	r := NewRing(m)
	v, ok, err := r.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || v != 10 || r.Active() != 3 {
		t.Errorf("Load() = %d, %t, active %d; want 10, true, active 3", v, ok, r.Active())
	}
	want := []byte{Erased, Erased, Erased, 10}
	if diff := cmp.Diff(m.Bytes(), want); diff != "" {
		t.Errorf("cells difference (-got +want):\n%s", diff)
	}
	if err := r.Save(12); err != nil {
		t.Fatal(err)
	}
	want = []byte{12, Erased, Erased, Erased}
	if diff := cmp.Diff(m.Bytes(), want); diff != "" {
		t.Errorf("cells difference after Save (-got +want):\n%s", diff)
	}
}

func TestSaveErrors(t *testing.T) {
	if err := NewRing(NewMem(0)).Save(1); !errors.Is(err, ErrNoCapacity) {
		t.Errorf("Save() on empty medium = %v, want %v", err, ErrNoCapacity)
	}
	if err := NewRing(NewMem(4)).Save(Erased); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Save(0xFF) = %v, want %v", err, ErrInvalidValue)
	}
	if _, ok, _ := NewRing(NewMem(0)).Load(); ok {
		t.Error("Load() on empty medium found a value")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.bin")
	f, err := OpenFile(path, 32)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRing(f)
	if _, ok, err := r.Load(); err != nil || ok {
		t.Fatalf("Load() on new image = %t, %v", ok, err)
	}
	for _, v := range []byte{1, 42, 99} {
		if err := r.Save(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	f, err = OpenFile(path, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if f.Len() != 32 {
		t.Errorf("Len() = %d, existing image must keep its size", f.Len())
	}
	r = NewRing(f)
	v, ok, err := r.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !ok || v != 99 || r.Active() != 2 {
		t.Errorf("Load() = %d, %t, active %d; want 99, true, active 2", v, ok, r.Active())
	}
	if _, err := f.ReadByteAt(32); err == nil {
		t.Error("expected out of range error")
	}
}
