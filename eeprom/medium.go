// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package eeprom

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Erased is the content of a cell that holds no value.
const Erased byte = 0xFF

// Medium is a fixed size array of byte cells.
type Medium interface {
	Len() int
	ReadByteAt(i int) (byte, error)
	WriteByteAt(i int, b byte) error
}

// Mem is a Medium held in memory. It counts the writes to every cell.
type Mem struct {
	mu     sync.Mutex
	cells  []byte
	writes []int
}

// NewMem returns an erased medium of capacity cells.
func NewMem(capacity int) *Mem {
	m := &Mem{cells: make([]byte, capacity), writes: make([]int, capacity)}
	for i := range m.cells {
		m.cells[i] = Erased
	}
	return m
}

// Len implements Medium.
func (m *Mem) Len() int {
	return len(m.cells)
}

// ReadByteAt implements Medium.
func (m *Mem) ReadByteAt(i int) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.cells) {
		return 0, fmt.Errorf("eeprom: cell %d out of range", i)
	}
	return m.cells[i], nil
}

// WriteByteAt implements Medium.
func (m *Mem) WriteByteAt(i int, b byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.cells) {
		return fmt.Errorf("eeprom: cell %d out of range", i)
	}
	m.cells[i] = b
	m.writes[i]++
	return nil
}

// Writes returns the number of writes done to cell i.
func (m *Mem) Writes(i int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[i]
}

// Bytes returns a copy of the cells.
func (m *Mem) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.cells...)
}

// File is a Medium backed by an image file, one byte per cell.
type File struct {
	f   *os.File
	len int
}

// OpenFile opens the image at path. A missing file is created erased with
// capacity cells; an existing one keeps its own size.
func OpenFile(path string, capacity int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return createFile(path, capacity)
	}
	if err != nil {
		return nil, fmt.Errorf("eeprom: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("eeprom: %w", err)
	}
	return &File{f: f, len: int(st.Size())}, nil
}

func createFile(path string, capacity int) (*File, error) {
	if capacity < 0 {
		return nil, errors.New("eeprom: negative capacity")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eeprom: %w", err)
	}
	img := make([]byte, capacity)
	for i := range img {
		img[i] = Erased
	}
	if _, err := f.WriteAt(img, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("eeprom: %w", err)
	}
	return &File{f: f, len: capacity}, nil
}

// Len implements Medium.
func (f *File) Len() int {
	return f.len
}

// ReadByteAt implements Medium.
func (f *File) ReadByteAt(i int) (byte, error) {
	if i < 0 || i >= f.len {
		return 0, fmt.Errorf("eeprom: cell %d out of range", i)
	}
	var b [1]byte
	if _, err := f.f.ReadAt(b[:], int64(i)); err != nil {
		return 0, fmt.Errorf("eeprom: %w", err)
	}
	return b[0], nil
}

// WriteByteAt implements Medium. The cell is synced to disk before
// returning.
func (f *File) WriteByteAt(i int, b byte) error {
	if i < 0 || i >= f.len {
		return fmt.Errorf("eeprom: cell %d out of range", i)
	}
	if _, err := f.f.WriteAt([]byte{b}, int64(i)); err != nil {
		return fmt.Errorf("eeprom: %w", err)
	}
	return f.f.Sync()
}

// Close closes the image file.
func (f *File) Close() error {
	return f.f.Close()
}

func (f *File) String() string {
	return fmt.Sprintf("eeprom.File{%s, %d}", f.f.Name(), f.len)
}

var _ Medium = &Mem{}
var _ Medium = &File{}
