// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

// Package mmio provides 32-bit wide access to a memory-mapped register
// window, such as the memory controller register bank exposed through a
// UIO device. It implements the register transport boundary of mcerrs.
package mmio

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"unsafe"

	"github.com/thediveo/faf"
	"golang.org/x/sys/unix"

	"github.com/thediveo/mcerrs"
)

// Map is a memory-mapped register window. Its 32-bit accesses use atomic
// loads and stores, so a Map may be shared between the deferred logging
// context and other readers without further locking.
type Map struct {
	f   *os.File
	mem []byte
}

// Open maps the register window of the given device node, with the window
// size read from the accompanying sysfs attribute pseudo file (such as
// “/sys/class/uio/uio0/maps/map0/size”).
func Open(device string, sizeAttr string) (*Map, error) {
	size, err := readAttr(sizeAttr)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0660)
	if err != nil {
		return nil, err
	}
	m, err := mmap(f, int(size))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", device, err)
	}
	return m, nil
}

// OpenFile maps size bytes of an ordinary file as a register window. Its
// main use is working on register window captures taken from a live
// system.
func OpenFile(path string, size int) (*Map, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	m, err := mmap(f, size)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func mmap(f *os.File, size int) (*Map, error) {
	mem, err := unix.Mmap(int(f.Fd()), 0, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Map{f: f, mem: mem}, nil
}

// Read32 returns the 32-bit register value at the given offset, or
// [mcerrs.ReadFailed] for offsets outside the window or not 32-bit
// aligned.
func (m *Map) Read32(offset uint32) uint32 {
	if offset%4 != 0 || int(offset)+4 > len(m.mem) {
		return mcerrs.ReadFailed
	}
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&m.mem[offset])))
}

// Write32 stores a 32-bit register value at the given offset; writes
// outside the window or not 32-bit aligned are dropped, as there is
// nothing a fault handler could do about them anyway.
func (m *Map) Write32(offset uint32, value uint32) {
	if offset%4 != 0 || int(offset)+4 > len(m.mem) {
		return
	}
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&m.mem[offset])), value)
}

// Close unmaps the register window and closes the underlying device.
func (m *Map) Close() error {
	if err := unix.Munmap(m.mem); err != nil {
		m.f.Close()
		return err
	}
	m.mem = nil
	return m.f.Close()
}

// readAttr reads a single numeric value from a sysfs attribute pseudo
// file; both plain decimal and “0x” prefixed hexadecimal spellings occur
// in the wild.
func readAttr(path string) (uint64, error) {
	contents, ok := faf.ReadFile(path, nil)
	if !ok {
		return 0, fmt.Errorf("cannot read attribute %s", path)
	}
	for len(contents) > 0 && (contents[len(contents)-1] == '\n' || contents[len(contents)-1] == ' ') {
		contents = contents[:len(contents)-1]
	}
	value, err := strconv.ParseUint(string(contents), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed attribute %s: %w", path, err)
	}
	return value, nil
}
