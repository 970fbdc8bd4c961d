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

package mcerrs

import (
	"bufio"
	"fmt"
	"io"
)

// Dump is a [Registers] implementation backed by a plain map of register
// offsets to values, for decoding faults offline from a captured register
// dump and for testing. Reads of offsets absent from the dump return
// [ReadFailed].
//
// Dump is not safe for concurrent use; it is meant for offline decoding,
// where everything runs sequentially anyway.
type Dump map[uint32]uint32

// Read32 returns the dumped value at the given register offset, or
// [ReadFailed] when the dump has no value for it.
func (d Dump) Read32(offset uint32) uint32 {
	value, ok := d[offset]
	if !ok {
		return ReadFailed
	}
	return value
}

// Write32 stores the value at the given register offset, so that the
// interrupt control sequencing of an offline decode behaves like on real
// registers.
func (d Dump) Write32(offset uint32, value uint32) {
	d[offset] = value
}

// ParseDump reads a textual register dump, one “offset: value” pair per
// line, with both numbers in hexadecimal and an optional “0x” prefix.
// Empty lines and lines starting with “#” are skipped. A malformed line
// aborts parsing with an error naming the line.
func ParseDump(r io.Reader) (Dump, error) {
	dump := Dump{}
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		bstr := newBytestring(sc.Bytes())
		if bstr.SkipSpace() || bstr.SkipText("#") {
			continue
		}
		offset, ok := bstr.Hex64()
		if !ok || offset > 0xffffffff {
			return nil, fmt.Errorf("register dump line %d: bad register offset", lineno)
		}
		bstr.SkipText(":")
		if bstr.SkipSpace() {
			return nil, fmt.Errorf("register dump line %d: missing register value", lineno)
		}
		value, ok := bstr.Hex64()
		if !ok || value > 0xffffffff {
			return nil, fmt.Errorf("register dump line %d: bad register value", lineno)
		}
		dump[uint32(offset)] = uint32(value)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return dump, nil
}
