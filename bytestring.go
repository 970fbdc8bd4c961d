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

import "bytes"

// bytestring provides efficient parsing of register dump text lines in form
// of byte slices.
//
// We rely on the compiler emitting efficient machine code for determining
// len(b), so we don't need to store it explicitly, but use the length already
// stored as part of the byte slice anyway.
type bytestring struct {
	b   []byte // line contents
	pos int    // parsing position within the line contents
}

// newBytestring returns a new bytestring object for parsing the supplied
// text line as a byte slice.
func newBytestring(b []byte) *bytestring {
	return &bytestring{
		pos: 0,
		b:   b,
	}
}

// EOL returns true if the parsing has reached the end of the byte string,
// otherwise false.
func (b *bytestring) EOL() (eol bool) { return b.pos >= len(b.b) }

// SkipSpace skips over any space 0x20 characters until either reaching the
// first non-space character, or EOL. When reaching EOL, it returns true.
func (b *bytestring) SkipSpace() (eol bool) {
	for {
		if b.pos >= len(b.b) {
			return true
		}
		if b.b[b.pos] != ' ' {
			return false
		}
		b.pos++
	}
}

// SkipText skips the text s in the buffer at the current position if present,
// returning ok true. Otherwise, returns ok false and the buffer's parsing
// position is left unchanged.
func (b *bytestring) SkipText(s string) (ok bool) {
	if b.pos >= len(b.b) || b.pos+len(s) > len(b.b) {
		return false
	}
	if !bytes.Equal([]byte(s), b.b[b.pos:b.pos+len(s)]) {
		return false
	}
	b.pos += len(s)
	return true
}

// hexDigit returns the value of the hexadecimal digit ch, or -1 for
// characters that aren't hexadecimal digits.
func hexDigit(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	}
	return -1
}

// Hex64 parses the hexadecimal number starting in the buffer at the current
// position until a character other than a hex digit is encountered, or EOL.
// An optional leading “0x” or “0X” is skipped. The number must consist of at
// least a single hex digit. If successful, Hex64 returns the number and
// true; otherwise zero and false, with the parsing position unchanged.
func (b *bytestring) Hex64() (num uint64, ok bool) {
	pos := b.pos
	if pos+2 < len(b.b) && b.b[pos] == '0' &&
		(b.b[pos+1] == 'x' || b.b[pos+1] == 'X') &&
		hexDigit(b.b[pos+2]) >= 0 {
		pos += 2
	}
	if pos >= len(b.b) {
		return 0, false
	}
	digit := hexDigit(b.b[pos])
	if digit < 0 {
		return 0, false
	}
	num = uint64(digit)
	pos++
	for {
		if pos >= len(b.b) {
			break
		}
		digit := hexDigit(b.b[pos])
		if digit < 0 {
			break
		}
		num = num<<4 + uint64(digit)
		pos++
	}
	b.pos = pos
	return num, true
}
