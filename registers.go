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

// ReadFailed is the defined sentinel value a [Registers] implementation
// returns for a failed or unbacked register read. The report renderers
// print it as-is; a fault report with a ReadFailed field is still strictly
// better than no report.
const ReadFailed uint32 = 0xffffffff

// Registers is the boundary to the chip's register transport. The fault
// decode engine only ever reads and writes 32-bit words at chip-supplied
// offsets through it; it never interprets offsets itself.
//
// Read32 must not block: it is called from the deferred logging context.
// Reads either succeed or return [ReadFailed].
type Registers interface {
	Read32(offset uint32) uint32
	Write32(offset uint32, value uint32)
}
