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

// Interrupt status and mask register offsets shared across the chip family.
const (
	IntStatusReg uint32 = 0x0
	IntMaskReg   uint32 = 0x4
)

// Interrupt signature bits of the family-wide fault vocabulary. Not every
// generation raises every fault; a generation's descriptor table decides.
const (
	IntDecErrEMEM          uint32 = 1 << 6
	IntSecurityViolation   uint32 = 1 << 8
	IntArbitrationEMEM     uint32 = 1 << 9
	IntInvalidSMMUPage     uint32 = 1 << 10
	IntInvalidAPBASIDUpate uint32 = 1 << 11
	IntDecErrVPR           uint32 = 1 << 12
	IntSecErrSEC           uint32 = 1 << 13
	IntBBCPrivateMemViol   uint32 = 1 << 14
	IntDecErrBBC           uint32 = 1 << 15
	IntDecErrMTS           uint32 = 1 << 16
	IntDecErrCarveout      uint32 = 1 << 17
	IntWCAMErr             uint32 = 1 << 19
)

// Fixed bit positions within a fault status word. These are stable across
// the chip family, unlike the register offsets around them.
const (
	statusClientMask  uint32 = 0x7f      // transaction source id
	statusWrite       uint32 = 1 << 16   // write access when set, read otherwise
	statusSecure      uint32 = 1 << 17   // secure access when set
	statusAdrHiMask   uint32 = 0x3 << 20 // high bits of the faulting address
	statusAdrHiShift         = 20
	statusSMMUMask    uint32 = 0x7 << 25 // offending SMMU translation context
	statusSMMUShift          = 25
)

// smmuBits extracts the 3-bit SMMU context sub-field from a fault status
// word.
func smmuBits(status uint32) int {
	return int((status & statusSMMUMask) >> statusSMMUShift)
}

// fullAddress reconstructs the physical fault address from the 32-bit
// address register contents and the address extension bits of the status
// word.
func fullAddress(status, addr uint32) uint64 {
	return uint64((status&statusAdrHiMask)>>statusAdrHiShift)<<32 | uint64(addr)
}
