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

// FaultFlags describe which further register reads are valid for a
// particular fault category.
type FaultFlags uint32

const (
	// HasSMMUInfo indicates that the fault status word carries SMMU context
	// bits identifying the offending translation context.
	HasSMMUInfo FaultFlags = 1 << iota
	// NoStatusRegs indicates that the fault has neither a status nor an
	// address register; only the descriptor's message can be reported.
	NoStatusRegs
	// TwoStatusRegs indicates that the fault has two status registers and
	// no address register.
	TwoStatusRegs
)

// Fault describes one category of fault a memory controller generation can
// raise. One descriptor is defined per distinct interrupt signature; the
// per-generation descriptor tables are pure data, supplied by the chip
// backend.
type Fault struct {
	Sig     uint32     // interrupt signature bit(s) within the interrupt status word
	Msg     string     // human-readable cause
	Flags   FaultFlags // which further register reads are valid
	StatReg uint32     // register offset holding the fault status
	AddrReg uint32     // register offset holding the faulting address, or the second status
}

// UnknownFault is the sentinel descriptor returned when no descriptor in a
// chip's fault table matches any bit of an interrupt status word. It has no
// status registers, so no register extraction must be attempted for it.
var UnknownFault = &Fault{Msg: "unknown interrupt", Flags: NoStatusRegs}

// LookupFault returns the descriptor from faults whose signature matches a
// set bit of the interrupt status word, or [UnknownFault] if no bit
// matches. Chip backends use it to implement [ChipOps.LookupFault] over
// their generation's descriptor table.
func LookupFault(faults []Fault, intr uint32) *Fault {
	for idx := range faults {
		if faults[idx].Sig&intr != 0 {
			return &faults[idx]
		}
	}
	return UnknownFault
}
