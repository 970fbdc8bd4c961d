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
	"fmt"
	"io"
)

// Report is everything the fault decode engine could determine about a
// single fault occurrence. Fields beyond Fault and Intr are only populated
// as far as the descriptor's flags permitted register extraction.
type Report struct {
	Fault   *Fault // the matched descriptor, or [UnknownFault]
	Client  Client // resolved client identity, or [UnknownClient]
	Intr    uint32 // raw interrupt status word
	Status  uint32 // fault status register contents
	Status2 uint32 // second status register contents for [TwoStatusRegs] faults
	Addr    uint64 // reconstructed physical fault address
	Secure  bool   // secure access
	Write   bool   // write access; read otherwise
	SMMU    int    // offending SMMU translation context, or -1 when absent
}

// SMMUInfo returns an advisory description of the offending SMMU
// translation context, or the empty string when the fault did not involve
// the SMMU. Renderers must tolerate the empty string; a missing SMMU
// context is not an error.
func (r *Report) SMMUInfo() string {
	if r.SMMU < 0 {
		return ""
	}
	return fmt.Sprintf("smmu ctx %d", r.SMMU)
}

// ChipOps is the capability set a chip generation backend supplies exactly
// once when creating a [Controller]; it is never swapped afterwards.
//
// LookupFault, RenderReport, and LogFault are called from the deferred
// logging context and must not block. RenderDiagnostics is called from the
// diagnostics read context and may block.
type ChipOps interface {
	// LookupFault returns the fault descriptor matching the raw interrupt
	// status word, or [UnknownFault] when no signature bit matches. It must
	// never return nil.
	LookupFault(intr uint32) *Fault
	// RenderReport writes the user-visible fault report. The engine has
	// already applied throttling and silencing before calling it.
	RenderReport(w io.Writer, r *Report)
	// RenderDiagnostics writes the cumulative fault statistics in the chip
	// generation's preferred format.
	RenderDiagnostics(w io.Writer, stats Stats) error
	// DisableInterrupt masks the fault interrupt line. Called from the hard
	// fault context before any decoding begins.
	DisableInterrupt(irq uint)
	// EnableInterrupt unmasks the fault interrupt line again, after the
	// interrupt status has been cleared.
	EnableInterrupt(irq uint)
	// ClearInterrupt clears the latched interrupt status so the hardware is
	// ready to latch the next fault.
	ClearInterrupt(irq uint)
	// LogFault is the chip backend's hook running first in the deferred
	// logging context, before the engine reads the interrupt status.
	LogFault(irq uint)
}

// GenericOps implements the generation-independent parts of [ChipOps] over
// a descriptor table and the interrupt status/mask registers shared across
// the chip family. Chip backends embed it and override only what their
// generation does differently.
type GenericOps struct {
	Faults  []Fault   // the generation's fault descriptor table
	Regs    Registers // register transport
	IntMask uint32    // the generation's enabled fault interrupt bits
}

// LookupFault resolves the interrupt status word against the descriptor
// table.
func (g *GenericOps) LookupFault(intr uint32) *Fault {
	return LookupFault(g.Faults, intr)
}

// RenderReport writes the default fault report format.
func (g *GenericOps) RenderReport(w io.Writer, r *Report) {
	switch {
	case r.Fault.Flags&NoStatusRegs != 0:
		fmt.Fprintf(w, "mcerr: fault without status: %s\n", r.Fault.Msg)
	case r.Fault.Flags&TwoStatusRegs != 0:
		fmt.Fprintf(w, "mcerr: fault: %s\n", r.Fault.Msg)
		fmt.Fprintf(w, "mcerr:   status: 0x%08x status2: 0x%08x\n",
			r.Status, r.Status2)
	default:
		access := "read"
		if r.Write {
			access = "write"
		}
		security := "non-secure"
		if r.Secure {
			security = "secure"
		}
		fmt.Fprintf(w, "mcerr: (%d) %s: %s\n", r.Client.ID, r.Client.Name, r.Fault.Msg)
		fmt.Fprintf(w, "mcerr:   status = 0x%08x; addr = 0x%09x\n", r.Status, r.Addr)
		if smmu := r.SMMUInfo(); smmu != "" {
			fmt.Fprintf(w, "mcerr:   %s, %s, %s\n", security, access, smmu)
		} else {
			fmt.Fprintf(w, "mcerr:   %s, %s\n", security, access)
		}
	}
}

// RenderDiagnostics writes the default statistics table: per-client fault
// counts, report counts per fault signature, and the arbitration fault
// interval average.
func (g *GenericOps) RenderDiagnostics(w io.Writer, stats Stats) error {
	if _, err := fmt.Fprintf(w, "%-18s %-18s %-9s\n", "client", "swgroup", "faults"); err != nil {
		return err
	}
	for cf := range stats.AllClientFaults() {
		if cf.Faults == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-18s %-18s %-9d\n",
			cf.Client.Name, cf.Client.Swgroup, cf.Faults); err != nil {
			return err
		}
	}
	for fc := range stats.AllFaultCounts() {
		if fc.Count == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "fault %-32s %-9d\n", fc.Msg, fc.Count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "arb fault interval average: %s\n",
		stats.ArbitrationAverage())
	return err
}

// DisableInterrupt masks all fault interrupts of this generation.
func (g *GenericOps) DisableInterrupt(irq uint) {
	g.Regs.Write32(IntMaskReg, 0)
}

// EnableInterrupt unmasks the generation's enabled fault interrupts again.
func (g *GenericOps) EnableInterrupt(irq uint) {
	g.Regs.Write32(IntMaskReg, g.IntMask)
}

// ClearInterrupt acknowledges the latched fault interrupt status by writing
// it back, so the hardware can latch the next fault.
func (g *GenericOps) ClearInterrupt(irq uint) {
	g.Regs.Write32(IntStatusReg, g.Regs.Read32(IntStatusReg))
}

// LogFault does nothing; chip backends override it when their generation
// needs extra latching work before the engine reads the interrupt status.
func (g *GenericOps) LogFault(irq uint) {}
