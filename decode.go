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
	"time"
)

// decode is the fault decode and report engine, running in the deferred
// logging context. It resolves the raw interrupt status word into a
// [Report], updates the statistics unconditionally, and renders the report
// gated by both the per-signature throttle and the silenced flag; strictly
// in that order.
func (c *Controller) decode(intr uint32) {
	fault := c.ops.LookupFault(intr)
	if fault == nil {
		fault = UnknownFault
	}

	if intr&IntArbitrationEMEM != 0 {
		c.arb.record(time.Now())
	}

	r := Report{
		Fault:  fault,
		Client: UnknownClient,
		Intr:   intr,
		SMMU:   -1,
	}
	switch {
	case fault == UnknownFault:
		// Register offsets are undefined for the unknown sentinel, so no
		// extraction whatsoever.
	case fault.Flags&NoStatusRegs != 0:
		// Only the descriptor's message can be reported.
	case fault.Flags&TwoStatusRegs != 0:
		r.Status = c.regs.Read32(fault.StatReg)
		r.Status2 = c.regs.Read32(fault.AddrReg)
	default:
		r.Status = c.regs.Read32(fault.StatReg)
		r.Addr = fullAddress(r.Status, c.regs.Read32(fault.AddrReg))
		r.Secure = r.Status&statusSecure != 0
		r.Write = r.Status&statusWrite != 0
		if fault.Flags&HasSMMUInfo != 0 {
			r.SMMU = smmuBits(r.Status)
		}
		r.Client = c.clients.ByID(int(r.Status & statusClientMask))
	}

	// Bookkeeping happens on every decode: the client statistics as well as
	// the report counter, no matter whether any text gets rendered below.
	c.countClient(r.Client)
	count := c.printsFor(fault).Add(1)

	if count > MaxPrints || c.silenced.Load() {
		return
	}
	if fault == UnknownFault {
		c.renderUnknown(c.sink, intr)
		return
	}
	c.ops.RenderReport(c.sink, &r)
}

// renderUnknown reports an interrupt status word that matched no fault
// descriptor, annotating any set bits with the chip generation's interrupt
// description table.
func (c *Controller) renderUnknown(w io.Writer, intr uint32) {
	fmt.Fprintf(w, "mcerr: unknown fault, intr status: 0x%08x", intr)
	sep := " ("
	for bit := 0; bit < IntrDescriptionSlots; bit++ {
		if intr&(1<<bit) == 0 || c.descriptions[bit] == "" {
			continue
		}
		fmt.Fprintf(w, "%s%s", sep, c.descriptions[bit])
		sep = ", "
	}
	if sep == ", " {
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)
}
