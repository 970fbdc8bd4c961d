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

// Package tegra12x is the Tegra12x memory controller generation backend for
// mcerrs: its fault descriptor table, client table, interrupt descriptions,
// and chip operations.
package tegra12x

import (
	"fmt"
	"io"

	"github.com/thediveo/mcerrs"
)

// Fault status and address register offsets of the Tegra12x memory
// controller.
const (
	errStatusReg    uint32 = 0x08
	errAdrReg       uint32 = 0x0c
	errBBCStatusReg uint32 = 0x84
	errBBCAdrReg    uint32 = 0x88
	errVPRStatusReg uint32 = 0xe0
	errVPRAdrReg    uint32 = 0xe4
	errSecStatusReg uint32 = 0x1c0
	errSecAdrReg    uint32 = 0x1c4
	errWCAMStat0Reg uint32 = 0x1e0
	errWCAMStat1Reg uint32 = 0x1e4
)

// IntMask is the set of fault interrupts a Tegra12x memory controller can
// raise.
const IntMask = mcerrs.IntDecErrEMEM |
	mcerrs.IntSecurityViolation |
	mcerrs.IntArbitrationEMEM |
	mcerrs.IntInvalidSMMUPage |
	mcerrs.IntInvalidAPBASIDUpate |
	mcerrs.IntDecErrVPR |
	mcerrs.IntSecErrSEC |
	mcerrs.IntBBCPrivateMemViol |
	mcerrs.IntDecErrBBC |
	mcerrs.IntDecErrMTS |
	mcerrs.IntWCAMErr

// Faults returns the Tegra12x fault descriptor table.
func Faults() []mcerrs.Fault {
	return []mcerrs.Fault{
		{Sig: mcerrs.IntDecErrEMEM, Msg: "EMEM address decode error",
			StatReg: errStatusReg, AddrReg: errAdrReg},
		{Sig: mcerrs.IntSecurityViolation, Msg: "non secure access to secure region",
			StatReg: errStatusReg, AddrReg: errAdrReg},
		{Sig: mcerrs.IntArbitrationEMEM, Msg: "EMEM arbitration error",
			Flags: mcerrs.NoStatusRegs},
		{Sig: mcerrs.IntInvalidSMMUPage, Msg: "SMMU address translation fault",
			Flags: mcerrs.HasSMMUInfo, StatReg: errStatusReg, AddrReg: errAdrReg},
		{Sig: mcerrs.IntInvalidAPBASIDUpate, Msg: "invalid APB ASID update",
			Flags: mcerrs.NoStatusRegs},
		{Sig: mcerrs.IntDecErrVPR, Msg: "MC request violates VPR requirements",
			StatReg: errVPRStatusReg, AddrReg: errVPRAdrReg},
		{Sig: mcerrs.IntSecErrSEC, Msg: "MC request violated SEC carveout requirements",
			StatReg: errSecStatusReg, AddrReg: errSecAdrReg},
		{Sig: mcerrs.IntBBCPrivateMemViol, Msg: "BBC accessing memory not owned by BBC",
			StatReg: errBBCStatusReg, AddrReg: errBBCAdrReg},
		{Sig: mcerrs.IntDecErrBBC, Msg: "BBC non-secure request to secure region",
			StatReg: errBBCStatusReg, AddrReg: errBBCAdrReg},
		{Sig: mcerrs.IntDecErrMTS, Msg: "MTS carveout access violation",
			Flags: mcerrs.NoStatusRegs},
		{Sig: mcerrs.IntWCAMErr, Msg: "WCAM error",
			Flags: mcerrs.TwoStatusRegs, StatReg: errWCAMStat0Reg, AddrReg: errWCAMStat1Reg},
	}
}

// Clients returns the Tegra12x client table; its index order is the
// transaction source id order of the fault status word.
func Clients() mcerrs.ClientTable {
	names := []struct{ name, swgroup string }{
		{"ptc", "ptc"},
		{"display0a", "dc"},
		{"display0ab", "dcb"},
		{"display0b", "dc"},
		{"display0bb", "dcb"},
		{"display0c", "dc"},
		{"display0cb", "dcb"},
		{"afir", "afi"},
		{"avpcarm7r", "avpc"},
		{"displayhc", "dc"},
		{"displayhcb", "dcb"},
		{"hdar", "hda"},
		{"host1xdmar", "hc"},
		{"host1xr", "hc"},
		{"msencsrd", "msenc"},
		{"ppcsahbdmar", "ppcs"},
		{"ppcsahbslvr", "ppcs"},
		{"satar", "sata"},
		{"vdebsevr", "vde"},
		{"vdember", "vde"},
		{"vdemcer", "vde"},
		{"vdetper", "vde"},
		{"mpcorelpr", "mpcorelp"},
		{"mpcorer", "mpcore"},
		{"bbcr", "bbc"},
		{"gpusrd", "gpu"},
		{"gpuswr", "gpu"},
		{"sdmmcra", "sdmmc1a"},
		{"sdmmcraa", "sdmmc2a"},
		{"sdmmcr", "sdmmc3a"},
		{"sdmmcrab", "sdmmc4a"},
		{"vicsrd", "vic"},
		{"viw", "vi"},
		{"xusb_hostr", "xusb_host"},
		{"xusb_devr", "xusb_dev"},
		{"tsecsrd", "tsec"},
		{"a9avpscr", "a9avp"},
	}
	clients := make(mcerrs.ClientTable, 0, len(names))
	for id, n := range names {
		clients = append(clients, mcerrs.Client{
			Name: n.name, Swgroup: n.swgroup, ID: id,
		})
	}
	return clients
}

// Descriptions returns the Tegra12x interrupt description table, one short
// annotation per interrupt status bit; bits without a valid fault
// interrupt stay empty.
func Descriptions() []string {
	descriptions := make([]string, mcerrs.IntrDescriptionSlots)
	descriptions[6] = "decerr-emem"
	descriptions[8] = "sec-viol"
	descriptions[9] = "arb-emem"
	descriptions[10] = "smmu-page"
	descriptions[11] = "apb-asid"
	descriptions[12] = "decerr-vpr"
	descriptions[13] = "secerr-sec"
	descriptions[14] = "bbc-priv"
	descriptions[15] = "decerr-bbc"
	descriptions[16] = "decerr-mts"
	descriptions[17] = "decerr-gsc"
	descriptions[19] = "wcam"
	return descriptions
}

// Ops is the Tegra12x chip operations capability set. It reuses the
// generation-independent operations and only renders fault reports in the
// Tegra12x log flavor, which names the software group alongside the
// client.
type Ops struct {
	mcerrs.GenericOps
}

// RenderReport writes the fault report in the Tegra12x log format.
func (o *Ops) RenderReport(w io.Writer, r *mcerrs.Report) {
	if r.Fault.Flags&(mcerrs.NoStatusRegs|mcerrs.TwoStatusRegs) != 0 {
		o.GenericOps.RenderReport(w, r)
		return
	}
	access := "read"
	if r.Write {
		access = "write"
	}
	security := "no"
	if r.Secure {
		security = "yes"
	}
	fmt.Fprintf(w, "mcerr: [%s] %s (%d): %s\n",
		r.Client.Swgroup, r.Client.Name, r.Client.ID, r.Fault.Msg)
	fmt.Fprintf(w, "mcerr:   status = 0x%08x; addr = 0x%09x\n", r.Status, r.Addr)
	if smmu := r.SMMUInfo(); smmu != "" {
		fmt.Fprintf(w, "mcerr:   secure: %s, access-type: %s, %s\n",
			security, access, smmu)
		return
	}
	fmt.Fprintf(w, "mcerr:   secure: %s, access-type: %s\n", security, access)
}

// New registers the Tegra12x generation over the given register transport
// and returns the running fault controller.
func New(regs mcerrs.Registers, sink io.Writer) (*mcerrs.Controller, error) {
	return mcerrs.New(mcerrs.Config{
		Ops: &Ops{GenericOps: mcerrs.GenericOps{
			Faults:  Faults(),
			Regs:    regs,
			IntMask: IntMask,
		}},
		Registers:    regs,
		Faults:       Faults(),
		Clients:      Clients(),
		Descriptions: Descriptions(),
		Sink:         sink,
	})
}
