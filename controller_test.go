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
	"bytes"
	"slices"
	"sync"
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// testFaults is a minimal chip generation fault table covering all
// descriptor capability variants.
func testFaults() []Fault {
	return []Fault{
		{Sig: IntDecErrEMEM, Msg: "EMEM address decode error",
			StatReg: 0x8, AddrReg: 0xc},
		{Sig: IntArbitrationEMEM, Msg: "EMEM arbitration error",
			Flags: NoStatusRegs},
		{Sig: IntInvalidSMMUPage, Msg: "SMMU address translation fault",
			Flags: HasSMMUInfo, StatReg: 0x8, AddrReg: 0xc},
		{Sig: IntWCAMErr, Msg: "WCAM error",
			Flags: TwoStatusRegs, StatReg: 0x18, AddrReg: 0x1c},
	}
}

func testClients() ClientTable {
	return ClientTable{
		{Name: "ptc", Swgroup: "ptc", ID: 0},
		{Name: "display0a", Swgroup: "dc", ID: 1},
		{Name: "display0b", Swgroup: "dcb", ID: 2},
		{Name: "gpu", Swgroup: "gpu", ID: 3},
	}
}

func testDescriptions() []string {
	descriptions := make([]string, IntrDescriptionSlots)
	descriptions[6] = "decerr-emem"
	descriptions[8] = "sec-viol"
	descriptions[9] = "arb-emem"
	descriptions[10] = "smmu-page"
	descriptions[11] = "apb-asid"
	descriptions[19] = "wcam"
	return descriptions
}

const testIntMask = IntDecErrEMEM | IntArbitrationEMEM | IntInvalidSMMUPage | IntWCAMErr

// recordingOps wraps the generic chip operations, recording the interrupt
// control calls in the order the sequencer makes them.
type recordingOps struct {
	GenericOps
	mu    sync.Mutex
	calls []string
}

func (r *recordingOps) note(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingOps) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// The underlying operation runs first, the bookkeeping after: this way a
// recorded call guarantees its register effects to be visible to whoever
// observed the record.

func (r *recordingOps) DisableInterrupt(irq uint) {
	r.GenericOps.DisableInterrupt(irq)
	r.note("disable")
}

func (r *recordingOps) EnableInterrupt(irq uint) {
	r.GenericOps.EnableInterrupt(irq)
	r.note("enable")
}

func (r *recordingOps) ClearInterrupt(irq uint) {
	r.GenericOps.ClearInterrupt(irq)
	r.note("clear")
}

func (r *recordingOps) LogFault(irq uint) {
	r.GenericOps.LogFault(irq)
	r.note("log")
}

// newTestController returns a running controller over a register dump and
// a report sink buffer, wound down automatically at the end of the spec.
func newTestController(dump Dump) (*Controller, *recordingOps, *bytes.Buffer) {
	ginkgo.GinkgoHelper()
	sink := &bytes.Buffer{}
	ops := &recordingOps{
		GenericOps: GenericOps{Faults: testFaults(), Regs: dump, IntMask: testIntMask},
	}
	c, err := New(Config{
		Ops:          ops,
		Registers:    dump,
		Faults:       testFaults(),
		Clients:      testClients(),
		Descriptions: testDescriptions(),
		Sink:         sink,
	})
	Expect(err).NotTo(HaveOccurred())
	ginkgo.DeferCleanup(c.Close)
	return c, ops, sink
}

var _ = ginkgo.Describe("controller", func() {

	ginkgo.When("registering a chip generation", func() {

		ginkgo.It("rejects incomplete registrations", func() {
			dump := Dump{}
			ops := &GenericOps{Regs: dump}

			_, err := New(Config{Registers: dump, Descriptions: testDescriptions()})
			Expect(err).To(MatchError(ContainSubstring("without ChipOps")))

			_, err = New(Config{Ops: ops, Descriptions: testDescriptions()})
			Expect(err).To(MatchError(ContainSubstring("without register transport")))
		})

		ginkgo.It("rejects malformed interrupt description tables", func() {
			dump := Dump{}
			ops := &GenericOps{Regs: dump}

			_, err := New(Config{Ops: ops, Registers: dump,
				Descriptions: []string{"too", "short"}})
			Expect(err).To(MatchError(ContainSubstring("interrupt descriptions")))

			descriptions := testDescriptions()
			descriptions[6] = "way too long for a description"
			_, err = New(Config{Ops: ops, Registers: dump, Descriptions: descriptions})
			Expect(err).To(MatchError(ContainSubstring("exceeds")))
		})

		ginkgo.It("rejects broken fault tables", func() {
			dump := Dump{}
			ops := &GenericOps{Regs: dump}

			_, err := New(Config{Ops: ops, Registers: dump,
				Descriptions: testDescriptions(),
				Faults:       []Fault{{Msg: "signatureless"}}})
			Expect(err).To(MatchError(ContainSubstring("without interrupt signature")))

			_, err = New(Config{Ops: ops, Registers: dump,
				Descriptions: testDescriptions(),
				Faults: []Fault{
					{Sig: IntDecErrEMEM, Msg: "one"},
					{Sig: IntDecErrEMEM, Msg: "two"},
				}})
			Expect(err).To(MatchError(ContainSubstring("duplicate fault signature")))
		})

		ginkgo.It("rejects client tables with holes", func() {
			dump := Dump{}
			ops := &GenericOps{Regs: dump}

			_, err := New(Config{Ops: ops, Registers: dump,
				Descriptions: testDescriptions(),
				Clients:      ClientTable{{Name: "ptc", ID: 42}}})
			Expect(err).To(MatchError(ContainSubstring("has id 42 at table index 0")))
		})

	})

	ginkgo.When("sequencing interrupt control", func() {

		ginkgo.It("always runs disable, log, clear, enable, in exactly this order", func() {
			dump := Dump{
				IntStatusReg: IntDecErrEMEM,
				IntMaskReg:   testIntMask,
				0x8:          0x00000003,
				0xc:          0x1000,
			}
			c, ops, _ := newTestController(dump)

			c.FaultRaised(0)
			Eventually(ops.Calls).Should(Equal([]string{"disable", "log", "clear", "enable"}))
			// the mask must be restored at the end of the sequence.
			Expect(dump[IntMaskReg]).To(Equal(uint32(testIntMask)))
		})

		ginkgo.It("completes the sequence even for an undecodable fault", func() {
			dump := Dump{
				IntStatusReg: 1 << 30, // no descriptor for this bit
				IntMaskReg:   testIntMask,
			}
			c, ops, sink := newTestController(dump)

			c.FaultRaised(0)
			Eventually(ops.Calls).Should(Equal([]string{"disable", "log", "clear", "enable"}))
			Expect(sink.String()).To(ContainSubstring("unknown fault"))
		})

		ginkgo.It("masks the line before any deferred work", func() {
			dump := Dump{
				IntStatusReg: IntDecErrEMEM,
				IntMaskReg:   testIntMask,
			}
			c, ops, _ := newTestController(dump)

			c.FaultRaised(0)
			// FaultRaised itself already disabled the interrupt, before the
			// deferred worker even gets scheduled.
			Expect(ops.Calls()[0]).To(Equal("disable"))
			Eventually(ops.Calls).Should(HaveLen(4))
		})

	})

	ginkgo.When("winding down", func() {

		ginkgo.It("finishes servicing before Close returns", func() {
			dump := Dump{IntStatusReg: IntDecErrEMEM, IntMaskReg: testIntMask}
			sink := &bytes.Buffer{}
			ops := &recordingOps{
				GenericOps: GenericOps{Faults: testFaults(), Regs: dump, IntMask: testIntMask},
			}
			c, err := New(Config{
				Ops: ops, Registers: dump,
				Faults: testFaults(), Clients: testClients(),
				Descriptions: testDescriptions(), Sink: sink,
			})
			Expect(err).NotTo(HaveOccurred())
			c.FaultRaised(0)
			Eventually(ops.Calls).Should(HaveLen(4))
			c.Close()

			// statistics stay readable after Close.
			total := uint64(0)
			for fc := range c.AllFaultCounts() {
				total += fc.Count
			}
			Expect(total).To(Equal(uint64(1)))
		})

	})

	ginkgo.When("tracking arbitration fault intervals", func() {

		ginkgo.It("keeps only the most recent intervals", func() {
			var tracker arbTracker
			base := time.Now()
			t := base
			for i := 1; i <= 25; i++ {
				tracker.record(t)
				t = t.Add(time.Duration(i+1) * time.Millisecond)
			}
			// 25 timestamps make 24 intervals; the ring keeps the 20 most
			// recent ones, 6ms up to 25ms.
			Expect(tracker.count).To(Equal(mmaHistorySamples))
			expected := time.Duration(0)
			for i := 6; i <= 25; i++ {
				expected += time.Duration(i) * time.Millisecond
			}
			expected /= 20
			Expect(tracker.average()).To(Equal(expected))
		})

		ginkgo.It("averages zero while the history is empty", func() {
			var tracker arbTracker
			Expect(tracker.average()).To(BeZero())
			tracker.record(time.Now())
			// a single occurrence only establishes the reference timestamp.
			Expect(tracker.average()).To(BeZero())
		})

		ginkgo.It("records an interval per arbitration fault decode", func() {
			dump := Dump{IntStatusReg: IntArbitrationEMEM, IntMaskReg: testIntMask}
			c, _, _ := newTestController(dump)
			c.decode(IntArbitrationEMEM)
			c.decode(IntArbitrationEMEM)
			c.decode(IntArbitrationEMEM)
			c.arb.mu.Lock()
			defer c.arb.mu.Unlock()
			Expect(c.arb.count).To(Equal(2))
		})

	})

})

// ringHolds is a helper documenting the FIFO eviction expectation in a
// directly checkable way.
func ringHolds(tracker *arbTracker) []time.Duration {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	intervals := make([]time.Duration, 0, tracker.count)
	start := tracker.next - tracker.count
	for idx := 0; idx < tracker.count; idx++ {
		intervals = append(intervals,
			tracker.intervals[(start+idx+mmaHistorySamples)%mmaHistorySamples])
	}
	return intervals
}

var _ = ginkgo.Describe("arbitration ring order", func() {

	ginkgo.It("evicts strictly oldest-first", func() {
		var tracker arbTracker
		t := time.Now()
		tracker.record(t)
		for i := 1; i <= 25; i++ {
			t = t.Add(time.Duration(i) * time.Second)
			tracker.record(t)
		}
		intervals := ringHolds(&tracker)
		Expect(intervals).To(HaveLen(mmaHistorySamples))
		Expect(intervals[0]).To(Equal(6 * time.Second))
		Expect(intervals[len(intervals)-1]).To(Equal(25 * time.Second))
	})

})
