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

package mmio

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"

	"github.com/thediveo/mcerrs"
)

const windowSize = 256

// newWindow creates a zeroed backing file of windowSize bytes and maps it.
func newWindow() *Map {
	GinkgoHelper()
	path := filepath.Join(GinkgoT().TempDir(), "regs")
	Expect(os.WriteFile(path, make([]byte, windowSize), 0644)).To(Succeed())
	m := Successful(OpenFile(path, windowSize))
	DeferCleanup(func() { Expect(m.Close()).To(Succeed()) })
	return m
}

var _ = Describe("memory-mapped registers", func() {

	It("reads back written register values", func() {
		m := newWindow()
		m.Write32(0x08, 0xdeadbeef)
		Expect(m.Read32(0x08)).To(Equal(uint32(0xdeadbeef)))
		Expect(m.Read32(0x0c)).To(Equal(uint32(0)))
	})

	It("signals failed reads outside the window", func() {
		m := newWindow()
		Expect(m.Read32(windowSize)).To(Equal(mcerrs.ReadFailed))
		Expect(m.Read32(windowSize - 3)).To(Equal(mcerrs.ReadFailed))
		Expect(m.Read32(0x2)).To(Equal(mcerrs.ReadFailed)) // unaligned
	})

	It("drops writes outside the window", func() {
		m := newWindow()
		m.Write32(windowSize, 0x42)
		m.Write32(0x6, 0x42)
		Expect(m.Read32(0x04)).To(Equal(uint32(0)))
	})

	It("fails opening a non-existing device", func() {
		_, err := OpenFile("/nowhere/never/regs", windowSize)
		Expect(err).To(HaveOccurred())
	})

	When("reading sysfs attributes", func() {

		DescribeTable("accepted spellings",
			func(contents string, value uint64) {
				path := filepath.Join(GinkgoT().TempDir(), "size")
				Expect(os.WriteFile(path, []byte(contents), 0644)).To(Succeed())
				Expect(readAttr(path)).To(Equal(value))
			},
			Entry(nil, "256\n", uint64(256)),
			Entry(nil, "0x1000\n", uint64(0x1000)),
			Entry(nil, "4096", uint64(4096)),
		)

		It("rejects gibberish", func() {
			path := filepath.Join(GinkgoT().TempDir(), "size")
			Expect(os.WriteFile(path, []byte("xyz\n"), 0644)).To(Succeed())
			_, err := readAttr(path)
			Expect(err).To(MatchError(ContainSubstring("malformed attribute")))
		})

		It("reports unreadable attributes", func() {
			_, err := readAttr("/nowhere/never/size")
			Expect(err).To(MatchError(ContainSubstring("cannot read attribute")))
		})

	})

	It("serves as the register transport of a fault controller", func() {
		m := newWindow()
		m.Write32(mcerrs.IntStatusReg, mcerrs.IntDecErrEMEM)
		m.Write32(0x08, 0x3|1<<16) // client 3, write
		m.Write32(0x0c, 0x1000)

		sink := Successful(os.CreateTemp(GinkgoT().TempDir(), "sink"))
		defer sink.Close()
		c := Successful(mcerrs.New(mcerrs.Config{
			Ops: &mcerrs.GenericOps{
				Faults: []mcerrs.Fault{
					{Sig: mcerrs.IntDecErrEMEM, Msg: "EMEM address decode error",
						StatReg: 0x08, AddrReg: 0x0c},
				},
				Regs:    m,
				IntMask: mcerrs.IntDecErrEMEM,
			},
			Registers: m,
			Faults: []mcerrs.Fault{
				{Sig: mcerrs.IntDecErrEMEM, Msg: "EMEM address decode error",
					StatReg: 0x08, AddrReg: 0x0c},
			},
			Clients: mcerrs.ClientTable{
				{Name: "ptc", Swgroup: "ptc", ID: 0},
				{Name: "display0a", Swgroup: "dc", ID: 1},
				{Name: "display0b", Swgroup: "dcb", ID: 2},
				{Name: "gpu", Swgroup: "gpu", ID: 3},
			},
			Descriptions: make([]string, mcerrs.IntrDescriptionSlots),
			Sink:         sink,
		}))
		DeferCleanup(c.Close)

		c.ServiceFault(0)
		Expect(m.Read32(mcerrs.IntMaskReg)).To(Equal(mcerrs.IntDecErrEMEM))
		out := Successful(os.ReadFile(sink.Name()))
		Expect(string(out)).To(ContainSubstring("gpu"))
		Expect(string(out)).To(ContainSubstring("write"))
	})

})
