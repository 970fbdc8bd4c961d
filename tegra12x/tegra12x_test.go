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

package tegra12x

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"

	"github.com/thediveo/mcerrs"
)

// clientID returns the transaction source id of the named Tegra12x client.
func clientID(name string) uint32 {
	GinkgoHelper()
	for _, client := range Clients() {
		if client.Name == name {
			return uint32(client.ID)
		}
	}
	Fail("no such Tegra12x client: " + name)
	return 0
}

var _ = Describe("tegra12x backend", func() {

	It("registers cleanly, so its tables pass the controller validation", func() {
		c := Successful(New(mcerrs.Dump{}, &bytes.Buffer{}))
		c.Close()
	})

	It("covers every fault interrupt of its mask with a descriptor", func() {
		faults := Faults()
		covered := uint32(0)
		for _, fault := range faults {
			covered |= fault.Sig
		}
		Expect(covered).To(Equal(uint32(IntMask)))
	})

	It("describes every fault interrupt bit of its mask", func() {
		descriptions := Descriptions()
		for bit := 0; bit < mcerrs.IntrDescriptionSlots; bit++ {
			if IntMask&(1<<bit) == 0 {
				continue
			}
			Expect(descriptions[bit]).NotTo(BeEmpty(),
				"interrupt bit %d lacks a description", bit)
		}
	})

	When("decoding Tegra12x faults", func() {

		It("reports a GPU read tripping over a secure region", func() {
			status := clientID("gpusrd") | 1<<17 // secure, read
			dump := mcerrs.Dump{
				mcerrs.IntStatusReg: mcerrs.IntSecurityViolation,
				mcerrs.IntMaskReg:   uint32(IntMask),
				errStatusReg:        status,
				errAdrReg:           0xdeadb000,
			}
			sink := &bytes.Buffer{}
			c := Successful(New(dump, sink))
			DeferCleanup(c.Close)

			c.ServiceFault(0)
			out := sink.String()
			Expect(out).To(ContainSubstring("[gpu] gpusrd"))
			Expect(out).To(ContainSubstring("non secure access to secure region"))
			Expect(out).To(ContainSubstring("secure: yes, access-type: read"))
			Expect(out).To(ContainSubstring("addr = 0x0deadb000"))
		})

		It("annotates the SMMU context for SMMU page faults", func() {
			status := clientID("viw") | 1<<16 | 5<<25 // write through SMMU ctx 5
			dump := mcerrs.Dump{
				mcerrs.IntStatusReg: mcerrs.IntInvalidSMMUPage,
				mcerrs.IntMaskReg:   uint32(IntMask),
				errStatusReg:        status,
				errAdrReg:           0x1000,
			}
			sink := &bytes.Buffer{}
			c := Successful(New(dump, sink))
			DeferCleanup(c.Close)

			c.ServiceFault(0)
			out := sink.String()
			Expect(out).To(ContainSubstring("viw"))
			Expect(out).To(ContainSubstring("access-type: write"))
			Expect(out).To(ContainSubstring("smmu ctx 5"))
		})

		It("restores the interrupt mask after the full sequence", func() {
			dump := mcerrs.Dump{
				mcerrs.IntStatusReg: mcerrs.IntArbitrationEMEM,
				mcerrs.IntMaskReg:   uint32(IntMask),
			}
			sink := &bytes.Buffer{}
			c := Successful(New(dump, sink))
			DeferCleanup(c.Close)

			c.ServiceFault(0)
			Expect(dump[mcerrs.IntMaskReg]).To(Equal(uint32(IntMask)))
			Expect(sink.String()).To(ContainSubstring("EMEM arbitration error"))
		})

	})

})
