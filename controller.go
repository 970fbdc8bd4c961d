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
	"os"
	"sync/atomic"
)

const (
	// IntrDescriptionSlots is the exact length of a chip generation's
	// interrupt description table, one slot per interrupt status bit.
	// Slots without a valid interrupt are left empty.
	IntrDescriptionSlots = 32
	// MaxIntrDescriptionLen is the longest permitted interrupt description.
	MaxIntrDescriptionLen = 12
)

// Config registers a chip generation with a new [Controller]: the single
// ChipOps capability set, the register transport, and the generation's data
// tables.
type Config struct {
	Ops          ChipOps   // chip generation capability set
	Registers    Registers // register transport
	Faults       []Fault   // fault descriptor table
	Clients      ClientTable
	Descriptions []string  // exactly [IntrDescriptionSlots] entries
	Sink         io.Writer // fault report sink; defaults to os.Stderr
}

// Controller is the chip-agnostic fault interrupt handling engine. It owns
// the interrupt control sequencing, the decode and report pipeline, the
// report throttle, and all cumulative fault statistics. Create it with
// [New]; the installed ChipOps and tables never change afterwards.
type Controller struct {
	ops          ChipOps
	regs         Registers
	faults       []Fault
	clients      ClientTable
	descriptions []string
	sink         io.Writer

	silenced atomic.Bool
	// report counts per fault signature; the trailing element counts
	// decodes of unknown signatures. The slice itself is never resized, so
	// the atomic elements may be addressed without further locking.
	prints   []atomic.Uint64
	printIdx map[uint32]int // fault signature to prints index

	// cumulative fault counts per client id; the trailing element counts
	// faults attributed to no known client.
	clientFaults []atomic.Uint64

	arb arbTracker

	faultc chan uint
	stopc  chan chan struct{}
}

// New validates the chip registration and returns a running Controller
// ready to take faults. The deferred logging context is serviced by a
// single worker goroutine until [Controller.Close] is called.
func New(cfg Config) (*Controller, error) {
	if cfg.Ops == nil {
		return nil, fmt.Errorf("mcerrs: chip registration without ChipOps")
	}
	if cfg.Registers == nil {
		return nil, fmt.Errorf("mcerrs: chip registration without register transport")
	}
	if len(cfg.Descriptions) != IntrDescriptionSlots {
		return nil, fmt.Errorf("mcerrs: need exactly %d interrupt descriptions, got %d",
			IntrDescriptionSlots, len(cfg.Descriptions))
	}
	for bit, desc := range cfg.Descriptions {
		if len(desc) > MaxIntrDescriptionLen {
			return nil, fmt.Errorf("mcerrs: interrupt description for bit %d exceeds %d characters: %q",
				bit, MaxIntrDescriptionLen, desc)
		}
	}
	printIdx := map[uint32]int{}
	for idx, fault := range cfg.Faults {
		if fault.Sig == 0 {
			return nil, fmt.Errorf("mcerrs: fault descriptor %q without interrupt signature",
				fault.Msg)
		}
		if _, dup := printIdx[fault.Sig]; dup {
			return nil, fmt.Errorf("mcerrs: duplicate fault signature 0x%08x", fault.Sig)
		}
		printIdx[fault.Sig] = idx
	}
	for idx, client := range cfg.Clients {
		if client.ID != idx {
			return nil, fmt.Errorf("mcerrs: client %q has id %d at table index %d",
				client.Name, client.ID, idx)
		}
	}
	sink := cfg.Sink
	if sink == nil {
		sink = os.Stderr
	}
	c := &Controller{
		ops:          cfg.Ops,
		regs:         cfg.Registers,
		faults:       cfg.Faults,
		clients:      cfg.Clients,
		descriptions: cfg.Descriptions,
		sink:         sink,
		prints:       make([]atomic.Uint64, len(cfg.Faults)+1),
		printIdx:     printIdx,
		clientFaults: make([]atomic.Uint64, len(cfg.Clients)+1),
		// With a masked line unable to re-fire there is at most one
		// outstanding service request per interrupt status bit.
		faultc: make(chan uint, IntrDescriptionSlots),
		stopc:  make(chan chan struct{}),
	}
	go c.deferredLoop()
	return c, nil
}

// Close winds down the deferred logging worker. It returns only after the
// worker has finished any fault it was servicing. Statistics remain
// readable after Close.
func (c *Controller) Close() {
	done := make(chan struct{})
	c.stopc <- done
	<-done
}

// printsFor returns the report counter slot for the given fault descriptor;
// signatures outside the registered table share the trailing unknown slot.
func (c *Controller) printsFor(fault *Fault) *atomic.Uint64 {
	if idx, ok := c.printIdx[fault.Sig]; ok {
		return &c.prints[idx]
	}
	return &c.prints[len(c.prints)-1]
}

// countClient attributes one fault to the given client; identities outside
// the registered table share the trailing unknown slot.
func (c *Controller) countClient(client Client) {
	idx := client.ID
	if idx < 0 || idx >= len(c.clients) {
		idx = len(c.clients)
	}
	c.clientFaults[idx].Add(1)
}
