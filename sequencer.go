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

// FaultRaised is the hard fault context entry point. It must be called as
// soon as the platform glue learns of a raised fault interrupt; it masks
// the interrupt line and hands the fault off to the deferred logging
// worker without blocking. Nothing else happens in the caller's context.
//
// Masking first guarantees the fault source cannot re-fire and corrupt the
// fault status registers before the deferred worker has decoded them.
func (c *Controller) FaultRaised(irq uint) {
	c.ops.DisableInterrupt(irq)
	select {
	case c.faultc <- irq:
	default:
		// A masked line cannot re-fire, so at most one service request per
		// interrupt line can ever be outstanding and the queue has a slot
		// for every line.
	}
}

// ServiceFault runs the complete deferred logging sequence for one fault:
// log, decode and report, clear the interrupt status, re-enable the line.
// The sequence always completes, even when decoding fails.
//
// ServiceFault is normally driven by the Controller's own worker via
// [Controller.FaultRaised]; platform glue that already runs its own
// deferred context (a threaded interrupt handler equivalent) may instead
// mask the line itself and call ServiceFault directly from there.
func (c *Controller) ServiceFault(irq uint) {
	c.ops.LogFault(irq)
	c.decode(c.regs.Read32(IntStatusReg))
	c.ops.ClearInterrupt(irq)
	c.ops.EnableInterrupt(irq)
}

// deferredLoop services faults handed off by [Controller.FaultRaised],
// until told to stop. The stop request is only taken between faults, never
// mid-sequence.
func (c *Controller) deferredLoop() {
	for {
		select {
		case done := <-c.stopc:
			close(done)
			return
		case irq := <-c.faultc:
			c.ServiceFault(irq)
		}
	}
}
