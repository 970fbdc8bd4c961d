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
	"io"
	"iter"
	"time"
)

// ClientFaults gives the cumulative number of faults attributed to one
// client.
type ClientFaults struct {
	Client Client
	Faults uint64
}

// FaultCount gives the number of decodes seen for one fault signature this
// session; this is the counter the report throttle checks against
// [MaxPrints].
type FaultCount struct {
	Sig   uint32 // fault interrupt signature; zero for the unknown bucket
	Msg   string // the descriptor's cause message
	Count uint64
}

// Stats is the read-only view of the aggregated fault statistics, as
// handed to [ChipOps.RenderDiagnostics]. A [Controller] is its own Stats
// view. All of it may be consumed from a context that is free to block; it
// only ever reads state maintained by the fault handling path.
type Stats interface {
	AllClientFaults() iter.Seq[ClientFaults]
	AllFaultCounts() iter.Seq[FaultCount]
	ArbitrationAverage() time.Duration
}

// AllClientFaults returns an iterator over the cumulative per-client fault
// counts, in client id order, produced lazily from the live counters. The
// trailing unknown-client bucket is only yielded when it is non-zero.
func (c *Controller) AllClientFaults() iter.Seq[ClientFaults] {
	return func(yield func(ClientFaults) bool) {
		for idx := range c.clients {
			if !yield(ClientFaults{
				Client: c.clients[idx],
				Faults: c.clientFaults[idx].Load(),
			}) {
				return
			}
		}
		if unknown := c.clientFaults[len(c.clients)].Load(); unknown != 0 {
			yield(ClientFaults{Client: UnknownClient, Faults: unknown})
		}
	}
}

// AllFaultCounts returns an iterator over the per-signature decode
// counters, in descriptor table order, produced lazily from the live
// counters. The trailing unknown-signature bucket is only yielded when it
// is non-zero.
func (c *Controller) AllFaultCounts() iter.Seq[FaultCount] {
	return func(yield func(FaultCount) bool) {
		for idx := range c.faults {
			if !yield(FaultCount{
				Sig:   c.faults[idx].Sig,
				Msg:   c.faults[idx].Msg,
				Count: c.prints[idx].Load(),
			}) {
				return
			}
		}
		if unknown := c.prints[len(c.faults)].Load(); unknown != 0 {
			yield(FaultCount{Msg: UnknownFault.Msg, Count: unknown})
		}
	}
}

// WriteDiagnostics renders the cumulative fault statistics through the
// installed chip generation's RenderDiagnostics, for on-demand consumption
// outside the interrupt path.
func (c *Controller) WriteDiagnostics(w io.Writer) error {
	return c.ops.RenderDiagnostics(w, c)
}
