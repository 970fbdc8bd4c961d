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
	"sync"
	"time"
)

// mmaHistorySamples bounds the arbitration fault interval history used for
// the moving average.
const mmaHistorySamples = 20

// arbTracker maintains a moving average of the inter-arrival time of EMEM
// arbitration faults, as a coarse health signal for how hard the memory
// controller is being thrashed.
//
// The writer runs in the deferred logging context, the reader in the
// diagnostics read context; both share the one mutex. The critical
// sections are short and bounded by the history size, so holding the lock
// briefly from the non-blocking deferred context is fine.
type arbTracker struct {
	mu        sync.Mutex
	intervals [mmaHistorySamples]time.Duration
	next      int // ring slot receiving the next interval
	count     int // populated ring slots
	last      time.Time
}

// record notes an arbitration fault occurring at time t, recording the
// interval since the previous occurrence and evicting the oldest interval
// once the history is full. The very first occurrence only establishes the
// reference timestamp.
func (a *arbTracker) record(t time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last.IsZero() {
		a.last = t
		return
	}
	a.intervals[a.next] = t.Sub(a.last)
	a.last = t
	a.next = (a.next + 1) % mmaHistorySamples
	if a.count < mmaHistorySamples {
		a.count++
	}
}

// average returns the arithmetic mean over the currently populated history
// slots, or zero while the history is still empty.
func (a *arbTracker) average() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		return 0
	}
	var sum time.Duration
	for idx := 0; idx < a.count; idx++ {
		sum += a.intervals[idx]
	}
	return sum / time.Duration(a.count)
}

// ArbitrationAverage returns the current moving average of the interval
// between successive EMEM arbitration faults, over a bounded recent
// history. It returns zero as long as fewer than two arbitration faults
// have been seen. Safe to call from the diagnostics read context at any
// time.
func (c *Controller) ArbitrationAverage() time.Duration {
	return c.arb.average()
}
