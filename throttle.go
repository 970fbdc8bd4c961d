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

// MaxPrints caps how many times a single fault signature gets textually
// reported. Occurrences beyond the cap are still fully counted in the
// statistics. The counters persist until [Controller.ResetThrottle]; there
// is no automatic decay.
const MaxPrints = 5

// Silence suppresses all textual fault reporting when set, taking effect
// on the next decode. Statistics and report counters keep updating
// regardless.
func (c *Controller) Silence(silence bool) {
	c.silenced.Store(silence)
}

// Silenced reports whether textual fault reporting is currently
// suppressed.
func (c *Controller) Silenced() bool {
	return c.silenced.Load()
}

// ResetThrottle clears all per-signature report counters, so every fault
// signature may again be reported up to [MaxPrints] times.
func (c *Controller) ResetThrottle() {
	for idx := range c.prints {
		c.prints[idx].Store(0)
	}
}
