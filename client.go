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

// Client identifies one hardware transaction source of the memory
// controller, such as a display scan-out unit or the GPU. The numeric ID is
// what the fault status word's source-id field indexes.
type Client struct {
	Name    string // human-readable client identity
	Swgroup string // software group the client belongs to
	ID      int    // transaction source id
}

// UnknownClient is the sentinel identity substituted whenever a fault's
// source-id field lies outside the chip's client table.
var UnknownClient = Client{Name: "unknown", Swgroup: "unknown", ID: -1}

// ClientTable maps transaction source ids to client identities. The table
// is indexed by client ID, so IDs must be contiguous starting at zero;
// [Controller] validation enforces this at registration.
type ClientTable []Client

// ByID returns the client with the given transaction source id, or
// [UnknownClient] for ids outside the table. It never panics on
// out-of-range ids.
func (ct ClientTable) ByID(id int) Client {
	if id < 0 || id >= len(ct) {
		return UnknownClient
	}
	return ct[id]
}
