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

// Package profile loads chip generation descriptions from YAML, for
// decoding memory controller faults offline where no chip backend is
// compiled in, such as when post-morteming a register dump captured on a
// crashed system.
package profile

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/thediveo/mcerrs"
)

// Profile describes a chip generation in data form: everything a fault
// controller needs except the register transport.
type Profile struct {
	Chip         string         `yaml:"chip"`
	IntMask      uint32         `yaml:"intmask"`
	Faults       []FaultSpec    `yaml:"faults"`
	Clients      []ClientSpec   `yaml:"clients"`
	Descriptions map[int]string `yaml:"descriptions"`
}

// FaultSpec describes one fault descriptor; see [mcerrs.Fault].
type FaultSpec struct {
	Sig     uint32   `yaml:"sig"`
	Msg     string   `yaml:"msg"`
	Flags   []string `yaml:"flags,omitempty"`
	StatReg uint32   `yaml:"statreg,omitempty"`
	AddrReg uint32   `yaml:"addrreg,omitempty"`
}

// ClientSpec describes one client; the transaction source id is implied by
// the list position.
type ClientSpec struct {
	Name    string `yaml:"name"`
	Swgroup string `yaml:"swgroup"`
}

// flagNames maps the YAML flag spellings to the descriptor capability
// flags.
var flagNames = map[string]mcerrs.FaultFlags{
	"smmu":       mcerrs.HasSMMUInfo,
	"no-status":  mcerrs.NoStatusRegs,
	"two-status": mcerrs.TwoStatusRegs,
}

// Load reads a chip profile in YAML format. Unknown fields are rejected,
// as a typo in a profile otherwise silently decodes faults all wrong.
func Load(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("malformed chip profile: %w", err)
	}
	if p.Chip == "" {
		return nil, fmt.Errorf("chip profile without chip name")
	}
	return &p, nil
}

// FaultTable converts the profile's fault specifications into the
// descriptor table.
func (p *Profile) FaultTable() ([]mcerrs.Fault, error) {
	faults := make([]mcerrs.Fault, 0, len(p.Faults))
	for _, spec := range p.Faults {
		var flags mcerrs.FaultFlags
		for _, name := range spec.Flags {
			flag, ok := flagNames[name]
			if !ok {
				return nil, fmt.Errorf("chip profile %s: fault 0x%08x: unknown flag %q",
					p.Chip, spec.Sig, name)
			}
			flags |= flag
		}
		faults = append(faults, mcerrs.Fault{
			Sig:     spec.Sig,
			Msg:     spec.Msg,
			Flags:   flags,
			StatReg: spec.StatReg,
			AddrReg: spec.AddrReg,
		})
	}
	return faults, nil
}

// ClientTable converts the profile's client specifications into the client
// table, assigning transaction source ids in list order.
func (p *Profile) ClientTable() mcerrs.ClientTable {
	clients := make(mcerrs.ClientTable, 0, len(p.Clients))
	for id, spec := range p.Clients {
		clients = append(clients, mcerrs.Client{
			Name: spec.Name, Swgroup: spec.Swgroup, ID: id,
		})
	}
	return clients
}

// DescriptionTable expands the profile's sparse bit descriptions into the
// full 32-slot interrupt description table.
func (p *Profile) DescriptionTable() ([]string, error) {
	descriptions := make([]string, mcerrs.IntrDescriptionSlots)
	for bit, desc := range p.Descriptions {
		if bit < 0 || bit >= mcerrs.IntrDescriptionSlots {
			return nil, fmt.Errorf("chip profile %s: no such interrupt status bit %d",
				p.Chip, bit)
		}
		descriptions[bit] = desc
	}
	return descriptions, nil
}

// Controller registers the profiled chip generation over the given
// register transport and returns the running fault controller, using the
// generic chip operations throughout.
func (p *Profile) Controller(regs mcerrs.Registers, sink io.Writer) (*mcerrs.Controller, error) {
	faults, err := p.FaultTable()
	if err != nil {
		return nil, err
	}
	descriptions, err := p.DescriptionTable()
	if err != nil {
		return nil, err
	}
	return mcerrs.New(mcerrs.Config{
		Ops: &mcerrs.GenericOps{
			Faults:  faults,
			Regs:    regs,
			IntMask: p.IntMask,
		},
		Registers:    regs,
		Faults:       faults,
		Clients:      p.ClientTable(),
		Descriptions: descriptions,
		Sink:         sink,
	})
}
