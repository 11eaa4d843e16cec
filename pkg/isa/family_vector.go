// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package isa

import (
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/environment"
	"github.com/evochora/evochora/pkg/vm/organism"
)

// registerVector installs opcodes that manipulate an organism's direction
// vector and data pointers.
func registerVector(r *Registry) {
	r.register(&Opcode{
		ID: 0x80, Mnemonic: "SEEK", Family: "vector",
		Signature: Signature{VECTOR},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
			dv := inst.Operands[0].Vector.Clone()
			if rt.Toroidal() {
				dv = vector.Mod(dv, rt.Shape())
			}
			//
			org.DV = dv
		},
	})
	r.register(&Opcode{
		ID: 0x81, Mnemonic: "DPADD", Family: "vector",
		Signature: Signature{VECTOR},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
			next := org.ActiveDP().Add(inst.Operands[0].Vector)
			if rt.Toroidal() {
				next = vector.Mod(next, rt.Shape())
			}
			//
			org.SetActiveDP(next)
		},
	})
	r.register(&Opcode{
		ID: 0x82, Mnemonic: "DPNEW", Family: "vector",
		Signature: Signature{VECTOR},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
			start := org.ActiveDP().Add(inst.Operands[0].Vector)
			if rt.Toroidal() {
				start = vector.Mod(start, rt.Shape())
			}
			//
			org.DPs = append(org.DPs, start)
			org.ActiveDPIdx = len(org.DPs) - 1
		},
	})
	r.register(&Opcode{
		ID: 0x83, Mnemonic: "DPNEXT", Family: "vector",
		Signature: Signature{},
		BaseCost:  1,
		Execute: func(_ *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			if len(org.DPs) == 0 {
				return
			}
			//
			org.ActiveDPIdx = (org.ActiveDPIdx + 1) % len(org.DPs)
		},
	})
}
