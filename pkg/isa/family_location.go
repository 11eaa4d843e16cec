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

// registerLocation installs opcodes over LR, the location-register bank
// that stores a full d-coordinate rather than a scalar.
func registerLocation(r *Registry) {
	r.register(&Opcode{
		ID: 0x90, Mnemonic: "LSET", Family: "location",
		Signature: Signature{LOCATION_REGISTER, VECTOR},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
			idx := inst.Operands[0].Location
			if int(idx) >= len(org.LR) {
				return
			}
			//
			loc := resolveTarget(inst, inst.Operands[1].Vector, rt)
			org.LR[idx] = loc
		},
	})
	r.register(&Opcode{
		ID: 0x91, Mnemonic: "LJMP", Family: "location",
		Signature: Signature{LOCATION_REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
			idx := inst.Operands[0].Location
			if int(idx) >= len(org.LR) {
				return
			}
			//
			target := org.LR[idx].Clone()
			if rt.Toroidal() {
				target = vector.Mod(target, rt.Shape())
			}
			//
			org.IP = target
		},
	})
	r.register(&Opcode{
		ID: 0x92, Mnemonic: "LPUSH", Family: "location",
		Signature: Signature{LOCATION_REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			idx := inst.Operands[0].Location
			if int(idx) >= len(org.LR) {
				return
			}
			//
			org.DataStack.Push(organism.StackValue{Kind: organism.LocationValue, Location: org.LR[idx].Clone()})
		},
	})
	r.register(&Opcode{
		ID: 0x93, Mnemonic: "LPOP", Family: "location",
		Signature: Signature{LOCATION_REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			idx := inst.Operands[0].Location
			v, ok := org.DataStack.TryPop()
			//
			if !ok || int(idx) >= len(org.LR) {
				return
			}
			//
			org.LR[idx] = v.Location
		},
	})
}
