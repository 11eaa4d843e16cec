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
	"github.com/evochora/evochora/pkg/vm/environment"
	"github.com/evochora/evochora/pkg/vm/organism"
)

// registerState installs lifecycle opcodes: FORK (spawn a child organism)
// and DIE (voluntary death).
func registerState(r *Registry) {
	r.register(&Opcode{
		ID: 0x70, Mnemonic: "FORK", Family: "state",
		Signature: Signature{VECTOR},
		BaseCost:  4,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
			target := resolveTarget(inst, inst.Operands[0].Vector, rt)
			//
			childEnergy := org.Energy / 2
			org.Energy -= childEnergy
			//
			child := organism.New(rt.NextOrganismID(), org.ProgramID, target, org.DV, org.Registers, childEnergy)
			copy(child.DR, org.DR)
			copy(child.PR, org.PR)
			copy(child.FPR, org.FPR)
			//
			for i := range org.LR {
				child.LR[i] = org.LR[i].Clone()
			}
			//
			rt.Spawn(child)
		},
	})
	r.register(&Opcode{
		ID: 0x73, Mnemonic: "ATTACK", Family: "state",
		Signature: Signature{VECTOR},
		BaseCost:  3,
		Execute: func(inst *Instance, _ *organism.Organism, env *environment.Environment, rt Runtime) {
			target := resolveTarget(inst, inst.Operands[0].Vector, rt)
			//
			owner := env.OwnerOf(target)
			if owner != 0 {
				rt.Kill(owner)
			}
		},
	})
	r.register(&Opcode{
		ID: 0x71, Mnemonic: "DIE", Family: "state",
		Signature: Signature{},
		BaseCost:  0,
		Execute: func(_ *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			org.Kill()
		},
	})
	r.register(&Opcode{
		ID: 0x72, Mnemonic: "SYNC", Family: "state",
		Signature: Signature{},
		BaseCost:  0,
		Execute:   func(*Instance, *organism.Organism, *environment.Environment, Runtime) {},
	})
}
