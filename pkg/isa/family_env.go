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
	"github.com/evochora/evochora/pkg/word"
)

// pokeTarget canonicalizes an absolute POKE/PEEK-family coordinate operand
// against env's addressing mode.
func pokeTarget(vec vector.Coord, env *environment.Environment) vector.Coord {
	return env.Canonicalize(vec)
}

// registerEnv installs the environment-interaction family: reading and
// writing grid cells at an absolute coordinate.
func registerEnv(r *Registry) {
	r.register(&Opcode{
		ID: 0x60, Mnemonic: "POKE", Family: "env",
		Signature: Signature{VECTOR, IMMEDIATE},
		BaseCost:  2,
		Targets: func(inst *Instance, _ *organism.Organism, env *environment.Environment) []vector.Coord {
			return []vector.Coord{pokeTarget(inst.Operands[0].Vector, env)}
		},
		Execute: func(inst *Instance, _ *organism.Organism, env *environment.Environment, _ Runtime) {
			target := pokeTarget(inst.Operands[0].Vector, env)
			env.Set(target, inst.Operands[1].Word)
		},
	})
	r.register(&Opcode{
		ID: 0x61, Mnemonic: "PEEK", Family: "env",
		Signature: Signature{VECTOR, REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, env *environment.Environment, _ Runtime) {
			target := pokeTarget(inst.Operands[0].Vector, env)
			writeValue(inst.Operands[1], org, env.Get(target).Value)
		},
	})
	r.register(&Opcode{
		ID: 0x62, Mnemonic: "PLACEW", Family: "env",
		Signature: Signature{VECTOR, IMMEDIATE},
		BaseCost:  2,
		Targets: func(inst *Instance, _ *organism.Organism, env *environment.Environment) []vector.Coord {
			return []vector.Coord{pokeTarget(inst.Operands[0].Vector, env)}
		},
		Precondition: func(inst *Instance, _ *organism.Organism, env *environment.Environment) organism.Status {
			target := pokeTarget(inst.Operands[0].Vector, env)
			if !env.Get(target).IsEmpty() {
				return organism.StatusTargetOccupiedExpectedEmpty
			}
			//
			return organism.StatusOK
		},
		Execute: func(inst *Instance, _ *organism.Organism, env *environment.Environment, _ Runtime) {
			if inst.Status == organism.StatusTargetOccupiedExpectedEmpty {
				return
			}
			//
			target := pokeTarget(inst.Operands[0].Vector, env)
			env.Set(target, inst.Operands[1].Word)
		},
	})
	r.register(&Opcode{
		ID: 0x63, Mnemonic: "TAKE", Family: "env",
		Signature: Signature{VECTOR, REGISTER},
		BaseCost:  1,
		Targets: func(inst *Instance, _ *organism.Organism, env *environment.Environment) []vector.Coord {
			return []vector.Coord{pokeTarget(inst.Operands[0].Vector, env)}
		},
		Precondition: func(inst *Instance, _ *organism.Organism, env *environment.Environment) organism.Status {
			target := pokeTarget(inst.Operands[0].Vector, env)
			if env.Get(target).IsEmpty() {
				return organism.StatusTargetEmptyExpectedOccupied
			}
			//
			return organism.StatusOK
		},
		Execute: func(inst *Instance, org *organism.Organism, env *environment.Environment, _ Runtime) {
			if inst.Status == organism.StatusTargetEmptyExpectedOccupied {
				return
			}
			//
			target := pokeTarget(inst.Operands[0].Vector, env)
			writeValue(inst.Operands[1], org, env.Get(target).Value)
			env.Set(target, word.Empty)
		},
	})
}
