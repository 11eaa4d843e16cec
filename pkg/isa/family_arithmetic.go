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

// registerArithmetic installs the arithmetic family: two-operand opcodes of
// the form `OP dest, src` where dest is always a register and src is a
// register or an immediate, plus the single-operand NEG.
func registerArithmetic(r *Registry) {
	binop := func(id int32, mnem string, fn func(a, b int32) int32) *Opcode {
		return &Opcode{
			ID: id, Mnemonic: mnem, Family: "arithmetic",
			Signature: Signature{REGISTER, REGISTER},
			BaseCost:  1,
			Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
				a := readValue(inst.Operands[0], org)
				b := readValue(inst.Operands[1], org)
				writeValue(inst.Operands[0], org, fn(a, b))
			},
		}
	}
	immop := func(id int32, mnem string, fn func(a, b int32) int32) *Opcode {
		return &Opcode{
			ID: id, Mnemonic: mnem, Family: "arithmetic",
			Signature: Signature{REGISTER, IMMEDIATE},
			BaseCost:  1,
			Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
				a := readValue(inst.Operands[0], org)
				b := readValue(inst.Operands[1], org)
				writeValue(inst.Operands[0], org, fn(a, b))
			},
		}
	}
	//
	r.register(binop(0x10, "ADD", func(a, b int32) int32 { return a + b }))
	r.register(immop(0x11, "ADDI", func(a, b int32) int32 { return a + b }))
	r.register(binop(0x12, "SUB", func(a, b int32) int32 { return a - b }))
	r.register(immop(0x13, "SUBI", func(a, b int32) int32 { return a - b }))
	r.register(binop(0x14, "MUL", func(a, b int32) int32 { return a * b }))
	r.register(immop(0x15, "MULI", func(a, b int32) int32 { return a * b }))
	r.register(binop(0x16, "DIV", func(a, b int32) int32 {
		if b == 0 {
			return 0
		}
		//
		return a / b
	}))
	r.register(immop(0x17, "DIVI", func(a, b int32) int32 {
		if b == 0 {
			return 0
		}
		//
		return a / b
	}))
	r.register(binop(0x18, "MOD", func(a, b int32) int32 {
		if b == 0 {
			return 0
		}
		//
		return a % b
	}))
	r.register(&Opcode{
		ID: 0x19, Mnemonic: "NEG", Family: "arithmetic",
		Signature: Signature{REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			writeValue(inst.Operands[0], org, -readValue(inst.Operands[0], org))
		},
	})
}
