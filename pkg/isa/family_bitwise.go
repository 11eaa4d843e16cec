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

// registerBitwise installs the bitwise family: AND/OR/XOR/NOT/SHL/SHR over
// the DATA-typed payload of a register.
func registerBitwise(r *Registry) {
	binop := func(id int32, mnem string, fn func(a, b int32) int32) *Opcode {
		return &Opcode{
			ID: id, Mnemonic: mnem, Family: "bitwise",
			Signature: Signature{REGISTER, REGISTER},
			BaseCost:  1,
			Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
				a := readValue(inst.Operands[0], org)
				b := readValue(inst.Operands[1], org)
				writeValue(inst.Operands[0], org, fn(a, b))
			},
		}
	}
	//
	r.register(binop(0x20, "AND", func(a, b int32) int32 { return a & b }))
	r.register(binop(0x21, "OR", func(a, b int32) int32 { return a | b }))
	r.register(binop(0x22, "XOR", func(a, b int32) int32 { return a ^ b }))
	r.register(binop(0x23, "SHL", func(a, b int32) int32 { return a << uint32(b&31) }))
	r.register(binop(0x24, "SHR", func(a, b int32) int32 { return a >> uint32(b&31) }))
	r.register(&Opcode{
		ID: 0x25, Mnemonic: "NOT", Family: "bitwise",
		Signature: Signature{REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			writeValue(inst.Operands[0], org, ^readValue(inst.Operands[0], org))
		},
	})
}
