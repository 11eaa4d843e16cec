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

// registerConditional installs the conditional-branch family: single- and
// two-register comparisons against a label target.
func registerConditional(r *Registry) {
	cond1 := func(id int32, mnem string, fn func(a int32) bool) *Opcode {
		return &Opcode{
			ID: id, Mnemonic: mnem, Family: "conditional",
			Signature: Signature{REGISTER, LABEL},
			BaseCost:  1,
			Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
				if fn(readValue(inst.Operands[0], org)) {
					org.IP = resolveTarget(inst, inst.Operands[1].Vector, rt)
				}
			},
		}
	}
	cond2 := func(id int32, mnem string, fn func(a, b int32) bool) *Opcode {
		return &Opcode{
			ID: id, Mnemonic: mnem, Family: "conditional",
			Signature: Signature{REGISTER, REGISTER, LABEL},
			BaseCost:  1,
			Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
				a := readValue(inst.Operands[0], org)
				b := readValue(inst.Operands[1], org)
				//
				if fn(a, b) {
					org.IP = resolveTarget(inst, inst.Operands[2].Vector, rt)
				}
			},
		}
	}
	//
	r.register(cond1(0x50, "JZ", func(a int32) bool { return a == 0 }))
	r.register(cond1(0x51, "JNZ", func(a int32) bool { return a != 0 }))
	r.register(cond2(0x52, "JEQ", func(a, b int32) bool { return a == b }))
	r.register(cond2(0x53, "JNE", func(a, b int32) bool { return a != b }))
	r.register(cond2(0x54, "JLT", func(a, b int32) bool { return a < b }))
	r.register(cond2(0x55, "JGT", func(a, b int32) bool { return a > b }))
}
