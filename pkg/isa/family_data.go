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

// registerData installs the data-movement family: loading literals into
// registers and copying between them.
func registerData(r *Registry) {
	r.register(&Opcode{
		ID: 0x30, Mnemonic: "SETI", Family: "data",
		Signature: Signature{REGISTER, IMMEDIATE},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			writeValue(inst.Operands[0], org, readValue(inst.Operands[1], org))
		},
	})
	r.register(&Opcode{
		ID: 0x31, Mnemonic: "SETR", Family: "data",
		Signature: Signature{REGISTER, REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			writeValue(inst.Operands[0], org, readValue(inst.Operands[1], org))
		},
	})
	r.register(&Opcode{
		ID: 0x32, Mnemonic: "CLR", Family: "data",
		Signature: Signature{REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			writeValue(inst.Operands[0], org, 0)
		},
	})
	r.register(&Opcode{
		ID: 0x33, Mnemonic: "XCHG", Family: "data",
		Signature: Signature{REGISTER, REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			a := readValue(inst.Operands[0], org)
			b := readValue(inst.Operands[1], org)
			writeValue(inst.Operands[0], org, b)
			writeValue(inst.Operands[1], org, a)
		},
	})
}
