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

// registerStack installs the data-stack family: push/pop/dup/swap over the
// organism's tagged value stack.
func registerStack(r *Registry) {
	r.register(&Opcode{
		ID: 0x40, Mnemonic: "PUSH", Family: "stack",
		Signature: Signature{REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			v := readValue(inst.Operands[0], org)
			org.DataStack.Push(organism.StackValue{Kind: organism.ScalarValue, Scalar: v})
		},
	})
	r.register(&Opcode{
		ID: 0x41, Mnemonic: "POP", Family: "stack",
		Signature: Signature{REGISTER},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			if v, ok := org.DataStack.TryPop(); ok {
				writeValue(inst.Operands[0], org, v.Scalar)
			}
		},
	})
	r.register(&Opcode{
		ID: 0x42, Mnemonic: "DUP", Family: "stack",
		Signature: Signature{},
		BaseCost:  1,
		Execute: func(_ *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			if org.DataStack.IsEmpty() {
				return
			}
			//
			top := org.DataStack.Peek(0)
			org.DataStack.Push(top)
		},
	})
	r.register(&Opcode{
		ID: 0x43, Mnemonic: "SWAP", Family: "stack",
		Signature: Signature{},
		BaseCost:  1,
		Execute: func(_ *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			a, ok1 := org.DataStack.TryPop()
			b, ok2 := org.DataStack.TryPop()
			//
			if !ok1 || !ok2 {
				if ok1 {
					org.DataStack.Push(a)
				}
				//
				return
			}
			//
			org.DataStack.Push(a)
			org.DataStack.Push(b)
		},
	})
	r.register(&Opcode{
		ID: 0x44, Mnemonic: "DROP", Family: "stack",
		Signature: Signature{},
		BaseCost:  1,
		Execute: func(_ *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			org.DataStack.TryPop()
		},
	})
}
