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

// CallMnemonic is the mnemonic the layout engine, linker and emitter must
// special-case: a CALL instruction's word count depends on its WITH-bound
// argument count, which is not representable as a fixed Signature (spec.md
// §4.13's call-site binding list has no a priori bound).
const CallMnemonic = "CALL"

// registerControl installs NOP, JMP, CALL and RET.
func registerControl(r *Registry) {
	r.register(&Opcode{
		ID: 0x00, Mnemonic: "NOP", Family: "control",
		Signature: Signature{},
		BaseCost:  1,
		Execute:   func(*Instance, *organism.Organism, *environment.Environment, Runtime) {},
	})
	r.register(&Opcode{
		ID: 0x01, Mnemonic: "JMP", Family: "control",
		Signature: Signature{LABEL},
		BaseCost:  1,
		Execute: func(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
			org.IP = resolveTarget(inst, inst.Operands[0].Vector, rt)
		},
	})
	r.register(&Opcode{
		ID: 0x02, Mnemonic: CallMnemonic, Family: "control",
		Signature:  Signature{IMMEDIATE, LABEL},
		BaseCost:   2,
		CustomPlan: planCall,
		Execute:    execCall,
	})
	r.register(&Opcode{
		ID: 0x03, Mnemonic: "RET", Family: "control",
		Signature: Signature{},
		BaseCost:  1,
		Execute: func(_ *Instance, org *organism.Organism, _ *environment.Environment, _ Runtime) {
			frame, ok := org.PopFrame()
			if !ok {
				// RET underflow: the organism dies (spec.md §4.12 Phase 3.3).
				org.Kill()
				return
			}
			//
			org.IP = frame.ReturnIP
			org.DV = frame.SavedDV
		},
	})
}

// planCall decodes a CALL's variable-arity word layout: an argc word, the
// LABEL delta (d words), then argc REGISTER words naming the caller
// registers bound to the callee's FPR slots in order (spec.md §4.13). This
// binding data lives in the instruction's own words, so it survives
// unchanged even when an organism runs without its originating artifact
// (e.g. a forked child).
func planCall(op *Opcode, org *organism.Organism, env *environment.Environment) *Instance {
	opcodeSlot := org.IP.Clone()
	ipAfterFetch := opcodeSlot.Add(org.DV)
	f := newFetcher(env, ipAfterFetch, org.DV)
	//
	argcWord := f.next()
	argc := int(argcWord.Value)
	dims := org.IP.Dims()
	delta := f.nextVector(dims)
	//
	operands := make([]Operand, 0, 2+argc)
	operands = append(operands,
		Operand{Kind: IMMEDIATE, Word: argcWord},
		Operand{Kind: LABEL, Vector: delta},
	)
	//
	for i := 0; i < argc; i++ {
		w := f.next()
		operands = append(operands, Operand{Kind: REGISTER, Register: organism.RegisterID(w.Value)})
	}
	//
	return &Instance{
		Opcode:       op,
		Operands:     operands,
		IPAfterFetch: ipAfterFetch,
		NextIP:       f.cursor,
	}
}

func execCall(inst *Instance, org *organism.Organism, _ *environment.Environment, rt Runtime) {
	target := resolveTarget(inst, inst.Operands[1].Vector, rt)
	//
	bindings := make(map[uint32]organism.RegisterID, len(inst.Operands)-2)
	for k := 2; k < len(inst.Operands); k++ {
		bindings[uint32(k-2)] = inst.Operands[k].Register
	}
	//
	org.PushFrame(inst.NextIP, org.DV, bindings)
	org.IP = target
}
