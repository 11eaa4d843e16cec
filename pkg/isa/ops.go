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
	"github.com/evochora/evochora/pkg/vm/organism"
)

// resolveTarget turns a LABEL operand's linker-resolved delta into an
// absolute coordinate relative to the instruction's first-operand slot,
// applying toroidal reduction when the world wraps (spec.md §4.7).
func resolveTarget(inst *Instance, delta vector.Coord, rt Runtime) vector.Coord {
	target := inst.IPAfterFetch.Add(delta)
	if rt.Toroidal() {
		target = vector.Mod(target, rt.Shape())
	}
	//
	return target
}

// readValue extracts a scalar value from any value-bearing operand kind,
// shared by every family that accepts REGISTER/IMMEDIATE/STACK operands
// interchangeably.
func readValue(op Operand, org *organism.Organism) int32 {
	switch op.Kind {
	case REGISTER:
		v, _ := org.ReadOperand(op.Register)
		return v
	case IMMEDIATE:
		return op.Word.Value
	case STACK:
		return op.Stack.Scalar
	default:
		return 0
	}
}

// writeValue stores value into a REGISTER-kind operand; a no-op for any
// other operand kind (destinations are always registers in this catalog).
func writeValue(op Operand, org *organism.Organism, value int32) {
	if op.Kind == REGISTER {
		org.WriteOperand(op.Register, value)
	}
}
