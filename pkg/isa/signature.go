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

// Package isa holds the process-wide, immutable catalog of opcodes
// (spec.md §4.9): their signatures, planners, executors and base energy
// costs. The registry is built once at startup and never mutated after;
// lookups require no locking.
package isa

// OperandKind classifies where an opcode's Nth operand word comes from.
type OperandKind uint8

const (
	// REGISTER operands occupy one word holding a register id.
	REGISTER OperandKind = iota
	// IMMEDIATE operands occupy one word: a packed (type, signed value)
	// molecule, used directly as a typed or bare numeric literal.
	IMMEDIATE
	// STACK operands consume no machine words; they are popped from the
	// organism's data stack at plan time.
	STACK
	// VECTOR operands occupy d words, one signed component per dimension.
	VECTOR
	// LABEL operands occupy d words: a linker-resolved coordinate delta.
	LABEL
	// LOCATION_REGISTER operands occupy one word holding an LR index.
	LOCATION_REGISTER
)

// Signature is the ordered operand-source list of one opcode.
type Signature []OperandKind

// Length returns the number of machine words this signature occupies after
// the opcode word itself, for a world of the given dimensionality.
func (s Signature) Length(dims int) int {
	n := 0
	//
	for _, k := range s {
		switch k {
		case VECTOR, LABEL:
			n += dims
		case STACK:
			// no machine words
		default:
			n++
		}
	}
	//
	return n
}
