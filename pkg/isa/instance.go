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
	"github.com/evochora/evochora/pkg/artifact"
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/environment"
	"github.com/evochora/evochora/pkg/vm/organism"
	"github.com/evochora/evochora/pkg/word"
)

// Operand is one opcode operand, decoded at plan time per its Signature
// entry's OperandKind.
type Operand struct {
	Kind     OperandKind
	Register organism.RegisterID
	Word     word.Molecule       // IMMEDIATE
	Vector   vector.Coord        // VECTOR, LABEL (a resolved coordinate delta)
	Location uint32              // LOCATION_REGISTER index
	Stack    organism.StackValue // STACK, popped at plan time
}

// Instance is a planned, ready-to-execute instruction: decoded operands plus
// the write-set used for conflict resolution (spec.md §4.12 Phase 1).
type Instance struct {
	Opcode   *Opcode
	Operands []Operand
	// IPAfterFetch is the coordinate of the instruction's first operand
	// slot: the linker's reference point for LABEL deltas (spec.md §4.7).
	IPAfterFetch vector.Coord
	// NextIP is where the organism's ip lands after this instruction,
	// absent any jump performed by Execute.
	NextIP vector.Coord
	// Writes lists the environment coordinates this instruction intends to
	// mutate, recorded during planning for conflict resolution.
	Writes []vector.Coord
	// Status carries the organism's conflict/precondition outcome for this
	// instruction, set during Phase 2 (Resolve).
	Status organism.Status
}

// Runtime is the subset of scheduler-level services an opcode's Execute
// function may need, kept here (not imported from the scheduler package) to
// avoid a dependency cycle.
type Runtime interface {
	Artifact() *artifact.ProgramArtifact
	Spawn(o *organism.Organism)
	Kill(id uint32)
	NextOrganismID() uint32
	WorldDims() int
	Shape() vector.Coord
	Toroidal() bool
}

// fetcher walks machine words forward from a starting coordinate along a
// direction vector, mirroring Organism.fetch_argument (spec.md §4.11).
type fetcher struct {
	env    *environment.Environment
	cursor vector.Coord
	dv     vector.Coord
}

func newFetcher(env *environment.Environment, start, dv vector.Coord) *fetcher {
	return &fetcher{env: env, cursor: start.Clone(), dv: dv}
}

func (f *fetcher) next() word.Molecule {
	m := f.env.Get(f.cursor)
	f.cursor = f.cursor.Add(f.dv)
	//
	return m
}

func (f *fetcher) nextVector(dims int) vector.Coord {
	c := vector.Zero(dims)
	for i := 0; i < dims; i++ {
		c[i] = f.next().Value
	}
	//
	return c
}

// decodeOperands reads op's signature from the environment starting just
// after the opcode word, popping STACK operands from org's data stack. It
// returns the decoded operands and the coordinate immediately following the
// opcode word (IPAfterFetch) and the coordinate after the whole instruction
// (the default NextIP).
func decodeOperands(op *Opcode, org *organism.Organism, env *environment.Environment) ([]Operand, vector.Coord, vector.Coord) {
	opcodeSlot := org.IP.Clone()
	ipAfterFetch := opcodeSlot.Add(org.DV)
	f := newFetcher(env, ipAfterFetch, org.DV)
	//
	operands := make([]Operand, len(op.Signature))
	dims := org.IP.Dims()
	//
	for i, kind := range op.Signature {
		switch kind {
		case REGISTER:
			w := f.next()
			operands[i] = Operand{Kind: kind, Register: organism.RegisterID(w.Value)}
		case IMMEDIATE:
			operands[i] = Operand{Kind: kind, Word: f.next()}
		case LOCATION_REGISTER:
			w := f.next()
			operands[i] = Operand{Kind: kind, Location: uint32(w.Value)}
		case VECTOR:
			operands[i] = Operand{Kind: kind, Vector: f.nextVector(dims)}
		case LABEL:
			operands[i] = Operand{Kind: kind, Vector: f.nextVector(dims)}
		case STACK:
			if v, ok := org.DataStack.TryPop(); ok {
				operands[i] = Operand{Kind: kind, Stack: v}
			}
		}
	}
	//
	return operands, ipAfterFetch, f.cursor
}
