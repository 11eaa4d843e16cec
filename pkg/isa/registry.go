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
	"fmt"
	"strings"

	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/environment"
	"github.com/evochora/evochora/pkg/vm/organism"
)

// TargetsFunc computes the set of environment coordinates an instance
// intends to write, used for conflict detection (spec.md §4.12 Phase 1.3).
// Opcodes that never touch the environment leave this nil.
type TargetsFunc func(inst *Instance, org *organism.Organism, env *environment.Environment) []vector.Coord

// PreconditionFunc evaluates an opcode-specific precondition against the
// pre-tick environment at resolve time (spec.md §4.12 Phase 2). The default
// (nil) always reports StatusOK.
type PreconditionFunc func(inst *Instance, org *organism.Organism, env *environment.Environment) organism.Status

// ExecuteFunc performs an opcode's committed side effects (spec.md §4.12
// Phase 3): register/stack/env mutation and ip/dv update. rt is nil-safe to
// call only the methods the opcode actually needs.
type ExecuteFunc func(inst *Instance, org *organism.Organism, env *environment.Environment, rt Runtime)

// Opcode is one catalog entry: a numeric id, mnemonic, operand signature,
// planner/execute behavior and base energy cost (spec.md §4.9).
type Opcode struct {
	ID       int32
	Mnemonic string
	Family   string
	Signature
	BaseCost int64

	Targets      TargetsFunc
	Precondition PreconditionFunc
	Execute      ExecuteFunc

	// CustomPlan overrides generic signature-driven decoding for opcodes
	// whose word layout isn't a fixed sequence of signature entries (e.g.
	// CALL's variable-arity WITH-bound register list). When set, Signature
	// is descriptive only and Length/emission must be computed specially
	// by the caller (see the layout engine's CALL special-case).
	CustomPlan func(op *Opcode, org *organism.Organism, env *environment.Environment) *Instance
}

// Plan decodes this opcode's operands starting at org's ip, producing a
// ready-to-resolve Instance. It never mutates org or env.
func (op *Opcode) Plan(org *organism.Organism, env *environment.Environment) *Instance {
	if op.CustomPlan != nil {
		inst := op.CustomPlan(op, org, env)
		if op.Targets != nil {
			inst.Writes = op.Targets(inst, org, env)
		}
		//
		return inst
	}
	//
	operands, ipAfterFetch, nextIP := decodeOperands(op, org, env)
	//
	inst := &Instance{
		Opcode:       op,
		Operands:     operands,
		IPAfterFetch: ipAfterFetch,
		NextIP:       nextIP,
	}
	//
	if op.Targets != nil {
		inst.Writes = op.Targets(inst, org, env)
	}
	//
	return inst
}

// Registry is the process-wide immutable opcode catalog.
type Registry struct {
	byID   map[int32]*Opcode
	byName map[string]*Opcode
}

// NewRegistry builds a fresh, fully-populated registry. Called once at
// startup; the result is never mutated afterward.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[int32]*Opcode), byName: make(map[string]*Opcode)}
	//
	registerArithmetic(r)
	registerBitwise(r)
	registerData(r)
	registerStack(r)
	registerConditional(r)
	registerControl(r)
	registerEnv(r)
	registerState(r)
	registerVector(r)
	registerLocation(r)
	//
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry instance.
func Default() *Registry { return defaultRegistry }

// register adds op to the catalog. Panics on a duplicate id or mnemonic:
// catalog construction is a startup-time invariant, not a runtime error.
func (r *Registry) register(op *Opcode) {
	if _, exists := r.byID[op.ID]; exists {
		panic(fmt.Sprintf("isa: duplicate opcode id %d", op.ID))
	}
	//
	name := strings.ToUpper(op.Mnemonic)
	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("isa: duplicate mnemonic %q", name))
	}
	//
	r.byID[op.ID] = op
	r.byName[name] = op
}

// ByID looks up an opcode by its numeric id.
func (r *Registry) ByID(id int32) (*Opcode, bool) {
	op, ok := r.byID[id]
	return op, ok
}

// ByMnemonic looks up an opcode by mnemonic, case-insensitively.
func (r *Registry) ByMnemonic(name string) (*Opcode, bool) {
	op, ok := r.byName[strings.ToUpper(name)]
	return op, ok
}

// Length returns the word length (including the opcode word itself) of the
// named opcode for a world of the given dimensionality, or 0 if unknown.
func (r *Registry) Length(name string, dims int) int {
	op, ok := r.ByMnemonic(name)
	if !ok {
		return 0
	}
	//
	return 1 + op.Signature.Length(dims)
}
