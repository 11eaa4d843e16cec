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
package organism

import (
	"github.com/evochora/evochora/pkg/util/collection/stack"
	"github.com/evochora/evochora/pkg/vector"
)

// StackValueKind tags the kind of value held on the data stack.
type StackValueKind uint8

const (
	ScalarValue StackValueKind = iota
	VectorValue
	LocationValue
)

// StackValue is one tagged entry of the data stack.
type StackValue struct {
	Kind     StackValueKind
	Scalar   int32
	Vector   vector.Coord
	Location vector.Coord
}

// Frame is a single call-stack entry pushed by CALL and popped by RET.
type Frame struct {
	ReturnIP    vector.Coord
	SavedDV     vector.Coord
	SavedPR     []int32
	FPRBindings map[uint32]RegisterID
}

// Status records the outcome of an organism's most recent planned
// instruction, as set during conflict resolution (spec.md §4.12).
type Status uint8

const (
	StatusOK Status = iota
	StatusFailure
	StatusWonExecution
	StatusLostLowerIDWon
	StatusTargetEmptyExpectedOccupied
	StatusTargetOccupiedExpectedEmpty
)

// Organism is a single stored-program entity executing on the grid.
type Organism struct {
	ID        uint32
	ProgramID uint64

	IP vector.Coord
	DV vector.Coord

	DPs         []vector.Coord
	ActiveDPIdx int

	Registers RegisterFile
	DR        []int32
	PR        []int32
	FPR       []int32 // backing store only for unbound/top-level FPR slots
	LR        []vector.Coord

	DataStack *stack.Stack[StackValue]
	CallStack []*Frame

	Energy       int64
	Alive        bool
	LastFailure  bool
	LastStatus   Status
}

// New constructs a fresh organism at the given start position with the given
// register-file sizes and initial energy.
func New(id uint32, programID uint64, start, dv vector.Coord, rf RegisterFile, energy int64) *Organism {
	return &Organism{
		ID:          id,
		ProgramID:   programID,
		IP:          start.Clone(),
		DV:          dv.Clone(),
		DPs:         []vector.Coord{start.Clone()},
		ActiveDPIdx: 0,
		Registers:   rf,
		DR:          make([]int32, rf.NumDR),
		PR:          make([]int32, rf.NumPR),
		FPR:         make([]int32, rf.NumFPR),
		LR:          make([]vector.Coord, rf.NumLR),
		DataStack:   stack.NewStack[StackValue](),
		Energy:      energy,
		Alive:       true,
	}
}

// ActiveDP returns the currently active data pointer.
func (o *Organism) ActiveDP() vector.Coord {
	return o.DPs[o.ActiveDPIdx]
}

// SetActiveDP updates the currently active data pointer.
func (o *Organism) SetActiveDP(c vector.Coord) {
	o.DPs[o.ActiveDPIdx] = c
}

// resolvePhysical walks the FPR binding chain down the call stack until it
// lands on a DR or PR id, per spec.md §4.13.
func (o *Organism) resolvePhysical(id RegisterID) (RegisterID, bool) {
	level := len(o.CallStack) - 1
	//
	for {
		bank, _ := o.Registers.Classify(id)
		if bank != BankFPR {
			return id, true
		}
		//
		if level < 0 {
			// No frame to bind through: top-level FPR reference, routes to
			// its own backing store (e.g. a forked organism running without
			// an artifact; see ReadOperand/WriteOperand fallback).
			return id, true
		}
		//
		_, offset := o.Registers.Classify(id)
		bound, ok := o.CallStack[level].FPRBindings[offset]
		if !ok {
			return id, false
		}
		//
		id = bound
		level--
	}
}

// ReadOperand reads the value of a physical or FPR-bound register id.
func (o *Organism) ReadOperand(id RegisterID) (int32, bool) {
	resolved, ok := o.resolvePhysical(id)
	if !ok {
		return 0, false
	}
	//
	bank, offset := o.Registers.Classify(resolved)
	//
	switch bank {
	case BankDR:
		return o.DR[offset], true
	case BankPR:
		return o.PR[offset], true
	default:
		// Unbound top-level FPR: falls back to its own backing store so
		// that code compiled without call-site artifacts (see
		// spec.md §4.13 fallback) still behaves sensibly.
		return o.FPR[offset], true
	}
}

// WriteOperand writes value to a physical or FPR-bound register id.
func (o *Organism) WriteOperand(id RegisterID, value int32) bool {
	resolved, ok := o.resolvePhysical(id)
	if !ok {
		return false
	}
	//
	bank, offset := o.Registers.Classify(resolved)
	//
	switch bank {
	case BankDR:
		o.DR[offset] = value
	case BankPR:
		o.PR[offset] = value
	default:
		o.FPR[offset] = value
	}
	//
	return true
}

// PushFrame pushes a new call frame, snapshotting the current PR bank.
func (o *Organism) PushFrame(returnIP, savedDV vector.Coord, bindings map[uint32]RegisterID) {
	snapshot := make([]int32, len(o.PR))
	copy(snapshot, o.PR)
	//
	o.CallStack = append(o.CallStack, &Frame{
		ReturnIP:    returnIP,
		SavedDV:     savedDV,
		SavedPR:     snapshot,
		FPRBindings: bindings,
	})
}

// PopFrame pops the top call frame, restoring its saved PR bank, or reports
// false if the call stack is empty (RET underflow).
func (o *Organism) PopFrame() (*Frame, bool) {
	n := len(o.CallStack)
	if n == 0 {
		return nil, false
	}
	//
	frame := o.CallStack[n-1]
	o.CallStack = o.CallStack[:n-1]
	copy(o.PR, frame.SavedPR)
	//
	return frame, true
}

// Kill marks this organism as no longer alive.
func (o *Organism) Kill() {
	o.Alive = false
}
