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

// Package linker resolves every label reference the Layout Engine left
// unsettled into a coordinate delta relative to its instruction's
// IP-after-fetch, and records CALL call-site bindings (spec.md §4.7).
package linker

import (
	"github.com/evochora/evochora/pkg/compiler/ir"
	"github.com/evochora/evochora/pkg/compiler/layout"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/source"
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/organism"
)

// Result is the linked program, ready for the Emitter.
type Result struct {
	Program *ir.Program
	// CallSiteBindings maps a CALL instruction's linear address to the
	// ordered caller register ids bound to its target's formal parameters.
	CallSiteBindings map[int64][]organism.RegisterID
}

type linker struct {
	lay      *layout.Result
	shape    vector.Coord
	toroidal bool
	diags    *source.Diagnostics
	bindings map[int64][]organism.RegisterID
}

// Link resolves prog's label operands against lay, a completed layout pass
// over the same item sequence.
func Link(prog *ir.Program, lay *layout.Result, shape vector.Coord, toroidal bool) (*Result, *source.Diagnostics) {
	l := &linker{
		lay:      lay,
		shape:    shape,
		toroidal: toroidal,
		diags:    &source.Diagnostics{},
		bindings: make(map[int64][]organism.RegisterID),
	}
	//
	items := make([]ir.Item, len(prog.Items))
	copy(items, prog.Items)
	//
	for i := range items {
		if items[i].Kind != ir.ItemInstruction {
			continue
		}
		//
		l.linkInstruction(i, &items[i])
	}
	//
	return &Result{Program: &ir.Program{Items: items}, CallSiteBindings: l.bindings}, l.diags
}

func (l *linker) canon(c vector.Coord) vector.Coord {
	if l.toroidal {
		return vector.Mod(c, l.shape)
	}
	//
	return c
}

func (l *linker) linkInstruction(idx int, item *ir.Item) {
	placement := l.lay.Placements[idx]
	ipAfterFetch := l.canon(placement.Coord.Add(placement.DV))
	//
	operands := make([]ir.Operand, len(item.Operands))
	copy(operands, item.Operands)
	//
	for i := range operands {
		if operands[i].Kind != ir.OperandLabel {
			continue
		}
		//
		operands[i].Vector = l.resolveLabel(item.Origin, operands[i].LabelName, ipAfterFetch)
	}
	//
	item.Operands = operands
	//
	if item.Mnemonic == isa.CallMnemonic {
		l.recordCallSite(idx, item)
	}
}

// resolveLabel converts a label name into a coordinate delta relative to
// ipAfterFetch, taking the toroidal shortest path when applicable.
func (l *linker) resolveLabel(origin source.Origin, name string, ipAfterFetch vector.Coord) []int32 {
	addr, ok := l.lay.LabelAddress[name]
	if !ok {
		l.diags.Add(origin, "undefined label %q", name)
		return make([]int32, ipAfterFetch.Dims())
	}
	//
	target, ok := l.lay.LinearToCoord[addr]
	if !ok {
		l.diags.Add(origin, "label %q resolved to an address with no coordinate", name)
		return make([]int32, ipAfterFetch.Dims())
	}
	//
	var delta vector.Coord
	if l.toroidal {
		delta = vector.ShortestDelta(ipAfterFetch, target, l.shape)
	} else {
		delta = target.Sub(ipAfterFetch)
	}
	//
	return []int32(delta)
}

// recordCallSite captures the caller register ids bound to item's target
// (item.Operands[1:], already resolved to RegisterIDs by pkg/compiler/ir's
// lowering pass), keyed by the CALL's own linear address.
func (l *linker) recordCallSite(idx int, item *ir.Item) {
	placement := l.lay.Placements[idx]
	//
	addr, ok := l.lay.CoordToLinear[placement.Coord.String()]
	if !ok {
		l.diags.Add(item.Origin, "internal: CALL at %s has no assigned address", placement.Coord)
		return
	}
	//
	ids := make([]organism.RegisterID, 0, len(item.Operands)-1)
	for _, op := range item.Operands[1:] {
		ids = append(ids, op.RegisterID)
	}
	//
	l.bindings[addr] = ids
}
