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
package layout_test

import (
	"testing"

	"github.com/evochora/evochora/pkg/compiler/ir"
	"github.com/evochora/evochora/pkg/compiler/layout"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/vector"
)

func nopItem() ir.Item {
	return ir.Item{Kind: ir.ItemInstruction, Mnemonic: "NOP"}
}

func TestLayoutSequentialInstructionsAdvanceAlongDefaultDV(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{nopItem(), nopItem()}}
	//
	result, diags := layout.Run(prog, isa.Default(), vector.New(16, 16), true)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	//
	if !result.Placements[0].Coord.Equals(vector.New(0, 0)) {
		t.Fatalf("expected first NOP at (0,0), got %s", result.Placements[0].Coord)
	}
	if !result.Placements[1].Coord.Equals(vector.New(1, 0)) {
		t.Fatalf("expected second NOP at (1,0), got %s", result.Placements[1].Coord)
	}
	//
	if len(result.CoordToLinear) != 2 {
		t.Fatalf("expected 2 addressed cells, got %d", len(result.CoordToLinear))
	}
}

func TestLayoutOrgAndDirOverrideCursor(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{
		{Kind: ir.ItemDirective, DirectiveName: "ORG", DirectiveArgs: []ir.Operand{{Kind: ir.OperandVector, Vector: []int32{5, 5}}}},
		{Kind: ir.ItemDirective, DirectiveName: "DIR", DirectiveArgs: []ir.Operand{{Kind: ir.OperandVector, Vector: []int32{0, 1}}}},
		nopItem(),
	}}
	//
	result, diags := layout.Run(prog, isa.Default(), vector.New(16, 16), true)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	//
	p := result.Placements[2]
	if !p.Coord.Equals(vector.New(5, 5)) {
		t.Fatalf("expected NOP at (5,5), got %s", p.Coord)
	}
	if !p.DV.Equals(vector.New(0, 1)) {
		t.Fatalf("expected dv (0,1) in effect, got %s", p.DV)
	}
}

func TestLayoutPlaceDoesNotAdvanceCursor(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{
		{Kind: ir.ItemDirective, DirectiveName: "PLACE", DirectiveArgs: []ir.Operand{
			{Kind: ir.OperandTypedImmediate, TypedName: "ENERGY", Immediate: 50},
			{Kind: ir.OperandVector, Vector: []int32{3, 3}},
		}},
		nopItem(),
	}}
	//
	result, diags := layout.Run(prog, isa.Default(), vector.New(16, 16), true)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	//
	if m, ok := result.Placed[vector.New(3, 3).String()]; !ok || m.Value != 50 {
		t.Fatalf("expected placed object ENERGY:50 at (3,3), got %v ok=%v", m, ok)
	}
	//
	if !result.Placements[1].Coord.Equals(vector.New(0, 0)) {
		t.Fatalf(".PLACE must not advance the cursor, NOP should still be at origin, got %s", result.Placements[1].Coord)
	}
}

func TestLayoutRecordsLabelAddress(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{
		nopItem(),
		{Kind: ir.ItemLabel, LabelName: "LOOP"},
		nopItem(),
	}}
	//
	result, diags := layout.Run(prog, isa.Default(), vector.New(16, 16), true)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	//
	addr, ok := result.LabelAddress["LOOP"]
	if !ok || addr != 1 {
		t.Fatalf("expected LOOP at address 1, got %d ok=%v", addr, ok)
	}
}

func TestLayoutCallLengthIncludesArgc(t *testing.T) {
	call := ir.Item{
		Kind:     ir.ItemInstruction,
		Mnemonic: isa.CallMnemonic,
		Operands: []ir.Operand{
			{Kind: ir.OperandLabel, LabelName: "INC"},
			{Kind: ir.OperandRegister},
			{Kind: ir.OperandRegister},
		},
	}
	prog := &ir.Program{Items: []ir.Item{call}}
	//
	result, diags := layout.Run(prog, isa.Default(), vector.New(32, 32), true)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	//
	// opcode + argc word + LABEL delta (2 words in a 2D world) + 2 bound registers = 6.
	if got := result.Placements[0].Length; got != 6 {
		t.Fatalf("expected CALL length 6, got %d", got)
	}
}

func TestLayoutOverlapIsDiagnosedNotFatal(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{
		nopItem(),
		{Kind: ir.ItemDirective, DirectiveName: "ORG", DirectiveArgs: []ir.Operand{{Kind: ir.OperandVector, Vector: []int32{0, 0}}}},
		nopItem(),
	}}
	//
	_, diags := layout.Run(prog, isa.Default(), vector.New(16, 16), true)
	if !diags.HasErrors() {
		t.Fatalf("expected an overlap diagnostic when .ORG rewinds onto an already-placed cell")
	}
}
