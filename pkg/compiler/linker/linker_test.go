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
package linker_test

import (
	"testing"

	"github.com/evochora/evochora/pkg/compiler/ir"
	"github.com/evochora/evochora/pkg/compiler/layout"
	"github.com/evochora/evochora/pkg/compiler/linker"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/organism"
)

func nopItem() ir.Item {
	return ir.Item{Kind: ir.ItemInstruction, Mnemonic: "NOP"}
}

func runLinker(t *testing.T, prog *ir.Program, shape vector.Coord, toroidal bool) *linker.Result {
	t.Helper()
	//
	lay, ldiags := layout.Run(prog, isa.Default(), shape, toroidal)
	if ldiags.HasErrors() {
		t.Fatalf("layout errors: %v", ldiags.Items())
	}
	//
	result, diags := linker.Link(prog, lay, shape, toroidal)
	if diags.HasErrors() {
		t.Fatalf("link errors: %v", diags.Items())
	}
	//
	return result
}

func TestLinkResolvesForwardJumpDelta(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{
		{Kind: ir.ItemInstruction, Mnemonic: "JMP", Operands: []ir.Operand{{Kind: ir.OperandLabel, LabelName: "LOOP"}}},
		nopItem(),
		{Kind: ir.ItemLabel, LabelName: "LOOP"},
		nopItem(),
	}}
	//
	result := runLinker(t, prog, vector.New(16, 16), true)
	//
	jmp := result.Program.Items[0]
	delta := vector.Coord(jmp.Operands[0].Vector)
	// JMP at (0,0) occupies 3 words in a 2D world (opcode + a 2-word LABEL
	// operand), so ip-after-fetch is (1,0) and the following NOP lands at
	// (3,0). LOOP is declared right after that NOP, at (4,0). Delta from
	// (1,0) to (4,0) is (3,0).
	if !delta.Equals(vector.New(3, 0)) {
		t.Fatalf("expected delta (3,0), got %s", delta)
	}
}

func TestLinkUsesShortestToroidalPath(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{
		{Kind: ir.ItemDirective, DirectiveName: "ORG", DirectiveArgs: []ir.Operand{{Kind: ir.OperandVector, Vector: []int32{0, 0}}}},
		{Kind: ir.ItemInstruction, Mnemonic: "JMP", Operands: []ir.Operand{{Kind: ir.OperandLabel, LabelName: "FAR"}}},
		{Kind: ir.ItemDirective, DirectiveName: "ORG", DirectiveArgs: []ir.Operand{{Kind: ir.OperandVector, Vector: []int32{9, 0}}}},
		{Kind: ir.ItemLabel, LabelName: "FAR"},
		nopItem(),
	}}
	//
	result := runLinker(t, prog, vector.New(10, 10), true)
	//
	jmp := result.Program.Items[1]
	delta := vector.Coord(jmp.Operands[0].Vector)
	// ip-after-fetch is (1,0); FAR is at (9,0) in a toroidal world of width
	// 10. The direct delta is +8, but the wraparound path -2 is shorter.
	if !delta.Equals(vector.New(-2, 0)) {
		t.Fatalf("expected shortest wraparound delta (-2,0), got %s", delta)
	}
}

func TestLinkRejectsUndefinedLabel(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{
		{Kind: ir.ItemInstruction, Mnemonic: "JMP", Operands: []ir.Operand{{Kind: ir.OperandLabel, LabelName: "NOWHERE"}}},
	}}
	//
	lay, ldiags := layout.Run(prog, isa.Default(), vector.New(16, 16), true)
	if ldiags.HasErrors() {
		t.Fatalf("unexpected layout errors: %v", ldiags.Items())
	}
	//
	_, diags := linker.Link(prog, lay, vector.New(16, 16), true)
	if !diags.HasErrors() {
		t.Fatalf("expected a diagnostic for an undefined label")
	}
}

func TestLinkRecordsCallSiteBindings(t *testing.T) {
	prog := &ir.Program{Items: []ir.Item{
		{
			Kind:     ir.ItemInstruction,
			Mnemonic: isa.CallMnemonic,
			Operands: []ir.Operand{
				{Kind: ir.OperandLabel, LabelName: "INC"},
				{Kind: ir.OperandRegister, RegisterID: organism.RegisterID(0)},
				{Kind: ir.OperandRegister, RegisterID: organism.RegisterID(3)},
			},
		},
		{Kind: ir.ItemProcBegin, ProcName: "INC", ProcParams: []string{"VALUE"}},
		{Kind: ir.ItemInstruction, Mnemonic: "RET"},
		{Kind: ir.ItemProcEnd, ProcName: "INC"},
	}}
	//
	result := runLinker(t, prog, vector.New(32, 32), true)
	//
	callAddr := int64(0) // CALL is the first item, placed at address 0.
	ids, ok := result.CallSiteBindings[callAddr]
	if !ok {
		t.Fatalf("expected a call site binding at address %d", callAddr)
	}
	if len(ids) != 2 || ids[0] != organism.RegisterID(0) || ids[1] != organism.RegisterID(3) {
		t.Fatalf("expected bound registers [0,3], got %v", ids)
	}
}
