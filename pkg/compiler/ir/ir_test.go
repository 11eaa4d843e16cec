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
package ir_test

import (
	"testing"

	"github.com/evochora/evochora/pkg/compiler/ir"
	"github.com/evochora/evochora/pkg/compiler/lexer"
	"github.com/evochora/evochora/pkg/compiler/parser"
	"github.com/evochora/evochora/pkg/source"
	"github.com/evochora/evochora/pkg/vm/organism"
)

var testRF = organism.RegisterFile{NumDR: 8, NumPR: 4, NumFPR: 4, NumLR: 2}

func lower(t *testing.T, src string) *ir.Program {
	t.Helper()
	//
	file := source.NewFile("test.asm", []byte(src))
	tokens, diags := lexer.Lex(file)
	if diags.HasErrors() {
		t.Fatalf("lex errors: %v", diags.Items())
	}
	//
	prog, aliases, _, pdiags := parser.Parse(tokens)
	if pdiags.HasErrors() {
		t.Fatalf("parse errors: %v", pdiags.Items())
	}
	//
	lowered, ldiags := ir.Lower(prog, aliases, testRF)
	if ldiags.HasErrors() {
		t.Fatalf("lower errors: %v", ldiags.Items())
	}
	//
	return lowered
}

func TestLowerResolvesBareRegisterOperand(t *testing.T) {
	prog := lower(t, "ADDI %DR1 DATA:5\n")
	//
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(prog.Items))
	}
	//
	item := prog.Items[0]
	if item.Kind != ir.ItemInstruction || item.Mnemonic != "ADDI" {
		t.Fatalf("expected an ADDI instruction item, got %+v", item)
	}
	//
	reg := item.Operands[0]
	if reg.Kind != ir.OperandRegister || reg.RegisterID != 1 {
		t.Fatalf("expected register operand id 1, got %+v", reg)
	}
	//
	imm := item.Operands[1]
	if imm.Kind != ir.OperandTypedImmediate || imm.TypedName != "DATA" || imm.Immediate != 5 {
		t.Fatalf("expected DATA:5 typed immediate, got %+v", imm)
	}
}

func TestLowerResolvesRegisterAliasFromDotReg(t *testing.T) {
	prog := lower(t, ".REG ACC %DR2\nADDI ACC DATA:1\n")
	//
	// item 0 is the .REG directive itself (lowered to ItemDirective "REG");
	// item 1 is the ADDI instruction whose first operand must resolve through
	// the alias table to %DR2, not fall through to an unresolved label.
	inst := prog.Items[1]
	if inst.Kind != ir.ItemInstruction {
		t.Fatalf("expected instruction item at index 1, got %+v", inst)
	}
	//
	reg := inst.Operands[0]
	if reg.Kind != ir.OperandRegister || reg.RegisterID != 2 {
		t.Fatalf("expected alias ACC to resolve to register id 2, got %+v", reg)
	}
}

func TestLowerProducesLabelItem(t *testing.T) {
	prog := lower(t, "START:\nNOP\n")
	//
	if prog.Items[0].Kind != ir.ItemLabel || prog.Items[0].LabelName != "START" {
		t.Fatalf("expected a label item named START, got %+v", prog.Items[0])
	}
}

func TestLowerLeavesUnresolvedIdentifierAsLabelOperand(t *testing.T) {
	prog := lower(t, "JMP TARGET\n")
	//
	inst := prog.Items[0]
	op := inst.Operands[0]
	if op.Kind != ir.OperandLabel || op.LabelName != "TARGET" {
		t.Fatalf("expected an unresolved label operand TARGET, got %+v", op)
	}
}

func TestLowerStripsWithKeywordFromCallOperands(t *testing.T) {
	prog := lower(t, ".PROC INC WITH VALUE\nRET\n.ENDP\nCALL INC WITH %DR0\n")
	//
	var call *ir.Item
	for i := range prog.Items {
		if prog.Items[i].Kind == ir.ItemInstruction && prog.Items[i].Mnemonic == "CALL" {
			call = &prog.Items[i]
		}
	}
	if call == nil {
		t.Fatalf("expected a CALL instruction item")
	}
	//
	// WITH itself must not survive as a third operand: [target, %DR0].
	if len(call.Operands) != 2 {
		t.Fatalf("expected 2 operands (target, %%DR0) after stripping WITH, got %d: %+v", len(call.Operands), call.Operands)
	}
	if call.Operands[0].Kind != ir.OperandLabel || call.Operands[0].LabelName != "INC" {
		t.Fatalf("expected operand 0 to be the unresolved label INC, got %+v", call.Operands[0])
	}
	if call.Operands[1].Kind != ir.OperandRegister || call.Operands[1].RegisterID != 0 {
		t.Fatalf("expected operand 1 to be register id 0, got %+v", call.Operands[1])
	}
}

func TestLowerResolvesProcParamNameToFPRWithinBody(t *testing.T) {
	prog := lower(t, ".PROC INC WITH VALUE\nADDI VALUE DATA:1\nRET\n.ENDP\n")
	//
	var add *ir.Item
	for i := range prog.Items {
		if prog.Items[i].Kind == ir.ItemInstruction && prog.Items[i].Mnemonic == "ADDI" {
			add = &prog.Items[i]
		}
	}
	if add == nil {
		t.Fatalf("expected an ADDI instruction item inside the procedure body")
	}
	//
	// VALUE is the procedure's first (and only) WITH parameter, so it must
	// resolve to FPR slot 0, not fall through to an unresolved label.
	op := add.Operands[0]
	want := testRF.FPRID(0)
	if op.Kind != ir.OperandRegister || op.RegisterID != want {
		t.Fatalf("expected VALUE to resolve to FPR slot %d, got %+v", want, op)
	}
}

func TestLowerProcedureEmitsBeginAndEndBoundaryItems(t *testing.T) {
	prog := lower(t, ".PROC INC WITH VALUE\nRET\n.ENDP\n")
	//
	if prog.Items[0].Kind != ir.ItemProcBegin || prog.Items[0].ProcName != "INC" {
		t.Fatalf("expected an ItemProcBegin named INC first, got %+v", prog.Items[0])
	}
	if len(prog.Items[0].ProcParams) != 1 || prog.Items[0].ProcParams[0] != "VALUE" {
		t.Fatalf("expected ProcParams [VALUE], got %v", prog.Items[0].ProcParams)
	}
	//
	last := prog.Items[len(prog.Items)-1]
	if last.Kind != ir.ItemProcEnd || last.ProcName != "INC" {
		t.Fatalf("expected a trailing ItemProcEnd named INC, got %+v", last)
	}
}

func TestLowerPlaceBecomesDirectiveItemWithTwoArgs(t *testing.T) {
	prog := lower(t, ".PLACE ENERGY:50 3|3\n")
	//
	item := prog.Items[0]
	if item.Kind != ir.ItemDirective || item.DirectiveName != "PLACE" {
		t.Fatalf("expected a PLACE directive item, got %+v", item)
	}
	if len(item.DirectiveArgs) != 2 {
		t.Fatalf("expected 2 directive args (value, vector), got %d", len(item.DirectiveArgs))
	}
	//
	val := item.DirectiveArgs[0]
	if val.Kind != ir.OperandTypedImmediate || val.TypedName != "ENERGY" || val.Immediate != 50 {
		t.Fatalf("expected ENERGY:50 typed immediate, got %+v", val)
	}
	//
	vec := item.DirectiveArgs[1]
	if vec.Kind != ir.OperandVector || len(vec.Vector) != 2 || vec.Vector[0] != 3 || vec.Vector[1] != 3 {
		t.Fatalf("expected vector (3,3), got %+v", vec)
	}
}

func TestLowerResolvesLocationRegisterOperand(t *testing.T) {
	prog := lower(t, "SETR %LR0 0|0\n")
	//
	op := prog.Items[0].Operands[0]
	if op.Kind != ir.OperandLocationRegister || op.RegisterID != 0 {
		t.Fatalf("expected location register operand id 0, got %+v", op)
	}
}

func TestLowerReportsUnknownRegister(t *testing.T) {
	// %QR0 has no recognized bank prefix (DR/PR/FPR/LR), so ParseRegisterName
	// itself must reject it rather than silently resolving an index.
	file := source.NewFile("test.asm", []byte("ADDI %QR0 DATA:1\n"))
	tokens, diags := lexer.Lex(file)
	if diags.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", diags.Items())
	}
	//
	prog, aliases, _, pdiags := parser.Parse(tokens)
	if pdiags.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", pdiags.Items())
	}
	//
	_, ldiags := ir.Lower(prog, aliases, testRF)
	if !ldiags.HasErrors() {
		t.Fatalf("expected a diagnostic for an unknown register")
	}
}
