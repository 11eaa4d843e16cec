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
package parser_test

import (
	"testing"

	"github.com/evochora/evochora/pkg/compiler/ast"
	"github.com/evochora/evochora/pkg/compiler/lexer"
	"github.com/evochora/evochora/pkg/compiler/parser"
	"github.com/evochora/evochora/pkg/source"
)

func parse(t *testing.T, src string) (*ast.Program, map[string]string, map[string][]string) {
	t.Helper()
	//
	file := source.NewFile("test.asm", []byte(src))
	tokens, diags := lexer.Lex(file)
	if diags.HasErrors() {
		t.Fatalf("lex errors: %v", diags.Items())
	}
	//
	prog, aliases, procs, pdiags := parser.Parse(tokens)
	if pdiags.HasErrors() {
		t.Fatalf("parse errors: %v", pdiags.Items())
	}
	//
	return prog, aliases, procs
}

func TestParseInstructionWithOperands(t *testing.T) {
	prog, _, _ := parse(t, "ADDI %DR0 DATA:5\n")
	//
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	//
	inst, ok := prog.Statements[0].(*ast.Instruction)
	if !ok {
		t.Fatalf("expected *ast.Instruction, got %T", prog.Statements[0])
	}
	if inst.Mnemonic != "ADDI" {
		t.Fatalf("expected mnemonic ADDI, got %q", inst.Mnemonic)
	}
	if len(inst.Operands) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(inst.Operands))
	}
	//
	if _, ok := inst.Operands[0].(*ast.RegisterRef); !ok {
		t.Fatalf("expected operand 0 to be a RegisterRef, got %T", inst.Operands[0])
	}
	if _, ok := inst.Operands[1].(*ast.TypedLiteral); !ok {
		t.Fatalf("expected operand 1 to be a TypedLiteral, got %T", inst.Operands[1])
	}
}

func TestParseLabelProducesColonFreeName(t *testing.T) {
	prog, _, _ := parse(t, "LOOP:\nNOP\n")
	//
	label, ok := prog.Statements[0].(*ast.Label)
	if !ok {
		t.Fatalf("expected *ast.Label, got %T", prog.Statements[0])
	}
	if label.Name != "LOOP" {
		t.Fatalf("expected label name LOOP, got %q", label.Name)
	}
}

func TestParseRegDirectivePopulatesAliasTable(t *testing.T) {
	_, aliases, _ := parse(t, ".REG ACC %DR0\n")
	//
	if aliases["ACC"] != "%DR0" {
		t.Fatalf("expected ACC -> %%DR0, got %v", aliases)
	}
}

func TestParseProcDirectivePopulatesProcTable(t *testing.T) {
	_, _, procs := parse(t, ".PROC INC WITH VALUE\nRET\n.ENDP\n")
	//
	params, ok := procs["INC"]
	if !ok || len(params) != 1 || params[0] != "VALUE" {
		t.Fatalf("expected INC -> [VALUE], got %v ok=%v", params, ok)
	}
}

func TestParseProcBodyNestsUnderProcedureNode(t *testing.T) {
	prog, _, _ := parse(t, ".PROC INC WITH VALUE\nRET\n.ENDP\n")
	//
	proc, ok := prog.Statements[0].(*ast.Procedure)
	if !ok {
		t.Fatalf("expected *ast.Procedure, got %T", prog.Statements[0])
	}
	if proc.Name != "INC" {
		t.Fatalf("expected procedure name INC, got %q", proc.Name)
	}
	if len(proc.Body) != 1 {
		t.Fatalf("expected 1 body statement (RET), got %d", len(proc.Body))
	}
}

func TestParseCallWithKeywordSurvivesAsOperand(t *testing.T) {
	// The parser has no special case for CALL/WITH: WITH arrives as a plain
	// identifier operand. Stripping it is pkg/compiler/ir's job.
	prog, _, _ := parse(t, "CALL INC WITH %DR0\n")
	//
	inst := prog.Statements[0].(*ast.Instruction)
	if len(inst.Operands) != 3 {
		t.Fatalf("expected 3 raw operands (target, WITH, %%DR0), got %d", len(inst.Operands))
	}
	//
	id, ok := inst.Operands[1].(*ast.IdentifierRef)
	if !ok || id.Name != "WITH" {
		t.Fatalf("expected operand 1 to be the literal identifier WITH, got %+v", inst.Operands[1])
	}
}

func TestParseUnknownDirectiveReportsDiagnostic(t *testing.T) {
	file := source.NewFile("test.asm", []byte(".BOGUS\n"))
	tokens, diags := lexer.Lex(file)
	if diags.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", diags.Items())
	}
	//
	_, _, _, pdiags := parser.Parse(tokens)
	if !pdiags.HasErrors() {
		t.Fatalf("expected a diagnostic for an unknown directive")
	}
}

func TestParseVectorLiteralOperand(t *testing.T) {
	prog, _, _ := parse(t, ".ORG 3|4\n")
	//
	dir, ok := prog.Statements[0].(*ast.Directive)
	if !ok {
		t.Fatalf("expected *ast.Directive, got %T", prog.Statements[0])
	}
	if dir.Name != "ORG" {
		t.Fatalf("expected directive name ORG, got %q", dir.Name)
	}
	//
	vec, ok := dir.Args[0].(*ast.VectorLiteral)
	if !ok || len(vec.Components) != 2 || vec.Components[0] != 3 || vec.Components[1] != 4 {
		t.Fatalf("expected vector (3,4), got %+v ok=%v", dir.Args[0], ok)
	}
}
