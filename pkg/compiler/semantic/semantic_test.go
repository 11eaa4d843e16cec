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
package semantic_test

import (
	"testing"

	"github.com/evochora/evochora/pkg/compiler/lexer"
	"github.com/evochora/evochora/pkg/compiler/parser"
	"github.com/evochora/evochora/pkg/compiler/semantic"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/source"
)

// analyze lexes, parses, and runs the semantic analyzer over src with no
// macro/include expansion, the shape every test here needs.
func analyze(t *testing.T, src string, aliases map[string]string, procs map[string][]string) (*semantic.Result, *source.Diagnostics) {
	t.Helper()
	//
	file := source.NewFile("test.asm", []byte(src))
	tokens, diags := lexer.Lex(file)
	if diags.HasErrors() {
		t.Fatalf("lex errors: %v", diags.Items())
	}
	//
	prog, parsedAliases, parsedProcs, pdiags := parser.Parse(tokens)
	if pdiags.HasErrors() {
		t.Fatalf("parse errors: %v", pdiags.Items())
	}
	//
	if aliases == nil {
		aliases = parsedAliases
	}
	if procs == nil {
		procs = parsedProcs
	}
	//
	return semantic.Analyze(prog, aliases, procs, isa.Default())
}

func TestAnalyzeAcceptsWellFormedProgram(t *testing.T) {
	src := "START:\nADDI %DR0 DATA:1\nJMP START\n"
	//
	_, diags := analyze(t, src, map[string]string{"ACC": "%DR0"}, nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestAnalyzeRejectsUnknownInstruction(t *testing.T) {
	_, diags := analyze(t, "NOPEX %DR0\n", nil, nil)
	if !diags.HasErrors() {
		t.Fatalf("expected an error for an unknown mnemonic")
	}
}

func TestAnalyzeRejectsWrongOperandCount(t *testing.T) {
	_, diags := analyze(t, "ADDI %DR0\n", nil, nil)
	if !diags.HasErrors() {
		t.Fatalf("expected an error for a missing operand")
	}
}

func TestAnalyzeRejectsConstantAsJumpTarget(t *testing.T) {
	src := ".DEFINE LIMIT DATA:10\nJMP LIMIT\n"
	//
	_, diags := analyze(t, src, nil, nil)
	if !diags.HasErrors() {
		t.Fatalf("expected rejection of a constant used as a jump target")
	}
}

func TestAnalyzeAllowsConstantAsImmediate(t *testing.T) {
	src := ".DEFINE LIMIT DATA:10\nADDI %DR0 LIMIT\n"
	//
	_, diags := analyze(t, src, nil, nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
}

// TestAnalyzeCallRecordsCallSite exercises the CALL/WITH binding recording
// that pairs caller registers with a procedure's formal parameters in
// Result.CallSites (spec.md §4.13).
func TestAnalyzeCallRecordsCallSite(t *testing.T) {
	src := "CALL INC WITH %DR0\n"
	//
	result, diags := analyze(t, src, nil, map[string][]string{"INC": {"VALUE"}})
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	//
	if len(result.CallSites) != 1 {
		t.Fatalf("expected one call site, got %d", len(result.CallSites))
	}
	//
	cs := result.CallSites[0]
	if cs.Target != "INC" {
		t.Fatalf("expected target INC, got %q", cs.Target)
	}
	if len(cs.ArgNames) != 1 || cs.ArgNames[0] != "%DR0" {
		t.Fatalf("expected one bound argument %%DR0, got %v", cs.ArgNames)
	}
}

func TestAnalyzeRejectsCallArityMismatch(t *testing.T) {
	src := "CALL INC WITH %DR0, %DR1\n"
	//
	_, diags := analyze(t, src, nil, map[string][]string{"INC": {"VALUE"}})
	if !diags.HasErrors() {
		t.Fatalf("expected an arity mismatch error")
	}
}

func TestAnalyzeRejectsUnknownCallTarget(t *testing.T) {
	_, diags := analyze(t, "CALL MISSING\n", nil, nil)
	if !diags.HasErrors() {
		t.Fatalf("expected an error for an undefined procedure target")
	}
}

// TestAnalyzeRejectsProcParamShadowingMnemonic exercises testable property 9:
// a .PROC formal parameter colliding with an instruction mnemonic must be
// rejected at compile time.
func TestAnalyzeRejectsProcParamShadowingMnemonic(t *testing.T) {
	src := ".PROC BAD WITH ADD\nRET\n.ENDP\n"
	//
	_, diags := analyze(t, src, nil, map[string][]string{"BAD": {"ADD"}})
	if !diags.HasErrors() {
		t.Fatalf("expected rejection of a parameter named after an instruction mnemonic")
	}
}

func TestAnalyzeProducesTokenMap(t *testing.T) {
	src := "ADDI %DR0 DATA:1\n"
	//
	result, diags := analyze(t, src, nil, nil)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	//
	byLine, ok := result.TokenMap["test.asm"]
	if !ok || len(byLine) == 0 {
		t.Fatalf("expected a populated token map for test.asm, got %v", result.TokenMap)
	}
}
