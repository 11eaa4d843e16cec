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

// Package semantic resolves symbols and validates instruction shapes over a
// parsed AST (spec.md §4.4): a nested symbol table (global, per-procedure,
// per-scope), mnemonic/operand-kind validation against the ISA registry, and
// a pass producing the per-token classification map external debuggers
// consume.
package semantic

import (
	"strings"

	"github.com/evochora/evochora/pkg/artifact"
	"github.com/evochora/evochora/pkg/compiler/ast"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/source"
	"github.com/evochora/evochora/pkg/util"
)

// Kind tags what a symbol-table entry names.
type Kind uint8

const (
	Procedure Kind = iota
	Label
	Variable
	Constant
	Alias
)

// Symbol is one entry of the nested symbol table.
type Symbol struct {
	Kind     Kind
	Name     string
	Origin   source.Origin
	Params   []string // Procedure
	RegAlias string   // Alias: the raw register token it stands for
}

// scope is one level of the nested symbol table: global, a procedure body,
// or a .SCOPE block.
type scope struct {
	parent  *scope
	symbols map[string]*Symbol
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, symbols: make(map[string]*Symbol)}
}

// declare adds sym to this scope, reporting false if the name already exists
// at this level (shadowing an outer scope is allowed; redeclaring within the
// same scope is not).
func (s *scope) declare(sym *Symbol) bool {
	key := strings.ToUpper(sym.Name)
	if _, exists := s.symbols[key]; exists {
		return false
	}
	//
	s.symbols[key] = sym
	//
	return true
}

func (s *scope) lookup(name string) util.Option[*Symbol] {
	key := strings.ToUpper(name)
	//
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.symbols[key]; ok {
			return util.Some(sym)
		}
	}
	//
	return util.None[*Symbol]()
}

// CallSite records one CALL instruction's source-level argument list, the
// ordered list of caller register ids bound to its target's formal
// parameters, collected in Result.CallSites. The linker does not read them;
// it derives the artifact's CallSiteBindings from the lowered IR itself.
type CallSite struct {
	Origin   source.Origin
	Target   string
	ArgNames []string
}

// Result is everything the analyzer hands to later phases.
type Result struct {
	CallSites []CallSite
	TokenMap  artifact.TokenMap
}

// jumpMnemonics names every instruction whose operand positions are jump
// targets: a CONSTANT symbol is never a valid operand there (spec.md §4.4).
var jumpMnemonics = map[string]bool{
	"JMP": true, "CALL": true,
	"JZ": true, "JNZ": true, "JEQ": true, "JNE": true, "JLT": true, "JGT": true,
}

type analyzer struct {
	registry  *isa.Registry
	diags     *source.Diagnostics
	callSites []CallSite
	tokenMap  artifact.TokenMap
}

// Analyze validates prog against registry, given the parser's global
// register-alias table and procedure/parameter map. aliases and procs are
// already flat global tables by construction (the grammar has no scoped
// .REG/.PROC); Analyze's own nested scopes additionally track labels,
// .DEFINE constants, and each procedure's formal-parameter VARIABLE
// bindings.
func Analyze(prog *ast.Program, aliases map[string]string, procs map[string][]string, registry *isa.Registry) (*Result, *source.Diagnostics) {
	a := &analyzer{registry: registry, diags: &source.Diagnostics{}, tokenMap: artifact.TokenMap{}}
	//
	global := newScope(nil)
	//
	for name, reg := range aliases {
		global.declare(&Symbol{Kind: Alias, Name: name, RegAlias: reg})
	}
	//
	for name, params := range procs {
		global.declare(&Symbol{Kind: Procedure, Name: name, Params: params})
	}
	//
	a.declareLabels(prog.Statements, global)
	a.analyzeBlock(prog.Statements, global)
	//
	return &Result{CallSites: a.callSites, TokenMap: a.tokenMap}, a.diags
}

// declareLabels pre-declares every label and .DEFINE constant visible in
// this block so forward references within the same scope resolve; it
// recurses into nested .SCOPE blocks (which share the parent's label
// namespace by sharing scope) but not into .PROC bodies (which get their
// own scope in analyzeBlock).
func (a *analyzer) declareLabels(stmts []ast.Node, s *scope) {
	for _, stmt := range stmts {
		switch v := stmt.(type) {
		case *ast.Label:
			if !s.declare(&Symbol{Kind: Label, Name: v.Name, Origin: v.Origin()}) {
				a.diags.Add(v.Origin(), "label %q redeclared in this scope", v.Name)
			}
		case *ast.Directive:
			if strings.EqualFold(v.Name, "DEFINE") && len(v.Args) == 2 {
				if id, ok := v.Args[0].(*ast.IdentifierRef); ok {
					if !s.declare(&Symbol{Kind: Constant, Name: id.Name, Origin: v.Origin()}) {
						a.diags.Add(v.Origin(), "constant %q redeclared in this scope", id.Name)
					}
				}
			}
		case *ast.Scope:
			a.declareLabels(v.Body, s)
		}
	}
}

func (a *analyzer) analyzeBlock(stmts []ast.Node, s *scope) {
	for _, stmt := range stmts {
		a.analyzeNode(stmt, s)
	}
}

func (a *analyzer) analyzeNode(n ast.Node, s *scope) {
	switch v := n.(type) {
	case *ast.Instruction:
		a.analyzeInstruction(v, s)
	case *ast.Procedure:
		a.analyzeProcedure(v, s)
	case *ast.Scope:
		a.analyzeBlock(v.Body, s)
	case *ast.Directive:
		a.classifyOperands(v.Args, s)
	case *ast.Place:
		a.classifyOperands([]ast.Operand{v.Value, v.At}, s)
	case *ast.Label, *ast.ContextMarker:
		// No further validation: labels were declared in declareLabels;
		// context markers carry no semantic content.
	}
}

// analyzeProcedure validates property 9 (a formal parameter colliding with an
// instruction mnemonic is rejected) and opens the procedure's own scope,
// declaring each parameter as a VARIABLE before walking its body.
func (a *analyzer) analyzeProcedure(p *ast.Procedure, parent *scope) {
	inner := newScope(parent)
	//
	for _, param := range p.Params {
		if _, known := a.registry.ByMnemonic(strings.ToUpper(param)); known {
			a.diags.Add(p.Origin(), "parameter %q collides with instruction mnemonic %s", param, strings.ToUpper(param))
			continue
		}
		//
		if !inner.declare(&Symbol{Kind: Variable, Name: param, Origin: p.Origin()}) {
			a.diags.Add(p.Origin(), "parameter %q declared twice in procedure %q", param, p.Name)
		}
	}
	//
	a.declareLabels(p.Body, inner)
	a.analyzeBlock(p.Body, inner)
}

func (a *analyzer) analyzeInstruction(i *ast.Instruction, s *scope) {
	mnemonic := strings.ToUpper(i.Mnemonic)
	//
	if mnemonic == "CALL" {
		a.analyzeCall(i, s)
		return
	}
	//
	op, ok := a.registry.ByMnemonic(mnemonic)
	if !ok {
		a.diags.Add(i.Origin(), "unknown instruction %q", i.Mnemonic)
		a.classifyOperands(i.Operands, s)
		return
	}
	//
	if len(op.Signature) != len(i.Operands) {
		a.diags.Add(i.Origin(), "%s expects %d operand(s), got %d", mnemonic, len(op.Signature), len(i.Operands))
	}
	//
	jumpCtx := jumpMnemonics[mnemonic]
	//
	for idx, operand := range i.Operands {
		var want isa.OperandKind
		if idx < len(op.Signature) {
			want = op.Signature[idx]
		}
		//
		a.checkOperand(operand, want, jumpCtx && idx == len(i.Operands)-1, s)
	}
}

// analyzeCall validates "CALL target [WITH a, b, ...]": target must name a
// known PROCEDURE, and the binding count must match its parameter count.
// The binding list is recorded as a CallSite in Result.CallSites.
func (a *analyzer) analyzeCall(i *ast.Instruction, s *scope) {
	var target string
	var bindings []string
	//
	for idx, operand := range i.Operands {
		id, ok := operand.(*ast.IdentifierRef)
		if ok && strings.EqualFold(id.Name, "WITH") {
			continue
		}
		//
		if idx == 0 {
			if !ok {
				a.diags.Add(operand.Origin(), "CALL target must be a procedure name")
				continue
			}
			//
			target = id.Name
			//
			sym := s.lookup(target)
			if !sym.HasValue() || sym.Unwrap().Kind != Procedure {
				a.diags.Add(operand.Origin(), "CALL target %q is not a known procedure", target)
				continue
			}
			//
			a.classifyOne(operand)
			//
			continue
		}
		//
		switch operand.(type) {
		case *ast.RegisterRef, *ast.IdentifierRef:
			bindings = append(bindings, operandName(operand))
			a.checkOperand(operand, isa.REGISTER, false, s)
		default:
			a.diags.Add(operand.Origin(), "CALL WITH binding must be a register or parameter name")
		}
	}
	//
	if target != "" {
		if sym := s.lookup(target); sym.HasValue() && sym.Unwrap().Kind == Procedure {
			if want := len(sym.Unwrap().Params); want != len(bindings) {
				a.diags.Add(i.Origin(), "CALL %s expects %d argument(s), got %d", target, want, len(bindings))
			}
		}
	}
	//
	a.callSites = append(a.callSites, CallSite{Origin: i.Origin(), Target: target, ArgNames: bindings})
}

func operandName(op ast.Operand) string {
	switch v := op.(type) {
	case *ast.RegisterRef:
		return v.Name
	case *ast.IdentifierRef:
		return v.Name
	default:
		return ""
	}
}

// checkOperand validates one operand against its expected ISA operand kind,
// resolving identifiers through the scope chain, and records its token
// classification.
func (a *analyzer) checkOperand(op ast.Operand, want isa.OperandKind, jumpPosition bool, s *scope) {
	a.classifyOne(op)
	//
	switch v := op.(type) {
	case *ast.RegisterRef:
		if want != isa.REGISTER && want != isa.LOCATION_REGISTER {
			a.diags.Add(v.Origin(), "operand %s is a register, expected %s", v.Name, kindName(want))
		}
	case *ast.IdentifierRef:
		sym := s.lookup(v.Name)
		if !sym.HasValue() {
			a.diags.Add(v.Origin(), "undefined identifier %q", v.Name)
			return
		}
		//
		resolved := sym.Unwrap()
		//
		if resolved.Kind == Constant && jumpPosition {
			a.diags.Add(v.Origin(), "constant %q cannot be used as a jump target", v.Name)
		}
		//
		switch resolved.Kind {
		case Alias, Variable:
			if want != isa.REGISTER {
				a.diags.Add(v.Origin(), "operand %s is a register, expected %s", v.Name, kindName(want))
			}
		case Label, Procedure:
			if want != isa.LABEL {
				a.diags.Add(v.Origin(), "operand %s is a label, expected %s", v.Name, kindName(want))
			}
		case Constant:
			if want != isa.IMMEDIATE {
				a.diags.Add(v.Origin(), "operand %s is a constant, expected %s", v.Name, kindName(want))
			}
		}
	case *ast.NumberLiteral, *ast.TypedLiteral:
		if want != isa.IMMEDIATE {
			a.diags.Add(op.Origin(), "operand is an immediate, expected %s", kindName(want))
		}
	case *ast.VectorLiteral:
		if want != isa.VECTOR && want != isa.LABEL {
			a.diags.Add(op.Origin(), "operand is a vector, expected %s", kindName(want))
		}
	}
}

func (a *analyzer) classifyOperands(ops []ast.Operand, _ *scope) {
	for _, op := range ops {
		a.classifyOne(op)
	}
}

// classifyOne records a token's kind in the TokenMapGenerator output
// (spec.md §4.4), keyed by file/line/column.
func (a *analyzer) classifyOne(op ast.Operand) {
	origin := op.Origin()
	if origin.File == "" {
		return
	}
	//
	byLine, ok := a.tokenMap[origin.File]
	if !ok {
		byLine = map[int]map[int]string{}
		a.tokenMap[origin.File] = byLine
	}
	//
	byCol, ok := byLine[origin.Line]
	if !ok {
		byCol = map[int]string{}
		byLine[origin.Line] = byCol
	}
	//
	byCol[origin.Column] = tokenKindName(op)
}

func tokenKindName(op ast.Operand) string {
	switch op.(type) {
	case *ast.RegisterRef:
		return "register"
	case *ast.IdentifierRef:
		return "identifier"
	case *ast.NumberLiteral:
		return "number"
	case *ast.TypedLiteral:
		return "typed-literal"
	case *ast.VectorLiteral:
		return "vector"
	default:
		return "unknown"
	}
}

func kindName(k isa.OperandKind) string {
	switch k {
	case isa.REGISTER:
		return "register"
	case isa.IMMEDIATE:
		return "immediate"
	case isa.STACK:
		return "stack"
	case isa.VECTOR:
		return "vector"
	case isa.LABEL:
		return "label"
	case isa.LOCATION_REGISTER:
		return "location-register"
	default:
		return "unknown"
	}
}
