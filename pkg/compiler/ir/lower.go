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
package ir

import (
	"strings"

	"github.com/evochora/evochora/pkg/compiler/ast"
	"github.com/evochora/evochora/pkg/source"
	"github.com/evochora/evochora/pkg/vm/organism"
)

// Lower flattens a parsed AST into an IR program, resolving register aliases
// and dropping the .PROC/.SCOPE nesting in favor of explicit boundary items
// (spec.md §4.5). Semantic validation (symbol kinds, signatures, scoping
// rules) has already run over the AST by this point; Lower does not
// re-derive it and reports only operand-shape errors a well-formed AST
// should never produce.
func Lower(prog *ast.Program, aliases map[string]string, rf organism.RegisterFile) (*Program, *source.Diagnostics) {
	l := &lowerer{aliases: aliases, rf: rf, diags: &source.Diagnostics{}}
	//
	var items []Item
	for _, stmt := range prog.Statements {
		items = append(items, l.lowerNode(stmt)...)
	}
	//
	return &Program{Items: items}, l.diags
}

type lowerer struct {
	aliases map[string]string
	rf      organism.RegisterFile
	diags   *source.Diagnostics
	// paramScopes is a stack of the enclosing procedures' formal-parameter
	// bindings (innermost last): a WITH parameter name resolves to the FPR
	// slot matching its position, shared address space across every
	// procedure since FPR ids are frame-relative (spec.md §4.13).
	paramScopes []map[string]organism.RegisterID
}

func (l *lowerer) lowerNode(n ast.Node) []Item {
	switch v := n.(type) {
	case *ast.Instruction:
		return []Item{l.lowerInstruction(v)}
	case *ast.Label:
		return []Item{{Kind: ItemLabel, Origin: v.Origin(), LabelName: v.Name}}
	case *ast.Directive:
		return []Item{l.lowerDirective(v)}
	case *ast.Place:
		return []Item{l.lowerPlace(v)}
	case *ast.Procedure:
		return l.lowerProcedure(v)
	case *ast.Scope:
		var items []Item
		for _, stmt := range v.Body {
			items = append(items, l.lowerNode(stmt)...)
		}
		//
		return items
	case *ast.ContextMarker:
		// Context markers exist to let diagnostics recover original-file
		// positions; they carry no runtime meaning past this point.
		return nil
	default:
		l.diags.Add(n.Origin(), "internal: unhandled AST node %T", n)
		return nil
	}
}

func (l *lowerer) lowerProcedure(p *ast.Procedure) []Item {
	params := make(map[string]organism.RegisterID, len(p.Params))
	for k, name := range p.Params {
		params[strings.ToUpper(name)] = l.rf.FPRID(uint32(k))
	}
	//
	l.paramScopes = append(l.paramScopes, params)
	//
	items := []Item{{
		Kind:       ItemProcBegin,
		Origin:     p.Origin(),
		ProcName:   p.Name,
		ProcParams: p.Params,
	}}
	//
	for _, stmt := range p.Body {
		items = append(items, l.lowerNode(stmt)...)
	}
	//
	items = append(items, Item{Kind: ItemProcEnd, Origin: p.Origin(), ProcName: p.Name})
	//
	l.paramScopes = l.paramScopes[:len(l.paramScopes)-1]
	//
	return items
}

func (l *lowerer) lowerInstruction(i *ast.Instruction) Item {
	mnemonic := strings.ToUpper(i.Mnemonic)
	item := Item{
		Kind:     ItemInstruction,
		Origin:   i.Origin(),
		Mnemonic: mnemonic,
	}
	//
	operands := i.Operands
	if mnemonic == "CALL" {
		operands = l.stripCallWith(operands)
	}
	//
	for _, op := range operands {
		item.Operands = append(item.Operands, l.lowerOperand(op))
	}
	//
	return item
}

// stripCallWith drops the "WITH" keyword out of a CALL instruction's operand
// list, e.g. "CALL proc WITH %DR0, %DR1" parses as four operands (the
// identifier proc, the identifier WITH, and two register refs); after this,
// Item.Operands for a CALL is [target, binding...], the shape planCall's
// variable-arity decode (pkg/isa/family_control.go) expects once linked.
func (l *lowerer) stripCallWith(operands []ast.Operand) []ast.Operand {
	out := make([]ast.Operand, 0, len(operands))
	//
	for _, op := range operands {
		if id, ok := op.(*ast.IdentifierRef); ok && strings.EqualFold(id.Name, "WITH") {
			continue
		}
		//
		out = append(out, op)
	}
	//
	return out
}

func (l *lowerer) lowerDirective(d *ast.Directive) Item {
	item := Item{
		Kind:          ItemDirective,
		Origin:        d.Origin(),
		DirectiveName: d.Name,
	}
	//
	for _, op := range d.Args {
		item.DirectiveArgs = append(item.DirectiveArgs, l.lowerOperand(op))
	}
	//
	return item
}

func (l *lowerer) lowerPlace(p *ast.Place) Item {
	return Item{
		Kind:          ItemDirective,
		Origin:        p.Origin(),
		DirectiveName: "PLACE",
		DirectiveArgs: []Operand{
			l.lowerOperand(p.Value),
			l.lowerOperand(p.At),
		},
	}
}

// lowerOperand resolves aliases and register tokens to their combined-space
// ids. Identifier references are carried through as unresolved label names,
// which the linker resolves against label and procedure addresses only:
// .DEFINE constants are not substituted here or in later phases, so an
// operand naming a constant fails to link as an undefined label.
func (l *lowerer) lowerOperand(op ast.Operand) Operand {
	switch v := op.(type) {
	case *ast.RegisterRef:
		return l.lowerRegister(v)
	case *ast.IdentifierRef:
		name := strings.ToUpper(v.Name)
		//
		if len(l.paramScopes) > 0 {
			if id, ok := l.paramScopes[len(l.paramScopes)-1][name]; ok {
				return Operand{Kind: OperandRegister, RegisterID: id}
			}
		}
		//
		if reg, ok := l.aliases[name]; ok {
			return l.lowerRegisterName(v.Origin(), reg)
		}
		//
		return Operand{Kind: OperandLabel, LabelName: v.Name}
	case *ast.NumberLiteral:
		return Operand{Kind: OperandImmediate, Immediate: v.Value}
	case *ast.TypedLiteral:
		return Operand{Kind: OperandTypedImmediate, TypedName: v.Type, Immediate: v.Value}
	case *ast.VectorLiteral:
		return Operand{Kind: OperandVector, Vector: append([]int32(nil), v.Components...)}
	default:
		l.diags.Add(op.Origin(), "internal: unhandled operand node %T", op)
		return Operand{}
	}
}

func (l *lowerer) lowerRegister(r *ast.RegisterRef) Operand {
	return l.lowerRegisterName(r.Origin(), r.Name)
}

func (l *lowerer) lowerRegisterName(origin source.Origin, name string) Operand {
	name = strings.ToUpper(name)
	//
	_, index, isLR, ok := organism.ParseRegisterName(name)
	if !ok {
		l.diags.Add(origin, "unknown register %q", name)
		return Operand{}
	}
	//
	if isLR {
		return Operand{Kind: OperandLocationRegister, RegisterID: organism.RegisterID(index)}
	}
	//
	id, _, ok := l.rf.ResolveRegisterID(name)
	if !ok {
		l.diags.Add(origin, "unknown register %q", name)
		return Operand{}
	}
	//
	return Operand{Kind: OperandRegister, RegisterID: id}
}
