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

// Package ast defines the abstract syntax tree produced by the parser
// (spec.md §4.3): instruction, label, register/identifier references,
// literals, procedure/scope/place nodes, and include-boundary context
// markers.
package ast

import "github.com/evochora/evochora/pkg/source"

// Node is any AST node; every node carries its originating source position.
type Node interface {
	Origin() source.Origin
}

// base embeds the common origin field for every concrete node.
type base struct {
	origin source.Origin
}

// Origin implements Node.
func (b base) Origin() source.Origin { return b.origin }

// Program is the top-level parse result: a flat sequence of statements.
type Program struct {
	Statements []Node
}

// Operand is any operand expression usable by an instruction.
type Operand interface {
	Node
	isOperand()
}

type operandBase struct{ base }

func (operandBase) isOperand() {}

// RegisterRef refers to a register by file+index, e.g. %DR0.
type RegisterRef struct {
	operandBase
	Name string // raw register token text, e.g. "%DR0"
}

// NewRegisterRef constructs a RegisterRef node.
func NewRegisterRef(origin source.Origin, name string) *RegisterRef {
	return &RegisterRef{operandBase{base{origin}}, name}
}

// IdentifierRef refers to a label, procedure, constant or alias by name.
type IdentifierRef struct {
	operandBase
	Name string
}

// NewIdentifierRef constructs an IdentifierRef node.
func NewIdentifierRef(origin source.Origin, name string) *IdentifierRef {
	return &IdentifierRef{operandBase{base{origin}}, name}
}

// NumberLiteral is a bare signed integer operand.
type NumberLiteral struct {
	operandBase
	Value int32
}

// NewNumberLiteral constructs a NumberLiteral node.
func NewNumberLiteral(origin source.Origin, value int32) *NumberLiteral {
	return &NumberLiteral{operandBase{base{origin}}, value}
}

// TypedLiteral is "TYPE:value", e.g. DATA:41.
type TypedLiteral struct {
	operandBase
	Type  string
	Value int32
}

// NewTypedLiteral constructs a TypedLiteral node.
func NewTypedLiteral(origin source.Origin, typ string, value int32) *TypedLiteral {
	return &TypedLiteral{operandBase{base{origin}}, typ, value}
}

// VectorLiteral is a d-component coordinate literal, e.g. 1|0|-1.
type VectorLiteral struct {
	operandBase
	Components []int32
}

// NewVectorLiteral constructs a VectorLiteral node.
func NewVectorLiteral(origin source.Origin, components []int32) *VectorLiteral {
	return &VectorLiteral{operandBase{base{origin}}, components}
}

// Instruction is a single mnemonic plus its operand list.
type Instruction struct {
	base
	Mnemonic string
	Operands []Operand
}

// NewInstruction constructs an Instruction node.
func NewInstruction(origin source.Origin, mnemonic string, operands []Operand) *Instruction {
	return &Instruction{base{origin}, mnemonic, operands}
}

// Label marks the current layout position with a name.
type Label struct {
	base
	Name string
}

// NewLabel constructs a Label node.
func NewLabel(origin source.Origin, name string) *Label {
	return &Label{base{origin}, name}
}

// Directive is a generic simple directive: .ORG, .DIR, .REG, .PREG, .DEFINE,
// .IMPORT, .REQUIRE, .EXPORT. Args holds its raw operand list.
type Directive struct {
	base
	Name string
	Args []Operand
}

// NewDirective constructs a Directive node.
func NewDirective(origin source.Origin, name string, args []Operand) *Directive {
	return &Directive{base{origin}, name, args}
}

// Place records an initial-world object: ".PLACE value vec".
type Place struct {
	base
	Value *TypedLiteral
	At    *VectorLiteral
}

// NewPlace constructs a Place node.
func NewPlace(origin source.Origin, value *TypedLiteral, at *VectorLiteral) *Place {
	return &Place{base{origin}, value, at}
}

// Procedure is a ".PROC name WITH params ... .ENDP" block.
type Procedure struct {
	base
	Name   string
	Params []string
	Body   []Node
}

// NewProcedure constructs a Procedure node.
func NewProcedure(origin source.Origin, name string, params []string, body []Node) *Procedure {
	return &Procedure{base{origin}, name, params, body}
}

// Scope is a ".SCOPE ... .ENDS" lexical scoping block.
type Scope struct {
	base
	Body []Node
}

// NewScope constructs a Scope node.
func NewScope(origin source.Origin, body []Node) *Scope {
	return &Scope{base{origin}, body}
}

// ContextMarker records an include-boundary push/pop so that later phases can
// recover original-file context when reporting on macro-expanded code.
type ContextMarker struct {
	base
	Push bool
	File string
}

// NewContextMarker constructs a ContextMarker node.
func NewContextMarker(origin source.Origin, push bool, file string) *ContextMarker {
	return &ContextMarker{base{origin}, push, file}
}
