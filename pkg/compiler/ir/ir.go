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

// Package ir lowers the AST into an ordered, addressable intermediate
// representation (spec.md §4.5): the first representation that no longer
// depends on source syntax.
package ir

import (
	"github.com/evochora/evochora/pkg/source"
	"github.com/evochora/evochora/pkg/vm/organism"
)

// OperandKind classifies an IR operand's origin, matching the ISA's operand
// source vocabulary.
type OperandKind uint8

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandTypedImmediate
	OperandVector
	OperandLabel
	OperandLocationRegister
)

// Operand is a single lowered instruction operand.
type Operand struct {
	Kind       OperandKind
	RegisterID organism.RegisterID
	Immediate  int32
	TypedName  string // for OperandTypedImmediate, the molecule type name
	Vector     []int32
	LabelName  string // for OperandLabel, unresolved until linking
}

// Item is one entry of the IR program: an instruction, a label definition,
// a layout-affecting directive, or a procedure boundary marker.
type Item struct {
	Kind     ItemKind
	Origin   source.Origin
	Mnemonic string
	Operands []Operand
	// LabelName is set for ItemLabel.
	LabelName string
	// DirectiveName/DirectiveArgs are set for ItemDirective (ORG/DIR/PLACE).
	DirectiveName string
	DirectiveArgs []Operand
	// ProcName/ProcParams are set for ItemProcBegin.
	ProcName   string
	ProcParams []string
}

// ItemKind identifies the kind of a single IR item.
type ItemKind uint8

const (
	ItemInstruction ItemKind = iota
	ItemLabel
	ItemDirective
	ItemProcBegin
	ItemProcEnd
)

// Program is the ordered list of IR items produced by lowering one
// compilation unit's AST.
type Program struct {
	Items []Item
}
