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

// Package layout walks a lowered IR program and assigns each item a starting
// coordinate in the target world (spec.md §4.6): a cursor position and
// direction driven by .ORG/.DIR, advanced by each instruction's word length.
package layout

import (
	"fmt"

	"github.com/evochora/evochora/pkg/compiler/ir"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/source"
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/word"
)

// Placement records where one IR item's first word landed and the cursor
// direction in effect at that moment, the two facts the Linker needs to turn
// a label reference into a coordinate delta (spec.md §4.7: "relative to the
// containing instruction's IP-after-fetch").
type Placement struct {
	Coord vector.Coord
	DV    vector.Coord
	// Length is the word count this item occupies (0 for labels/directives
	// other than .PLACE, which occupies 0 cursor-advancing words but does
	// write one cell out of band).
	Length int
}

// Result is everything the Linker and Emitter need from the Layout Engine.
type Result struct {
	// Placements is parallel to the input Program.Items; only ItemInstruction
	// entries carry a meaningful Placement.
	Placements []Placement

	LinearToCoord map[int64]vector.Coord
	CoordToLinear map[string]int64

	LabelAddress map[string]int64 // label/procedure name -> linear address
	ProcParams   map[string][]string

	// Placed holds .PLACE's initial-world objects, keyed by coordinate.
	Placed map[string]word.Molecule

	Shape    vector.Coord
	Toroidal bool
}

type layoutor struct {
	registry *isa.Registry
	shape    vector.Coord
	toroidal bool
	dims     int

	pos vector.Coord
	dv  vector.Coord

	nextAddr int64

	result *Result
	diags  *source.Diagnostics
}

// Run assigns coordinates to every item of prog for a world of the given
// shape. The cursor starts at the origin moving along axis 0, matching the
// runtime's own default organism direction vector (spec.md leaves the
// pre-.ORG/.DIR state unspecified).
func Run(prog *ir.Program, registry *isa.Registry, shape vector.Coord, toroidal bool) (*Result, *source.Diagnostics) {
	dims := shape.Dims()
	//
	l := &layoutor{
		registry: registry,
		shape:    shape,
		toroidal: toroidal,
		dims:     dims,
		pos:      vector.Zero(dims),
		dv:       defaultDV(dims),
		diags:    &source.Diagnostics{},
		result: &Result{
			Placements:    make([]Placement, len(prog.Items)),
			LinearToCoord: make(map[int64]vector.Coord),
			CoordToLinear: make(map[string]int64),
			LabelAddress:  make(map[string]int64),
			ProcParams:    make(map[string][]string),
			Placed:        make(map[string]word.Molecule),
			Shape:         shape,
			Toroidal:      toroidal,
		},
	}
	//
	for i := range prog.Items {
		l.layoutItem(i, &prog.Items[i])
	}
	//
	return l.result, l.diags
}

func defaultDV(dims int) vector.Coord {
	dv := vector.Zero(dims)
	if dims > 0 {
		dv[0] = 1
	}
	//
	return dv
}

func (l *layoutor) canon(c vector.Coord) vector.Coord {
	if l.toroidal {
		return vector.Mod(c, l.shape)
	}
	//
	return c
}

func (l *layoutor) layoutItem(idx int, item *ir.Item) {
	switch item.Kind {
	case ir.ItemLabel:
		l.declareLabel(item.Origin, item.LabelName)
	case ir.ItemProcBegin:
		l.declareLabel(item.Origin, item.ProcName)
		l.result.ProcParams[item.ProcName] = item.ProcParams
	case ir.ItemProcEnd:
		// No layout effect: the procedure's body items already advanced the
		// cursor: this is only a boundary marker.
	case ir.ItemDirective:
		l.layoutDirective(item)
	case ir.ItemInstruction:
		l.layoutInstruction(idx, item)
	}
}

func (l *layoutor) declareLabel(origin source.Origin, name string) {
	if _, exists := l.result.LabelAddress[name]; exists {
		l.diags.Add(origin, "label %q redeclared", name)
	}
	//
	l.result.LabelAddress[name] = l.nextAddr
}

func (l *layoutor) layoutDirective(item *ir.Item) {
	switch item.DirectiveName {
	case "ORG":
		l.pos = l.canon(vectorFrom(item.DirectiveArgs[0]))
	case "DIR":
		l.dv = vectorFrom(item.DirectiveArgs[0])
	case "PLACE":
		m := moleculeFrom(item.DirectiveArgs[0])
		at := l.canon(vectorFrom(item.DirectiveArgs[1]))
		//
		key := at.String()
		if _, exists := l.result.Placed[key]; exists {
			l.diags.Add(item.Origin, "multiple .PLACE entries target %s; the later one wins", at)
		}
		//
		l.result.Placed[key] = m
	}
}

func (l *layoutor) layoutInstruction(idx int, item *ir.Item) {
	length := l.instructionLength(item)
	//
	start := l.pos
	l.result.Placements[idx] = Placement{Coord: start, DV: l.dv, Length: length}
	//
	cursor := start
	for step := 0; step < length; step++ {
		key := cursor.String()
		if existingAddr, exists := l.result.CoordToLinear[key]; exists {
			l.diags.Add(item.Origin, "instruction at %s overlaps an earlier write (address %d); the later write wins", cursor, existingAddr)
		}
		//
		l.result.CoordToLinear[key] = l.nextAddr
		l.result.LinearToCoord[l.nextAddr] = cursor
		//
		l.nextAddr++
		cursor = l.canon(cursor.Add(l.dv))
	}
	//
	l.pos = cursor
}

// instructionLength computes an instruction's total word count (opcode word
// plus operands) given the ISA registry and this layout's dimensionality.
// CALL is special-cased: its real operand count (argc-dependent) isn't
// representable in a fixed Signature (spec.md §4.13; isa.CallMnemonic).
func (l *layoutor) instructionLength(item *ir.Item) int {
	if _, ok := l.registry.ByMnemonic(item.Mnemonic); !ok {
		l.diags.Add(item.Origin, "unknown instruction %q", item.Mnemonic)
		return 1
	}
	//
	if item.Mnemonic == isa.CallMnemonic {
		// opcode + argc word + LABEL delta (dims words) + argc REGISTER words.
		argc := len(item.Operands) - 1
		if argc < 0 {
			argc = 0
		}
		//
		return 1 + 1 + l.dims + argc
	}
	//
	return l.registry.Length(item.Mnemonic, l.dims)
}

func vectorFrom(op ir.Operand) vector.Coord {
	c := make(vector.Coord, len(op.Vector))
	copy(c, op.Vector)
	return c
}

func moleculeFrom(op ir.Operand) word.Molecule {
	t, ok := word.TypeByName(op.TypedName)
	if !ok {
		return word.Molecule{Type: word.DATA, Value: op.Immediate}
	}
	//
	return word.NewMolecule(t, op.Immediate)
}

// DescribePlacement is a debugging helper used by the disassembler/CLI.
func DescribePlacement(p Placement) string {
	return fmt.Sprintf("%s len=%d dv=%s", p.Coord, p.Length, p.DV)
}
