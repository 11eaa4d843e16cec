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

// Package environment implements the n-dimensional toroidal grid of
// molecules (spec.md §4.10): a dense array indexed by linearized coordinate,
// with componentwise modulo wrapping when toroidal and a barrier molecule
// outside the box otherwise.
package environment

import (
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/word"
)

// Barrier is the impassable STRUCTURE molecule returned for out-of-range
// coordinates in a non-toroidal environment.
var Barrier = word.Molecule{Type: word.STRUCTURE, Value: -1}

// Environment is a dense n-dimensional grid of molecules with ownership.
type Environment struct {
	shape    vector.Coord
	toroidal bool
	cells    []word.Molecule
	owners   []uint32
}

// New constructs an empty environment of the given shape.
func New(shape vector.Coord, toroidal bool) *Environment {
	n := int64(1)
	for _, s := range shape {
		n *= int64(s)
	}
	//
	return &Environment{
		shape:    shape.Clone(),
		toroidal: toroidal,
		cells:    make([]word.Molecule, n),
		owners:   make([]uint32, n),
	}
}

// Shape returns the dimension sizes of this environment.
func (e *Environment) Shape() vector.Coord {
	return e.shape.Clone()
}

// Toroidal reports whether this environment wraps at its boundaries.
func (e *Environment) Toroidal() bool {
	return e.toroidal
}

// Dims returns the dimensionality of this environment.
func (e *Environment) Dims() int {
	return e.shape.Dims()
}

// Canonicalize reduces a coordinate to its addressable form: wrapped modulo
// shape when toroidal, or returned unchanged (callers must bounds-check via
// InBounds) otherwise.
func (e *Environment) Canonicalize(c vector.Coord) vector.Coord {
	if e.toroidal {
		return vector.Mod(c, e.shape)
	}
	//
	return c
}

// InBounds reports whether a (non-canonicalized) coordinate addresses a real
// cell: always true when toroidal, else componentwise within [0,shape).
func (e *Environment) InBounds(c vector.Coord) bool {
	if e.toroidal {
		return true
	}
	//
	return vector.InBounds(c, e.shape)
}

// Get reads the molecule at c, returning Barrier if c is out of range in a
// non-toroidal environment.
func (e *Environment) Get(c vector.Coord) word.Molecule {
	if !e.InBounds(c) {
		return Barrier
	}
	//
	idx := vector.Linearize(e.Canonicalize(c), e.shape)
	return e.cells[idx]
}

// OwnerOf returns the owning organism id at c, or 0 (unowned) if out of
// range or never claimed.
func (e *Environment) OwnerOf(c vector.Coord) uint32 {
	if !e.InBounds(c) {
		return 0
	}
	//
	idx := vector.Linearize(e.Canonicalize(c), e.shape)
	return e.owners[idx]
}

// Set writes a molecule at c. Writes outside the box in a non-toroidal
// environment are silently ignored: the barrier is immutable.
func (e *Environment) Set(c vector.Coord, m word.Molecule) {
	if !e.InBounds(c) {
		return
	}
	//
	idx := vector.Linearize(e.Canonicalize(c), e.shape)
	e.cells[idx] = m
}

// SetOwner records the owning organism id for c.
func (e *Environment) SetOwner(c vector.Coord, owner uint32) {
	if !e.InBounds(c) {
		return
	}
	//
	idx := vector.Linearize(e.Canonicalize(c), e.shape)
	e.owners[idx] = owner
}

// EachCell calls fn for every non-empty cell in the grid, in linear-address
// order. Used for full-grid tick snapshots and seed-loading diagnostics.
func (e *Environment) EachCell(fn func(c vector.Coord, m word.Molecule, owner uint32)) {
	for idx, m := range e.cells {
		if m.IsEmpty() {
			continue
		}
		//
		fn(vector.Delinearize(int64(idx), e.shape), m, e.owners[idx])
	}
}

// Neighbors returns the 2*d unit-step neighbors of c, one per signed axis,
// in axis-then-sign order.
func (e *Environment) Neighbors(c vector.Coord) []vector.Coord {
	d := e.Dims()
	out := make([]vector.Coord, 0, d*2)
	//
	for axis := 0; axis < d; axis++ {
		for _, sign := range [2]int32{1, -1} {
			delta := vector.Zero(d)
			delta[axis] = sign
			out = append(out, c.Add(delta))
		}
	}
	//
	return out
}
