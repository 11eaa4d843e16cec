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

// Package artifact defines ProgramArtifact, the immutable result of
// compilation (spec.md §3, §6), and its coordinate linearization contract.
package artifact

import (
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/organism"
	"github.com/evochora/evochora/pkg/word"
)

// SourceLocation is one entry of the source map: where a linear address
// originated in source text.
type SourceLocation struct {
	File        string
	Line        int
	Column      int
	LineContent string
}

// CallSiteBinding is the ordered list of caller register ids bound to a
// CALL's formal parameters, keyed by the CALL's linear address.
type CallSiteBinding struct {
	LinearAddress int64
	CallerRegIDs  []organism.RegisterID
}

// ProgramArtifact is the immutable output of compilation.
type ProgramArtifact struct {
	ProgramID uint64

	MachineCodeLayout   map[string]word.Molecule // keyed by coord.String()
	InitialWorldObjects map[string]word.Molecule

	SourceMap []SourceLocation // indexed by linear address

	CallSiteBindings map[int64][]organism.RegisterID

	LinearToCoord map[int64]vector.Coord
	CoordToLinear map[string]int64

	LabelAddressToName map[int64]string
	RegisterAliasMap   map[string]string
	ProcNameToParams   map[string][]string

	TokenMap TokenMap

	Shape    vector.Coord
	Toroidal bool
}

// TokenMap is the per-token classification produced for debugger tooling
// (spec.md §4.4 TokenMapGenerator): file -> line -> column -> token kind.
type TokenMap map[string]map[int]map[int]string

// CoordKey renders a coordinate as the canonical map key used throughout the
// artifact's coordinate-keyed fields.
func CoordKey(c vector.Coord) string {
	return c.String()
}

// Linearize looks up the sequential program address the Layout Engine
// assigned to the word at c (spec.md §4.6), the same address space
// SourceMap and CallSiteBindings are keyed by. It is sparse by construction:
// only coordinates the program actually wrote to have an entry, which is
// what makes it practical for a world many orders of magnitude larger than
// the program occupying a corner of it. Returns 0 (and false via the
// two-value form callers needing one should prefer) if c was never emitted.
func (a *ProgramArtifact) Linearize(c vector.Coord) int64 {
	idx, _ := a.LinearizeOK(c)
	return idx
}

// LinearizeOK is Linearize with an explicit found flag.
func (a *ProgramArtifact) LinearizeOK(c vector.Coord) (int64, bool) {
	idx, ok := a.CoordToLinear[CoordKey(c)]
	return idx, ok
}

// Delinearize is the inverse of Linearize: the coordinate the Layout Engine
// placed at program address index.
func (a *ProgramArtifact) Delinearize(index int64) vector.Coord {
	return a.LinearToCoord[index]
}
