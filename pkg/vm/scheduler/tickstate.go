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

// Package scheduler implements the three-phase per-tick execution model
// (spec.md §4.12, §5): plan, resolve conflicts, commit and execute, single-
// threaded and cooperative within a tick.
package scheduler

import (
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/organism"
	"github.com/evochora/evochora/pkg/word"
)

// OrganismSnapshot is the published, read-only view of one organism's state
// as of the end of a tick.
type OrganismSnapshot struct {
	ID            uint32
	IP            vector.Coord
	DV            vector.Coord
	DPs           []vector.Coord
	ActiveDPIndex int
	DR            []int32
	PR            []int32
	FPR           []int32
	Energy        int64
	Alive         bool
	LastFailure   bool
	LastStatus    organism.Status
	DataStackSize int
	CallStackSize int
}

func snapshotOf(o *organism.Organism) OrganismSnapshot {
	dps := make([]vector.Coord, len(o.DPs))
	for i, dp := range o.DPs {
		dps[i] = dp.Clone()
	}
	//
	return OrganismSnapshot{
		ID:            o.ID,
		IP:            o.IP.Clone(),
		DV:            o.DV.Clone(),
		DPs:           dps,
		ActiveDPIndex: o.ActiveDPIdx,
		DR:            append([]int32(nil), o.DR...),
		PR:            append([]int32(nil), o.PR...),
		FPR:           append([]int32(nil), o.FPR...),
		Energy:        o.Energy,
		Alive:         o.Alive,
		LastFailure:   o.LastFailure,
		LastStatus:    o.LastStatus,
		DataStackSize: int(o.DataStack.Len()),
		CallStackSize: len(o.CallStack),
	}
}

// TickState is the immutable snapshot published to the pipeline sink after
// each tick commits (spec.md §3, §6).
type TickState struct {
	Tick      uint64
	Cells     map[string]word.Molecule // nil unless full-grid snapshots are enabled
	Organisms []OrganismSnapshot
}
