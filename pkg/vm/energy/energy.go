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

// Package energy implements per-tick energy accounting policy (spec.md
// §4.14): the configurable losing-claimant charge fraction and the
// pluggable EnergyDistributionCreator side effect.
package energy

import (
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/environment"
	"github.com/evochora/evochora/pkg/word"
)

func energyMolecule(value int32) word.Molecule {
	return word.Molecule{Type: word.ENERGY, Value: value}
}

// Policy holds the configuration governing energy charges during conflict
// resolution. The source left the losing-claimant fraction unspecified
// (spec.md §9 open question); this registry fixes it as a named constant
// with the documented default.
type Policy struct {
	// LosingClaimantFraction scales the base cost charged to a claimant
	// that loses a write conflict in Phase 2 (spec.md §4.12). 1.0 is the
	// full base cost, matching the spec's stated default.
	LosingClaimantFraction float64
}

// DefaultPolicy is the spec's documented default: losing claimants are
// still charged the full base cost of their attempted instruction.
var DefaultPolicy = Policy{LosingClaimantFraction: 1.0}

// ChargeForLoss computes the energy deducted from an organism that lost a
// write conflict, given the instruction's base cost.
func (p Policy) ChargeForLoss(baseCost int64) int64 {
	return int64(float64(baseCost) * p.LosingClaimantFraction)
}

// Distributor is a per-tick side effect run at the end of Phase 3, before
// the tick snapshot is emitted (spec.md §4.14): it may introduce new
// ENERGY-typed molecules into the environment (e.g. geysers). Implementors
// must keep their own state serializable for checkpointing.
type Distributor interface {
	Distribute(env *environment.Environment, tick uint64)
}

// DistributorState is the serializable snapshot of a Distributor's internal
// state, used for checkpointing a simulation.
type DistributorState interface {
	Marshal() ([]byte, error)
}

// GeyserDistributor is a simple Distributor that places a fixed ENERGY
// molecule at a fixed set of coordinates every N ticks.
type GeyserDistributor struct {
	Coords   []vector.Coord
	Value    int32
	Interval uint64
}

// Distribute implements Distributor.
func (g *GeyserDistributor) Distribute(env *environment.Environment, tick uint64) {
	if g.Interval == 0 || tick%g.Interval != 0 {
		return
	}
	//
	for _, c := range g.Coords {
		env.Set(c, energyMolecule(g.Value))
	}
}
