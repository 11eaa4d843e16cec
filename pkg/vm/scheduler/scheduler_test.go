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
package scheduler_test

import (
	"context"
	"testing"

	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/pipeline"
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/energy"
	"github.com/evochora/evochora/pkg/vm/environment"
	"github.com/evochora/evochora/pkg/vm/organism"
	"github.com/evochora/evochora/pkg/vm/scheduler"
	"github.com/evochora/evochora/pkg/word"
)

var rf = organism.RegisterFile{NumDR: 4, NumPR: 2, NumFPR: 2, NumLR: 1}

func newSim(t *testing.T, shape vector.Coord, toroidal bool) (*scheduler.Simulation, *environment.Environment, *pipeline.MemorySink[*scheduler.TickState]) {
	t.Helper()
	//
	env := environment.New(shape, toroidal)
	sink := pipeline.NewMemorySink[*scheduler.TickState](16)
	sim := scheduler.New(scheduler.Config{
		Env:      env,
		Registry: isa.Default(),
		Policy:   energy.DefaultPolicy,
		Sink:     sink,
	})
	//
	return sim, env, sink
}

func opcodeWord(mnemonic string) word.Molecule {
	op, ok := isa.Default().ByMnemonic(mnemonic)
	if !ok {
		panic("unknown mnemonic " + mnemonic)
	}
	//
	return word.Molecule{Type: word.CODE, Value: op.ID}
}

// placePoke lays out a POKE instruction at ip, fetched along dv: the opcode
// word, then one word per dimension encoding the absolute target coordinate
// (spec.md §4.11's VECTOR operand, treated as absolute by POKE), then the
// immediate payload word.
func placePoke(env *environment.Environment, ip, dv, target vector.Coord, payload word.Molecule) {
	env.Set(ip, opcodeWord("POKE"))
	//
	cursor := ip.Add(dv)
	for axis := 0; axis < target.Dims(); axis++ {
		env.Set(cursor, word.Molecule{Type: word.DATA, Value: target[axis]})
		cursor = cursor.Add(dv)
	}
	//
	env.Set(cursor, payload)
}

// TestConflictResolutionLowestIDWins exercises spec.md §4.12's central
// invariant: when two organisms' planned writes target the same cell in the
// same tick, the lowest-id organism wins and the other is charged the
// losing-claimant fraction without its instruction executing.
func TestConflictResolutionLowestIDWins(t *testing.T) {
	shape := vector.New(16, 16)
	sim, env, sink := newSim(t, shape, true)

	target := vector.New(5, 5)

	// Organism 1 walks +x from (0,5) and pokes DATA:7 into the shared cell.
	placePoke(env, vector.New(0, 5), vector.New(1, 0), target, word.Molecule{Type: word.DATA, Value: 7})
	o1 := organism.New(0, 0, vector.New(0, 5), vector.New(1, 0), rf, 100)
	sim.AddOrganism(o1)

	// Organism 2 walks -x from (10,5) and pokes DATA:9 into the same cell.
	placePoke(env, vector.New(10, 5), vector.New(-1, 0), target, word.Molecule{Type: word.DATA, Value: 9})
	o2 := organism.New(0, 0, vector.New(10, 5), vector.New(-1, 0), rf, 100)
	sim.AddOrganism(o2)

	if err := sim.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	got := env.Get(target)
	if got.Type != word.DATA || got.Value != 7 {
		t.Fatalf("expected lower-id organism's write (DATA:7) to win at %s, got %s", target, got)
	}

	ts := <-sink.Drain()
	if len(ts.Organisms) != 2 {
		t.Fatalf("expected 2 organisms in snapshot, got %d", len(ts.Organisms))
	}

	var winner, loser *scheduler.OrganismSnapshot
	for i := range ts.Organisms {
		s := &ts.Organisms[i]
		if s.ID == o1.ID {
			winner = s
		} else {
			loser = s
		}
	}
	//
	if winner.LastStatus != organism.StatusWonExecution {
		t.Fatalf("expected organism 1 to have won, status=%v", winner.LastStatus)
	}
	if loser.LastStatus != organism.StatusLostLowerIDWon {
		t.Fatalf("expected organism 2 to have lost, status=%v", loser.LastStatus)
	}
	if loser.Energy != 100-energy.DefaultPolicy.ChargeForLoss(2) {
		t.Fatalf("expected loser charged the losing-claimant fraction, energy=%d", loser.Energy)
	}
}

// TestNonConflictingOrganismsBothExecute ensures independent writes do not
// spuriously interact.
func TestNonConflictingOrganismsBothExecute(t *testing.T) {
	shape := vector.New(32, 32)
	sim, env, _ := newSim(t, shape, true)

	placePoke(env, vector.New(0, 1), vector.New(1, 0), vector.New(1, 1), word.Molecule{Type: word.DATA, Value: 3})
	o1 := organism.New(0, 0, vector.New(0, 1), vector.New(1, 0), rf, 50)
	sim.AddOrganism(o1)

	placePoke(env, vector.New(20, 10), vector.New(1, 0), vector.New(21, 10), word.Molecule{Type: word.DATA, Value: 4})
	o2 := organism.New(0, 0, vector.New(20, 10), vector.New(1, 0), rf, 50)
	sim.AddOrganism(o2)

	if err := sim.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if got := env.Get(vector.New(1, 1)); got.Value != 3 {
		t.Fatalf("organism 1's write missing: %s", got)
	}
	if got := env.Get(vector.New(21, 10)); got.Value != 4 {
		t.Fatalf("organism 2's write missing: %s", got)
	}
}

// TestDecodeFailureAdvancesAndSetsLastFailure exercises the non-CODE/unknown-opcode
// no-op path: the organism simply advances along its direction vector.
func TestDecodeFailureAdvancesAndSetsLastFailure(t *testing.T) {
	shape := vector.New(8, 8)
	sim, env, _ := newSim(t, shape, true)

	env.Set(vector.New(0, 0), word.Molecule{Type: word.DATA, Value: 1})
	o := organism.New(0, 0, vector.New(0, 0), vector.New(1, 0), rf, 10)
	sim.AddOrganism(o)

	if err := sim.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if !o.IP.Equals(vector.New(1, 0)) {
		t.Fatalf("expected IP to advance along DV, got %s", o.IP)
	}
	if !o.LastFailure {
		t.Fatalf("expected LastFailure to be set on decode failure")
	}
}

// TestDeadOrganismRemovedNextTick confirms organisms that run out of energy
// or die voluntarily are reaped after the tick commits, not mid-tick.
func TestDeadOrganismRemovedNextTick(t *testing.T) {
	shape := vector.New(8, 8)
	sim, env, _ := newSim(t, shape, true)

	env.Set(vector.New(0, 0), opcodeWord("DIE"))
	o := organism.New(0, 0, vector.New(0, 0), vector.New(1, 0), rf, 10)
	sim.AddOrganism(o)

	if err := sim.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if _, alive := sim.Organisms()[o.ID]; alive {
		t.Fatalf("expected organism removed from the live set after dying")
	}
}
