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
package scheduler

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/evochora/evochora/pkg/artifact"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/pipeline"
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/energy"
	"github.com/evochora/evochora/pkg/vm/environment"
	"github.com/evochora/evochora/pkg/vm/organism"
	"github.com/evochora/evochora/pkg/word"
)

// Config holds the construction-time parameters for a Simulation.
type Config struct {
	Env          *environment.Environment
	Registry     *isa.Registry
	Artifact     *artifact.ProgramArtifact // may be nil: see spec.md §4.13 fallback
	Policy       energy.Policy
	Distributor  energy.Distributor // may be nil
	Sink         pipeline.Sink[*TickState]
	PublishCells bool // include the full grid in each TickState
	Log          *logrus.Logger
}

// Simulation owns one environment and its live organisms, driving the
// plan/resolve/commit tick pipeline (spec.md §4.12) under a single
// goroutine. It implements isa.Runtime for opcode Execute functions.
type Simulation struct {
	env      *environment.Environment
	registry *isa.Registry
	art      *artifact.ProgramArtifact
	policy   energy.Policy
	dist     energy.Distributor
	sink     pipeline.Sink[*TickState]
	pubCells bool
	log      *logrus.Logger

	organisms map[uint32]*organism.Organism
	nextID    uint32
	tick      uint64

	spawned []*organism.Organism
	killed  map[uint32]bool
}

// New constructs a Simulation ready to run seed organisms.
func New(cfg Config) *Simulation {
	log := cfg.Log
	if log == nil {
		log = logrus.New()
	}
	//
	return &Simulation{
		env:       cfg.Env,
		registry:  cfg.Registry,
		art:       cfg.Artifact,
		policy:    cfg.Policy,
		dist:      cfg.Distributor,
		sink:      cfg.Sink,
		pubCells:  cfg.PublishCells,
		log:       log,
		organisms: make(map[uint32]*organism.Organism),
		killed:    make(map[uint32]bool),
	}
}

// AddOrganism registers a seed organism, assigning it the next available id
// if it doesn't already have one distinct from zero.
func (s *Simulation) AddOrganism(o *organism.Organism) {
	if o.ID == 0 {
		o.ID = s.NextOrganismID()
	} else if o.ID >= s.nextID {
		s.nextID = o.ID + 1
	}
	//
	s.organisms[o.ID] = o
}

// Organisms returns the organisms still present after the last committed
// tick, for inspection between ticks. Organisms that die are removed when
// the tick commits.
func (s *Simulation) Organisms() map[uint32]*organism.Organism {
	return s.organisms
}

// --- isa.Runtime ---

// Artifact implements isa.Runtime.
func (s *Simulation) Artifact() *artifact.ProgramArtifact { return s.art }

// Spawn implements isa.Runtime: the child becomes live at the start of the
// next tick.
func (s *Simulation) Spawn(o *organism.Organism) { s.spawned = append(s.spawned, o) }

// Kill implements isa.Runtime: the organism is removed at the end of the
// current tick (spec.md §7).
func (s *Simulation) Kill(id uint32) { s.killed[id] = true }

// NextOrganismID implements isa.Runtime.
func (s *Simulation) NextOrganismID() uint32 {
	s.nextID++
	return s.nextID
}

// WorldDims implements isa.Runtime.
func (s *Simulation) WorldDims() int { return s.env.Dims() }

// Shape implements isa.Runtime.
func (s *Simulation) Shape() vector.Coord { return s.env.Shape() }

// Toroidal implements isa.Runtime.
func (s *Simulation) Toroidal() bool { return s.env.Toroidal() }

// planResult is one organism's outcome from Phase 1, carried through
// Phase 2 and Phase 3.
type planResult struct {
	org      *organism.Organism
	opcode   *isa.Opcode
	inst     *isa.Instance
	baseCost int64
	nextIP   vector.Coord
	// decodeFailed marks a non-CODE word or unknown opcode id: a no-op
	// failure that never reaches conflict resolution.
	decodeFailed bool
	lostConflict bool
	wonConflict  bool
}

// orderedIDs returns live organism ids in ascending order, the global
// ordering every phase of a tick follows (spec.md §4.12).
func (s *Simulation) orderedIDs() []uint32 {
	ids := make([]uint32, 0, len(s.organisms))
	for id, o := range s.organisms {
		if o.Alive {
			ids = append(ids, id)
		}
	}
	//
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	//
	return ids
}

// Tick runs one full plan/resolve/commit cycle and publishes the resulting
// TickState to the configured sink.
func (s *Simulation) Tick(ctx context.Context) error {
	ids := s.orderedIDs()
	s.log.WithFields(logrus.Fields{"tick": s.tick, "organisms": len(ids)}).Debug("tick begin")
	plans := make(map[uint32]*planResult, len(ids))

	// Phase 1 — Plan.
	for _, id := range ids {
		org := s.organisms[id]
		plans[id] = s.planOne(org)
	}

	// Phase 2 — Resolve conflicts.
	writers := make(map[string][]uint32)
	for _, id := range ids {
		p := plans[id]
		if p.decodeFailed || p.inst == nil {
			continue
		}
		//
		for _, c := range p.inst.Writes {
			key := c.String()
			writers[key] = append(writers[key], id)
		}
	}
	//
	for _, claimants := range writers {
		if len(claimants) < 2 {
			continue
		}
		//
		sort.Slice(claimants, func(i, j int) bool { return claimants[i] < claimants[j] })
		winner := claimants[0]
		//
		plans[winner].wonConflict = true
		plans[winner].org.LastStatus = organism.StatusWonExecution
		//
		for _, loserID := range claimants[1:] {
			plans[loserID].lostConflict = true
			plans[loserID].org.LastStatus = organism.StatusLostLowerIDWon
		}
	}
	//
	for _, id := range ids {
		p := plans[id]
		if p.decodeFailed || p.lostConflict || p.inst == nil || p.opcode.Precondition == nil {
			continue
		}
		//
		p.inst.Status = p.opcode.Precondition(p.inst, p.org, s.env)
	}

	// Phase 3 — Commit & execute.
	for _, id := range ids {
		s.commitOne(plans[id])
	}
	//
	if s.dist != nil {
		s.dist.Distribute(s.env, s.tick)
	}

	snapshot := s.buildSnapshot()
	s.tick++

	s.reapAndAdmit()
	s.log.WithFields(logrus.Fields{"tick": snapshot.Tick, "alive": len(s.organisms)}).Debug("tick committed")

	if s.sink != nil {
		return s.sink.Send(ctx, snapshot)
	}
	//
	return nil
}

func (s *Simulation) planOne(org *organism.Organism) *planResult {
	m := s.env.Get(org.IP)
	//
	if m.Type != word.CODE {
		return &planResult{org: org, decodeFailed: true, baseCost: 1, nextIP: org.IP.Add(org.DV)}
	}
	//
	op, ok := s.registry.ByID(m.Value)
	if !ok {
		return &planResult{org: org, decodeFailed: true, baseCost: 1, nextIP: org.IP.Add(org.DV)}
	}
	//
	inst := op.Plan(org, s.env)
	//
	return &planResult{org: org, opcode: op, inst: inst, baseCost: op.BaseCost, nextIP: inst.NextIP}
}

func (s *Simulation) commitOne(p *planResult) {
	org := p.org
	if !org.Alive {
		return
	}
	//
	if p.decodeFailed {
		org.LastFailure = true
		org.LastStatus = organism.StatusFailure
		org.Energy -= p.baseCost
		org.IP = p.nextIP
		//
		return
	}
	//
	if p.lostConflict {
		org.LastFailure = false
		org.Energy -= s.policy.ChargeForLoss(p.baseCost)
		org.IP = p.nextIP
		//
		return
	}
	//
	beforeIP := org.IP.Clone()
	org.Energy -= p.baseCost
	org.LastFailure = p.inst.Status != organism.StatusOK
	//
	// p.wonConflict (this tick's Phase 2 outcome) takes precedence over the
	// instance's own status; any other organism must report the current
	// tick's real status, never a conflict flag surviving from a prior tick.
	if !p.wonConflict {
		org.LastStatus = p.inst.Status
	}
	//
	p.opcode.Execute(p.inst, org, s.env, s)
	//
	if org.Alive && org.IP.Equals(beforeIP) {
		org.IP = p.nextIP
	}
}

func (s *Simulation) buildSnapshot() *TickState {
	ts := &TickState{Tick: s.tick}
	//
	if s.pubCells {
		ts.Cells = make(map[string]word.Molecule)
		s.env.EachCell(func(c vector.Coord, m word.Molecule, _ uint32) {
			ts.Cells[c.String()] = m
		})
	}
	//
	ids := make([]uint32, 0, len(s.organisms))
	for id := range s.organisms {
		ids = append(ids, id)
	}
	//
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	//
	for _, id := range ids {
		ts.Organisms = append(ts.Organisms, snapshotOf(s.organisms[id]))
	}
	//
	return ts
}

// reapAndAdmit removes organisms that died this tick (energy <= 0, RET
// underflow, or an explicit Kill) and admits organisms spawned this tick,
// both effective at the start of the next tick (spec.md §7).
func (s *Simulation) reapAndAdmit() {
	for id, o := range s.organisms {
		if s.killed[id] {
			o.Kill()
		}
		//
		if !o.Alive || o.Energy <= 0 {
			delete(s.organisms, id)
		}
	}
	//
	s.killed = make(map[uint32]bool)
	//
	for _, child := range s.spawned {
		s.organisms[child.ID] = child
	}
	//
	s.spawned = nil
}
