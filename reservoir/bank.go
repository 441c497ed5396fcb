// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"sync"

	"cogentcore.org/lab/base/randx"
)

// BankSlot holds one target neuron's incoming synapses, in insertion order
// (the per-cycle gathering order, kept deterministic), with a by-source
// index enforcing at most one synapse per source.
type BankSlot struct {

	// Syns are the incoming synapses in insertion order.
	Syns []*Synapse

	// bySource maps source flat index to position in Syns.
	bySource map[int32]int32

	// mu makes insert-or-reject atomic under parallel wiring.
	mu sync.Mutex
}

// NumSyns returns the number of incoming synapses.
func (bs *BankSlot) NumSyns() int {
	return len(bs.Syns)
}

// SynBySource returns the synapse from the given source flat index, or nil.
func (bs *BankSlot) SynBySource(src int32) *Synapse {
	si, ok := bs.bySource[src]
	if !ok {
		return nil
	}
	return bs.Syns[si]
}

// ConnBank is a connection bank: per target neuron, the collection of
// incoming synapses keyed by unique source index.  A reservoir has two
// banks, input-originated and recurrent.  Banks are built incrementally
// during wiring and are structurally read-only during simulation; only
// per-synapse runtime state (delay buffer, plasticity) mutates.
type ConnBank struct {

	// Name of the bank, for statistics.
	Name string

	// Slots holds incoming synapses per target flat index.
	Slots []BankSlot

	// Dist summarizes the realized synapse distances; computed by
	// UpdateDistStats once wiring of the bank is complete.
	Dist DistStats

	// nsyn is the total synapse count.
	nsyn int
}

// NewConnBank returns a bank with a slot per target neuron.
func NewConnBank(name string, numTargets int) *ConnBank {
	return &ConnBank{Name: name, Slots: make([]BankSlot, numTargets)}
}

// Connect inserts the synapse into its target's slot.  A duplicate
// source-target pair is silently rejected (returning false) unless replace
// is set, in which case the existing synapse is replaced in place,
// preserving gathering order.  Duplicates are a normal outcome of
// randomized wiring, not errors.
func (cb *ConnBank) Connect(sy *Synapse, replace bool) bool {
	slot := &cb.Slots[sy.Target.Loc.FlatIndex]
	src := sy.Source.Loc.FlatIndex
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.bySource == nil {
		slot.bySource = make(map[int32]int32)
	}
	if si, ok := slot.bySource[src]; ok {
		if !replace {
			return false
		}
		slot.Syns[si] = sy
		return true
	}
	slot.bySource[src] = int32(len(slot.Syns))
	slot.Syns = append(slot.Syns, sy)
	cb.nsyn++
	return true
}

// NumSynapses returns the total synapse count of the bank.
func (cb *ConnBank) NumSynapses() int {
	return cb.nsyn
}

// UpdateDistStats recomputes the bank-wide distance statistics.  Must be
// called after wiring of the bank is complete and before SetupDelays.
func (cb *ConnBank) UpdateDistStats() {
	ds := make([]float64, 0, cb.nsyn)
	for ti := range cb.Slots {
		for _, sy := range cb.Slots[ti].Syns {
			ds = append(ds, float64(sy.Distance))
		}
	}
	cb.Dist.SetFromSamples(ds)
}

// SetupDelays runs SetupDelay on every synapse of the bank against the
// bank's distance statistics.  The two banks of a reservoir are processed
// in separate, non-interleaved passes because the statistics are
// population-wide aggregates.
func (cb *ConnBank) SetupDelays(rnd randx.Rand) {
	for ti := range cb.Slots {
		for _, sy := range cb.Slots[ti].Syns {
			sy.SetupDelay(&cb.Dist, rnd)
		}
	}
}

// Reset resets runtime state of every synapse in the bank.
func (cb *ConnBank) Reset(stats bool) {
	for ti := range cb.Slots {
		for _, sy := range cb.Slots[ti].Syns {
			sy.Reset(stats)
		}
	}
}

// Stats computes a structural statistics report for the bank.
func (cb *ConnBank) Stats() BankStats {
	bst := BankStats{Name: cb.Name, NumSynapses: cb.nsyn, Distance: cb.Dist}
	ws := make([]float64, 0, cb.nsyn)
	dl := make([]float64, 0, cb.nsyn)
	for ti := range cb.Slots {
		for _, sy := range cb.Slots[ti].Syns {
			ws = append(ws, float64(sy.Weight))
			dl = append(dl, float64(sy.Delay))
			if sy.EffStat.N > 0 {
				bst.Efficacy.N += sy.EffStat.N
				bst.Efficacy.Sum += sy.EffStat.Sum
				bst.Efficacy.SumSq += sy.EffStat.SumSq
				if bst.Efficacy.N == sy.EffStat.N || sy.EffStat.Min < bst.Efficacy.Min {
					bst.Efficacy.Min = sy.EffStat.Min
				}
				if bst.Efficacy.N == sy.EffStat.N || sy.EffStat.Max > bst.Efficacy.Max {
					bst.Efficacy.Max = sy.EffStat.Max
				}
			}
		}
	}
	bst.Weight.SetFromSamples(ws)
	bst.Delay.SetFromSamples(dl)
	return bst
}
