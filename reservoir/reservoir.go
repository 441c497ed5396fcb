// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"fmt"

	"cogentcore.org/lab/base/randx"
)

// Reservoir is a fixed, randomly wired recurrent network of analog and
// spiking neurons.  Construction (NewReservoir) realizes the topology from
// the configuration and consumes all randomness; simulation (SetInput,
// Compute) is deterministic and structurally read-only afterwards, so the
// same configuration and seed always yield bit-identical trajectories.
//
// A Reservoir is not safe for concurrent use: Compute itself parallelizes
// internally, but callers must serialize cycles.
type Reservoir struct {

	// Params is the configuration the reservoir was built from.  Read-only
	// after construction.
	Params *Params

	// ID distinguishes this instance when several reservoirs coexist.
	ID int32

	// Neurons are all hidden neurons in flat index order, pools contiguous.
	Neurons []*Neuron

	// Pools are the materialized pools, in configuration order.
	Pools []*Pool

	// Fields are the input encoding units, in configuration order.
	Fields []*InputField

	// InputBank holds the synapses originating from input neurons.
	InputBank *ConnBank

	// RecurBank holds the recurrent synapses between hidden neurons.
	RecurBank *ConnBank

	// Cycle is the number of completed compute cycles since the last reset.
	Cycle int64

	// Stats are the running per-pool simulation statistics, accumulated when
	// Compute runs with updateStats.
	Stats []PoolStats

	// ranges is the fixed fork-join partition of the flat neuron range.
	ranges [][2]int32

	// numInputNeurons is the total count of input neurons across fields.
	numInputNeurons int

	// numPredictors is the total predictor count across all neurons.
	numPredictors int
}

// NewReservoir validates the configuration and builds the reservoir: input
// encoding units, pools, synapse wiring, delay assignment, and weight
// normalization.  All randomness is drawn from rnd, so an identical
// configuration and generator state reproduces the reservoir exactly.
func NewReservoir(params *Params, id int32, rnd randx.Rand) (*Reservoir, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	rs := &Reservoir{Params: params, ID: id}
	rs.buildFields()
	if err := rs.buildPools(rnd); err != nil {
		return nil, err
	}
	rs.InputBank = NewConnBank("Input", len(rs.Neurons))
	rs.RecurBank = NewConnBank("Recurrent", len(rs.Neurons))
	if err := rs.wireInputs(rnd); err != nil {
		return nil, err
	}
	if err := rs.applySchemas(rnd); err != nil {
		return nil, err
	}
	if err := rs.wireInterPool(rnd); err != nil {
		return nil, err
	}
	// delay setup is per bank against that bank's full distance statistics,
	// so the banks are processed whole, never interleaved
	rs.InputBank.UpdateDistStats()
	rs.InputBank.SetupDelays(rnd)
	rs.RecurBank.UpdateDistStats()
	rs.RecurBank.SetupDelays(rnd)
	if err := rs.normalize(); err != nil {
		return nil, err
	}
	rs.ranges = splitRanges(len(rs.Neurons), params.NThreads)
	for _, nrn := range rs.Neurons {
		if nrn.Preds != nil {
			rs.numPredictors += nrn.Preds.Params.NumEnabled()
		}
	}
	rs.initStats()
	return rs, nil
}

// NewReservoirSeed is a convenience wrapper building a reservoir from a
// fresh seeded generator.
func NewReservoirSeed(params *Params, id int32, seed int64) (*Reservoir, error) {
	return NewReservoir(params, id, randx.NewSysRand(seed))
}

// NumNeurons returns the hidden neuron count.
func (rs *Reservoir) NumNeurons() int {
	return len(rs.Neurons)
}

// NumInputNeurons returns the total input neuron count across all fields.
func (rs *Reservoir) NumInputNeurons() int {
	return rs.numInputNeurons
}

// NumPredictors returns the total number of predictor values the reservoir
// exposes, the length CopyPredictorsTo requires.
func (rs *Reservoir) NumPredictors() int {
	return rs.numPredictors
}

// SetInput stores one external value per input field for the next Compute.
// Must be called exactly once before every Compute; the per-cycle contract
// of the underlying neurons enforces this.
func (rs *Reservoir) SetInput(vals []float32) error {
	if len(vals) != len(rs.Fields) {
		return fmt.Errorf("reservoir %s: SetInput got %d values for %d input fields",
			rs.Params.Name, len(vals), len(rs.Fields))
	}
	for fi, fl := range rs.Fields {
		fl.NewStimulation(vals[fi])
	}
	return nil
}

// Compute runs one synchronous cycle: input encoding units publish their
// recoded signals, then all hidden neurons gather their stimulation from
// both banks in parallel, and only after every neuron has gathered does the
// parallel state transition run.  The strict two-pass barrier means every
// synapse reads its source's previous-cycle signal, regardless of
// evaluation order.  With updateStats, per-group statistics are accumulated
// in a serial pass afterwards.
func (rs *Reservoir) Compute(updateStats bool) {
	for _, fl := range rs.Fields {
		fl.ComputeSignal()
	}
	runParallel(rs.ranges, func(lo, hi int32) {
		for ni := lo; ni < hi; ni++ {
			iSum := float32(0)
			for _, sy := range rs.InputBank.Slots[ni].Syns {
				iSum += sy.GetSignal(updateStats)
			}
			rSum := float32(0)
			for _, sy := range rs.RecurBank.Slots[ni].Syns {
				rSum += sy.GetSignal(updateStats)
			}
			rs.Neurons[ni].NewStimulation(iSum, rSum)
		}
	})
	runParallel(rs.ranges, func(lo, hi int32) {
		for ni := lo; ni < hi; ni++ {
			rs.Neurons[ni].Recompute()
		}
	})
	rs.Cycle++
	if updateStats {
		rs.accumStats()
	}
}

// Boot runs the given number of zero-input cycles, letting delay buffers
// fill and recurrent activity settle before meaningful input arrives.
func (rs *Reservoir) Boot(cycles int) {
	zero := make([]float32, len(rs.Fields))
	for c := 0; c < cycles; c++ {
		// zero has one value per field, so SetInput cannot fail
		if err := rs.SetInput(zero); err != nil {
			panic(err)
		}
		rs.Compute(false)
	}
}

// DefaultBootCycles returns a reasonable boot cycle count for this
// topology: the neuron count of the largest set of pools connected through
// inter-pool connections, or the longest predictor history window,
// whichever is larger.
func (rs *Reservoir) DefaultBootCycles() int {
	// union-find over pools joined by inter-pool connections
	parent := make([]int, len(rs.Pools))
	for i := range parent {
		parent[i] = i
	}
	var find func(i int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for ii := range rs.Params.InterPool {
		ip := &rs.Params.InterPool[ii]
		a := find(int(rs.PoolByName(ip.SourcePool).ID))
		b := find(int(rs.PoolByName(ip.TargetPool).ID))
		if a != b {
			parent[a] = b
		}
	}
	region := make(map[int]int)
	best := 0
	for pi, pl := range rs.Pools {
		r := find(pi)
		region[r] += int(pl.NumNeurons())
		if region[r] > best {
			best = region[r]
		}
	}
	for _, pl := range rs.Pools {
		for _, grp := range pl.Groups {
			if h := int(grp.Params.Predictors.RequiredHistory()); h > best {
				best = h
			}
		}
	}
	return best
}

// Reset returns the reservoir to its post-construction state: neuron state,
// delay buffers, and plasticity state cleared, topology, weights, and
// delays untouched.  With resetStats, accumulated statistics are cleared
// too.  A reset reservoir reproduces its trajectory bit-identically for the
// same input sequence.
func (rs *Reservoir) Reset(resetStats bool) {
	for _, fl := range rs.Fields {
		fl.Reset()
	}
	for _, nrn := range rs.Neurons {
		nrn.Init()
		if resetStats {
			nrn.ResetStats()
		}
	}
	rs.InputBank.Reset(resetStats)
	rs.RecurBank.Reset(resetStats)
	rs.Cycle = 0
	if resetStats {
		rs.initStats()
	}
}

// CopyPredictorsTo writes all enabled predictor values into buf starting at
// off, in flat neuron order with each neuron's predictors in their fixed
// order, and returns the number of values written (always NumPredictors).
// buf must have room for off + NumPredictors values.
func (rs *Reservoir) CopyPredictorsTo(buf []float64, off int) int {
	n := 0
	for _, nrn := range rs.Neurons {
		if nrn.Preds != nil {
			n += nrn.Preds.CopyTo(buf, off+n)
		}
	}
	return n
}

// initStats allocates the per-pool statistics accumulators.
func (rs *Reservoir) initStats() {
	rs.Stats = make([]PoolStats, len(rs.Pools))
	for pi, pl := range rs.Pools {
		ps := &rs.Stats[pi]
		ps.Name = pl.Params.Name
		ps.Groups = make([]GroupStats, len(pl.Groups))
		for gi, grp := range pl.Groups {
			ps.Groups[gi].Name = grp.Params.Name
			ps.Groups[gi].Neurons = grp.Neurons
		}
	}
}

// accumStats folds the current cycle's signals into the per-group running
// statistics.  Runs serially after the parallel passes, so the accumulation
// order is fixed and the sums reproducible.
func (rs *Reservoir) accumStats() {
	for pi, pl := range rs.Pools {
		ps := &rs.Stats[pi]
		for i := pl.StIndex; i < pl.EdIndex; i++ {
			nrn := rs.Neurons[i]
			gs := &ps.Groups[nrn.Loc.GroupID]
			gs.Signal.Add(nrn.Signal)
			gs.Stim.Add(nrn.TotalStim)
			if nrn.Type.IsSpiking() && nrn.Signal > 0 {
				gs.Spikes++
			}
		}
	}
}

// Snapshot assembles a point-in-time statistics report: the running
// per-group statistics extended with anomaly counters, plus structural
// statistics of both banks.
func (rs *Reservoir) Snapshot() *Snapshot {
	sn := &Snapshot{
		Name:          rs.Params.Name,
		Cycle:         rs.Cycle,
		NumNeurons:    len(rs.Neurons),
		NumPredictors: rs.numPredictors,
	}
	sn.Pools = make([]PoolSnapshot, len(rs.Pools))
	for pi, pl := range rs.Pools {
		psn := &sn.Pools[pi]
		psn.Name = pl.Params.Name
		psn.Neurons = pl.NumNeurons()
		psn.Groups = make([]GroupSnapshot, len(pl.Groups))
		for gi := range pl.Groups {
			psn.Groups[gi].GroupStats = rs.Stats[pi].Groups[gi]
		}
		for i := pl.StIndex; i < pl.EdIndex; i++ {
			nrn := rs.Neurons[i]
			if nrn.Type.IsSpiking() && !nrn.AfterFirstSpike {
				psn.Groups[nrn.Loc.GroupID].NeverFired++
			}
		}
	}
	sn.Banks = []BankStats{rs.InputBank.Stats(), rs.RecurBank.Stats()}
	return sn
}
