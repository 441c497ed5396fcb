// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// BasicStat is a running sample statistic accumulator: count, mean, standard
// deviation, min, and max, updated one value at a time.
type BasicStat struct {

	// N is the number of samples accumulated.
	N int64

	// Sum of samples.
	Sum float64

	// SumSq is the sum of squared samples.
	SumSq float64

	// Min sample value, valid when N > 0.
	Min float32

	// Max sample value, valid when N > 0.
	Max float32
}

// Reset clears all accumulated samples.
func (bs *BasicStat) Reset() {
	*bs = BasicStat{}
}

// Add accumulates one sample.
func (bs *BasicStat) Add(v float32) {
	if bs.N == 0 || v < bs.Min {
		bs.Min = v
	}
	if bs.N == 0 || v > bs.Max {
		bs.Max = v
	}
	bs.N++
	bs.Sum += float64(v)
	bs.SumSq += float64(v) * float64(v)
}

// Mean returns the sample mean, 0 if empty.
func (bs *BasicStat) Mean() float32 {
	if bs.N == 0 {
		return 0
	}
	return float32(bs.Sum / float64(bs.N))
}

// StdDev returns the population standard deviation, 0 if empty.
func (bs *BasicStat) StdDev() float32 {
	if bs.N == 0 {
		return 0
	}
	n := float64(bs.N)
	mean := bs.Sum / n
	vr := bs.SumSq/n - mean*mean
	if vr <= 0 {
		return 0
	}
	return float32(math.Sqrt(vr))
}

// Span returns Max - Min, 0 if empty.
func (bs *BasicStat) Span() float32 {
	if bs.N == 0 {
		return 0
	}
	return bs.Max - bs.Min
}

// DistStats summarize a realized population of scalar values (synapse
// distances, weights, delays) computed in one batch once the population is
// complete.
type DistStats struct {
	N      int
	Mean   float32
	StdDev float32
	Min    float32
	Max    float32
}

// SetFromSamples computes the statistics from the given samples.
func (ds *DistStats) SetFromSamples(vals []float64) {
	*ds = DistStats{N: len(vals)}
	if len(vals) == 0 {
		return
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if math.IsNaN(std) { // single sample
		std = 0
	}
	ds.Mean = float32(mean)
	ds.StdDev = float32(std)
	mn, mx := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	ds.Min = float32(mn)
	ds.Max = float32(mx)
}

// Span returns Max - Min.
func (ds *DistStats) Span() float32 {
	return ds.Max - ds.Min
}

// GroupStats are running per-group simulation statistics, accumulated when
// Compute is called with updateStats.
type GroupStats struct {

	// Name of the group.
	Name string

	// Neurons is the realized neuron count of the group.
	Neurons int32

	// Signal accumulates neuron output signals across cycles.
	Signal BasicStat

	// Stim accumulates total neuron stimulation across cycles.
	Stim BasicStat

	// Spikes is the total number of spikes emitted by the group.
	Spikes int64
}

// PoolStats are running per-pool simulation statistics.
type PoolStats struct {
	Name   string
	Groups []GroupStats
}

// BankStats describe one connection bank in a snapshot.
type BankStats struct {

	// Name of the bank ("Input" or "Recurrent").
	Name string

	// NumSynapses is the synapse count of the bank.
	NumSynapses int

	// Distance summarizes synapse Euclidean distances.
	Distance DistStats

	// Weight summarizes synapse weights (post-normalization).
	Weight DistStats

	// Delay summarizes synapse delays in cycles.
	Delay DistStats

	// Efficacy accumulates short-term-plasticity efficacies applied to
	// transmitted spikes, when statistics updates are enabled.
	Efficacy BasicStat
}

// GroupSnapshot extends GroupStats with structural anomaly counters.
type GroupSnapshot struct {
	GroupStats

	// NeverFired is the number of spiking neurons that have not emitted a
	// single spike since the last reset.  A value equal to Neurons flags a
	// silenced group; 0 together with Spikes == cycles*Neurons flags an
	// always-firing group.
	NeverFired int32
}

// PoolSnapshot is the per-pool part of a statistics snapshot.
type PoolSnapshot struct {
	Name    string
	Neurons int32
	Groups  []GroupSnapshot
}

// Snapshot is a point-in-time statistics report for diagnostics: per-pool
// and per-group signal, stimulation, firing and anomaly counters, plus
// per-bank synapse structure statistics.
type Snapshot struct {
	Name          string
	Cycle         int64
	NumNeurons    int
	NumPredictors int
	Pools         []PoolSnapshot
	Banks         []BankStats
}
