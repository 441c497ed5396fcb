// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"math/bits"

	"cogentcore.org/core/math32"
)

// Predictors is the optional per-neuron predictor collection: derived scalar
// statistics of the neuron's activity exposed as features to the downstream
// readout.  The enabled set is fixed at construction.
type Predictors struct {

	// Params is the shared group-level predictor configuration.
	Params *PredictorParams

	// LastSig is the neuron signal at the most recent update.
	LastSig float32

	// ActFading is the exponentially fading sum of signal values.
	ActFading float32

	// FireFading is the exponentially fading sum of emitted spikes.
	FireFading float32

	// SpikeHist is the trailing spike history, most recent cycle in bit 0,
	// masked to the configured window.
	SpikeHist uint64
}

// NewPredictors returns a predictor collection for the given configuration,
// or nil if no predictors are enabled.
func NewPredictors(pp *PredictorParams) *Predictors {
	if pp.NumEnabled() == 0 {
		return nil
	}
	return &Predictors{Params: pp}
}

// Reset clears all predictor state.
func (pd *Predictors) Reset() {
	pd.LastSig = 0
	pd.ActFading = 0
	pd.FireFading = 0
	pd.SpikeHist = 0
}

// Update advances predictor state with the neuron's new signal and whether
// it spiked this cycle.
func (pd *Predictors) Update(sig float32, spiked bool) {
	pp := pd.Params
	pd.LastSig = sig
	pd.ActFading = pd.ActFading*(1-pp.ActFadingStrength) + sig
	spike := float32(0)
	bit := uint64(0)
	if spiked {
		spike = 1
		bit = 1
	}
	pd.FireFading = pd.FireFading*(1-pp.FireFadingStrength) + spike
	mask := uint64(1)<<uint(pp.Window) - 1
	pd.SpikeHist = (pd.SpikeHist<<1 | bit) & mask
}

// CopyTo writes the enabled predictor values into buf starting at off,
// returning the number of values written.  The order is fixed: Activation,
// ActivationPower, ActivationFadingSum, FiringFadingSum, FiringMovingAvg,
// FiringCount.
func (pd *Predictors) CopyTo(buf []float64, off int) int {
	pp := pd.Params
	n := 0
	put := func(v float64) {
		buf[off+n] = v
		n++
	}
	if pp.Activation {
		put(float64(pd.LastSig))
	}
	if pp.ActivationPower {
		p := math32.Pow(math32.Abs(pd.LastSig), pp.PowerExp)
		if pd.LastSig < 0 {
			p = -p
		}
		put(float64(p))
	}
	if pp.ActivationFadingSum {
		put(float64(pd.ActFading))
	}
	if pp.FiringFadingSum {
		put(float64(pd.FireFading))
	}
	if pp.FiringMovingAvg {
		put(float64(bits.OnesCount64(pd.SpikeHist)) / float64(pp.Window))
	}
	if pp.FiringCount {
		put(float64(bits.OnesCount64(pd.SpikeHist)))
	}
	return n
}
