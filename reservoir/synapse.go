// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"cogentcore.org/core/math32"
	"cogentcore.org/lab/base/randx"
	"github.com/rescomp/reservoir/stp"
)

// Synapse is a directed, weighted, delayed connection between a source and
// a target neuron.  It owns a short-term-plasticity state machine (for
// spiking sources) and a circular delay buffer of pending signals.
//
// Weight may be rescaled in place by the weight normalizer during
// construction, never once simulation has started.  Delay is fixed by
// SetupDelay after the owning bank is complete; the buffer contents and
// plasticity state evolve every cycle.
type Synapse struct {

	// Source is the presynaptic neuron.
	Source *Neuron

	// Target is the postsynaptic neuron.
	Target *Neuron

	// Role of the connection; determines the weight sign convention.
	Role SynRoles

	// Weight is the signed connection weight.
	Weight float32

	// Distance is the Euclidean distance between the endpoints, computed
	// once at creation.
	Distance float32

	// Delay is the signal delay in cycles, in [0, MaxDelay], assigned by
	// SetupDelay and fixed afterwards.
	Delay int32

	// Plast is this synapse's short-term plasticity configuration (copied
	// from the originating schema).
	Plast stp.Params

	// PlastState is the efficacy state, evolving with presynaptic spikes.
	PlastState stp.State

	// EffStat accumulates applied efficacies when statistics are enabled.
	EffStat BasicStat

	// delay holds the originating schema's delay policy until SetupDelay runs.
	delay DelayParams

	// queue is the circular delay buffer, length Delay+1.
	queue []float32

	// qpos is the current write position in queue.
	qpos int32

	// sinceSpike counts cycles since the last transmitted presynaptic spike,
	// for plasticity decay.
	sinceSpike int32
}

// NewSynapse creates a synapse between source and target with the given
// role, drawing the weight magnitude from the schema's distribution and
// applying the role sign convention: positive for Excitatory and Input,
// negative for Inhibitory, random sign for Indifferent.
func NewSynapse(src, tgt *Neuron, role SynRoles, sp *SynParams, rnd randx.Rand) *Synapse {
	sy := &Synapse{Source: src, Target: tgt, Role: role}
	sy.Distance = src.Loc.DistTo(&tgt.Loc)
	w := math32.Abs(float32(sp.Weight.Gen(rnd)))
	switch role {
	case Inhibitory:
		w = -w
	case Indifferent:
		if rnd.Float64() < 0.5 {
			w = -w
		}
	}
	sy.Weight = w
	sy.Plast = sp.Plast
	sy.Plast.Init(&sy.PlastState)
	sy.delay = sp.Delay
	sy.queue = make([]float32, 1)
	return sy
}

// SetupDelay assigns the synapse's delay from its distance and the owning
// bank's realized distance statistics, per the schema's delay policy.  Must
// run only after all synapses of the bank exist, because the Distance policy
// maps into the bank-wide distance span.
func (sy *Synapse) SetupDelay(dstat *DistStats, rnd randx.Rand) {
	dp := &sy.delay
	switch {
	case dp.MaxDelay <= 0 || dp.Method == NoDelay:
		sy.Delay = 0
	case dp.Method == RandomDelay:
		sy.Delay = int32(rnd.Intn(int(dp.MaxDelay) + 1))
	default: // DistanceDelay
		span := dstat.Span()
		if span <= 0 {
			sy.Delay = 0
		} else {
			rel := (sy.Distance - dstat.Min) / span
			sy.Delay = int32(rel * float32(dp.MaxDelay))
			if sy.Delay > dp.MaxDelay {
				sy.Delay = dp.MaxDelay
			}
		}
	}
	sy.queue = make([]float32, sy.Delay+1)
	sy.qpos = 0
}

// GetSignal pushes the source neuron's current output into the delay
// buffer, pops the signal that has aged the configured delay, applies
// short-term-plasticity efficacy (spiking sources only), and returns the
// weighted contribution to the target's stimulation.
func (sy *Synapse) GetSignal(updateStats bool) float32 {
	sig := sy.Source.Signal
	if sy.Plast.On && sy.Source.Type.IsSpiking() {
		sy.sinceSpike++
		if sig > 0 {
			eff := sy.Plast.Efficacy(&sy.PlastState, float32(sy.sinceSpike))
			sy.sinceSpike = 0
			if updateStats {
				sy.EffStat.Add(eff)
			}
			sig *= eff
		}
	}
	sy.queue[sy.qpos] = sig
	sy.qpos++
	if sy.qpos == int32(len(sy.queue)) {
		sy.qpos = 0
	}
	return sy.Weight * sy.queue[sy.qpos]
}

// Rescale multiplies the weight in place.  Used only by the weight
// normalizer during construction.
func (sy *Synapse) Rescale(factor float32) {
	sy.Weight *= factor
}

// Reset clears the delay buffer and plasticity state, and optionally the
// accumulated statistics.  Weight and delay are untouched.
func (sy *Synapse) Reset(stats bool) {
	for i := range sy.queue {
		sy.queue[i] = 0
	}
	sy.qpos = 0
	sy.sinceSpike = 0
	sy.Plast.Init(&sy.PlastState)
	if stats {
		sy.EffStat.Reset()
	}
}
