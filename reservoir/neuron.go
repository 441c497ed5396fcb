// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"github.com/rescomp/reservoir/actfn"
	"github.com/rescomp/reservoir/lif"
)

// Neuron holds the state of one reservoir neuron.  The variant set is
// closed (NeurTypes) and switched exhaustively in Recompute.  Parameter
// objects (activation function, membrane dynamics) are shared per group;
// all per-neuron state is flat in this struct.
//
// The per-cycle contract is strict: NewStimulation stores incoming sums
// without reacting, Recompute is the only state transition and must be
// called exactly once per stored stimulation.  Violations panic.
type Neuron struct {

	// Type is the neuron variant.
	Type NeurTypes

	// Loc is the immutable location: reservoir, pool, group, 3D coordinates.
	Loc NeuronLocation

	// AFn is the shared analog activation function, nil for non-analog-hidden.
	AFn *actfn.Params

	// Spk is the shared spiking membrane parameters, nil for non-spiking-hidden.
	Spk *lif.Params

	// Bias added to stimulation every cycle, drawn once at instantiation.
	Bias float32

	// Retainment is the leak coefficient for analog neurons: share of the
	// previous signal blended into the new one.  0 means no retainment.
	Retainment float32

	// SpikeThr is the signal threshold for SpikingInput neurons: a planned
	// bit at or above it counts as a spike.
	SpikeThr float32

	// Signal is the current output communicated to other neurons: analog
	// activation, or 0/1 spike.
	Signal float32

	// PrevSignal is the signal of the previous cycle.
	PrevSignal float32

	// IStim is the stored sum of input-bank synapse signals.
	IStim float32

	// RStim is the stored sum of recurrent-bank synapse signals.
	RStim float32

	// TotalStim is the combined stimulation of the last Recompute.
	TotalStim float32

	// Vm is the membrane state for spiking hidden neurons.
	Vm lif.State

	// SpikeLeak counts cycles since the last emitted spike: 0 on the spike
	// cycle, incremented every non-spiking cycle.
	SpikeLeak int32

	// AfterFirstSpike is set permanently once the neuron emits its first
	// spike after a reset.
	AfterFirstSpike bool

	// Spikes counts spikes emitted since the last statistics reset.
	Spikes int64

	// Preds is the predictor collection, nil when no predictors are enabled.
	Preds *Predictors

	// hasStim guards the NewStimulation / Recompute phase contract.
	hasStim bool
}

// Init resets the neuron's dynamic state to initial values.  Parameters,
// location, and topology are untouched.
func (nrn *Neuron) Init() {
	nrn.Signal = 0
	nrn.PrevSignal = 0
	nrn.IStim = 0
	nrn.RStim = 0
	nrn.TotalStim = 0
	nrn.SpikeLeak = 0
	nrn.AfterFirstSpike = false
	nrn.hasStim = false
	if nrn.Spk != nil {
		nrn.Spk.Init(&nrn.Vm)
	}
	if nrn.Preds != nil {
		nrn.Preds.Reset()
	}
}

// ResetStats clears accumulated statistics counters.
func (nrn *Neuron) ResetStats() {
	nrn.Spikes = 0
}

// NewStimulation stores incoming stimulation sums for the next Recompute.
// It does not change any externally visible state.
func (nrn *Neuron) NewStimulation(iStim, rStim float32) {
	if nrn.hasStim {
		panic("reservoir: NewStimulation called twice without Recompute on neuron " + nrn.Type.String())
	}
	nrn.IStim = iStim
	nrn.RStim = rStim
	nrn.hasStim = true
}

// Recompute performs the neuron's single per-cycle state transition from
// the stimulation stored by NewStimulation, and returns whether the neuron
// spiked.  Calling it without a preceding NewStimulation is a programming
// error and panics.
func (nrn *Neuron) Recompute() bool {
	if !nrn.hasStim {
		panic("reservoir: Recompute called without preceding NewStimulation on neuron " + nrn.Type.String())
	}
	nrn.hasStim = false
	nrn.PrevSignal = nrn.Signal
	spiked := false
	switch nrn.Type {
	case AnalogHidden:
		nrn.TotalStim = nrn.IStim + nrn.RStim + nrn.Bias
		sig := nrn.AFn.Eval(nrn.TotalStim)
		if nrn.Retainment > 0 {
			sig = nrn.Retainment*nrn.PrevSignal + (1-nrn.Retainment)*sig
		}
		nrn.Signal = sig
	case SpikingHidden:
		nrn.TotalStim = nrn.IStim + nrn.RStim + nrn.Bias
		spike := nrn.Spk.Step(&nrn.Vm, nrn.TotalStim)
		nrn.Signal = spike
		spiked = spike > 0
	case AnalogInput:
		// republish the externally supplied value as-is
		nrn.TotalStim = nrn.IStim
		nrn.Signal = nrn.IStim
	case SpikingInput:
		nrn.TotalStim = nrn.IStim
		if nrn.IStim >= nrn.SpikeThr {
			nrn.Signal = 1
			spiked = true
		} else {
			nrn.Signal = 0
		}
	}
	if spiked {
		nrn.SpikeLeak = 0
		nrn.AfterFirstSpike = true
		nrn.Spikes++
	} else {
		nrn.SpikeLeak++
	}
	if nrn.Preds != nil {
		nrn.Preds.Update(nrn.Signal, spiked)
	}
	return spiked
}

// GetSignal returns the neuron's current output signal.
func (nrn *Neuron) GetSignal() float32 {
	return nrn.Signal
}
