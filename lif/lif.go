// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lif implements the leaky integrate-and-fire membrane dynamics used
by spiking reservoir neurons.  The membrane potential integrates stimulation
each cycle, decays toward the resting potential, and emits a discrete spike
when it crosses the firing threshold, after which it is clamped to the reset
potential for a configurable number of refractory cycles.
*/
package lif

// Params are the leaky integrate-and-fire membrane parameters, shared
// across all neurons of a group.
type Params struct {
	RestV      float32 `def:"0" desc:"resting membrane potential that the potential decays toward in the absence of stimulation"`
	ResetV     float32 `def:"0" desc:"potential the membrane is clamped to immediately after a spike"`
	ThreshV    float32 `def:"1" desc:"firing threshold -- a spike is emitted when the membrane potential reaches or exceeds this value"`
	Decay      float32 `def:"0.1" min:"0" max:"1" desc:"per-cycle proportional decay of the membrane potential toward RestV (leak)"`
	Refractory int32   `def:"1" min:"0" desc:"number of cycles after a spike during which incoming stimulation is ignored"`
}

func (lp *Params) Defaults() {
	lp.RestV = 0
	lp.ResetV = 0
	lp.ThreshV = 1
	lp.Decay = 0.1
	lp.Refractory = 1
	lp.Update()
}

func (lp *Params) Update() {
}

// State is the per-neuron membrane state.
type State struct {
	Vm         float32 `desc:"current membrane potential"`
	RefracLeft int32   `desc:"refractory cycles remaining -- stimulation is ignored while > 0"`
}

// Init resets membrane state to the resting configuration.
func (lp *Params) Init(st *State) {
	st.Vm = lp.RestV
	st.RefracLeft = 0
}

// Step advances the membrane one cycle with the given total stimulation,
// returning 1 if a spike was emitted and 0 otherwise.
func (lp *Params) Step(st *State, stim float32) float32 {
	if st.RefracLeft > 0 {
		st.RefracLeft--
		st.Vm = lp.ResetV
		return 0
	}
	st.Vm -= lp.Decay * (st.Vm - lp.RestV)
	st.Vm += stim
	if st.Vm >= lp.ThreshV {
		st.Vm = lp.ResetV
		st.RefracLeft = lp.Refractory
		return 1
	}
	return 0
}
