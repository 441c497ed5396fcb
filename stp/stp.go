// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package stp implements short-term plasticity (synaptic efficacy) following
the Tsodyks-Markram model.  Each plastic synapse carries a State with a
utilization variable (facilitation) and a resources variable (depression).
Between presynaptic spikes both relax exponentially toward their resting
values with their respective time constants; on each spike the instantaneous
efficacy is the product of the two, utilization is incremented and resources
are consumed.
*/
package stp

import "cogentcore.org/core/math32"

// Params are the short-term plasticity parameters for a synapse population.
type Params struct {
	On              bool    `desc:"whether short-term plasticity is applied -- when off, efficacy is constant 1"`
	RestingEfficacy float32 `def:"0.5" min:"0" max:"1" desc:"resting release probability U -- the utilization value that facilitation decays back toward"`
	TauFacilitation float32 `def:"10" min:"1" desc:"time constant, in cycles, of utilization decay back toward RestingEfficacy"`
	TauDepression   float32 `def:"50" min:"1" desc:"time constant, in cycles, of resource recovery back toward 1"`
}

func (sp *Params) Defaults() {
	sp.On = true
	sp.RestingEfficacy = 0.5
	sp.TauFacilitation = 10
	sp.TauDepression = 50
	sp.Update()
}

func (sp *Params) Update() {
}

// State is the per-synapse plasticity state.
type State struct {
	U float32 `desc:"utilization (facilitation) variable -- release probability at the next spike"`
	R float32 `desc:"resources (depression) variable -- fraction of neurotransmitter available"`
}

// Init resets plasticity state to resting values.
func (sp *Params) Init(st *State) {
	st.U = sp.RestingEfficacy
	st.R = 1
}

// Efficacy returns the signal transmission efficacy for a presynaptic spike
// arriving elapsed cycles after the previous one, and updates state for the
// spike.  Must be called once per presynaptic spike.
func (sp *Params) Efficacy(st *State, elapsed float32) float32 {
	if !sp.On {
		return 1
	}
	if elapsed > 0 {
		fd := math32.FastExp(-elapsed / sp.TauFacilitation)
		st.U = sp.RestingEfficacy + (st.U-sp.RestingEfficacy)*fd
		rd := math32.FastExp(-elapsed / sp.TauDepression)
		st.R = 1 + (st.R-1)*rd
	}
	eff := st.U * st.R
	st.R -= eff
	st.U += sp.RestingEfficacy * (1 - st.U)
	return eff
}
