// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

// NeurTypes are the neuron variants.  The set is closed: the compute loop
// switches exhaustively over it.
type NeurTypes int32

const (
	// AnalogHidden is a hidden neuron with a continuous activation function.
	AnalogHidden NeurTypes = iota

	// SpikingHidden is a hidden neuron with leaky integrate-and-fire dynamics.
	SpikingHidden

	// AnalogInput mediates an externally supplied scalar directly as its signal.
	AnalogInput

	// SpikingInput republishes one planned bit of the input spike code.
	SpikingInput

	NeurTypesN
)

var neurTypesNames = []string{"AnalogHidden", "SpikingHidden", "AnalogInput", "SpikingInput"}

func (nt NeurTypes) String() string {
	if nt < 0 || nt >= NeurTypesN {
		return "NeurTypesInvalid"
	}
	return neurTypesNames[nt]
}

// IsSpiking reports whether this variant emits discrete spikes.
func (nt NeurTypes) IsSpiking() bool {
	return nt == SpikingHidden || nt == SpikingInput
}

// IsInput reports whether this variant mediates external input.
func (nt NeurTypes) IsInput() bool {
	return nt == AnalogInput || nt == SpikingInput
}

// SynRoles are the synapse roles.  Where a role implies a sign, the synapse
// weight carries that sign: inhibitory weights are negative, excitatory and
// input weights positive, indifferent weights take a random sign.
type SynRoles int32

const (
	Excitatory SynRoles = iota
	Inhibitory
	Indifferent
	Input

	SynRolesN
)

var synRolesNames = []string{"Excitatory", "Inhibitory", "Indifferent", "Input"}

func (sr SynRoles) String() string {
	if sr < 0 || sr >= SynRolesN {
		return "SynRolesInvalid"
	}
	return synRolesNames[sr]
}

// DelayMethods are the policies mapping synapse distance to signal delay.
type DelayMethods int32

const (
	// NoDelay disables delay: every synapse transmits with delay 0.
	NoDelay DelayMethods = iota

	// RandomDelay draws each delay uniformly in [0, MaxDelay].
	RandomDelay

	// DistanceDelay maps the synapse's distance into [0, MaxDelay] relative
	// to the realized distance span of its bank, so delay is a non-decreasing
	// function of distance.
	DistanceDelay

	DelayMethodsN
)

var delayMethodsNames = []string{"NoDelay", "RandomDelay", "DistanceDelay"}

func (dm DelayMethods) String() string {
	if dm < 0 || dm >= DelayMethodsN {
		return "DelayMethodsInvalid"
	}
	return delayMethodsNames[dm]
}

// SchemaKinds are the intra-pool wiring schema variants.
type SchemaKinds int32

const (
	// RandomSchema connects each target neuron to a density-derived number of
	// randomly (or distance-weighted) selected pool sources.
	RandomSchema SchemaKinds = iota

	// ChainSchema connects a shuffled subset of pool neurons pairwise into a
	// linear, optionally circular, chain.
	ChainSchema

	SchemaKindsN
)

var schemaKindsNames = []string{"RandomSchema", "ChainSchema"}

func (sk SchemaKinds) String() string {
	if sk < 0 || sk >= SchemaKindsN {
		return "SchemaKindsInvalid"
	}
	return schemaKindsNames[sk]
}
