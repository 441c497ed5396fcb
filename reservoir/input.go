// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"math/bits"

	"cogentcore.org/core/math32"
	"cogentcore.org/lab/base/randx"
)

// InputField is the encoding unit for one external scalar input field.  It
// maintains one analog-coding neuron (direct passthrough) and a population
// of spiking neurons realizing a fixed-precision sparse code of the input
// value, supplying the source side of input synapses.
//
// Recoding happens once per cycle in NewStimulation; the neurons' state
// transition happens separately in ComputeSignal, so that all input units
// are updated before any hidden neuron consumes their output.
type InputField struct {

	// Params is the field configuration.
	Params *InputFieldParams

	// Analog is the analog-coding passthrough neuron.
	Analog *Neuron

	// Spiking is the population realizing the spike code, ordered from
	// most- to least-significant.
	Spiking []*Neuron
}

// newInputField builds the field's neurons.  Input neurons have PoolID -1
// and their own flat index sequence starting at flatStart; fi is the field
// index within the reservoir, giving the field a distinct spatial position
// for distance computation.  Returns the field and the next free flat index.
func newInputField(fp *InputFieldParams, resID, fi, flatStart int32) (*InputField, int32) {
	fl := &InputField{Params: fp}
	coords := math32.Vec3(float32(-1-fi), 0, 0)
	fl.Analog = &Neuron{
		Type: AnalogInput,
		Loc: NeuronLocation{ResID: resID, FlatIndex: flatStart, PoolID: -1,
			PoolIndex: 0, GroupID: -1, Coords: coords},
	}
	flat := flatStart + 1
	thr := 1 - fp.SpikeCode.Tolerance
	fl.Spiking = make([]*Neuron, fp.SpikeCode.Length)
	for i := range fl.Spiking {
		fl.Spiking[i] = &Neuron{
			Type:     SpikingInput,
			SpikeThr: thr,
			Loc: NeuronLocation{ResID: resID, FlatIndex: flat, PoolID: -1,
				PoolIndex: int32(i + 1), GroupID: -1, Coords: coords},
		}
		flat++
	}
	return fl, flat
}

// NewStimulation recodes the external value and stores the per-neuron
// stimulation: the raw value for the analog neuron, planned {0,1} bits for
// the spiking population.  The value is clamped into the configured range.
func (fl *InputField) NewStimulation(val float32) {
	fp := fl.Params
	val = math32.Clamp(val, fp.Range.Min, fp.Range.Max)
	fl.Analog.NewStimulation(val, 0)
	sc := &fp.SpikeCode
	l := int(sc.Length)
	if sc.SplitPolarity {
		half := l / 2
		mid := (fp.Range.Min + fp.Range.Max) / 2
		span := (fp.Range.Max - fp.Range.Min) / 2
		norm := (val - mid) / span // in [-1, 1]
		k := activeBits(math32.Abs(norm), half)
		pos := norm >= 0
		for i := 0; i < half; i++ {
			fl.Spiking[i].NewStimulation(bitVal(pos && i < k), 0)
		}
		for i := 0; i < half; i++ {
			fl.Spiking[half+i].NewStimulation(bitVal(!pos && i < k), 0)
		}
		return
	}
	norm := (val - fp.Range.Min) / (fp.Range.Max - fp.Range.Min)
	k := activeBits(norm, l)
	for i := 0; i < l; i++ {
		fl.Spiking[i].NewStimulation(bitVal(i < k), 0)
	}
}

// activeBits quantizes norm in [0, 1] into 2^length precision steps and
// returns the number of active bits of the resulting code, which is the
// count of spiking neurons to assert.
func activeBits(norm float32, length int) int {
	steps := uint64(1)<<uint(length) - 1
	code := uint64(norm*float32(steps) + 0.5)
	if code > steps {
		code = steps
	}
	return bits.OnesCount64(code)
}

func bitVal(on bool) float32 {
	if on {
		return 1
	}
	return 0
}

// ComputeSignal performs the state transition of all the field's neurons,
// publishing the recoded values as signals.
func (fl *InputField) ComputeSignal() {
	fl.Analog.Recompute()
	for _, nrn := range fl.Spiking {
		nrn.Recompute()
	}
}

// Reset returns all the field's neurons to their initial state.
func (fl *InputField) Reset() {
	fl.Analog.Init()
	for _, nrn := range fl.Spiking {
		nrn.Init()
	}
}

// SpikeCombinations plans, for numTargets spiking target neurons, the
// combination of spiking input neurons backing each target's synapses.
// Combinations are sized so that usage of the whole population is
// approximately even across targets, and every input neuron appears in at
// least one combination when numTargets > 0.
func (fl *InputField) SpikeCombinations(numTargets int, rnd randx.Rand) [][]int32 {
	if numTargets <= 0 {
		return nil
	}
	l := len(fl.Spiking)
	order := make([]int, l)
	for i := range order {
		order[i] = i
	}
	randx.PermuteInts(order, rnd)
	size := (l + numTargets - 1) / numTargets
	if size < 1 {
		size = 1
	}
	combs := make([][]int32, numTargets)
	slot := 0
	for t := range combs {
		comb := make([]int32, 0, size)
		for j := 0; j < size; j++ {
			comb = append(comb, int32(order[slot%l]))
			slot++
		}
		combs[t] = comb
	}
	return combs
}
