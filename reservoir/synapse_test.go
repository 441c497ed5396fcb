// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"testing"

	"cogentcore.org/core/math32"
	"cogentcore.org/lab/base/randx"
)

// fixedSynParams returns synapse parameters with a deterministic weight
// magnitude of 0.5 and no plasticity.
func fixedSynParams() SynParams {
	var sp SynParams
	sp.Defaults()
	sp.Weight.Dist = randx.Mean
	sp.Weight.Mean = 0.5
	return sp
}

func synPair(dist float32) (src, tgt *Neuron) {
	src = &Neuron{Type: AnalogHidden, Loc: NeuronLocation{FlatIndex: 0}}
	tgt = &Neuron{Type: AnalogHidden, Loc: NeuronLocation{FlatIndex: 1,
		Coords: math32.Vec3(dist, 0, 0)}}
	return
}

func TestSynapseRoleSigns(t *testing.T) {
	rnd := randx.NewSysRand(7)
	sp := fixedSynParams()
	src, tgt := synPair(1)

	if sy := NewSynapse(src, tgt, Excitatory, &sp, rnd); sy.Weight != 0.5 {
		t.Errorf("excitatory weight %g, expected +0.5", sy.Weight)
	}
	if sy := NewSynapse(src, tgt, Input, &sp, rnd); sy.Weight != 0.5 {
		t.Errorf("input weight %g, expected +0.5", sy.Weight)
	}
	if sy := NewSynapse(src, tgt, Inhibitory, &sp, rnd); sy.Weight != -0.5 {
		t.Errorf("inhibitory weight %g, expected -0.5", sy.Weight)
	}
	pos, neg := 0, 0
	for i := 0; i < 100; i++ {
		sy := NewSynapse(src, tgt, Indifferent, &sp, rnd)
		if sy.Weight > 0 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		t.Errorf("indifferent signs not mixed: %d positive, %d negative", pos, neg)
	}
}

func TestSynapseDistance(t *testing.T) {
	rnd := randx.NewSysRand(7)
	sp := fixedSynParams()
	src, tgt := synPair(3)
	sy := NewSynapse(src, tgt, Excitatory, &sp, rnd)
	if sy.Distance != 3 {
		t.Errorf("Distance = %g, expected 3", sy.Distance)
	}
}

func TestDelayBuffer(t *testing.T) {
	rnd := randx.NewSysRand(7)
	sp := fixedSynParams()
	sp.Delay.Method = DistanceDelay
	sp.Delay.MaxDelay = 4
	src, tgt := synPair(1)
	sy := NewSynapse(src, tgt, Excitatory, &sp, rnd)
	sy.SetupDelay(&DistStats{N: 2, Min: 0, Max: 1}, rnd)
	if sy.Delay != 4 {
		t.Fatalf("Delay = %d at max relative distance, expected 4", sy.Delay)
	}

	// the signal must emerge exactly Delay cycles after it was offered
	for c := 1; c <= 10; c++ {
		src.Signal = float32(c)
		got := sy.GetSignal(false)
		exp := float32(0)
		if c > 4 {
			exp = 0.5 * float32(c-4)
		}
		if got != exp {
			t.Errorf("cycle %d: GetSignal = %g, expected %g", c, got, exp)
		}
	}
}

func TestZeroDelayPolicies(t *testing.T) {
	rnd := randx.NewSysRand(7)
	sp := fixedSynParams()
	sp.Delay.Method = NoDelay
	sp.Delay.MaxDelay = 9
	src, tgt := synPair(1)
	sy := NewSynapse(src, tgt, Excitatory, &sp, rnd)
	sy.SetupDelay(&DistStats{N: 2, Min: 0, Max: 1}, rnd)
	if sy.Delay != 0 {
		t.Errorf("NoDelay produced delay %d", sy.Delay)
	}

	sp.Delay.Method = RandomDelay
	for i := 0; i < 50; i++ {
		sy := NewSynapse(src, tgt, Excitatory, &sp, rnd)
		sy.SetupDelay(&DistStats{N: 2, Min: 0, Max: 1}, rnd)
		if sy.Delay < 0 || sy.Delay > 9 {
			t.Fatalf("RandomDelay produced delay %d outside [0, 9]", sy.Delay)
		}
	}
}

func TestSynapsePlasticity(t *testing.T) {
	rnd := randx.NewSysRand(7)
	sp := fixedSynParams()
	sp.Plast.On = true
	src, tgt := synPair(1)
	src.Type = SpikingHidden
	sy := NewSynapse(src, tgt, Excitatory, &sp, rnd)

	src.Signal = 1
	first := sy.GetSignal(true)
	exp := float32(0.5 * 0.5) // weight times resting efficacy
	if d := first - exp; d > difTol || d < -difTol {
		t.Errorf("first plastic signal %g, expected %g", first, exp)
	}
	second := sy.GetSignal(true)
	if second >= first {
		t.Errorf("efficacy did not depress: %g >= %g", second, first)
	}
	if sy.EffStat.N != 2 {
		t.Errorf("efficacy stat count %d, expected 2", sy.EffStat.N)
	}

	// silence does not consume resources
	src.Signal = 0
	if got := sy.GetSignal(true); got != 0 {
		t.Errorf("silent transmission %g, expected 0", got)
	}
}

func TestSynapseReset(t *testing.T) {
	rnd := randx.NewSysRand(7)
	sp := fixedSynParams()
	sp.Plast.On = true
	sp.Delay.Method = DistanceDelay
	sp.Delay.MaxDelay = 3
	src, tgt := synPair(1)
	src.Type = SpikingHidden
	sy := NewSynapse(src, tgt, Excitatory, &sp, rnd)
	sy.SetupDelay(&DistStats{N: 2, Min: 0, Max: 1}, rnd)

	src.Signal = 1
	for c := 0; c < 5; c++ {
		sy.GetSignal(true)
	}
	w := sy.Weight
	sy.Reset(true)
	if sy.Weight != w || sy.Delay != 3 {
		t.Error("Reset changed weight or delay")
	}
	if sy.EffStat.N != 0 {
		t.Error("Reset with stats did not clear the efficacy stat")
	}
	for c := 1; c <= 3; c++ {
		if got := sy.GetSignal(false); got != 0 {
			t.Errorf("delay buffer not cleared: got %g at cycle %d after reset", got, c)
		}
	}
}
