// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"math"
	"math/cmplx"
	"testing"

	"cogentcore.org/core/math32"
	"gonum.org/v1/gonum/mat"
)

func vec3i(i int) math32.Vector3 {
	return math32.Vec3(float32(i), 0, 0)
}

// analogParams is a 100 neuron TanH pool driven by one analog-coded input
// field, random schema density 0.1, spectral scaling on.
func analogParams() *Params {
	ps := &Params{
		Name:       "analog",
		Fields:     []InputFieldParams{{Name: "in"}},
		Pools:      []PoolParams{{Name: "main", Groups: []GroupParams{{Name: "tanh"}}, Schemas: []SchemaParams{{}}}},
		InputConns: []InputConnParams{{Field: "in", Pool: "main"}},
	}
	ps.Defaults()
	ps.Pools[0].DimX, ps.Pools[0].DimY, ps.Pools[0].DimZ = 10, 10, 1
	ps.InputConns[0].AnalogDensity = 1
	ps.InputConns[0].SpikingDensity = 0
	return ps
}

// spikingParams is a 50 neuron LIF pool driven by one spike-coded input
// field, with homogeneous-excitability balancing on.
func spikingParams() *Params {
	ps := &Params{
		Name:       "spiking",
		Fields:     []InputFieldParams{{Name: "in"}},
		Pools:      []PoolParams{{Name: "spike", Groups: []GroupParams{{Name: "lif"}}, Schemas: []SchemaParams{{}}}},
		InputConns: []InputConnParams{{Field: "in", Pool: "spike"}},
	}
	ps.Defaults()
	ps.Pools[0].DimX, ps.Pools[0].DimY, ps.Pools[0].DimZ = 10, 5, 1
	ps.Pools[0].Groups[0].Type = SpikingHidden
	ps.Pools[0].Groups[0].Predictors.FiringCount = true
	ps.Norm.Homogeneous.On = true
	return ps
}

// twoPoolParams is two small analog pools with a directed inter-pool
// connection from a to b.
func twoPoolParams() *Params {
	ps := &Params{
		Name: "twopool",
		Pools: []PoolParams{
			{Name: "a", Groups: []GroupParams{{Name: "g"}}, Schemas: []SchemaParams{{}}},
			{Name: "b", Groups: []GroupParams{{Name: "g"}}, Schemas: []SchemaParams{{}}},
		},
		InterPool: []InterPoolParams{{SourcePool: "a", TargetPool: "b"}},
	}
	ps.Defaults()
	for pi := range ps.Pools {
		ps.Pools[pi].DimX, ps.Pools[pi].DimY, ps.Pools[pi].DimZ = 3, 3, 1
	}
	return ps
}

func runCycles(t *testing.T, rs *Reservoir, vals []float32, cycles int, stats bool) {
	t.Helper()
	for c := 0; c < cycles; c++ {
		if err := rs.SetInput(vals); err != nil {
			t.Fatal(err)
		}
		rs.Compute(stats)
	}
}

func TestGroupShares(t *testing.T) {
	ps := &Params{
		Name: "shares",
		Pools: []PoolParams{{Name: "main",
			Groups:  []GroupParams{{Name: "big"}, {Name: "small"}},
			Schemas: []SchemaParams{{}}}},
	}
	ps.Defaults()
	ps.Pools[0].DimX, ps.Pools[0].DimY, ps.Pools[0].DimZ = 8, 5, 1
	ps.Pools[0].Groups[0].Share = 3
	ps.Pools[0].Groups[1].Share = 1

	rs, err := NewReservoirSeed(ps, 0, 21)
	if err != nil {
		t.Fatal(err)
	}
	pl := rs.Pools[0]
	if pl.Groups[0].Neurons != 30 || pl.Groups[1].Neurons != 10 {
		t.Errorf("group counts %d/%d for shares 3:1 of 40, expected 30/10", pl.Groups[0].Neurons, pl.Groups[1].Neurons)
	}
	counts := make([]int32, 2)
	for i := pl.StIndex; i < pl.EdIndex; i++ {
		counts[rs.Neurons[i].Loc.GroupID]++
	}
	if counts[0] != 30 || counts[1] != 10 {
		t.Errorf("realized group membership %v, expected [30 10]", counts)
	}
}

func TestSpectralRadius(t *testing.T) {
	rs, err := NewReservoirSeed(analogParams(), 0, 22)
	if err != nil {
		t.Fatal(err)
	}
	n := len(rs.Neurons)
	w := mat.NewDense(n, n, nil)
	for ti := range rs.RecurBank.Slots {
		for _, sy := range rs.RecurBank.Slots[ti].Syns {
			w.Set(ti, int(sy.Source.Loc.FlatIndex), float64(sy.Weight))
		}
	}
	var eig mat.Eigen
	if !eig.Factorize(w, mat.EigenNone) {
		t.Fatal("eigenvalue decomposition failed")
	}
	radius := 0.0
	for _, ev := range eig.Values(nil) {
		if a := cmplx.Abs(ev); a > radius {
			radius = a
		}
	}
	if math.Abs(radius-0.9999) > 1e-3 {
		t.Errorf("realized spectral radius %g, expected 0.9999", radius)
	}
}

func TestHomogeneousExcitability(t *testing.T) {
	ps := spikingParams()
	rs, err := NewReservoirSeed(ps, 0, 23)
	if err != nil {
		t.Fatal(err)
	}
	hp := &ps.Norm.Homogeneous
	for ti, nrn := range rs.Neurons {
		if nrn.Type != SpikingHidden {
			continue
		}
		inSum, excSum, inhSum := float32(0), float32(0), float32(0)
		for _, sy := range rs.InputBank.Slots[ti].Syns {
			inSum += math32.Abs(sy.Weight)
		}
		for _, sy := range rs.RecurBank.Slots[ti].Syns {
			if sy.Weight >= 0 {
				excSum += sy.Weight
			} else {
				inhSum += -sy.Weight
			}
		}
		if d := inSum + excSum - hp.ExcitatoryStrength; d > 1e-3 || d < -1e-3 {
			t.Errorf("neuron %d excitatory sum %g, expected budget %g", ti, inSum+excSum, hp.ExcitatoryStrength)
		}
		if inhSum > 0 {
			exp := hp.ExcitatoryStrength * hp.InhibitoryRatio
			if d := inhSum - exp; d > 1e-3 || d < -1e-3 {
				t.Errorf("neuron %d inhibitory sum %g, expected %g", ti, inhSum, exp)
			}
		}
	}
}

func TestNoOrphanSpikingInputs(t *testing.T) {
	rs, err := NewReservoirSeed(spikingParams(), 0, 24)
	if err != nil {
		t.Fatal(err)
	}
	used := map[int32]bool{}
	for ti := range rs.InputBank.Slots {
		for _, sy := range rs.InputBank.Slots[ti].Syns {
			used[sy.Source.Loc.FlatIndex] = true
		}
	}
	for _, nrn := range rs.Fields[0].Spiking {
		if !used[nrn.Loc.FlatIndex] {
			t.Errorf("spiking input neuron %d backs no synapse", nrn.Loc.FlatIndex)
		}
	}
}

func TestConstructionDeterminism(t *testing.T) {
	rs1, err := NewReservoirSeed(analogParams(), 0, 25)
	if err != nil {
		t.Fatal(err)
	}
	rs2, err := NewReservoirSeed(analogParams(), 0, 25)
	if err != nil {
		t.Fatal(err)
	}
	if rs1.RecurBank.NumSynapses() != rs2.RecurBank.NumSynapses() {
		t.Fatalf("synapse counts differ: %d vs %d", rs1.RecurBank.NumSynapses(), rs2.RecurBank.NumSynapses())
	}
	for ti := range rs1.RecurBank.Slots {
		s1, s2 := rs1.RecurBank.Slots[ti].Syns, rs2.RecurBank.Slots[ti].Syns
		if len(s1) != len(s2) {
			t.Fatalf("slot %d sizes differ", ti)
		}
		for i := range s1 {
			if s1[i].Weight != s2[i].Weight || s1[i].Delay != s2[i].Delay ||
				s1[i].Source.Loc.FlatIndex != s2[i].Source.Loc.FlatIndex {
				t.Fatalf("slot %d synapse %d differs between identically seeded builds", ti, i)
			}
		}
	}

	buf1 := make([]float64, rs1.NumPredictors())
	buf2 := make([]float64, rs2.NumPredictors())
	for c := 0; c < 40; c++ {
		val := float32(math.Sin(float64(c) * 0.1))
		runCycles(t, rs1, []float32{val}, 1, false)
		runCycles(t, rs2, []float32{val}, 1, false)
	}
	rs1.CopyPredictorsTo(buf1, 0)
	rs2.CopyPredictorsTo(buf2, 0)
	for i := range buf1 {
		if buf1[i] != buf2[i] {
			t.Fatalf("predictor %d differs between identically seeded runs: %g vs %g", i, buf1[i], buf2[i])
		}
	}
}

func TestResetReproducesTrajectory(t *testing.T) {
	rs, err := NewReservoirSeed(analogParams(), 0, 26)
	if err != nil {
		t.Fatal(err)
	}
	run := func() []float64 {
		for c := 0; c < 30; c++ {
			val := float32(math.Cos(float64(c) * 0.2))
			runCycles(t, rs, []float32{val}, 1, false)
		}
		buf := make([]float64, rs.NumPredictors())
		rs.CopyPredictorsTo(buf, 0)
		return buf
	}
	first := run()
	rs.Reset(true)
	if rs.Cycle != 0 {
		t.Fatal("Reset did not clear the cycle counter")
	}
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("predictor %d differs after reset: %g vs %g", i, first[i], second[i])
		}
	}
}

func TestAnalogBoundedAndFading(t *testing.T) {
	ps := analogParams()
	ps.Norm.SpectralRadius = 0.3
	rs, err := NewReservoirSeed(ps, 0, 27)
	if err != nil {
		t.Fatal(err)
	}
	runCycles(t, rs, []float32{1}, 20, false)
	for ti, nrn := range rs.Neurons {
		if nrn.Signal < -1 || nrn.Signal > 1 {
			t.Fatalf("neuron %d signal %g outside TanH bounds", ti, nrn.Signal)
		}
	}
	// with the input removed, a contractive reservoir washes its state out
	runCycles(t, rs, []float32{0}, 300, false)
	peak := float32(0)
	for _, nrn := range rs.Neurons {
		if a := math32.Abs(nrn.Signal); a > peak {
			peak = a
		}
	}
	if peak > 1e-2 {
		t.Errorf("peak signal %g after 300 silent cycles, expected fading toward 0", peak)
	}
}

func TestSpikingActivity(t *testing.T) {
	rs, err := NewReservoirSeed(spikingParams(), 0, 28)
	if err != nil {
		t.Fatal(err)
	}
	cycles := 300
	for c := 0; c < cycles; c++ {
		val := float32(1)
		if c%2 == 1 {
			val = -1
		}
		runCycles(t, rs, []float32{val}, 1, true)
	}
	total := int64(0)
	for _, nrn := range rs.Neurons {
		total += nrn.Spikes
	}
	if total == 0 {
		t.Fatal("no spikes in 300 cycles of strong drive")
	}
	if total >= int64(cycles*len(rs.Neurons)) {
		t.Error("every neuron fired every cycle, refractory dynamics absent")
	}
	sn := rs.Snapshot()
	if nf := sn.Pools[0].Groups[0].NeverFired; nf >= int32(len(rs.Neurons)) {
		t.Errorf("NeverFired = %d, expected at least one neuron to fire", nf)
	}
}

func TestPredictors(t *testing.T) {
	ps := analogParams()
	ps.Pools[0].Groups[0].Predictors.ActivationPower = true
	rs, err := NewReservoirSeed(ps, 0, 29)
	if err != nil {
		t.Fatal(err)
	}
	if got := rs.NumPredictors(); got != 200 {
		t.Fatalf("NumPredictors = %d for 100 neurons with 2 predictors, expected 200", got)
	}
	runCycles(t, rs, []float32{0.5}, 5, false)
	buf := make([]float64, 3+rs.NumPredictors())
	buf[0], buf[1], buf[2] = -7, -7, -7
	n := rs.CopyPredictorsTo(buf, 3)
	if n != rs.NumPredictors() {
		t.Fatalf("CopyPredictorsTo wrote %d values, expected %d", n, rs.NumPredictors())
	}
	if buf[0] != -7 || buf[2] != -7 {
		t.Error("CopyPredictorsTo wrote below its offset")
	}
	nonzero := 0
	for _, v := range buf[3:] {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Error("all predictors zero after driven cycles")
	}
}

func TestStatsAccumulation(t *testing.T) {
	rs, err := NewReservoirSeed(analogParams(), 0, 30)
	if err != nil {
		t.Fatal(err)
	}
	runCycles(t, rs, []float32{0.5}, 10, true)
	gs := &rs.Stats[0].Groups[0]
	if gs.Signal.N != 10*100 {
		t.Errorf("Signal sample count %d, expected 1000", gs.Signal.N)
	}
	if gs.Stim.N != 10*100 {
		t.Errorf("Stim sample count %d, expected 1000", gs.Stim.N)
	}
	rs.Reset(true)
	if rs.Stats[0].Groups[0].Signal.N != 0 {
		t.Error("Reset with stats did not clear group statistics")
	}
}

func TestSnapshot(t *testing.T) {
	rs, err := NewReservoirSeed(analogParams(), 0, 31)
	if err != nil {
		t.Fatal(err)
	}
	runCycles(t, rs, []float32{0.5}, 5, true)
	sn := rs.Snapshot()
	if sn.Cycle != 5 || sn.NumNeurons != 100 {
		t.Errorf("snapshot cycle %d neurons %d, expected 5 and 100", sn.Cycle, sn.NumNeurons)
	}
	if len(sn.Banks) != 2 || sn.Banks[0].Name != "Input" || sn.Banks[1].Name != "Recurrent" {
		t.Fatalf("snapshot banks %v", sn.Banks)
	}
	if sn.Banks[1].NumSynapses != rs.RecurBank.NumSynapses() {
		t.Error("snapshot recurrent synapse count mismatch")
	}
	if sn.Banks[1].Weight.N != rs.RecurBank.NumSynapses() {
		t.Error("snapshot weight statistics incomplete")
	}
}

func TestDefaultBootCycles(t *testing.T) {
	rs, err := NewReservoirSeed(twoPoolParams(), 0, 32)
	if err != nil {
		t.Fatal(err)
	}
	if got := rs.DefaultBootCycles(); got != 18 {
		t.Errorf("DefaultBootCycles = %d for two connected 9 neuron pools, expected 18", got)
	}
	rs.Boot(5)
	if rs.Cycle != 5 {
		t.Errorf("Cycle = %d after Boot(5), expected 5", rs.Cycle)
	}

	// disconnected pools count separately
	ps := twoPoolParams()
	ps.InterPool = nil
	rs, err = NewReservoirSeed(ps, 0, 32)
	if err != nil {
		t.Fatal(err)
	}
	if got := rs.DefaultBootCycles(); got != 9 {
		t.Errorf("DefaultBootCycles = %d for disconnected pools, expected 9", got)
	}
}

func TestSetInputLength(t *testing.T) {
	rs, err := NewReservoirSeed(analogParams(), 0, 33)
	if err != nil {
		t.Fatal(err)
	}
	if err := rs.SetInput([]float32{1, 2}); err == nil {
		t.Error("SetInput accepted the wrong number of values")
	}
}

func TestAnalogInputEqualized(t *testing.T) {
	rs, err := NewReservoirSeed(analogParams(), 0, 34)
	if err != nil {
		t.Fatal(err)
	}
	for ti := range rs.InputBank.Slots {
		syns := rs.InputBank.Slots[ti].Syns
		if len(syns) == 0 {
			continue
		}
		sum := float32(0)
		for _, sy := range syns {
			sum += math32.Abs(sy.Weight)
		}
		if d := sum - 1; d > 1e-4 || d < -1e-4 {
			t.Errorf("neuron %d input weight sum %g, expected 1", ti, sum)
		}
	}
}
