// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"fmt"
	"math/cmplx"

	"cogentcore.org/core/math32"
	"gonum.org/v1/gonum/mat"
)

///////////////////////////////////////////////////////////////////////
//  normalize.go implements the post-wiring weight normalization passes:
//  analog input equalization, spectral-radius scaling of the analog
//  recurrent sub-network, and homogeneous-excitability balancing of the
//  spiking sub-network.  All passes rescale weights in place and run once,
//  between wiring and the first compute cycle.

// normalize runs the configured weight normalization passes.
func (rs *Reservoir) normalize() error {
	rs.equalizeAnalogInputs()
	if rs.Params.Norm.SpectralRadius > 0 {
		if err := rs.scaleSpectralRadius(); err != nil {
			return err
		}
	}
	if rs.Params.Norm.Homogeneous.On {
		if err := rs.homogenizeExcitability(); err != nil {
			return err
		}
	}
	return nil
}

// equalizeAnalogInputs rescales every analog hidden neuron's input synapses
// so their absolute weights sum to 1, making input drive independent of how
// many fields happen to reach a neuron.
func (rs *Reservoir) equalizeAnalogInputs() {
	for ti, nrn := range rs.Neurons {
		if nrn.Type != AnalogHidden {
			continue
		}
		slot := &rs.InputBank.Slots[ti]
		sum := float32(0)
		for _, sy := range slot.Syns {
			sum += math32.Abs(sy.Weight)
		}
		if sum <= 0 {
			continue
		}
		factor := 1 / sum
		for _, sy := range slot.Syns {
			sy.Rescale(factor)
		}
	}
}

// scaleSpectralRadius computes the spectral radius of the analog-to-analog
// recurrent weight matrix from its full eigenvalue spectrum and rescales all
// recurrent synapses targeting analog neurons so the radius matches the
// configured target.  The dominant eigenvalue of a random sign matrix is
// frequently a complex pair, so a full decomposition is used rather than
// power iteration.  A reservoir with no analog hidden neurons is skipped; a
// sub-network whose spectral radius is numerically zero, including one with
// no analog-to-analog synapses at all, cannot be scaled and is an error.
func (rs *Reservoir) scaleSpectralRadius() error {
	// dense index over analog hidden neurons
	aidx := make(map[int32]int)
	for _, nrn := range rs.Neurons {
		if nrn.Type == AnalogHidden {
			aidx[nrn.Loc.FlatIndex] = len(aidx)
		}
	}
	n := len(aidx)
	if n == 0 {
		return nil
	}
	w := mat.NewDense(n, n, nil)
	nsyn := 0
	for ti := range rs.RecurBank.Slots {
		row, ok := aidx[int32(ti)]
		if !ok {
			continue
		}
		for _, sy := range rs.RecurBank.Slots[ti].Syns {
			col, ok := aidx[sy.Source.Loc.FlatIndex]
			if !ok {
				continue
			}
			w.Set(row, col, float64(sy.Weight))
			nsyn++
		}
	}
	if nsyn == 0 {
		return fmt.Errorf("spectral scaling: spectral radius 0 is numerically zero: no analog-to-analog recurrent synapses")
	}

	var eig mat.Eigen
	if !eig.Factorize(w, mat.EigenNone) {
		return fmt.Errorf("spectral scaling: eigenvalue decomposition of the analog recurrent matrix failed")
	}
	radius := 0.0
	for _, ev := range eig.Values(nil) {
		if a := cmplx.Abs(ev); a > radius {
			radius = a
		}
	}
	if radius < 1e-9 {
		return fmt.Errorf("spectral scaling: spectral radius %g is numerically zero", radius)
	}
	factor := float32(float64(rs.Params.Norm.SpectralRadius) / radius)
	for ti, nrn := range rs.Neurons {
		if nrn.Type != AnalogHidden {
			continue
		}
		for _, sy := range rs.RecurBank.Slots[ti].Syns {
			sy.Rescale(factor)
		}
	}
	return nil
}

// homogenizeExcitability rescales every spiking hidden neuron's incoming
// weight sums to configured fractions of the excitatory-strength budget:
// input synapses carry InputRatio of the budget, excitatory recurrent
// synapses the rest, and inhibitory synapses InhibitoryRatio of it.  A
// neuron whose input share cannot be met (no input synapses) hands the full
// budget to its recurrent excitation, and vice versa.  A neuron with no
// excitatory drive at all could never fire and is a construction error.
func (rs *Reservoir) homogenizeExcitability() error {
	hp := &rs.Params.Norm.Homogeneous
	for ti, nrn := range rs.Neurons {
		if nrn.Type != SpikingHidden {
			continue
		}
		inSlot := &rs.InputBank.Slots[ti]
		reSlot := &rs.RecurBank.Slots[ti]
		inSum := float32(0)
		for _, sy := range inSlot.Syns {
			inSum += math32.Abs(sy.Weight)
		}
		excSum, inhSum := float32(0), float32(0)
		for _, sy := range reSlot.Syns {
			if sy.Weight >= 0 {
				excSum += sy.Weight
			} else {
				inhSum += -sy.Weight
			}
		}
		if inSum <= 0 && excSum <= 0 {
			return fmt.Errorf("homogeneous excitability: neuron %d has no excitatory drive", ti)
		}
		es := hp.ExcitatoryStrength
		inTarget := es * hp.InputRatio
		switch {
		case inSum <= 0:
			inTarget = 0
		case excSum <= 0:
			inTarget = es
		}
		if inSum > 0 {
			f := inTarget / inSum
			for _, sy := range inSlot.Syns {
				sy.Rescale(f)
			}
		}
		if excSum > 0 {
			f := (es - inTarget) / excSum
			for _, sy := range reSlot.Syns {
				if sy.Weight >= 0 {
					sy.Rescale(f)
				}
			}
		}
		if inhSum > 0 {
			f := es * hp.InhibitoryRatio / inhSum
			for _, sy := range reSlot.Syns {
				if sy.Weight < 0 {
					sy.Rescale(f)
				}
			}
		}
	}
	return nil
}
