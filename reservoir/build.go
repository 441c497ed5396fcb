// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"fmt"

	"cogentcore.org/core/math32"
	"cogentcore.org/lab/base/randx"
	"github.com/rescomp/reservoir/actfn"
	"github.com/rescomp/reservoir/lif"
)

// Group is one materialized neuron group: the shared parameter instances
// its neurons reference.
type Group struct {

	// Params is the originating configuration.
	Params *GroupParams

	// ID within the pool.
	ID int32

	// Act is the group's shared analog activation function instance.
	Act actfn.Params

	// Spk is the group's shared spiking membrane parameter instance.
	Spk lif.Params

	// Neurons is the realized neuron count.
	Neurons int32
}

// Pool is one materialized pool: a contiguous flat index range of neurons
// plus its group instances.
type Pool struct {

	// Params is the originating configuration.
	Params *PoolParams

	// ID is the pool index within the reservoir.
	ID int32

	// StIndex and EdIndex bound the pool's flat neuron range [St, Ed).
	StIndex, EdIndex int32

	// Groups are the materialized group instances.
	Groups []*Group
}

// NumNeurons returns the realized neuron count of the pool.
func (pl *Pool) NumNeurons() int32 {
	return pl.EdIndex - pl.StIndex
}

// neuronSpec is one planned neuron's parameter draw, assigned to a grid
// position only after shuffling, so that spatial position is decoupled from
// parameter draw order.
type neuronSpec struct {
	group      *Group
	bias       float32
	retainment float32
}

// buildFields materializes the input encoding units.
func (rs *Reservoir) buildFields() {
	rs.Fields = make([]*InputField, len(rs.Params.Fields))
	flat := int32(0)
	for fi := range rs.Params.Fields {
		rs.Fields[fi], flat = newInputField(&rs.Params.Fields[fi], rs.ID, int32(fi), flat)
	}
	rs.numInputNeurons = int(flat)
}

// buildPools materializes all pools: group parameter instances, per-neuron
// bias and retainment draws, and neurons instantiated in randomized order
// onto the pool's fixed 3D grid.
func (rs *Reservoir) buildPools(rnd randx.Rand) error {
	rs.Pools = make([]*Pool, len(rs.Params.Pools))
	flat := int32(0)
	for pi := range rs.Params.Pools {
		pp := &rs.Params.Pools[pi]
		pl := &Pool{Params: pp, ID: int32(pi), StIndex: flat}
		n := int(pp.NumNeurons())

		counts, err := groupCounts(pp, n)
		if err != nil {
			return err
		}
		specs := make([]neuronSpec, 0, n)
		for gi := range pp.Groups {
			gp := &pp.Groups[gi]
			grp := &Group{Params: gp, ID: int32(gi), Act: gp.Act, Spk: gp.Spike, Neurons: int32(counts[gi])}
			grp.Act.Update()
			grp.Spk.Update()
			pl.Groups = append(pl.Groups, grp)

			gst := len(specs)
			for i := 0; i < counts[gi]; i++ {
				specs = append(specs, neuronSpec{group: grp, bias: float32(gp.Bias.Gen(rnd))})
			}
			if gp.Type == AnalogHidden && gp.Retain.Density > 0 {
				nret := int(math32.Round(gp.Retain.Density * float32(counts[gi])))
				ord := make([]int, counts[gi])
				for i := range ord {
					ord[i] = i
				}
				randx.PermuteInts(ord, rnd)
				for _, oi := range ord[:nret] {
					r := float32(gp.Retain.Strength.Gen(rnd))
					specs[gst+oi].retainment = math32.Clamp(r, 0, 0.999)
				}
			}
		}

		// decouple spatial position from parameter draw order
		ord := make([]int, n)
		for i := range ord {
			ord[i] = i
		}
		randx.PermuteInts(ord, rnd)

		for j := 0; j < n; j++ {
			sp := &specs[ord[j]]
			gp := sp.group.Params
			x := int32(j) % pp.DimX
			y := (int32(j) / pp.DimX) % pp.DimY
			z := int32(j) / (pp.DimX * pp.DimY)
			nrn := &Neuron{
				Type:       gp.Type,
				Bias:       sp.bias,
				Retainment: sp.retainment,
				Loc: NeuronLocation{
					ResID:     rs.ID,
					FlatIndex: flat,
					PoolID:    pl.ID,
					PoolIndex: int32(j),
					GroupID:   sp.group.ID,
					Coords:    pp.Origin.Add(math32.Vec3(float32(x), float32(y), float32(z))),
				},
				Preds: NewPredictors(&gp.Predictors),
			}
			switch gp.Type {
			case AnalogHidden:
				nrn.AFn = &sp.group.Act
			case SpikingHidden:
				nrn.Spk = &sp.group.Spk
				nrn.Spk.Init(&nrn.Vm)
			}
			rs.Neurons = append(rs.Neurons, nrn)
			flat++
		}
		pl.EdIndex = flat
		rs.Pools[pi] = pl
	}
	return nil
}

// groupCounts splits a pool's neuron count across its groups in proportion
// to their relative shares, assigning remainders in group order.
func groupCounts(pp *PoolParams, n int) ([]int, error) {
	total := float32(0)
	for gi := range pp.Groups {
		total += pp.Groups[gi].Share
	}
	counts := make([]int, len(pp.Groups))
	used := 0
	for gi := range pp.Groups {
		counts[gi] = int(float32(n) * pp.Groups[gi].Share / total)
		used += counts[gi]
	}
	for gi := 0; used < n; gi = (gi + 1) % len(counts) {
		counts[gi]++
		used++
	}
	for gi, c := range counts {
		if c == 0 {
			return nil, fmt.Errorf("pool %q: group %q gets zero neurons for share %g of %d",
				pp.Name, pp.Groups[gi].Name, pp.Groups[gi].Share, n)
		}
	}
	return counts, nil
}

// PoolByName returns the materialized pool with the given name, or nil.
func (rs *Reservoir) PoolByName(name string) *Pool {
	for _, pl := range rs.Pools {
		if pl.Params.Name == name {
			return pl
		}
	}
	return nil
}

// fieldByName returns the input field with the given name, or nil.
func (rs *Reservoir) fieldByName(name string) *InputField {
	for _, fl := range rs.Fields {
		if fl.Params.Name == name {
			return fl
		}
	}
	return nil
}
