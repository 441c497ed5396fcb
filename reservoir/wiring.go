// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"fmt"
	"log"

	"cogentcore.org/core/math32"
	"cogentcore.org/lab/base/randx"
)

///////////////////////////////////////////////////////////////////////
//  wiring.go implements the synapse wiring algorithms: input connections,
//  the random and chain intra-pool schemas, and inter-pool connections.
//  All randomness flows through the one rnd handle for reproducibility.

// stochRound rounds x stochastically (floor plus one with probability equal
// to the fraction), or deterministically when constant is set.  This is the
// +-1 jitter on intended per-target synapse counts.
func stochRound(x float32, constant bool, rnd randx.Rand) int {
	if constant {
		return int(math32.Round(x))
	}
	fl := math32.Floor(x)
	n := int(fl)
	if rnd.Float64() < float64(x-fl) {
		n++
	}
	return n
}

// pickRoles assigns roles to n planned synapses of one target.  Analog
// targets always get Indifferent.  Spiking targets draw Excitatory vs
// Inhibitory by relative share; when both roles are configured, the last
// assignment is forced to differ if all preceding ones came out identical,
// guaranteeing role heterogeneity per target.
func pickRoles(n int, excShare, inhShare float32, spikingTgt bool, rnd randx.Rand) []SynRoles {
	roles := make([]SynRoles, n)
	if !spikingTgt {
		for i := range roles {
			roles[i] = Indifferent
		}
		return roles
	}
	if excShare <= 0 {
		for i := range roles {
			roles[i] = Inhibitory
		}
		return roles
	}
	if inhShare <= 0 {
		for i := range roles {
			roles[i] = Excitatory
		}
		return roles
	}
	p := float64(excShare / (excShare + inhShare))
	for i := range roles {
		if rnd.Float64() < p {
			roles[i] = Excitatory
		} else {
			roles[i] = Inhibitory
		}
	}
	if n >= 2 {
		same := true
		for i := 1; i < n-1; i++ {
			if roles[i] != roles[0] {
				same = false
				break
			}
		}
		if same && roles[n-1] == roles[0] {
			if roles[0] == Excitatory {
				roles[n-1] = Inhibitory
			} else {
				roles[n-1] = Excitatory
			}
		}
	}
	return roles
}

// selectSources picks k source neurons for the target from the candidates,
// either uniformly or distance-weighted: preferring candidates whose
// distance to the target is near a Gaussian draw around the candidate mean
// distance.  The Gaussian-matching policy is a tunable heuristic, not a
// correctness requirement.
func selectSources(tgt *Neuron, cands []*Neuron, k int, distWeighted bool, rnd randx.Rand) []*Neuron {
	if k > len(cands) {
		k = len(cands)
	}
	if k <= 0 {
		return nil
	}
	if !distWeighted {
		ord := make([]int, len(cands))
		for i := range ord {
			ord[i] = i
		}
		randx.PermuteInts(ord, rnd)
		out := make([]*Neuron, k)
		for i := 0; i < k; i++ {
			out[i] = cands[ord[i]]
		}
		return out
	}
	var dstat BasicStat
	dists := make([]float32, len(cands))
	for i, src := range cands {
		dists[i] = tgt.Loc.DistTo(&src.Loc)
		dstat.Add(dists[i])
	}
	remaining := make([]int, len(cands))
	for i := range remaining {
		remaining[i] = i
	}
	out := make([]*Neuron, 0, k)
	for len(out) < k {
		want := dstat.Mean() + dstat.StdDev()*float32(rnd.NormFloat64())
		best := 0
		bestDiff := math32.Abs(dists[remaining[0]] - want)
		for ri := 1; ri < len(remaining); ri++ {
			d := math32.Abs(dists[remaining[ri]] - want)
			if d < bestDiff {
				best, bestDiff = ri, d
			}
		}
		out = append(out, cands[remaining[best]])
		remaining[best] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return out
}

// permTruncate returns a shuffled selection of round(density * len(nrns))
// neurons.
func permTruncate(nrns []*Neuron, density float32, rnd randx.Rand) []*Neuron {
	n := int(math32.Round(density * float32(len(nrns))))
	if n > len(nrns) {
		n = len(nrns)
	}
	if n <= 0 {
		return nil
	}
	ord := make([]int, len(nrns))
	for i := range ord {
		ord[i] = i
	}
	randx.PermuteInts(ord, rnd)
	out := make([]*Neuron, n)
	for i := 0; i < n; i++ {
		out[i] = nrns[ord[i]]
	}
	return out
}

// wireInputs creates the input-bank synapses for every declared input
// connection, then runs the repair pass guaranteeing that every spiking
// input neuron backs at least one synapse.
func (rs *Reservoir) wireInputs(rnd randx.Rand) error {
	// spiking targets per field, for the repair pass
	fieldTargets := make(map[*InputField][]*Neuron)

	for ci := range rs.Params.InputConns {
		ic := &rs.Params.InputConns[ci]
		fl := rs.fieldByName(ic.Field)
		pl := rs.PoolByName(ic.Pool)
		if fl == nil || pl == nil {
			return fmt.Errorf("input conn %s->%s: unresolved reference", ic.Field, ic.Pool)
		}
		var analog, spiking []*Neuron
		for i := pl.StIndex; i < pl.EdIndex; i++ {
			nrn := rs.Neurons[i]
			if nrn.Type == SpikingHidden {
				spiking = append(spiking, nrn)
			} else {
				analog = append(analog, nrn)
			}
		}
		for _, tgt := range permTruncate(analog, ic.AnalogDensity, rnd) {
			sy := NewSynapse(fl.Analog, tgt, Input, &ic.Syn, rnd)
			rs.InputBank.Connect(sy, false)
		}
		spikingTgts := permTruncate(spiking, ic.SpikingDensity, rnd)
		combs := fl.SpikeCombinations(len(spikingTgts), rnd)
		for ti, tgt := range spikingTgts {
			for _, si := range combs[ti] {
				sy := NewSynapse(fl.Spiking[si], tgt, Input, &ic.Syn, rnd)
				rs.InputBank.Connect(sy, false)
			}
		}
		fieldTargets[fl] = append(fieldTargets[fl], spikingTgts...)
	}

	// repair pass: connect any spiking input neuron left unused
	used := make(map[int32]bool)
	for ti := range rs.InputBank.Slots {
		for _, sy := range rs.InputBank.Slots[ti].Syns {
			used[sy.Source.Loc.FlatIndex] = true
		}
	}
	for ci := range rs.Params.InputConns {
		ic := &rs.Params.InputConns[ci]
		fl := rs.fieldByName(ic.Field)
		tgts := fieldTargets[fl]
		if len(tgts) == 0 {
			continue
		}
		for _, src := range fl.Spiking {
			if used[src.Loc.FlatIndex] {
				continue
			}
			tgt := tgts[rnd.Intn(len(tgts))]
			sy := NewSynapse(src, tgt, Input, &ic.Syn, rnd)
			rs.InputBank.Connect(sy, true)
			used[src.Loc.FlatIndex] = true
		}
	}
	return nil
}

// applySchemas applies each pool's ordered list of intra-pool connection
// schemas, populating the recurrent bank.
func (rs *Reservoir) applySchemas(rnd randx.Rand) error {
	for _, pl := range rs.Pools {
		for si := range pl.Params.Schemas {
			sp := &pl.Params.Schemas[si]
			switch sp.Kind {
			case RandomSchema:
				rs.applyRandomSchema(pl, &sp.Rand, rnd)
			case ChainSchema:
				rs.applyChainSchema(pl, &sp.Chain, rnd)
			default:
				return fmt.Errorf("pool %q: unknown schema kind %d", pl.Params.Name, sp.Kind)
			}
		}
	}
	return nil
}

// applyRandomSchema connects every pool neuron to a density-derived number
// of randomly (or distance-weighted) selected pool sources, with role
// assignment by relative share.
func (rs *Reservoir) applyRandomSchema(pl *Pool, rp *RandSchemaParams, rnd randx.Rand) {
	poolN := int(pl.NumNeurons())
	for rep := int32(0); rep < rp.Repetitions; rep++ {
		for ti := pl.StIndex; ti < pl.EdIndex; ti++ {
			tgt := rs.Neurons[ti]
			cnt := stochRound(rp.Density*float32(poolN), rp.ConstantCount, rnd)
			if cnt <= 0 {
				continue
			}
			cands := make([]*Neuron, 0, poolN)
			for si := pl.StIndex; si < pl.EdIndex; si++ {
				if si == ti && !rp.AllowSelf {
					continue
				}
				cands = append(cands, rs.Neurons[si])
			}
			srcs := selectSources(tgt, cands, cnt, rp.DistanceWeighted, rnd)
			roles := pickRoles(len(srcs), rp.ExcitatoryShare, rp.InhibitoryShare,
				tgt.Type == SpikingHidden, rnd)
			for i, src := range srcs {
				sy := NewSynapse(src, tgt, roles[i], &rp.Syn, rnd)
				rs.RecurBank.Connect(sy, rp.ReplaceExisting)
			}
		}
	}
}

// applyChainSchema connects a shuffled subset of pool neurons pairwise into
// a linear, optionally circular, chain with one synapse per pair.
func (rs *Reservoir) applyChainSchema(pl *Pool, cp *ChainSchemaParams, rnd randx.Rand) {
	poolN := int(pl.NumNeurons())
	nch := int(math32.Round(cp.Ratio * float32(poolN)))
	if nch > poolN {
		nch = poolN
	}
	if nch < 2 {
		log.Printf("reservoir: pool %q chain schema ratio %g yields %d neurons, nothing to wire", pl.Params.Name, cp.Ratio, nch)
		return
	}
	ord := make([]int, poolN)
	for i := range ord {
		ord[i] = i
	}
	randx.PermuteInts(ord, rnd)
	chain := make([]*Neuron, nch)
	for i := 0; i < nch; i++ {
		chain[i] = rs.Neurons[pl.StIndex+int32(ord[i])]
	}
	link := func(src, tgt *Neuron) {
		role := Indifferent
		if tgt.Type == SpikingHidden {
			role = Excitatory
		}
		sy := NewSynapse(src, tgt, role, &cp.Syn, rnd)
		rs.RecurBank.Connect(sy, cp.ReplaceExisting)
	}
	for i := 0; i < nch-1; i++ {
		link(chain[i], chain[i+1])
	}
	if cp.Circular {
		link(chain[nch-1], chain[0])
	}
}

// wireInterPool creates the declared pool-to-pool connections: a density
// selected subset of target neurons, each connected to a source-count worth
// of synapses drawn from the entire source pool, with the same role and
// jitter policy as the random schema.
func (rs *Reservoir) wireInterPool(rnd randx.Rand) error {
	for ii := range rs.Params.InterPool {
		ip := &rs.Params.InterPool[ii]
		spl := rs.PoolByName(ip.SourcePool)
		tpl := rs.PoolByName(ip.TargetPool)
		if spl == nil || tpl == nil {
			return fmt.Errorf("interpool %s->%s: unresolved reference", ip.SourcePool, ip.TargetPool)
		}
		srcN := int(spl.NumNeurons())
		srcs := make([]*Neuron, 0, srcN)
		for si := spl.StIndex; si < spl.EdIndex; si++ {
			srcs = append(srcs, rs.Neurons[si])
		}
		tgts := make([]*Neuron, 0, tpl.NumNeurons())
		for ti := tpl.StIndex; ti < tpl.EdIndex; ti++ {
			tgts = append(tgts, rs.Neurons[ti])
		}
		for _, tgt := range permTruncate(tgts, ip.TargetDensity, rnd) {
			cnt := stochRound(ip.SourceDensity*float32(srcN), ip.ConstantCount, rnd)
			if cnt <= 0 {
				continue
			}
			sel := selectSources(tgt, srcs, cnt, false, rnd)
			roles := pickRoles(len(sel), ip.ExcitatoryShare, ip.InhibitoryShare,
				tgt.Type == SpikingHidden, rnd)
			for i, src := range sel {
				sy := NewSynapse(src, tgt, roles[i], &ip.Syn, rnd)
				rs.RecurBank.Connect(sy, false)
			}
		}
	}
	return nil
}
