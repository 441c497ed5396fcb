// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stp

import "testing"

func TestOff(t *testing.T) {
	var sp Params
	sp.Defaults()
	sp.On = false
	var st State
	sp.Init(&st)
	for c := 0; c < 5; c++ {
		if eff := sp.Efficacy(&st, 1); eff != 1 {
			t.Fatalf("efficacy %g with plasticity off, expected 1", eff)
		}
	}
}

func TestFirstSpike(t *testing.T) {
	var sp Params
	sp.Defaults()
	var st State
	sp.Init(&st)
	if st.U != sp.RestingEfficacy || st.R != 1 {
		t.Fatalf("Init state U=%g R=%g, expected U=%g R=1", st.U, st.R, sp.RestingEfficacy)
	}
	// at rest both decays are no-ops, so the first efficacy is exactly U*R
	eff := sp.Efficacy(&st, 1)
	if d := eff - sp.RestingEfficacy; d > 1e-4 || d < -1e-4 {
		t.Errorf("first efficacy %g, expected resting %g", eff, sp.RestingEfficacy)
	}
}

func TestDepressionUnderRapidFiring(t *testing.T) {
	var sp Params
	sp.Defaults()
	var st State
	sp.Init(&st)
	prev := sp.Efficacy(&st, 1)
	for c := 0; c < 10; c++ {
		eff := sp.Efficacy(&st, 1)
		if eff <= 0 || eff > 1 {
			t.Fatalf("efficacy %g outside (0, 1]", eff)
		}
		if eff >= prev {
			t.Fatalf("efficacy did not depress under rapid firing: %g >= %g at spike %d", eff, prev, c)
		}
		prev = eff
	}
}

func TestRecovery(t *testing.T) {
	var sp Params
	sp.Defaults()
	var st State
	sp.Init(&st)
	for c := 0; c < 10; c++ {
		sp.Efficacy(&st, 1)
	}
	depressed := sp.Efficacy(&st, 1)
	// a long silent interval relaxes both variables back to rest
	recovered := sp.Efficacy(&st, 10000)
	if recovered <= depressed {
		t.Errorf("efficacy %g after long pause, expected recovery above %g", recovered, depressed)
	}
	if d := recovered - sp.RestingEfficacy; d > 1e-2 || d < -1e-2 {
		t.Errorf("recovered efficacy %g, expected near resting %g", recovered, sp.RestingEfficacy)
	}
}
