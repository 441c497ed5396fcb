// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package actfn

import (
	"math"
	"testing"
)

// difTol is the tolerance for comparing known function values.  FastExp
// based functions are accurate to about 1e-5.
const difTol = 1.0e-4

func TestEvalKnownValues(t *testing.T) {
	var ap Params
	ap.Defaults()

	tests := []struct {
		fn  Fns
		x   float32
		exp float32
	}{
		{TanH, 0, 0},
		{TanH, 2, float32(math.Tanh(2))},
		{TanH, -2, float32(math.Tanh(-2))},
		{Sigmoid, 0, 0.5},
		{ISRU, 0, 0},
		{BentIdentity, 0, 0},
		{LeakyReLU, 2, 2},
		{LeakyReLU, -2, -0.02},
		{Identity, 0.73, 0.73},
		{Identity, -0.73, -0.73},
	}
	for _, tc := range tests {
		ap.Fn = tc.fn
		got := ap.Eval(tc.x)
		if d := got - tc.exp; d > difTol || d < -difTol {
			t.Errorf("%s(%g) = %g, expected %g", tc.fn, tc.x, got, tc.exp)
		}
	}
}

func TestEvalBounds(t *testing.T) {
	var ap Params
	ap.Defaults()
	xs := []float32{-100, -5, -1, -0.1, 0, 0.1, 1, 5, 100}

	ap.Fn = TanH
	for _, x := range xs {
		if y := ap.Eval(x); y < -1 || y > 1 {
			t.Errorf("TanH(%g) = %g outside [-1, 1]", x, y)
		}
	}
	ap.Fn = Sigmoid
	for _, x := range xs {
		if y := ap.Eval(x); y < 0 || y > 1 {
			t.Errorf("Sigmoid(%g) = %g outside [0, 1]", x, y)
		}
	}
	ap.Fn = ISRU
	lim := float32(1 / math.Sqrt(float64(ap.Slope)))
	for _, x := range xs {
		if y := ap.Eval(x); y < -lim || y > lim {
			t.Errorf("ISRU(%g) = %g outside [-%g, %g]", x, y, lim, lim)
		}
	}
}

func TestEvalMonotonic(t *testing.T) {
	var ap Params
	ap.Defaults()
	for fn := TanH; fn < FnsN; fn++ {
		ap.Fn = fn
		prev := ap.Eval(-5)
		for x := float32(-4.5); x <= 5; x += 0.5 {
			y := ap.Eval(x)
			if y < prev {
				t.Errorf("%s not monotonic at %g: %g < %g", fn, x, y, prev)
			}
			prev = y
		}
	}
}

func TestGain(t *testing.T) {
	var ap Params
	ap.Defaults()
	ap.Fn = Identity
	ap.Gain = 2
	if got := ap.Eval(1.5); got != 3 {
		t.Errorf("Identity with Gain 2: Eval(1.5) = %g, expected 3", got)
	}
	ap.Fn = TanH
	sharp := ap.Eval(1)
	ap.Gain = 1
	if soft := ap.Eval(1); sharp <= soft {
		t.Errorf("Gain 2 should sharpen TanH: %g <= %g", sharp, soft)
	}
}

func TestBounded(t *testing.T) {
	var ap Params
	ap.Defaults()
	bounded := map[Fns]bool{TanH: true, Sigmoid: true, ISRU: true,
		BentIdentity: false, LeakyReLU: false, Identity: false}
	for fn, exp := range bounded {
		ap.Fn = fn
		if got := ap.Bounded(); got != exp {
			t.Errorf("%s.Bounded() = %v, expected %v", fn, got, exp)
		}
	}
}
