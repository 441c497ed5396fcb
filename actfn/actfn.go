// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package actfn provides the analog activation functions used by analog
reservoir neurons.  Each function is a stateless squashing nonlinearity
applied to the neuron's total stimulation (input + recurrent + bias),
selected and parameterized through a single Params struct so that a whole
neuron group shares one configured instance.
*/
package actfn

import "cogentcore.org/core/math32"

// Fns are the supported analog activation functions.
type Fns int32

const (
	// TanH is the hyperbolic tangent, output in (-1, 1).  The standard
	// choice for analog reservoir neurons.
	TanH Fns = iota

	// Sigmoid is the logistic function, output in (0, 1).
	Sigmoid

	// ISRU is the inverse square root unit x / sqrt(1 + alpha*x^2),
	// a cheap tanh-like function, output in (-1/sqrt(alpha), 1/sqrt(alpha)).
	ISRU

	// BentIdentity is (sqrt(x^2+1)-1)/2 + x, an unbounded soft nonlinearity.
	BentIdentity

	// LeakyReLU is max(x, Slope*x) with Slope < 1.
	LeakyReLU

	// Identity passes stimulation through unchanged.
	Identity

	FnsN
)

var fnsNames = []string{"TanH", "Sigmoid", "ISRU", "BentIdentity", "LeakyReLU", "Identity"}

func (f Fns) String() string {
	if f < 0 || f >= FnsN {
		return "FnsInvalid"
	}
	return fnsNames[f]
}

// Params selects and parameterizes an analog activation function.
type Params struct {
	Fn    Fns     `desc:"which activation function to apply"`
	Gain  float32 `def:"1" min:"0" desc:"gain multiplier applied to stimulation before the function -- values > 1 sharpen the nonlinearity"`
	Slope float32 `def:"0.01" desc:"negative-side slope for LeakyReLU and alpha coefficient for ISRU"`
}

func (ap *Params) Defaults() {
	ap.Fn = TanH
	ap.Gain = 1
	ap.Slope = 0.01
	ap.Update()
}

func (ap *Params) Update() {
}

// Eval applies the configured function to stimulation x.
func (ap *Params) Eval(x float32) float32 {
	x *= ap.Gain
	switch ap.Fn {
	case TanH:
		return math32.Tanh(x)
	case Sigmoid:
		return 1 / (1 + math32.FastExp(-x))
	case ISRU:
		return x / math32.Sqrt(1+ap.Slope*x*x)
	case BentIdentity:
		return (math32.Sqrt(x*x+1)-1)/2 + x
	case LeakyReLU:
		if x < 0 {
			return ap.Slope * x
		}
		return x
	default:
		return x
	}
}

// Bounded reports whether the function's output range is bounded,
// which determines whether fading-memory convergence can be expected
// without weight normalization.
func (ap *Params) Bounded() bool {
	switch ap.Fn {
	case TanH, Sigmoid, ISRU:
		return true
	}
	return false
}
