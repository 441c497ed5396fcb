// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package rescomp is the overall repository for the reservoir computing engine
implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* reservoir: the core engine -- configuration, topology construction (pools,
groups, input encoding units, wiring schemas, delay assignment, weight
normalization), the synchronous two-pass compute cycle, and predictor
extraction for downstream readouts.

* actfn: the analog activation functions applied to analog neuron
stimulation.

* lif: leaky integrate-and-fire membrane dynamics for spiking neurons.

* stp: Tsodyks-Markram short-term plasticity for synapses with spiking
sources.

* examples/resbench: a construction and compute benchmark over configurable
reservoir sizes.
*/
package rescomp
