// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package reservoir implements construction and cyclic computation of a
reservoir: a fixed, randomly-wired recurrent network of analog and spiking
neurons that transforms a stream of external input values into a
high-dimensional internal state, exposed as a flat predictor vector for a
separately-trained downstream readout.

The package covers:

  - declarative topology: pools of neurons on 3D grids, neuron groups with
    configured activation, bias, and retainment distributions;
  - synapse wiring: random, chain, inter-pool, and input connection schemas,
    with role assignment (excitatory / inhibitory / indifferent / input) and
    distance-dependent signal delay;
  - per-synapse short-term plasticity (package stp) and delay buffering;
  - post-wiring weight normalization: spectral-radius scaling of the analog
    recurrent sub-network and homogeneous-excitability balancing of the
    spiking sub-network;
  - the synchronous compute cycle: two strictly-separated parallel passes
    (gather stimulation, then recompute) over fixed index ranges.

Construction is fully deterministic given a seeded randx.Rand, which is
threaded explicitly through every wiring and normalization call.
*/
package reservoir
