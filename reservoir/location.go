// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import "cogentcore.org/core/math32"

// NeuronLocation identifies a neuron's place in the reservoir and in space.
// Created once at instantiation and never mutated.
type NeuronLocation struct {

	// ResID is the id of the owning reservoir instance.
	ResID int32

	// FlatIndex is the flat index within the whole reservoir.  Hidden and
	// input neurons are numbered in separate sequences.
	FlatIndex int32

	// PoolID is the index of the owning pool, -1 for input neurons.
	PoolID int32

	// PoolIndex is the flat index within the owning pool.
	PoolIndex int32

	// GroupID is the index of the neuron-group configuration within the pool.
	GroupID int32

	// Coords is the 3D grid coordinate, offset by the pool origin.
	Coords math32.Vector3
}

// DistTo returns the Euclidean distance to the other location.
func (nl *NeuronLocation) DistTo(ol *NeuronLocation) float32 {
	return nl.Coords.Sub(ol.Coords).Length()
}
