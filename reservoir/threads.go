// Copyright (c) 2025, The Rescomp Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reservoir

import (
	"runtime"
	"sync"
)

// splitRanges partitions [0, n) into at most parts contiguous index ranges
// of near-equal size, for data-parallel fork-join iteration.  The partition
// is computed once at construction and reused every cycle.
func splitRanges(n, parts int) [][2]int32 {
	if parts <= 0 {
		parts = runtime.GOMAXPROCS(0)
	}
	if parts > n {
		parts = n
	}
	if parts < 1 {
		parts = 1
	}
	rngs := make([][2]int32, 0, parts)
	chunk := n / parts
	rem := n % parts
	lo := 0
	for p := 0; p < parts; p++ {
		hi := lo + chunk
		if p < rem {
			hi++
		}
		if hi > lo {
			rngs = append(rngs, [2]int32{int32(lo), int32(hi)})
		}
		lo = hi
	}
	return rngs
}

// runParallel runs fun over every range in a fork-join: one goroutine per
// range, returning only after all complete.  The join is the hard barrier
// between compute passes.
func runParallel(rngs [][2]int32, fun func(lo, hi int32)) {
	if len(rngs) == 1 {
		fun(rngs[0][0], rngs[0][1])
		return
	}
	var wg sync.WaitGroup
	for _, rng := range rngs {
		wg.Add(1)
		go func(lo, hi int32) {
			defer wg.Done()
			fun(lo, hi)
		}(rng[0], rng[1])
	}
	wg.Wait()
}
