// Package dse sweeps FIFO depth choices across a compiled simulation and
// reports the resulting (latency, BRAM cost) Pareto set.
package dse

import "github.com/sarchlab/lightningsim/graph"

// BramCount returns the number of Block RAMs Vivado allocates to a FIFO of
// the given bit width and depth. Depths that resolve to a shift-register
// implementation (see graph.FifoTypeFromDepth) cost no BRAM.
//
// The width is packed into 1Kx18, 2Kx9, 4Kx4, 8Kx2 and 16Kx1 tiles in that
// order, each tier taking what the previous one left over, including an
// ad-hoc correction (two extra BRAMs) for depths up to 4096 on FIFOs wider
// than 18 bits with exactly 3 bits left after the 18- and 9-bit tiers, where
// Vivado's actual packing deviates from the naive tiling arithmetic.
func BramCount(width uint32, depth int) int {
	if graph.FifoTypeFromDepth(&depth) != graph.RAM {
		return 0
	}

	bram := 0
	remainingWidth := int(width)

	bram += (remainingWidth / 18) * ceilDiv(depth, 1024)
	remainingWidth %= 18
	if depth <= 1024 {
		if remainingWidth != 0 {
			bram++
		}
		return bram
	}

	bram += (remainingWidth / 9) * ceilDiv(depth, 2048)
	remainingWidth %= 9
	if depth <= 2048 {
		if remainingWidth != 0 {
			bram++
		}
		return bram
	}

	if depth <= 4096 && width > 18 && remainingWidth == 3 {
		return bram + 2
	}

	bram += (remainingWidth / 4) * ceilDiv(depth, 4096)
	remainingWidth %= 4
	if depth <= 4096 {
		if remainingWidth != 0 {
			bram++
		}
		return bram
	}

	bram += (remainingWidth / 2) * ceilDiv(depth, 8192)
	remainingWidth %= 2
	bram += remainingWidth * ceilDiv(depth, 16384)
	return bram
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// DesignSpace enumerates candidate FIFO depths worth trying during a sweep:
// the minimum depth, then every depth (rounded to a 1024 boundary) at which
// BramCount actually changes, and finally the depth a FIFO would need to
// never block given writeCount writes. Plateaus where widening the depth by
// another 1024 entries leaves the BRAM count unchanged are skipped, and
// enumeration stops as soon as a candidate already matches the BRAM count
// at the maximum depth.
func DesignSpace(width uint32, writeCount int) []int {
	const initialDepth = 2

	maxDepth := writeCount
	if maxDepth < initialDepth {
		maxDepth = initialDepth
	}
	maxBramCount := BramCount(width, maxDepth)

	depths := []int{initialDepth}
	for depth := 1024; depth < maxDepth; depth += 1024 {
		bramCount := BramCount(width, depth)
		if bramCount == maxBramCount {
			break
		}

		nextDepth := ceilDiv(depth+1024, 1024) * 1024
		if bramCount != BramCount(width, nextDepth) {
			depths = append(depths, depth)
		}
	}
	if maxDepth != initialDepth {
		depths = append(depths, maxDepth)
	}

	return depths
}
