// Package cluster counts connected components among the candidate
// points of a sampling shell. Each component is one arbor crossing:
// 8-connected pixel groups in 2D, 26-connected voxel groups in 3D.
package cluster

import (
	"github.com/theodesp/unionfind"

	"shollmetrics/pkg/geometry"
)

// Classifier2D reports whether the pixel at (x, y) is foreground. It
// must accept any lattice position: spike suppression probes neighbor
// pixels that are not part of the candidate set.
type Classifier2D func(x, y int) bool

// Count returns the number of groups of 8-connected foreground pixels
// among the circumference points. Two pixels belong to the same group
// when their Chebyshev distance is 1. An empty candidate set yields 0.
//
// With suppressSpikes set, single-pixel groups sitting on the edge of
// a stair of foreground pixels are discarded as digitization
// artifacts: when the edge of a pixel group lies tangent to the
// sampling circle, the circle can clip an isolated pixel that is not a
// true additional crossing. Only four stair orientations are checked,
// so some artifacts slip through.
func Count(points []geometry.Point2D, foreground Classifier2D, suppressSpikes bool) int {
	targets := make([]geometry.Point2D, 0, len(points))
	for _, p := range points {
		if foreground(p.X, p.Y) {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return 0
	}

	uf := unionfind.NewThreadSafeUnionFind(len(targets))
	for i := 0; i < len(targets); i++ {
		for j := i + 1; j < len(targets); j++ {
			if chebyshev2(targets[i], targets[j]) == 1 {
				uf.Union(i, j)
			}
		}
	}

	// Root is negative for elements that were never merged; those are
	// their own component.
	resolve := func(i int) int {
		if root := uf.Root(i); root >= 0 {
			return root
		}
		return i
	}

	sizes := make(map[int]int, len(targets))
	for i := range targets {
		sizes[resolve(i)]++
	}
	groups := len(sizes)

	if suppressSpikes {
		for i, p := range targets {
			if sizes[resolve(i)] == 1 && isStairArtifact(p, foreground) {
				groups--
			}
		}
	}

	return groups
}

// isStairArtifact reports whether a single-pixel group exists solely
// on the edge of a stair of foreground pixels.
func isStairArtifact(p geometry.Point2D, foreground Classifier2D) bool {
	// The 8 neighbors surrounding this point, in a fixed order the
	// stair masks below index into
	n := [8]bool{
		foreground(p.X-1, p.Y+1),
		foreground(p.X, p.Y+1),
		foreground(p.X+1, p.Y+1),
		foreground(p.X-1, p.Y),
		foreground(p.X+1, p.Y),
		foreground(p.X-1, p.Y-1),
		foreground(p.X, p.Y-1),
		foreground(p.X+1, p.Y-1),
	}

	// Stair checks: three consecutive neighbors on, the three
	// complementary ones off, for each of the 4 orientations
	return (n[0] && n[1] && n[3] && !n[4] && !n[6] && !n[7]) ||
		(n[1] && n[2] && n[4] && !n[3] && !n[5] && !n[6]) ||
		(n[4] && n[6] && n[7] && !n[0] && !n[1] && !n[3]) ||
		(n[3] && n[5] && n[6] && !n[1] && !n[2] && !n[4])
}

// Count3D returns the number of groups of 26-connected foreground
// voxels among the shell candidates. Two voxels belong to the same
// group when their 3D Chebyshev distance is at most 1. No spike
// suppression is applied; the stair heuristic is strictly 2D.
func Count3D(voxels []geometry.Point3D) int {
	if len(voxels) == 0 {
		return 0
	}

	uf := unionfind.NewThreadSafeUnionFind(len(voxels))
	for i := 0; i < len(voxels); i++ {
		for j := i + 1; j < len(voxels); j++ {
			if chebyshev3(voxels[i], voxels[j]) == 1 {
				uf.Union(i, j)
			}
		}
	}

	resolve := func(i int) int {
		if root := uf.Root(i); root >= 0 {
			return root
		}
		return i
	}

	roots := make(map[int]struct{}, len(voxels))
	for i := range voxels {
		roots[resolve(i)] = struct{}{}
	}
	return len(roots)
}

func chebyshev2(a, b geometry.Point2D) int {
	return maxInt(absInt(a.X-b.X), absInt(a.Y-b.Y))
}

func chebyshev3(a, b geometry.Point3D) int {
	lateral := maxInt(absInt(a.X-b.X), absInt(a.Y-b.Y))
	return maxInt(lateral, absInt(a.Z-b.Z))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
