// Package sampling walks the configured radius schedule over a
// segmented stack and produces the raw Sholl profile: one intersection
// count per radius, from concentric digital circles in 2D or voxel
// shells in 3D.
package sampling

import (
	"context"
	"math"
	"sort"

	"shollmetrics/internal/models"
	"shollmetrics/pkg/cluster"
	"shollmetrics/pkg/config"
	"shollmetrics/pkg/geometry"
	"shollmetrics/pkg/profile"
)

// ProgressCallback is a function that reports progress during
// sampling. It is invoked after each radius with the number of radii
// completed so far; it must not modify analysis state.
type ProgressCallback func(completed, total int, message string)

// Sampler measures intersection counts across the radius schedule of
// a configuration. The stack and configuration are read-only during
// sampling; a Sampler may therefore be shared by concurrent runs.
type Sampler struct {
	stack *models.Stack
	cfg   *config.Config

	// Progress, when set, receives a report after every sampled radius
	Progress ProgressCallback
}

// New creates a sampler for the given stack and configuration. The
// configuration must have been validated.
func New(stack *models.Stack, cfg *config.Config) *Sampler {
	return &Sampler{stack: stack, cfg: cfg}
}

// Sample measures the full radius schedule and returns the profile,
// dispatching on the configured dimensionality.
//
// Cancellation is cooperative: ctx is polled between samples, and a
// cancelled run returns the profile gathered so far with the remaining
// entries at zero intersections. Partial output is a first-class
// result, not an error.
func (s *Sampler) Sample(ctx context.Context) profile.Profile {
	radii := s.cfg.Radii()
	out := make(profile.Profile, len(radii))
	for i, r := range radii {
		out[i].Radius = r
	}

	if s.cfg.ThreeD {
		s.sample3D(ctx, out)
	} else {
		s.sample2D(ctx, out)
	}
	return out
}

// sample2D measures each radius with the configured number of samples
// per radius and combines them into a single count.
func (s *Sampler) sample2D(ctx context.Context, out profile.Profile) {
	span := s.cfg.Samples.Span
	integration, _ := s.cfg.IntegrationMethod()
	pixelSize := s.cfg.VoxelSize()
	cx, cy, cz := s.cfg.Center.X, s.cfg.Center.Y, s.cfg.Center.Z

	foreground := func(x, y int) bool {
		return s.cfg.Classify(s.stack.Intensity(x, y, cz))
	}

	samples := make([]int, span)
	for i := range out {
		// Largest pixel radius of this bin span; successive samples
		// step inward one pixel at a time
		rbin := int(math.Round(out[i].Radius/pixelSize)) + span/2

		for j := 0; j < span; j++ {
			if ctx.Err() != nil {
				return
			}
			points := geometry.CircumferencePoints(cx, cy, rbin-j, s.cfg.Bounds)
			samples[j] = cluster.Count(points, foreground, s.cfg.SpikeSuppression)
		}

		out[i].Count = combine(samples, integration)

		if s.Progress != nil {
			s.Progress(i+1, len(out), "sampling circle")
		}
	}
}

// combine reduces the bin samples of one radius to a single count.
func combine(samples []int, integration config.Integration) float64 {
	if len(samples) == 1 {
		return float64(samples[0])
	}

	switch integration {
	case config.IntegrateMedian:
		sorted := append([]int(nil), samples...)
		sort.Ints(sorted)
		n := len(sorted)
		if n%2 == 0 {
			return float64(sorted[n/2]+sorted[n/2-1]) / 2.0
		}
		return float64(sorted[n/2])

	case config.IntegrateMode:
		// Value with the highest frequency; ties keep the earliest
		// value in scan order
		mode, maxCount := 0, 0
		for _, a := range samples {
			count := 0
			for _, b := range samples {
				if b == a {
					count++
				}
			}
			if count > maxCount {
				maxCount = count
				mode = a
			}
		}
		return float64(mode)

	default: // mean
		sum := 0
		for _, v := range samples {
			sum += v
		}
		return float64(sum) / float64(len(samples))
	}
}

// sample3D measures each radius from the voxel shell at that distance.
// No multi-sample binning is applied in 3D.
func (s *Sampler) sample3D(ctx context.Context, out profile.Profile) {
	cx, cy, cz := s.cfg.Center.X, s.cfg.Center.Y, s.cfg.Center.Z
	vxWH, vxD := s.cfg.Voxel.Lateral, s.cfg.Voxel.Axial
	b := s.cfg.Bounds

	for i := range out {
		if ctx.Err() != nil {
			return
		}
		r := out[i].Radius

		// Restrain the scan to the smallest box holding this sphere
		xmin := maxInt(cx-int(math.Round(r/vxWH)), b.MinX)
		ymin := maxInt(cy-int(math.Round(r/vxWH)), b.MinY)
		zmin := maxInt(cz-int(math.Round(r/vxD)), b.MinZ)
		xmax := minInt(cx+int(math.Round(r/vxWH)), b.MaxX)
		ymax := minInt(cy+int(math.Round(r/vxWH)), b.MaxY)
		zmax := minInt(cz+int(math.Round(r/vxD)), b.MaxZ)

		var shell []geometry.Point3D
		for z := zmin; z <= zmax; z++ {
			for y := ymin; y < ymax; y++ {
				for x := xmin; x < xmax; x++ {
					dxw := float64(x-cx) * vxWH
					dyw := float64(y-cy) * vxWH
					dzw := float64(z-cz) * vxD
					d := math.Sqrt(dxw*dxw + dyw*dyw + dzw*dzw)
					if math.Abs(d-r) >= 0.5 {
						continue
					}
					if !s.cfg.Classify(s.stack.Intensity(x, y, z)) {
						continue
					}
					if s.cfg.SkipIsolatedVoxels && !s.hasNeighbors(x, y, z) {
						continue
					}
					shell = append(shell, geometry.Point3D{X: x, Y: y, Z: z})
				}
			}
		}

		out[i].Count = float64(cluster.Count3D(shell))

		if s.Progress != nil {
			s.Progress(i+1, len(out), "sampling sphere")
		}
	}
}

// hasNeighbors reports whether at least one 6-connected neighbor of
// the voxel is thresholded. Out-of-bounds neighbors read as background.
func (s *Sampler) hasNeighbors(x, y, z int) bool {
	neighbors := [6][3]int{
		{x - 1, y, z}, {x + 1, y, z},
		{x, y - 1, z}, {x, y + 1, z},
		{x, y, z + 1}, {x, y, z - 1},
	}
	for _, n := range neighbors {
		if s.cfg.Classify(s.stack.Intensity(n[0], n[1], n[2])) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
