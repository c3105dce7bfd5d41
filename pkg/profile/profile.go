// Package profile holds the radius-vs-intersections profile produced
// by sampling and the pure transforms applied to it before curve
// fitting. Every transform allocates a new profile; inputs are never
// mutated, so the raw sampled data stays available for reporting.
package profile

import (
	"math"

	"shollmetrics/pkg/config"
)

// Sample is one (radius, intersection count) pair. Radius is in
// physical units; Count is fractional after multi-sample binning.
type Sample struct {
	Radius float64
	Count  float64
}

// Profile is an ordered sequence of samples, one per scheduled radius,
// in radius order.
type Profile []Sample

// Radii returns the radius column as a new slice.
func (p Profile) Radii() []float64 {
	out := make([]float64, len(p))
	for i, s := range p {
		out[i] = s.Radius
	}
	return out
}

// Counts returns the intersection column as a new slice.
func (p Profile) Counts() []float64 {
	out := make([]float64, len(p))
	for i, s := range p {
		out[i] = s.Count
	}
	return out
}

// NonZero returns the samples with strictly positive radius and count.
// Zero intersections are problematic for logs and polynomials: long
// stretches of zeros caused by discontinuous arbors put sharp bumps on
// the fitted curve. The operation is idempotent.
func (p Profile) NonZero() Profile {
	out := make(Profile, 0, len(p))
	for _, s := range p {
		if s.Radius > 0 && s.Count > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Normalize divides each intersection count by a geometric normalizer
// of its radius. stepRadius is only used by the annulus/shell
// normalizer, where the shell spans radius ± step/2.
func (p Profile) Normalize(norm config.Normalizer, threeD bool, stepRadius float64) Profile {
	out := make(Profile, len(p))
	for i, s := range p {
		var div float64
		switch norm {
		case config.NormArea:
			if threeD {
				div = math.Pi * s.Radius * s.Radius * s.Radius * 4 / 3 // volume of sphere
			} else {
				div = math.Pi * s.Radius * s.Radius // area of circle
			}
		case config.NormPerimeter:
			if threeD {
				div = math.Pi * s.Radius * s.Radius * 4 // surface of sphere
			} else {
				div = math.Pi * s.Radius * 2 // length of circumference
			}
		case config.NormAnnulus:
			r1 := s.Radius - stepRadius/2
			r2 := s.Radius + stepRadius/2
			if threeD {
				div = math.Pi * 4 / 3 * (r2*r2*r2 - r1*r1*r1) // volume of spherical shell
			} else {
				div = math.Pi * (r2*r2 - r1*r1) // area of annulus
			}
		}
		out[i] = Sample{Radius: s.Radius, Count: s.Count / div}
	}
	return out
}

// LogY returns the profile with natural-log intersection counts.
// Applied to a normalized profile this yields the semi-log variant.
func (p Profile) LogY() Profile {
	out := make(Profile, len(p))
	for i, s := range p {
		out[i] = Sample{Radius: s.Radius, Count: math.Log(s.Count)}
	}
	return out
}

// LogX returns the profile with natural-log radii. Applied to the
// semi-log variant this yields the log-log variant.
func (p Profile) LogX() Profile {
	out := make(Profile, len(p))
	for i, s := range p {
		out[i] = Sample{Radius: math.Log(s.Radius), Count: s.Count}
	}
	return out
}
