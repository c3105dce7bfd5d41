package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// varianceFloor keeps the standardized-moment denominators finite on
// physically meaningless (near-constant) profiles.
const varianceFloor = 1e-30

// Stats summarizes a sampled profile. All values describe the raw
// linear profile after zero filtering.
type Stats struct {
	// Samples is the number of intersecting radii
	Samples int

	// Sum, Mean and Median of the intersection counts
	Sum    float64
	Mean   float64
	Median float64

	// Skewness and Kurtosis of the sampled counts, population
	// formulas; Kurtosis is excess kurtosis
	Skewness float64
	Kurtosis float64

	// Max is the highest sampled count, MaxRadius the first radius
	// reaching it
	Max       float64
	MaxRadius float64

	// Primaries is the primary branch count the ramification index was
	// computed against (user supplied or inferred from the first
	// sampled radius)
	Primaries float64

	// RamificationIndex is Max divided by Primaries
	RamificationIndex float64

	// CentroidRadius and CentroidValue locate the center of mass of
	// the profile treated as a closed polygon
	CentroidRadius float64
	CentroidValue  float64

	// EnclosingRadius is the largest radius whose count still meets
	// the enclosing cutoff; NaN when no radius does
	EnclosingRadius float64
}

// Statistics computes the descriptive statistics of the profile.
// enclosingCutoff is the minimum count a radius must reach to qualify
// as enclosing radius. primaryBranches is the user-supplied branch
// count; when inferPrimary is set (or the supplied count is zero) the
// count at the first sampled radius is used instead.
func (p Profile) Statistics(enclosingCutoff int, primaryBranches int, inferPrimary bool) Stats {
	s := Stats{Samples: len(p), EnclosingRadius: math.NaN()}
	if len(p) == 0 {
		return s
	}

	y := p.Counts()

	s.Sum = floats.Sum(y)
	s.Mean = stat.Mean(y, nil)
	s.Median = median(y)

	for _, sample := range p {
		if sample.Count > s.Max {
			s.Max = sample.Count
			s.MaxRadius = sample.Radius
		}
		if sample.Count >= float64(enclosingCutoff) {
			s.EnclosingRadius = sample.Radius
		}
	}

	_, _, s.Skewness, s.Kurtosis = Moments(y)

	if inferPrimary || primaryBranches == 0 {
		s.Primaries = y[0]
	} else {
		s.Primaries = float64(primaryBranches)
	}
	s.RamificationIndex = s.Max / s.Primaries

	s.CentroidRadius, s.CentroidValue = Centroid(p.Radii(), y)

	return s
}

// Moments returns the mean, variance, skewness and excess kurtosis of
// univariate data using population formulas (no sample correction),
// the convention Sholl descriptors are published with.
func Moments(values []float64) (mean, variance, skewness, kurtosis float64) {
	n := float64(len(values))
	var sum1, sum2, sum3, sum4 float64
	for _, v := range values {
		v2 := v * v
		sum1 += v
		sum2 += v2
		sum3 += v * v2
		sum4 += v2 * v2
	}
	mean = sum1 / n
	mean2 := mean * mean
	variance = sum2/n - mean2
	flo := math.Max(variance, varianceFloor)
	std := math.Sqrt(flo)
	skewness = ((sum3-3.0*mean*sum2)/n + 2.0*mean*mean2) / (flo * std)
	kurtosis = ((sum4-4.0*mean*sum3+6.0*mean2*sum2)/n-3.0*mean2*mean2)/(flo*flo) - 3.0
	return mean, variance, skewness, kurtosis
}

// Centroid computes the center of mass of a non-self-intersecting
// closed polygon through the sampled points, via the shoelace formula.
// Returns NaNs when the enclosed area vanishes.
func Centroid(xpoints, ypoints []float64) (cx, cy float64) {
	var area, sumx, sumy float64
	for i := 1; i < len(xpoints); i++ {
		cfactor := xpoints[i-1]*ypoints[i] - xpoints[i]*ypoints[i-1]
		sumx += (xpoints[i-1] + xpoints[i]) * cfactor
		sumy += (ypoints[i-1] + ypoints[i]) * cfactor
		area += cfactor / 2
	}
	if math.Abs(area) < 1e-12 {
		return math.NaN(), math.NaN()
	}
	return sumx / (6 * area), sumy / (6 * area)
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2] + sorted[n/2-1]) / 2
	}
	return sorted[n/2]
}
