// Package fit provides the least-squares and simplex curve fits used
// to derive Sholl descriptors: polynomials and straight lines solved
// directly, power and exponential-with-offset models minimized
// numerically.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// SmallestDataset is the largest profile size curve fitting still
// refuses: small datasets are prone to inflated coefficients of
// determination. At least SmallestDataset+1 pairs are required.
const SmallestDataset = 6

// ErrInsufficientData is returned when a profile has too few points
// for the requested fit. Callers skip the affected descriptors and
// proceed.
var ErrInsufficientData = errors.New("not enough data points for curve fitting")

// Kind tags the model family of a fitted curve.
type Kind int

const (
	KindPolynomial Kind = iota
	KindLine
	KindPower
	KindExpOffset
)

func (k Kind) String() string {
	switch k {
	case KindPolynomial:
		return "polynomial"
	case KindLine:
		return "straight line"
	case KindPower:
		return "power"
	case KindExpOffset:
		return "exponential with offset"
	}
	return "unknown"
}

// Curve is a fitted model: coefficients, a coefficient of
// determination and the model family. Polynomial coefficients are in
// ascending order of degree. Power curves hold (a, b) of a·x^b;
// exponential-with-offset curves hold (a, b, c) of a·exp(−b·x)+c.
type Curve struct {
	Kind   Kind
	Degree int // polynomial fits only
	Coeffs []float64
	R2     float64
}

// Eval evaluates the fitted model at x.
func (c Curve) Eval(x float64) float64 {
	switch c.Kind {
	case KindPolynomial, KindLine:
		// Horner on ascending coefficients
		y := 0.0
		for i := len(c.Coeffs) - 1; i >= 0; i-- {
			y = y*x + c.Coeffs[i]
		}
		return y
	case KindPower:
		return c.Coeffs[0] * math.Pow(x, c.Coeffs[1])
	case KindExpOffset:
		return c.Coeffs[0]*math.Exp(-c.Coeffs[1]*x) + c.Coeffs[2]
	}
	return math.NaN()
}

// Slope returns the slope of a straight-line fit.
func (c Curve) Slope() float64 { return c.Coeffs[1] }

// Intercept returns the y-intercept of a straight-line fit.
func (c Curve) Intercept() float64 { return c.Coeffs[0] }

// Poly fits a polynomial of the given degree (2-8) by linear least
// squares, solving the Vandermonde system with a QR factorization.
func Poly(x, y []float64, degree int) (Curve, error) {
	if degree < 2 || degree > 8 {
		return Curve{}, fmt.Errorf("unsupported polynomial degree %d", degree)
	}
	if len(x) <= SmallestDataset || len(x) < degree+1 {
		return Curve{}, ErrInsufficientData
	}
	coeffs, err := leastSquares(x, y, degree)
	if err != nil {
		return Curve{}, err
	}
	c := Curve{Kind: KindPolynomial, Degree: degree, Coeffs: coeffs}
	c.R2 = rSquared(x, y, c)
	return c, nil
}

// Line fits a straight line a+bx. No minimum dataset size is imposed:
// the determination ratio needs line fits even on short profiles.
func Line(x, y []float64) (Curve, error) {
	if len(x) < 2 {
		return Curve{}, ErrInsufficientData
	}
	intercept, slope := stat.LinearRegression(x, y, nil, false)
	c := Curve{Kind: KindLine, Degree: 1, Coeffs: []float64{intercept, slope}}
	c.R2 = rSquared(x, y, c)
	return c, nil
}

// Power fits y = a·x^b. The fit is seeded from the log-log
// linearization and refined by Nelder-Mead simplex on the sum of
// squared residuals; x and y must be strictly positive for the seed,
// which holds for zero-filtered normalized profiles.
func Power(x, y []float64) (Curve, error) {
	if len(x) <= SmallestDataset {
		return Curve{}, ErrInsufficientData
	}

	lx := make([]float64, len(x))
	ly := make([]float64, len(y))
	for i := range x {
		lx[i] = math.Log(x[i])
		ly[i] = math.Log(y[i])
	}
	intercept, slope := stat.LinearRegression(lx, ly, nil, false)
	seed := []float64{math.Exp(intercept), slope}

	params := minimizeSSE(seed, func(p []float64, xi float64) float64 {
		return p[0] * math.Pow(xi, p[1])
	}, x, y)

	c := Curve{Kind: KindPower, Coeffs: params}
	c.R2 = rSquared(x, y, c)
	return c, nil
}

// ExpOffset fits y = a·exp(−b·x) + c by Nelder-Mead simplex, seeded
// from the data range and endpoints.
func ExpOffset(x, y []float64) (Curve, error) {
	if len(x) <= SmallestDataset {
		return Curve{}, ErrInsufficientData
	}

	ymin, ymax := minMax(y)
	xmin, xmax := minMax(x)
	span := xmax - xmin
	if span == 0 {
		span = 1
	}
	seed := []float64{ymax - ymin, 1 / span, ymin}

	params := minimizeSSE(seed, func(p []float64, xi float64) float64 {
		return p[0]*math.Exp(-p[1]*xi) + p[2]
	}, x, y)

	c := Curve{Kind: KindExpOffset, Coeffs: params}
	c.R2 = rSquared(x, y, c)
	return c, nil
}

// leastSquares solves min ‖V·β − y‖² for the Vandermonde matrix V of
// the given degree, returning ascending coefficients.
func leastSquares(x, y []float64, degree int) ([]float64, error) {
	n := len(x)
	cols := degree + 1

	v := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		p := 1.0
		for j := 0; j < cols; j++ {
			v.Set(i, j, p)
			p *= x[i]
		}
	}

	var qr mat.QR
	qr.Factorize(v)

	b := mat.NewVecDense(n, append([]float64(nil), y...))
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, b); err != nil {
		return nil, fmt.Errorf("polynomial solve failed: %w", err)
	}

	coeffs := make([]float64, cols)
	for j := 0; j < cols; j++ {
		coeffs[j] = beta.AtVec(j)
	}
	return coeffs, nil
}

// minimizeSSE runs a Nelder-Mead simplex on the sum of squared
// residuals of model(p, x) against y. The seed is returned unchanged
// if the optimizer makes no progress.
func minimizeSSE(seed []float64, model func(p []float64, x float64) float64,
	x, y []float64) []float64 {

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			var sse float64
			for i := range x {
				r := y[i] - model(p, x[i])
				sse += r * r
			}
			return sse
		},
	}

	result, err := optimize.Minimize(problem, append([]float64(nil), seed...), nil, &optimize.NelderMead{})
	if err != nil || result == nil {
		return seed
	}
	return result.X
}

// rSquared is the coefficient of determination 1 − SSE/SST. Zero, not
// one, when the data has no variance: a flat profile carries no
// information for the fit to explain.
func rSquared(x, y []float64, c Curve) float64 {
	mean := stat.Mean(y, nil)
	var sse, sst float64
	for i := range y {
		r := y[i] - c.Eval(x[i])
		sse += r * r
		d := y[i] - mean
		sst += d * d
	}
	if sst <= 0 {
		return 0
	}
	return 1 - sse/sst
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
