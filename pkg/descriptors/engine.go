// Package descriptors derives the scalar morphometry descriptors and
// fitted curves of a sampled Sholl profile: profile statistics,
// polynomial descriptors (critical value/radius, mean value,
// ramification index), normalized-profile regressions and the
// determination-ratio method selection.
package descriptors

import (
	"errors"
	"math"

	"shollmetrics/pkg/config"
	"shollmetrics/pkg/fit"
	"shollmetrics/pkg/profile"
)

// ErrDegenerateProfile is returned when no sample survives zero
// filtering; there is nothing to describe.
var ErrDegenerateProfile = errors.New("all intersection counts were zero")

// criticalValueIterations is the resolution of the bounded search for
// the local maximum of the fitted polynomial.
const criticalValueIterations = 1000

// Descriptor names, the keys of Result.Values. Absent keys mean the
// corresponding computation was skipped (insufficient data), never
// that it yielded zero.
const (
	KeyCriticalValue       = "Critical value"
	KeyCriticalRadius      = "Critical radius"
	KeyMeanValue           = "Mean value"
	KeyRamificationFit     = "Ramification index (fit)"
	KeySkewnessFit         = "Skewness (fit)"
	KeyKurtosisFit         = "Kurtosis (fit)"
	KeyPolyDegree          = "Polyn. degree"
	KeyPolyR2              = "Polyn. R^2"
	KeyIntersectingRadii   = "Intersecting radii"
	KeySumInters           = "Sum inters."
	KeyMeanInters          = "Mean inters."
	KeyMedianInters        = "Median inters."
	KeySkewnessSampled     = "Skewness (sampled)"
	KeyKurtosisSampled     = "Kurtosis (sampled)"
	KeyMaxInters           = "Max inters."
	KeyMaxIntersRadius     = "Max inters. radius"
	KeyRamificationSampled = "Ramification index (sampled)"
	KeyCentroidRadius      = "Centroid radius"
	KeyCentroidValue       = "Centroid value"
	KeyEnclosingRadius     = "Enclosing radius"
	KeyDeterminationRatio  = "Determination ratio"
)

// Result holds everything derived from one analysis run. Profiles and
// descriptor values are read-only outputs.
type Result struct {
	// Stats describes the zero-filtered linear profile
	Stats profile.Stats

	// Linear is the zero-filtered raw profile; Normalized, SemiLog and
	// LogLog are its derived variants
	Linear     profile.Profile
	Normalized profile.Profile
	SemiLog    profile.Profile
	LogLog     profile.Profile

	// PolyCurve is the polynomial fit of the linear profile,
	// PowerCurve the power fit of the normalized profile and ExpCurve
	// the exponential fit of the log-log profile; nil when skipped
	PolyCurve  *fit.Curve
	PowerCurve *fit.Curve
	ExpCurve   *fit.Curve

	// FittedLinear holds PolyCurve evaluated at the linear profile
	// radii, for plotting or mask rendering; nil when no fit was made
	FittedLinear []float64

	// DeterminationRatio compares the semi-log and log-log line fits;
	// SemiLogPreferred records the ratio ≥ 1 tie-break
	DeterminationRatio float64
	SemiLogPreferred   bool

	// Values is the flat descriptor table keyed by descriptor name
	Values map[string]float64
}

// Engine computes descriptors under a fixed configuration.
type Engine struct {
	cfg *config.Config
}

// New creates a descriptor engine for the given configuration.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze runs the full post-processing pipeline on a raw profile.
// Degenerate stages are skipped and their descriptors left absent;
// only an entirely empty profile is an error.
func (e *Engine) Analyze(raw profile.Profile) (*Result, error) {
	linear := raw.NonZero()
	if len(linear) == 0 {
		return nil, ErrDegenerateProfile
	}

	res := &Result{
		Linear: linear,
		Values: make(map[string]float64),
	}

	d := e.cfg.Descriptors
	res.Stats = linear.Statistics(d.EnclosingCutoff, d.PrimaryBranches, d.InferPrimary)
	e.recordStats(res)

	norm, err := e.cfg.NormalizerMethod()
	if err != nil {
		return nil, err
	}
	res.Normalized = linear.Normalize(norm, e.cfg.ThreeD, e.cfg.StepRadius())
	res.SemiLog = res.Normalized.LogY()
	res.LogLog = res.SemiLog.LogX()

	e.determinationRatio(res)
	e.fitPolynomial(res)
	e.fitNormalized(res)
	e.regressions(res)

	return res, nil
}

// recordStats copies the sampled statistics into the descriptor table.
func (e *Engine) recordStats(res *Result) {
	s := res.Stats
	res.Values[KeyIntersectingRadii] = float64(s.Samples)
	res.Values[KeySumInters] = s.Sum
	res.Values[KeyMeanInters] = s.Mean
	res.Values[KeyMedianInters] = s.Median
	res.Values[KeySkewnessSampled] = s.Skewness
	res.Values[KeyKurtosisSampled] = s.Kurtosis
	res.Values[KeyMaxInters] = s.Max
	res.Values[KeyMaxIntersRadius] = s.MaxRadius
	res.Values[KeyRamificationSampled] = s.RamificationIndex
	res.Values[KeyCentroidRadius] = s.CentroidRadius
	res.Values[KeyCentroidValue] = s.CentroidValue
	res.Values[KeyEnclosingRadius] = s.EnclosingRadius
}

// determinationRatio fits straight lines to the semi-log and log-log
// profiles and stores their R² ratio. A ratio of at least 1 selects
// the semi-log method as most informative; the choice is advisory and
// does not limit which curves are computed.
func (e *Engine) determinationRatio(res *Result) {
	slog, err1 := fit.Line(res.SemiLog.Radii(), res.SemiLog.Counts())
	llog, err2 := fit.Line(res.LogLog.Radii(), res.LogLog.Counts())
	if err1 != nil || err2 != nil {
		return
	}

	ratio := slog.R2 / math.Max(math.SmallestNonzeroFloat64, llog.R2)
	res.DeterminationRatio = ratio
	res.SemiLogPreferred = ratio >= 1
	res.Values[KeyDeterminationRatio] = ratio
}

// fitPolynomial fits the linear profile with the configured polynomial
// degree (or the best fitting one) and derives the polynomial-specific
// descriptors.
func (e *Engine) fitPolynomial(res *Result) {
	x := res.Linear.Radii()
	y := res.Linear.Counts()

	var curve fit.Curve
	var err error
	if e.cfg.Descriptors.PolyDegree == config.BestDegree {
		curve, err = bestPolyFit(x, y)
	} else {
		curve, err = fit.Poly(x, y, e.cfg.Descriptors.PolyDegree)
	}
	if err != nil {
		return // descriptors left absent
	}
	res.PolyCurve = &curve

	fy := make([]float64, len(x))
	for i := range x {
		fy[i] = curve.Eval(x[i])
	}
	res.FittedLinear = fy

	cv, cr := criticalPoint(curve, x, fy)
	res.Values[KeyCriticalValue] = cv
	res.Values[KeyCriticalRadius] = cr

	res.Values[KeyMeanValue] = meanValue(curve.Coeffs, x)

	res.Values[KeyRamificationFit] = cv / res.Stats.Primaries

	_, _, skew, kurt := profile.Moments(fy)
	res.Values[KeySkewnessFit] = skew
	res.Values[KeyKurtosisFit] = kurt

	res.Values[KeyPolyDegree] = float64(curve.Degree)
	res.Values[KeyPolyR2] = curve.R2
}

// bestPolyFit picks the polynomial of best fit among degrees 2-8 by
// comparison of the coefficient of determination. The highest R² wins;
// on ties the lower degree is kept.
func bestPolyFit(x, y []float64) (fit.Curve, error) {
	var best fit.Curve
	found := false

	for degree := 2; degree <= 8; degree++ {
		c, err := fit.Poly(x, y, degree)
		if err != nil {
			continue // degree needs more samples than available
		}
		if !found || c.R2 > best.R2 {
			best = c
			found = true
		}
	}
	if !found {
		return fit.Curve{}, fit.ErrInsufficientData
	}
	return best, nil
}

// criticalPoint locates the local maximum of the fitted curve by
// evaluating it at evenly spaced points between the midpoints flanking
// the discrete maximum: a bounded search that assumes unimodality near
// the sampled maximum. The running maximum is seeded with zero, so an
// everywhere-negative fit reports (0, 0).
func criticalPoint(curve fit.Curve, x, fy []float64) (cv, cr float64) {
	maxIdx := 0
	for i, v := range fy {
		if v > fy[maxIdx] {
			maxIdx = i
		}
	}

	left := (x[maxInt(maxIdx-1, 0)] + x[maxIdx]) / 2
	right := (x[minInt(maxIdx+1, len(x)-1)] + x[maxIdx]) / 2
	step := (right - left) / criticalValueIterations

	for i := 0; i < criticalValueIterations; i++ {
		rTmp := left + float64(i)*step
		if vTmp := curve.Eval(rTmp); vTmp > cv {
			cv = vTmp
			cr = rTmp
		}
	}
	return cv, cr
}

// meanValue is the closed-form average of the fitted polynomial: the
// height of a rectangle spanning the sampled radius range with the
// same area as the curve. The power-of-range form keeps descriptor
// values reproducible against published Sholl datasets.
func meanValue(coeffs, x []float64) float64 {
	xmin, xmax := x[0], x[0]
	for _, v := range x[1:] {
		xmin = math.Min(xmin, v)
		xmax = math.Max(xmax, v)
	}

	mv := 0.0
	for i, c := range coeffs {
		mv += c / float64(i+1) * math.Pow(xmax-xmin, float64(i))
	}
	return mv
}

// fitNormalized fits the power model to the linear-normalized profile
// and the exponential-with-offset model to the log-log profile. Both
// are optional outputs; failures leave the curves nil.
func (e *Engine) fitNormalized(res *Result) {
	if c, err := fit.Power(res.Normalized.Radii(), res.Normalized.Counts()); err == nil {
		res.PowerCurve = &c
	}
	if c, err := fit.ExpOffset(res.LogLog.Radii(), res.LogLog.Counts()); err == nil {
		res.ExpCurve = &c
	}
}

// regressions records the straight-line descriptors of the semi-log
// and log-log profiles, each over the full range and restricted to the
// 10th-90th percentile positions.
func (e *Engine) regressions(res *Result) {
	e.regression(res, res.SemiLog, "Semi-log", false)
	e.regression(res, res.SemiLog, "Semi-log", true)
	e.regression(res, res.LogLog, "Log-log", false)
	e.regression(res, res.LogLog, "Log-log", true)
}

func (e *Engine) regression(res *Result, p profile.Profile, method string, trim bool) {
	x := p.Radii()
	y := p.Counts()

	suffix := " (" + method + ")"
	if trim {
		suffix += " [P10-P90]"
		start := int(float64(len(x)) * 0.10)
		end := len(x) - 1 - start
		if end <= fit.SmallestDataset {
			return
		}
		x = x[start:end]
		y = y[start:end]
	}

	line, err := fit.Line(x, y)
	if err != nil {
		return
	}

	// Slope is reported negated by convention: decay rates are quoted
	// as positive coefficients
	res.Values["Regression coefficient"+suffix] = -line.Slope()
	res.Values["Regression intercept"+suffix] = line.Intercept()
	res.Values["Regression R^2"+suffix] = line.R2
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
