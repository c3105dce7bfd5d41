package fit

import (
	"math"
	"testing"
)

func sampleCurve(f func(float64) float64, from, to, step float64) (x, y []float64) {
	for v := from; v <= to; v += step {
		x = append(x, v)
		y = append(y, f(v))
	}
	return x, y
}

func TestPolyRecoversQuadratic(t *testing.T) {
	x, y := sampleCurve(func(v float64) float64 {
		return 1 + 2*v - 0.5*v*v
	}, 0, 10, 1)

	c, err := Poly(x, y, 2)
	if err != nil {
		t.Fatalf("Poly failed: %v", err)
	}

	want := []float64{1, 2, -0.5}
	for i, w := range want {
		if math.Abs(c.Coeffs[i]-w) > 1e-9 {
			t.Errorf("coefficient %d = %f, expected %f", i, c.Coeffs[i], w)
		}
	}
	if c.R2 < 1-1e-12 {
		t.Errorf("R^2 = %f, expected 1 for exact data", c.R2)
	}
	if c.Degree != 2 || c.Kind != KindPolynomial {
		t.Errorf("unexpected curve metadata %+v", c)
	}
}

func TestPolyRefusesSmallDataset(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{1, 4, 9, 16, 25, 36}

	if _, err := Poly(x, y, 2); err != ErrInsufficientData {
		t.Errorf("expected ErrInsufficientData for 6 samples, got %v", err)
	}
}

func TestPolyRefusesBadDegree(t *testing.T) {
	x, y := sampleCurve(math.Sqrt, 1, 20, 1)
	if _, err := Poly(x, y, 1); err == nil {
		t.Error("expected error for degree 1")
	}
	if _, err := Poly(x, y, 9); err == nil {
		t.Error("expected error for degree 9")
	}
}

func TestPolyUnderdeterminedDegree(t *testing.T) {
	// 7 samples cannot determine 9 coefficients
	x, y := sampleCurve(math.Sqrt, 1, 7, 1)
	if _, err := Poly(x, y, 8); err != ErrInsufficientData {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestLineFit(t *testing.T) {
	x, y := sampleCurve(func(v float64) float64 {
		return 3 - 0.25*v
	}, 0, 5, 1)

	c, err := Line(x, y)
	if err != nil {
		t.Fatalf("Line failed: %v", err)
	}
	if math.Abs(c.Intercept()-3) > 1e-9 {
		t.Errorf("intercept = %f", c.Intercept())
	}
	if math.Abs(c.Slope()+0.25) > 1e-9 {
		t.Errorf("slope = %f", c.Slope())
	}
	if c.R2 < 1-1e-12 {
		t.Errorf("R^2 = %f", c.R2)
	}
}

func TestLineAllowsShortData(t *testing.T) {
	if _, err := Line([]float64{1, 2}, []float64{4, 5}); err != nil {
		t.Errorf("line fit on 2 points should succeed, got %v", err)
	}
	if _, err := Line([]float64{1}, []float64{4}); err != ErrInsufficientData {
		t.Errorf("expected ErrInsufficientData for 1 point, got %v", err)
	}
}

func TestRSquaredFlatData(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{5, 5, 5, 5}

	c, err := Line(x, y)
	if err != nil {
		t.Fatalf("Line failed: %v", err)
	}
	// zero total variance reports zero, not a perfect fit
	if c.R2 != 0 {
		t.Errorf("R^2 on constant data = %f, expected 0", c.R2)
	}
}

func TestPowerFit(t *testing.T) {
	x, y := sampleCurve(func(v float64) float64 {
		return 2.5 * math.Pow(v, -1.3)
	}, 1, 20, 1)

	c, err := Power(x, y)
	if err != nil {
		t.Fatalf("Power failed: %v", err)
	}
	if c.Kind != KindPower {
		t.Errorf("kind = %v", c.Kind)
	}
	if math.Abs(c.Coeffs[0]-2.5) > 0.05 {
		t.Errorf("a = %f, expected ~2.5", c.Coeffs[0])
	}
	if math.Abs(c.Coeffs[1]+1.3) > 0.05 {
		t.Errorf("b = %f, expected ~-1.3", c.Coeffs[1])
	}
	if c.R2 < 0.99 {
		t.Errorf("R^2 = %f", c.R2)
	}
}

func TestExpOffsetFit(t *testing.T) {
	x, y := sampleCurve(func(v float64) float64 {
		return 4*math.Exp(-0.5*v) + 1
	}, 0, 10, 0.5)

	c, err := ExpOffset(x, y)
	if err != nil {
		t.Fatalf("ExpOffset failed: %v", err)
	}
	if c.Kind != KindExpOffset {
		t.Errorf("kind = %v", c.Kind)
	}
	if c.R2 < 0.98 {
		t.Errorf("R^2 = %f", c.R2)
	}

	// the fitted curve reproduces the data
	for i := range x {
		if math.Abs(c.Eval(x[i])-y[i]) > 0.2 {
			t.Errorf("Eval(%f) = %f, expected %f", x[i], c.Eval(x[i]), y[i])
			break
		}
	}
}

func TestCurveEvalPolynomial(t *testing.T) {
	c := Curve{Kind: KindPolynomial, Degree: 2, Coeffs: []float64{1, 0, 2}}
	if got := c.Eval(3); got != 19 {
		t.Errorf("Eval(3) = %f, expected 19", got)
	}
}
